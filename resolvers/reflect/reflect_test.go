package reflect

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	avro "github.com/ch-robinson/dotnet-avro-sub002"
)

type Account struct {
	ID      string `avro:"id"`
	Balance int64  `avro:"balance"`
	note    string //nolint:unused // unexported, must be skipped
}

func TestResolvePrimitiveKinds(t *testing.T) {
	r := NewResolver()
	res, err := r.Resolve(reflect.TypeOf(int32(0)))
	require.NoError(t, err)
	assert.Equal(t, avro.PrimitiveInt, res.(avro.PrimitiveResolution).Kind)

	res, err = r.Resolve(reflect.TypeOf(""))
	require.NoError(t, err)
	assert.Equal(t, avro.PrimitiveString, res.(avro.PrimitiveResolution).Kind)
}

func TestResolveWellKnownTypes(t *testing.T) {
	r := NewResolver()

	res, err := r.Resolve(reflect.TypeOf(time.Time{}))
	require.NoError(t, err)
	_, ok := res.(avro.TimestampResolution)
	assert.True(t, ok)

	res, err = r.Resolve(reflect.TypeOf(time.Duration(0)))
	require.NoError(t, err)
	_, ok = res.(avro.DurationResolution)
	assert.True(t, ok)
}

func TestResolveStructHonorsTagsAndSkipsUnexported(t *testing.T) {
	r := NewResolver()
	res, err := r.Resolve(reflect.TypeOf(Account{}))
	require.NoError(t, err)
	rr, ok := res.(avro.RecordResolution)
	require.True(t, ok)
	require.Len(t, rr.Fields, 2)
	assert.True(t, rr.Fields[0].Name.Matches("id"))
	assert.False(t, rr.Fields[0].Name.Matches("ID"))
	assert.True(t, rr.Fields[1].Name.Matches("balance"))
}

func TestResolveStructPointer(t *testing.T) {
	r := NewResolver()
	res, err := r.Resolve(reflect.TypeOf(&Account{}))
	require.NoError(t, err)
	_, ok := res.(avro.RecordResolution)
	assert.True(t, ok)
}

func TestRegisterRecordFeedsUnionResolution(t *testing.T) {
	r := NewResolver()
	r.RegisterRecord("ns.Account", reflect.TypeOf(Account{}))
	ht, ok := r.HostTypeForRecord("ns.Account")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(Account{}), ht)
}

func TestBuildSchemaFromStruct(t *testing.T) {
	r := NewResolver()
	s, err := avro.BuildSchema(reflect.TypeOf(Account{}), r)
	require.NoError(t, err)
	rs, ok := s.(*avro.RecordSchema)
	require.True(t, ok)
	require.Len(t, rs.Fields(), 2)
	assert.Equal(t, "id", rs.Fields()[0].Name())
	assert.Equal(t, "balance", rs.Fields()[1].Name())
}
