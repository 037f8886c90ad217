package avro

import (
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRoundTripsPrimitives(t *testing.T) {
	schema := MustParseSchema(`"long"`)
	codec, err := Build(schema, reflect.TypeOf(int64(0)), nil)
	require.NoError(t, err)

	data, err := codec.Serialize(int64(42))
	require.NoError(t, err)
	assert.Equal(t, "42", string(data))

	v, err := codec.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestBuildRoundTripsStringArray(t *testing.T) {
	schema := MustParseSchema(`{"type":"array","items":"string"}`)
	codec, err := Build(schema, reflect.TypeOf([]string(nil)), nil)
	require.NoError(t, err)

	data, err := codec.Serialize([]string{"a", "b"})
	require.NoError(t, err)

	v, err := codec.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)
}

func TestBuildRoundTripsStringKeyedMap(t *testing.T) {
	schema := MustParseSchema(`{"type":"map","values":"int"}`)
	codec, err := Build(schema, reflect.TypeOf(map[string]int32(nil)), nil)
	require.NoError(t, err)

	data, err := codec.Serialize(map[string]int32{"x": 1, "y": 2})
	require.NoError(t, err)

	v, err := codec.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, map[string]int32{"x": 1, "y": 2}, v)
}

type Point struct {
	X int32
	Y int32
}

func TestBuildRoundTripsRecordWithDefaultResolution(t *testing.T) {
	schema := MustParseSchema(`{"type":"record","name":"Point","fields":[{"name":"x","type":"int"},{"name":"y","type":"int"}]}`)
	codec, err := Build(schema, reflect.TypeOf(Point{}), nil)
	require.NoError(t, err)

	data, err := codec.Serialize(Point{X: 1, Y: 2})
	require.NoError(t, err)

	v, err := codec.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 1, Y: 2}, v)
}

type LinkedNode struct {
	Value int64
	Next  *LinkedNode
}

func TestBuildHandlesRecursiveRecord(t *testing.T) {
	schema := MustParseSchema(`{
		"type": "record", "name": "LinkedNode",
		"fields": [
			{"name": "Value", "type": "long"},
			{"name": "Next", "type": ["null", "LinkedNode"]}
		]
	}`)
	codec, err := Build(schema, reflect.TypeOf(LinkedNode{}), nil)
	require.NoError(t, err)

	value := LinkedNode{Value: 1, Next: &LinkedNode{Value: 2}}
	data, err := codec.Serialize(value)
	require.NoError(t, err)

	v, err := codec.Deserialize(data)
	require.NoError(t, err)
	got := v.(LinkedNode)
	assert.Equal(t, int64(1), got.Value)
	require.NotNil(t, got.Next)
	assert.Equal(t, int64(2), got.Next.Value)
	assert.Nil(t, got.Next.Next)
}

func TestSurrogateFieldSkipsUnboundSchemaField(t *testing.T) {
	schema := MustParseSchema(`{
		"type": "record", "name": "Extra",
		"fields": [
			{"name": "Kept", "type": "int"},
			{"name": "Dropped", "type": {"type": "array", "items": "string"}}
		]
	}`)
	type Extra struct {
		Kept int32
	}
	codec, err := Build(schema, reflect.TypeOf(Extra{}), nil)
	require.NoError(t, err)

	data := []byte(`{"Kept":7,"Dropped":["a","b","c"]}`)
	v, err := codec.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, Extra{Kept: 7}, v)
}

func TestBuildRoundTripsUuid(t *testing.T) {
	schema := MustParseSchema(`{"type":"string","logicalType":"uuid"}`)
	codec, err := Build(schema, reflect.TypeOf(uuid.UUID{}), nil)
	require.NoError(t, err)

	id := uuid.New()
	data, err := codec.Serialize(id)
	require.NoError(t, err)

	v, err := codec.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, id, v)
}

func TestBuildRoundTripsDecimal(t *testing.T) {
	schema := MustParseSchema(`{"type":"bytes","logicalType":"decimal","precision":10,"scale":2}`)
	codec, err := Build(schema, reflect.TypeOf(big.Rat{}), nil)
	require.NoError(t, err)

	rat := big.NewRat(12345, 100)
	data, err := codec.Serialize(*rat)
	require.NoError(t, err)

	v, err := codec.Deserialize(data)
	require.NoError(t, err)
	got := v.(big.Rat)
	assert.Equal(t, 0, rat.Cmp(&got))
}

func TestBuildRoundTripsTimestampMicros(t *testing.T) {
	schema := MustParseSchema(`{"type":"long","logicalType":"timestamp-micros"}`)
	codec, err := Build(schema, reflect.TypeOf(time.Time{}), nil)
	require.NoError(t, err)

	now := time.UnixMicro(1_700_000_000_123_456).UTC()
	data, err := codec.Serialize(now)
	require.NoError(t, err)

	v, err := codec.Deserialize(data)
	require.NoError(t, err)
	assert.True(t, now.Equal(v.(time.Time)))
}

func TestBuildRoundTripsDuration(t *testing.T) {
	schema := MustParseSchema(`{"type":"fixed","name":"dur","size":12,"logicalType":"duration"}`)
	codec, err := Build(schema, reflect.TypeOf(time.Duration(0)), nil)
	require.NoError(t, err)

	d := 36*time.Hour + 15*time.Minute
	data, err := codec.Serialize(d)
	require.NoError(t, err)

	v, err := codec.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, d, v)
}

func TestUnionOfNullAndStringRoundTrips(t *testing.T) {
	schema := MustParseSchema(`["null","string"]`)
	codec, err := Build(schema, reflect.TypeOf((*interface{})(nil)).Elem(), nil)
	require.NoError(t, err)

	data, err := codec.Serialize("hello")
	require.NoError(t, err)
	assert.Contains(t, string(data), "string")

	v, err := codec.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	nullData, err := codec.Serialize(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(nullData))

	nv, err := codec.Deserialize(nullData)
	require.NoError(t, err)
	assert.Nil(t, nv)
}

func TestUnionOfNullAndStringRejectsNonNilableHostType(t *testing.T) {
	schema := MustParseSchema(`["null","string"]`)
	_, err := Build(schema, reflect.TypeOf(""), nil)
	require.Error(t, err)
	var ut *UnsupportedType
	require.ErrorAs(t, err, &ut)
	assert.Equal(t, reflect.TypeOf(""), ut.Type)
}

func TestUnionOfNullAndIntRejectsNonNilableHostType(t *testing.T) {
	schema := MustParseSchema(`["null","int"]`)
	_, err := Build(schema, reflect.TypeOf(int32(0)), nil)
	require.Error(t, err)
	var ut *UnsupportedType
	require.ErrorAs(t, err, &ut)
}

func TestEnumRoundTripsAsString(t *testing.T) {
	schema := MustParseSchema(`{"type":"enum","name":"Suit","symbols":["SPADES","HEARTS","CLUBS","DIAMONDS"]}`)
	codec, err := Build(schema, reflect.TypeOf(""), nil)
	require.NoError(t, err)

	data, err := codec.Serialize("HEARTS")
	require.NoError(t, err)

	v, err := codec.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, "HEARTS", v)
}

func TestEnumRejectsUnknownSymbol(t *testing.T) {
	schema := MustParseSchema(`{"type":"enum","name":"Suit","symbols":["SPADES"]}`)
	codec, err := Build(schema, reflect.TypeOf(""), nil)
	require.NoError(t, err)

	_, err = codec.Serialize("JOKER")
	assert.Error(t, err)
}

func TestUnknownRecordFieldNameIsRejected(t *testing.T) {
	schema := MustParseSchema(`{"type":"record","name":"P","fields":[{"name":"x","type":"int"}]}`)
	codec, err := Build(schema, reflect.TypeOf(Point{}), nil)
	require.NoError(t, err)

	_, err = codec.Deserialize([]byte(`{"x":1,"z":2}`))
	assert.Error(t, err)
}
