package avro

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	fn func(t reflect.Type) (TypeResolution, error)
}

func (s stubResolver) Resolve(t reflect.Type) (TypeResolution, error) { return s.fn(t) }

func TestBuildSchemaRequiresResolver(t *testing.T) {
	_, err := BuildSchema(reflect.TypeOf(int32(0)), nil)
	assert.Error(t, err)
}

func TestBuildSchemaFromPrimitiveResolution(t *testing.T) {
	resolver := stubResolver{fn: func(t reflect.Type) (TypeResolution, error) {
		return PrimitiveResolution{HostType: t, Kind: PrimitiveInt}, nil
	}}
	s, err := BuildSchema(reflect.TypeOf(int32(0)), resolver)
	require.NoError(t, err)
	assert.Equal(t, TypeInt, s.Type())
}

type widget struct {
	Name  string
	Count int32
}

func TestBuildSchemaFromRecordResolution(t *testing.T) {
	resolver := stubResolver{fn: func(t reflect.Type) (TypeResolution, error) {
		switch t {
		case reflect.TypeOf(widget{}):
			return RecordResolution{
				HostType: t,
				Fields: []RecordFieldResolution{
					{Name: ExactMatcher("name"), Member: "Name", MemberType: reflect.TypeOf("")},
					{Name: ExactMatcher("count"), Member: "Count", MemberType: reflect.TypeOf(int32(0))},
				},
			}, nil
		case reflect.TypeOf(""):
			return PrimitiveResolution{HostType: t, Kind: PrimitiveString}, nil
		case reflect.TypeOf(int32(0)):
			return PrimitiveResolution{HostType: t, Kind: PrimitiveInt}, nil
		}
		return nil, &UnsupportedType{Type: t, Message: "unhandled in test"}
	}}
	s, err := BuildSchema(reflect.TypeOf(widget{}), resolver)
	require.NoError(t, err)
	rs, ok := s.(*RecordSchema)
	require.True(t, ok)
	require.Len(t, rs.Fields(), 2)
	assert.Equal(t, "name", rs.Fields()[0].Name())
	assert.Equal(t, "count", rs.Fields()[1].Name())
}

func TestBuildSchemaRejectsNonExactEnumMatcher(t *testing.T) {
	type color int
	resolver := stubResolver{fn: func(t reflect.Type) (TypeResolution, error) {
		return EnumResolution{
			HostType: t,
			Symbols: []EnumSymbolResolution{
				{Name: matcherFunc(func(s string) bool { return s == "RED" }), Value: reflect.ValueOf(color(0))},
			},
		}, nil
	}}
	_, err := BuildSchema(reflect.TypeOf(color(0)), resolver)
	assert.Error(t, err)
}
