package avro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrimitiveSchemas(t *testing.T) {
	cases := []struct {
		raw  string
		want SchemaType
	}{
		{`"null"`, TypeNull},
		{`"boolean"`, TypeBoolean},
		{`"int"`, TypeInt},
		{`"long"`, TypeLong},
		{`"float"`, TypeFloat},
		{`"double"`, TypeDouble},
		{`"bytes"`, TypeBytes},
		{`"string"`, TypeString},
	}
	for _, c := range cases {
		s, err := ParseSchema(c.raw)
		require.NoError(t, err, c.raw)
		assert.Equal(t, c.want, s.Type(), c.raw)
	}
}

func TestParseArraySchema(t *testing.T) {
	s, err := ParseSchema(`{"type":"array","items":"string"}`)
	require.NoError(t, err)
	as, ok := s.(*ArraySchema)
	require.True(t, ok)
	assert.Equal(t, TypeString, as.Items().Type())
}

func TestParseMapSchema(t *testing.T) {
	s, err := ParseSchema(`{"type":"map","values":"long"}`)
	require.NoError(t, err)
	ms, ok := s.(*MapSchema)
	require.True(t, ok)
	assert.Equal(t, TypeLong, ms.Values().Type())
}

func TestParseUnionSchema(t *testing.T) {
	s, err := ParseSchema(`["null","string"]`)
	require.NoError(t, err)
	us, ok := s.(*UnionSchema)
	require.True(t, ok)
	members := us.Members()
	require.Len(t, members, 2)
	assert.Equal(t, TypeNull, members[0].Type())
	assert.Equal(t, TypeString, members[1].Type())
}

func TestUnionRejectsDuplicateUnnamedMember(t *testing.T) {
	_, err := ParseSchema(`["string","string"]`)
	assert.Error(t, err)
}

func TestParseEnumSchema(t *testing.T) {
	s, err := ParseSchema(`{"type":"enum","name":"Suit","namespace":"cards","symbols":["SPADES","HEARTS"]}`)
	require.NoError(t, err)
	es, ok := s.(*EnumSchema)
	require.True(t, ok)
	assert.Equal(t, "cards.Suit", es.FullName())
	assert.Equal(t, []string{"SPADES", "HEARTS"}, es.Symbols())
}

func TestParseFixedSchema(t *testing.T) {
	s, err := ParseSchema(`{"type":"fixed","name":"MD5","size":16}`)
	require.NoError(t, err)
	fs, ok := s.(*FixedSchema)
	require.True(t, ok)
	assert.Equal(t, 16, fs.Size())
}

func TestParseRecordSchemaAndSelfReference(t *testing.T) {
	raw := `{
		"type": "record",
		"name": "Node",
		"fields": [
			{"name": "value", "type": "long"},
			{"name": "next", "type": ["null", "Node"]}
		]
	}`
	s, err := ParseSchema(raw)
	require.NoError(t, err)
	rs, ok := s.(*RecordSchema)
	require.True(t, ok)
	require.Len(t, rs.Fields(), 2)

	next, ok := rs.FieldByName("next")
	require.True(t, ok)
	us, ok := next.Type().(*UnionSchema)
	require.True(t, ok)
	selfRef, ok := us.Members()[1].(*RecordSchema)
	require.True(t, ok)
	assert.Same(t, rs, selfRef)
}

func TestDottedRecordNameQualifiesUnqualifiedChildReferences(t *testing.T) {
	raw := `{
		"type": "record",
		"name": "com.foo.Bar",
		"fields": [
			{"name": "value", "type": "long"},
			{"name": "baz", "type": {
				"type": "record",
				"name": "Baz",
				"fields": [{"name": "n", "type": "int"}]
			}},
			{"name": "again", "type": "Baz"}
		]
	}`
	s, err := ParseSchema(raw)
	require.NoError(t, err)
	rs, ok := s.(*RecordSchema)
	require.True(t, ok)
	assert.Equal(t, "com.foo", rs.Namespace())

	baz, ok := rs.FieldByName("baz")
	require.True(t, ok)
	bazSchema, ok := baz.Type().(*RecordSchema)
	require.True(t, ok)
	assert.Equal(t, "com.foo.Baz", bazSchema.FullName())

	again, ok := rs.FieldByName("again")
	require.True(t, ok)
	assert.Same(t, bazSchema, again.Type())

	written, err := WriteSchema(s)
	require.NoError(t, err)
	reparsed, err := ParseSchema(string(written))
	require.NoError(t, err)
	rrs, ok := reparsed.(*RecordSchema)
	require.True(t, ok)
	reAgain, ok := rrs.FieldByName("again")
	require.True(t, ok)
	reBazSchema, ok := reAgain.Type().(*RecordSchema)
	require.True(t, ok)
	assert.Equal(t, "com.foo.Baz", reBazSchema.FullName())
}

func TestParseLogicalTypes(t *testing.T) {
	cases := []struct {
		raw  string
		kind SchemaType
	}{
		{`{"type":"int","logicalType":"date"}`, TypeInt},
		{`{"type":"int","logicalType":"time-millis"}`, TypeInt},
		{`{"type":"long","logicalType":"time-micros"}`, TypeLong},
		{`{"type":"long","logicalType":"timestamp-millis"}`, TypeLong},
		{`{"type":"long","logicalType":"timestamp-micros"}`, TypeLong},
		{`{"type":"string","logicalType":"uuid"}`, TypeString},
	}
	for _, c := range cases {
		s, err := ParseSchema(c.raw)
		require.NoError(t, err, c.raw)
		ls, ok := s.(LogicalSchema)
		require.True(t, ok, c.raw)
		assert.NotNil(t, ls.Logical(), c.raw)
		assert.Equal(t, c.kind, s.Type())
	}
}

func TestParseDecimalOnBytes(t *testing.T) {
	s, err := ParseSchema(`{"type":"bytes","logicalType":"decimal","precision":9,"scale":2}`)
	require.NoError(t, err)
	ps, ok := s.(*PrimitiveSchema)
	require.True(t, ok)
	dl, ok := ps.Logical().(*DecimalLogical)
	require.True(t, ok)
	assert.Equal(t, 9, dl.Precision())
	assert.Equal(t, 2, dl.Scale())
}

func TestParseDuration(t *testing.T) {
	s, err := ParseSchema(`{"type":"fixed","name":"dur","size":12,"logicalType":"duration"}`)
	require.NoError(t, err)
	fs, ok := s.(*FixedSchema)
	require.True(t, ok)
	_, ok = fs.Logical().(*DurationLogical)
	assert.True(t, ok)
}

func TestInvalidLogicalPairingRejected(t *testing.T) {
	_, err := ParseSchema(`{"type":"string","logicalType":"date"}`)
	assert.Error(t, err)
}

func TestWriteSchemaRoundTripsThroughParse(t *testing.T) {
	raw := `{"type":"record","name":"ns.Rec","fields":[{"name":"a","type":"int"},{"name":"b","type":["null","string"],"default":null}]}`
	s, err := ParseSchema(raw)
	require.NoError(t, err)
	data, err := WriteSchema(s)
	require.NoError(t, err)
	reparsed, err := ParseSchema(string(data))
	require.NoError(t, err)
	assert.True(t, Equal(s, reparsed))
}

func TestCanonicalFormStripsDocAndAliases(t *testing.T) {
	withDoc := MustParseSchema(`{"type":"record","name":"R","doc":"hello","fields":[{"name":"a","type":"int"}]}`)
	withoutDoc := MustParseSchema(`{"type":"record","name":"R","fields":[{"name":"a","type":"int"}]}`)
	assert.True(t, CanonicalEqual(withDoc, withoutDoc))
	assert.False(t, Equal(withDoc, withoutDoc))
}

func TestFingerprintStableAcrossEquivalentDocuments(t *testing.T) {
	a := MustParseSchema(`{"type":"record","name":"R","fields":[{"name":"a","type":"int"}]}`)
	b := MustParseSchema(`{"type":"record","name":"R","doc":"irrelevant","fields":[{"name":"a","type":"int"}]}`)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestAliasIsUsableAsAReference(t *testing.T) {
	cache := NewCache()
	_, err := ParseSchemaWithCache(`{"type":"record","name":"Widget","aliases":["OldWidget"],"fields":[{"name":"id","type":"long"}]}`, cache, "")
	require.NoError(t, err)
	s, err := ParseSchemaWithCache(`"OldWidget"`, cache, "")
	require.NoError(t, err)
	assert.Equal(t, "Widget", FullName(s))
}
