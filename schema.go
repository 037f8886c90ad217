package avro

import (
	"fmt"

	"github.com/ch-robinson/dotnet-avro-sub002/internal/fingerprint"
)

// SchemaType identifies the shape of a Schema node.
type SchemaType int

const (
	TypeNull SchemaType = iota
	TypeBoolean
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeBytes
	TypeString
	TypeArray
	TypeMap
	TypeUnion
	TypeEnum
	TypeFixed
	TypeRecord
)

func (t SchemaType) String() string { return t.token() }

func (t SchemaType) token() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeBytes:
		return "bytes"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeMap:
		return "map"
	case TypeUnion:
		return "union"
	case TypeEnum:
		return "enum"
	case TypeFixed:
		return "fixed"
	case TypeRecord:
		return "record"
	}
	return "unknown"
}

// Schema is implemented by every node in a parsed or hand-built Avro
// schema tree.
type Schema interface {
	Type() SchemaType
	Fingerprint() uint64
}

// NamedSchema is implemented by Enum, Fixed, and Record schemas, the three
// kinds that carry a name, namespace, doc, and alias set.
type NamedSchema interface {
	Schema
	Name() string
	Namespace() string
	FullName() string
	Aliases() []string
	Doc() string
}

// LogicalSchema is implemented by schema nodes that may carry a
// LogicalType annotation (primitives and Fixed).
type LogicalSchema interface {
	Schema
	Logical() LogicalType
}

// FullName returns a schema's fully qualified name for named schemas, or
// its type token for unnamed ones. This is the "named-schema identity"
// helper the teacher exposed as a free function.
func FullName(s Schema) string {
	if ns, ok := s.(NamedSchema); ok {
		return ns.FullName()
	}
	return s.Type().token()
}

func isNamedSchema(s Schema) bool {
	_, ok := s.(NamedSchema)
	return ok
}

// fingerprintCache lazily computes and memoizes a schema node's
// Fingerprint(), the way the teacher's hashable embed did, but backed by
// internal/fingerprint so the hashing logic has one home.
type fingerprintCache struct {
	hash  uint64
	valid bool
}

func (c *fingerprintCache) invalidate() {
	c.valid = false
}

func (c *fingerprintCache) get(s Schema) uint64 {
	if c.valid {
		return c.hash
	}
	data, err := WriteCanonical(s)
	if err != nil {
		panic(fmt.Sprintf("avro: failed to compute canonical form for fingerprint: %v", err))
	}
	c.hash = fingerprint.CRC64(data)
	c.valid = true
	return c.hash
}

// PrimitiveSchema represents one of the eight Avro primitive kinds,
// optionally annotated with a paired LogicalType (Int/date, Int/time-millis,
// Long/time-micros, Long/timestamp-millis, Long/timestamp-micros,
// Bytes/decimal, String/uuid).
type PrimitiveSchema struct {
	kind    SchemaType
	logical LogicalType
	props   *Properties
	fp      fingerprintCache
}

func NewPrimitiveSchema(kind SchemaType) (*PrimitiveSchema, error) {
	switch kind {
	case TypeNull, TypeBoolean, TypeInt, TypeLong, TypeFloat, TypeDouble, TypeBytes, TypeString:
	default:
		return nil, &InvalidSchema{Message: fmt.Sprintf("%s is not a primitive schema kind", kind)}
	}
	return &PrimitiveSchema{kind: kind, props: newProperties()}, nil
}

func (p *PrimitiveSchema) Type() SchemaType        { return p.kind }
func (p *PrimitiveSchema) Fingerprint() uint64     { return p.fp.get(p) }
func (p *PrimitiveSchema) Logical() LogicalType    { return p.logical }
func (p *PrimitiveSchema) Properties() *Properties { return p.props }

func (p *PrimitiveSchema) SetLogicalType(lt LogicalType) error {
	if lt != nil {
		if err := validateLogicalPairing(lt, p.kind, 0); err != nil {
			return err
		}
	}
	p.logical = lt
	p.fp.invalidate()
	return nil
}

// ArraySchema represents an Avro array of a single item schema.
type ArraySchema struct {
	items Schema
	props *Properties
	fp    fingerprintCache
}

func NewArraySchema(items Schema) (*ArraySchema, error) {
	if items == nil {
		return nil, &InvalidSchema{Message: "array item schema must not be nil"}
	}
	return &ArraySchema{items: items, props: newProperties()}, nil
}

func (a *ArraySchema) Type() SchemaType        { return TypeArray }
func (a *ArraySchema) Fingerprint() uint64     { return a.fp.get(a) }
func (a *ArraySchema) Items() Schema           { return a.items }
func (a *ArraySchema) Properties() *Properties { return a.props }

func (a *ArraySchema) SetItems(items Schema) error {
	if items == nil {
		return &InvalidSchema{Message: "array item schema must not be nil"}
	}
	a.items = items
	a.fp.invalidate()
	return nil
}

// MapSchema represents an Avro map with string keys and a single value
// schema.
type MapSchema struct {
	values Schema
	props  *Properties
	fp     fingerprintCache
}

func NewMapSchema(values Schema) (*MapSchema, error) {
	if values == nil {
		return nil, &InvalidSchema{Message: "map value schema must not be nil"}
	}
	return &MapSchema{values: values, props: newProperties()}, nil
}

func (m *MapSchema) Type() SchemaType        { return TypeMap }
func (m *MapSchema) Fingerprint() uint64     { return m.fp.get(m) }
func (m *MapSchema) Values() Schema          { return m.values }
func (m *MapSchema) Properties() *Properties { return m.props }

func (m *MapSchema) SetValues(values Schema) error {
	if values == nil {
		return &InvalidSchema{Message: "map value schema must not be nil"}
	}
	m.values = values
	m.fp.invalidate()
	return nil
}

// UnionSchema represents an Avro union of distinct member schemas: at most
// one member of each unnamed kind, any number of distinct named members,
// and never another union directly.
type UnionSchema struct {
	members []Schema
	fp      fingerprintCache
}

func NewUnionSchema(members ...Schema) (*UnionSchema, error) {
	u := &UnionSchema{}
	for _, m := range members {
		if err := u.addMember(m); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (u *UnionSchema) Type() SchemaType    { return TypeUnion }
func (u *UnionSchema) Fingerprint() uint64 { return u.fp.get(u) }
func (u *UnionSchema) Members() []Schema   { return append([]Schema(nil), u.members...) }

func (u *UnionSchema) AddMember(m Schema) error {
	if err := u.addMember(m); err != nil {
		return err
	}
	u.fp.invalidate()
	return nil
}

func (u *UnionSchema) addMember(m Schema) error {
	if m == nil {
		return &InvalidSchema{Message: "union member must not be nil"}
	}
	if _, ok := m.(*UnionSchema); ok {
		return &InvalidSchema{Message: "a union may not directly contain another union"}
	}
	if isNamedSchema(m) {
		full := FullName(m)
		for _, existing := range u.members {
			if isNamedSchema(existing) && FullName(existing) == full {
				return &InvalidSchema{Message: fmt.Sprintf("union already contains a member named %s", full)}
			}
		}
	} else {
		for _, existing := range u.members {
			if !isNamedSchema(existing) && existing.Type() == m.Type() {
				return &InvalidSchema{Message: fmt.Sprintf("union already contains a member of kind %s", m.Type())}
			}
		}
	}
	u.members = append(u.members, m)
	return nil
}

// EnumSchema represents a named enumeration of distinct symbol names.
type EnumSchema struct {
	nameInfo
	symbols []string
	props   *Properties
	fp      fingerprintCache
}

func NewEnumSchema(fullName string, symbols []string) (*EnumSchema, error) {
	ni, err := newNameInfo(fullName)
	if err != nil {
		return nil, err
	}
	e := &EnumSchema{nameInfo: ni, props: newProperties()}
	for _, s := range symbols {
		if err := e.AddSymbol(s); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *EnumSchema) Type() SchemaType        { return TypeEnum }
func (e *EnumSchema) Fingerprint() uint64     { return e.fp.get(e) }
func (e *EnumSchema) Symbols() []string       { return append([]string(nil), e.symbols...) }
func (e *EnumSchema) Properties() *Properties { return e.props }

func (e *EnumSchema) AddSymbol(sym string) error {
	if err := validateSimpleName(sym); err != nil {
		return &InvalidSymbol{Symbol: sym}
	}
	for _, s := range e.symbols {
		if s == sym {
			return nil
		}
	}
	e.symbols = append(e.symbols, sym)
	e.fp.invalidate()
	return nil
}

// FixedSchema represents a named fixed-size byte sequence, optionally
// annotated with Decimal (size >= 1) or Duration (size == 12).
type FixedSchema struct {
	nameInfo
	size    int
	logical LogicalType
	props   *Properties
	fp      fingerprintCache
}

func NewFixedSchema(fullName string, size int) (*FixedSchema, error) {
	if size < 0 {
		return nil, &InvalidSchema{Message: "fixed size must be >= 0"}
	}
	ni, err := newNameInfo(fullName)
	if err != nil {
		return nil, err
	}
	return &FixedSchema{nameInfo: ni, size: size, props: newProperties()}, nil
}

func (f *FixedSchema) Type() SchemaType        { return TypeFixed }
func (f *FixedSchema) Fingerprint() uint64     { return f.fp.get(f) }
func (f *FixedSchema) Size() int               { return f.size }
func (f *FixedSchema) Logical() LogicalType    { return f.logical }
func (f *FixedSchema) Properties() *Properties { return f.props }

func (f *FixedSchema) SetSize(size int) error {
	if size < 0 {
		return &InvalidSchema{Message: "fixed size must be >= 0"}
	}
	if f.logical != nil {
		if err := validateLogicalPairing(f.logical, TypeFixed, size); err != nil {
			return err
		}
	}
	f.size = size
	f.fp.invalidate()
	return nil
}

func (f *FixedSchema) SetLogicalType(lt LogicalType) error {
	if lt != nil {
		if err := validateLogicalPairing(lt, TypeFixed, f.size); err != nil {
			return err
		}
	}
	f.logical = lt
	f.fp.invalidate()
	return nil
}

// ObjectDefaultValue wraps a record field's raw JSON default alongside the
// schema it should be interpreted against (the field's own schema, or the
// first member of that schema when it is a union).
type ObjectDefaultValue struct {
	raw    []byte
	schema Schema
}

func (d *ObjectDefaultValue) Raw() []byte    { return d.raw }
func (d *ObjectDefaultValue) Schema() Schema { return d.schema }

// RecordField is one field of a RecordSchema.
type RecordField struct {
	name       string
	typ        Schema
	doc        string
	aliases    []string
	hasDefault bool
	def        *ObjectDefaultValue
	props      *Properties
}

func NewRecordField(name string, typ Schema) (*RecordField, error) {
	if err := validateSimpleName(name); err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, &InvalidSchema{Message: "record field type must not be nil"}
	}
	return &RecordField{name: name, typ: typ, props: newProperties()}, nil
}

func (f *RecordField) Name() string            { return f.name }
func (f *RecordField) Type() Schema            { return f.typ }
func (f *RecordField) Doc() string             { return f.doc }
func (f *RecordField) SetDoc(doc string)       { f.doc = doc }
func (f *RecordField) Aliases() []string       { return append([]string(nil), f.aliases...) }
func (f *RecordField) Properties() *Properties { return f.props }

func (f *RecordField) AddAlias(alias string) error {
	if err := validateFullName(alias); err != nil {
		return err
	}
	for _, a := range f.aliases {
		if a == alias {
			return nil
		}
	}
	f.aliases = append(f.aliases, alias)
	return nil
}

func (f *RecordField) SetDefault(raw []byte) {
	f.hasDefault = true
	effective := f.typ
	if u, ok := f.typ.(*UnionSchema); ok && len(u.members) > 0 {
		effective = u.members[0]
	}
	f.def = &ObjectDefaultValue{raw: raw, schema: effective}
}

func (f *RecordField) Default() (*ObjectDefaultValue, bool) { return f.def, f.hasDefault }

// RecordSchema represents a named record of distinct-by-name fields.
type RecordSchema struct {
	nameInfo
	fields []*RecordField
	props  *Properties
	fp     fingerprintCache
}

func NewRecordSchema(fullName string) (*RecordSchema, error) {
	ni, err := newNameInfo(fullName)
	if err != nil {
		return nil, err
	}
	return &RecordSchema{nameInfo: ni, props: newProperties()}, nil
}

func (r *RecordSchema) Type() SchemaType        { return TypeRecord }
func (r *RecordSchema) Fingerprint() uint64     { return r.fp.get(r) }
func (r *RecordSchema) Fields() []*RecordField  { return append([]*RecordField(nil), r.fields...) }
func (r *RecordSchema) Properties() *Properties { return r.props }

func (r *RecordSchema) FieldByName(name string) (*RecordField, bool) {
	for _, f := range r.fields {
		if f.name == name {
			return f, true
		}
	}
	return nil, false
}

func (r *RecordSchema) AddField(f *RecordField) error {
	if f == nil {
		return &InvalidSchema{Message: "record field must not be nil"}
	}
	for _, existing := range r.fields {
		if existing.name == f.name {
			return nil
		}
	}
	r.fields = append(r.fields, f)
	r.fp.invalidate()
	return nil
}
