package avro

import "reflect"

// TypeResolver is the external seam between a schema and a host language's
// reflection: given a Go type that a codec or builder needs to bind against
// a schema node, it reports how that type's values map onto Avro's wire
// model. The shipped implementation lives in resolvers/reflect; callers may
// supply their own to bind custom containers or naming conventions.
type TypeResolver interface {
	Resolve(t reflect.Type) (TypeResolution, error)
}

// TypeResolution is the sealed set of shapes Resolve may return: one of
// PrimitiveResolution, EnumResolution, ArrayResolution, MapResolution,
// RecordResolution, DurationResolution, TimestampResolution, or
// DecimalResolution.
type TypeResolution interface {
	resolvedType() reflect.Type
}

// PrimitiveKind enumerates the host-level primitive shapes a resolver may
// report, independent of Avro's own primitive kinds (a resolver may, for
// instance, report PrimitiveInt for both an int32 and a Go int constrained to
// 32 bits).
type PrimitiveKind int

const (
	PrimitiveNull PrimitiveKind = iota
	PrimitiveBoolean
	PrimitiveInt
	PrimitiveLong
	PrimitiveFloat
	PrimitiveDouble
	PrimitiveBytes
	PrimitiveString
)

// PrimitiveResolution binds a host type directly to one of Avro's eight
// primitive kinds.
type PrimitiveResolution struct {
	HostType reflect.Type
	Kind     PrimitiveKind
}

func (r PrimitiveResolution) resolvedType() reflect.Type { return r.HostType }

// NameMatcher decides whether an Avro-side name (an enum symbol or record
// field name) corresponds to a host-side member. ExactMatcher is the
// default; callers may supply case-insensitive or convention-based
// matchers.
type NameMatcher interface {
	Matches(avroName string) bool
}

type matcherFunc func(string) bool

func (f matcherFunc) Matches(avroName string) bool { return f(avroName) }

// exactMatcher is ExactMatcher's concrete type. Unlike an arbitrary
// matcherFunc, its literal name can be recovered, which the schema
// builder (builder.go) needs to emit concrete enum symbols and field
// names — it cannot invert a bare predicate back into a name.
type exactMatcher string

func (m exactMatcher) Matches(avroName string) bool { return string(m) == avroName }

// ExactMatcher matches only the literal name given.
func ExactMatcher(name string) NameMatcher { return exactMatcher(name) }

// EnumSymbolResolution pairs one Avro symbol with the host value (typically
// a named constant) that represents it.
type EnumSymbolResolution struct {
	Name  NameMatcher
	Value reflect.Value
}

// EnumResolution binds a host type (usually a named string or int type) to
// an Avro enum's symbol set.
type EnumResolution struct {
	HostType reflect.Type
	Symbols  []EnumSymbolResolution
}

func (r EnumResolution) resolvedType() reflect.Type { return r.HostType }

// ConstructorParameter describes one positional parameter of a Constructor,
// matched against a record field or array/map element by Name.
type ConstructorParameter struct {
	Name         NameMatcher
	ParameterType reflect.Type
	HasDefault   bool
	DefaultValue reflect.Value
}

// Constructor lets a resolver hand the builder a way to assemble an
// immutable host value (as opposed to settable struct fields): New is
// called with one reflect.Value per Parameters entry, in order.
type Constructor struct {
	Parameters []ConstructorParameter
	New        func([]reflect.Value) reflect.Value
}

// ArrayResolution binds a host type to an Avro array: either a settable
// slice (ItemType describes its element) or one built via Constructors.
type ArrayResolution struct {
	HostType     reflect.Type
	ItemType     reflect.Type
	Constructors []Constructor
}

func (r ArrayResolution) resolvedType() reflect.Type { return r.HostType }

// MapResolution binds a host type to an Avro map, whose keys are always
// Avro strings.
type MapResolution struct {
	HostType     reflect.Type
	KeyType      reflect.Type
	ValueType    reflect.Type
	Constructors []Constructor
}

func (r MapResolution) resolvedType() reflect.Type { return r.HostType }

// RecordFieldResolution binds one Avro record field to a settable host
// struct member.
type RecordFieldResolution struct {
	Name       NameMatcher
	Member     string
	MemberType reflect.Type
}

// RecordResolution binds a host type to an Avro record, either via
// settable Fields or via Constructors for immutable host types.
type RecordResolution struct {
	HostType     reflect.Type
	Fields       []RecordFieldResolution
	Constructors []Constructor
}

func (r RecordResolution) resolvedType() reflect.Type { return r.HostType }

// DurationResolution binds a host type (conventionally time.Duration) to
// Avro's fixed(12)/duration logical type.
type DurationResolution struct{ HostType reflect.Type }

func (r DurationResolution) resolvedType() reflect.Type { return r.HostType }

// TimestampResolution binds a host type (conventionally time.Time) to the
// date/timestamp-millis/timestamp-micros logical types; which one applies
// is determined by the schema side, not the resolution. (time-millis and
// time-micros bind to time.Duration instead.)
type TimestampResolution struct{ HostType reflect.Type }

func (r TimestampResolution) resolvedType() reflect.Type { return r.HostType }

// DecimalResolution binds a host type (conventionally *big.Rat) to Avro's
// decimal logical type.
type DecimalResolution struct{ HostType reflect.Type }

func (r DecimalResolution) resolvedType() reflect.Type { return r.HostType }

// RecordTypeLookup is an adjunct a TypeResolver may also implement so the
// codec builder can pick a concrete host type for a named record appearing
// as a union member, where naturalHostType alone has nothing to go on.
type RecordTypeLookup interface {
	HostTypeForRecord(fullName string) (reflect.Type, bool)
}
