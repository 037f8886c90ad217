package avro

import (
	"reflect"
	"strings"
)

// schemaBuildContext tracks records already started, so a self- or
// mutually-referential struct graph terminates instead of recursing
// forever: the RecordSchema is registered before its fields are built,
// mirroring the reader's insert-before-fields rule in readRecord.
type schemaBuildContext struct {
	resolver TypeResolver
	records  map[reflect.Type]*RecordSchema
}

// BuildSchema produces the default Avro schema for a host Go type,
// consulting resolver for the (Go type -> Avro shape) mapping. This is
// the builder's inverse: Build binds a known schema to a host type,
// BuildSchema derives a schema FROM the host type when no schema
// document already exists for it.
func BuildSchema(t reflect.Type, resolver TypeResolver) (Schema, error) {
	if resolver == nil {
		return nil, &UnsupportedType{Type: t, Message: "a TypeResolver is required to build a schema from a host type"}
	}
	ctx := &schemaBuildContext{resolver: resolver, records: make(map[reflect.Type]*RecordSchema)}
	return buildSchemaFor(ctx, t)
}

func buildSchemaFor(ctx *schemaBuildContext, t reflect.Type) (Schema, error) {
	if existing, ok := ctx.records[t]; ok {
		return existing, nil
	}
	res, err := ctx.resolver.Resolve(t)
	if err != nil {
		return nil, err
	}
	switch r := res.(type) {
	case PrimitiveResolution:
		return primitiveSchemaFor(r.Kind)
	case DecimalResolution:
		p, err := NewPrimitiveSchema(TypeBytes)
		if err != nil {
			return nil, err
		}
		// Precision/scale cannot be recovered from a bare Go type; 38/18
		// mirrors the range most decimal libraries default to and is
		// meant to be widened explicitly by calling code, not inferred.
		lt, err := NewDecimalLogical(38, 18)
		if err != nil {
			return nil, err
		}
		if err := p.SetLogicalType(lt); err != nil {
			return nil, err
		}
		return p, nil
	case DurationResolution:
		f, err := NewFixedSchema(typeFullName(r.HostType), 12)
		if err != nil {
			return nil, err
		}
		if err := f.SetLogicalType(&DurationLogical{}); err != nil {
			return nil, err
		}
		return f, nil
	case TimestampResolution:
		p, err := NewPrimitiveSchema(TypeLong)
		if err != nil {
			return nil, err
		}
		if err := p.SetLogicalType(&TimestampMicrosLogical{}); err != nil {
			return nil, err
		}
		return p, nil
	case EnumResolution:
		return buildEnumSchema(ctx, r)
	case ArrayResolution:
		items, err := buildSchemaFor(ctx, r.ItemType)
		if err != nil {
			return nil, err
		}
		return NewArraySchema(items)
	case MapResolution:
		if r.KeyType.Kind() != reflect.String {
			return nil, &UnsupportedType{Type: r.HostType, Message: "map schema requires string keys"}
		}
		values, err := buildSchemaFor(ctx, r.ValueType)
		if err != nil {
			return nil, err
		}
		return NewMapSchema(values)
	case RecordResolution:
		return buildRecordSchema(ctx, r)
	default:
		return nil, &UnsupportedType{Type: t, Message: "resolver returned an unrecognized TypeResolution"}
	}
}

func primitiveSchemaFor(kind PrimitiveKind) (Schema, error) {
	switch kind {
	case PrimitiveNull:
		return NewPrimitiveSchema(TypeNull)
	case PrimitiveBoolean:
		return NewPrimitiveSchema(TypeBoolean)
	case PrimitiveInt:
		return NewPrimitiveSchema(TypeInt)
	case PrimitiveLong:
		return NewPrimitiveSchema(TypeLong)
	case PrimitiveFloat:
		return NewPrimitiveSchema(TypeFloat)
	case PrimitiveDouble:
		return NewPrimitiveSchema(TypeDouble)
	case PrimitiveBytes:
		return NewPrimitiveSchema(TypeBytes)
	case PrimitiveString:
		return NewPrimitiveSchema(TypeString)
	}
	return nil, &InvalidSchema{Message: "unrecognized PrimitiveKind"}
}

func buildEnumSchema(ctx *schemaBuildContext, r EnumResolution) (Schema, error) {
	full := typeFullName(r.HostType)
	symbols := make([]string, 0, len(r.Symbols))
	for _, s := range r.Symbols {
		em, ok := s.Name.(exactMatcher)
		if !ok {
			return nil, &UnsupportedType{Type: r.HostType, Message: "enum symbol matcher must be an ExactMatcher to build a schema from this type"}
		}
		symbols = append(symbols, string(em))
	}
	return NewEnumSchema(full, symbols)
}

func buildRecordSchema(ctx *schemaBuildContext, r RecordResolution) (Schema, error) {
	full := typeFullName(r.HostType)
	record, err := NewRecordSchema(full)
	if err != nil {
		return nil, err
	}
	ctx.records[r.HostType] = record
	for _, rf := range r.Fields {
		em, ok := rf.Name.(exactMatcher)
		if !ok {
			return nil, &UnsupportedType{Type: r.HostType, Message: "record field matcher must be an ExactMatcher to build a schema from this type"}
		}
		fieldType, err := buildSchemaFor(ctx, rf.MemberType)
		if err != nil {
			return nil, err
		}
		field, err := NewRecordField(string(em), fieldType)
		if err != nil {
			return nil, err
		}
		if err := record.AddField(field); err != nil {
			return nil, err
		}
	}
	return record, nil
}

func typeFullName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := sanitizeSimpleName(t.Name())
	if name == "" {
		name = "anonymous"
	}
	pkg := sanitizeSimpleName(lastPathSegment(t.PkgPath()))
	if pkg == "" {
		return name
	}
	return qualify(name, pkg)
}

func lastPathSegment(pkgPath string) string {
	idx := strings.LastIndex(pkgPath, "/")
	if idx < 0 {
		return pkgPath
	}
	return pkgPath[idx+1:]
}

// sanitizeSimpleName maps a Go identifier-ish string (a package directory
// name may contain hyphens or dots a module path allows but the Avro name
// grammar does not) onto a valid Avro simple name by replacing every
// disallowed rune with an underscore and prefixing a leading digit.
func sanitizeSimpleName(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
