package avro

import (
	"reflect"

	json "github.com/goccy/go-json"
)

func matchUnion(ctx *buildContext, schema Schema, t reflect.Type) bool {
	_, ok := schema.(*UnionSchema)
	return ok
}

type unionChild struct {
	discriminator string
	hostType      reflect.Type
	ser           Serializer
	deser         Deserializer
	isNull        bool
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	}
	return false
}

func canRepresentNothing(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return true
	}
	return false
}

// naturalHostType picks the Go type a union member should bind to when the
// union's own declared host type is an interface (so every member must be
// dispatched to a distinct concrete type at runtime). A concrete,
// non-interface union host type binds every member to that same type
// instead, for the common case of a union collapsed onto one Go type by
// the caller.
func naturalHostType(ctx *buildContext, schema Schema, unionHostType reflect.Type) (reflect.Type, error) {
	if unionHostType.Kind() != reflect.Interface {
		return unionHostType, nil
	}
	switch s := schema.(type) {
	case *PrimitiveSchema:
		if s.logical != nil {
			if nt := logicalNaturalType(s.logical); nt != nil {
				return nt, nil
			}
		}
		switch s.kind {
		case TypeNull:
			return unionHostType, nil
		case TypeBoolean:
			return reflect.TypeOf(false), nil
		case TypeInt:
			return reflect.TypeOf(int32(0)), nil
		case TypeLong:
			return reflect.TypeOf(int64(0)), nil
		case TypeFloat:
			return reflect.TypeOf(float32(0)), nil
		case TypeDouble:
			return reflect.TypeOf(float64(0)), nil
		case TypeBytes:
			return reflect.TypeOf([]byte(nil)), nil
		case TypeString:
			return reflect.TypeOf(""), nil
		}
	case *FixedSchema:
		if s.logical != nil {
			if nt := logicalNaturalType(s.logical); nt != nil {
				return nt, nil
			}
		}
		return reflect.ArrayOf(s.size, reflect.TypeOf(byte(0))), nil
	case *ArraySchema:
		anyType := reflect.TypeOf((*interface{})(nil)).Elem()
		itemType, err := naturalHostType(ctx, s.items, anyType)
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(itemType), nil
	case *MapSchema:
		anyType := reflect.TypeOf((*interface{})(nil)).Elem()
		valType, err := naturalHostType(ctx, s.values, anyType)
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(reflect.TypeOf(""), valType), nil
	case *EnumSchema:
		return reflect.TypeOf(""), nil
	case *RecordSchema:
		if lookup, ok := ctx.resolver.(RecordTypeLookup); ok {
			if ht, found := lookup.HostTypeForRecord(FullName(s)); found {
				return ht, nil
			}
		}
		return nil, &UnsupportedType{Type: unionHostType, Message: "no host type registered for record " + FullName(s) + " inside a union"}
	}
	return nil, &UnsupportedType{Type: unionHostType, Message: "cannot derive a natural host type for union member " + FullName(schema)}
}

func buildUnion(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	us := schema.(*UnionSchema)
	children := make([]unionChild, 0, len(us.members))
	var nullChild *unionChild
	for _, m := range us.members {
		ht, err := naturalHostType(ctx, m, t)
		if err != nil {
			return nil, nil, err
		}
		ser, deser, err := buildCase(ctx, m, ht)
		if err != nil {
			return nil, nil, err
		}
		c := unionChild{discriminator: FullName(m), hostType: ht, ser: ser, deser: deser, isNull: m.Type() == TypeNull}
		children = append(children, c)
		if c.isNull {
			nullChild = &children[len(children)-1]
		}
	}
	if nullChild == nil && canRepresentNothing(t) {
		ctx.log.Warn("union", "host type %s can represent nothing but union has no null member", t)
	}
	if nullChild != nil && !canRepresentNothing(t) {
		var valueType reflect.Type
		for _, c := range children {
			if !c.isNull {
				valueType = c.hostType
				break
			}
		}
		return nil, nil, &UnsupportedType{Type: valueType, Message: "union includes null but host type " + t.String() + " cannot represent nothing; bind it to a pointer, interface, slice, or map instead"}
	}

	ser := func(w *JSONWriter, v reflect.Value) error {
		if !v.IsValid() || isNilValue(v) {
			if nullChild == nil {
				return &UnsupportedType{Type: t, Message: "union has no null member but value is nil"}
			}
			w.WriteNull()
			return nil
		}
		concrete := v
		if concrete.Kind() == reflect.Interface {
			concrete = concrete.Elem()
		}
		for _, c := range children {
			if c.isNull {
				continue
			}
			if concrete.Type().AssignableTo(c.hostType) {
				w.StartObject()
				w.WriteKey(c.discriminator)
				if err := c.ser(w, concrete); err != nil {
					return err
				}
				w.EndObject()
				return nil
			}
		}
		return &UnsupportedType{Type: concrete.Type(), Message: "value does not match any member of union"}
	}

	deser := func(r *JSONReader) (reflect.Value, error) {
		tok, err := r.Token()
		if err != nil {
			return reflect.Value{}, err
		}
		if tok == nil {
			if nullChild == nil {
				return reflect.Value{}, &InvalidEncoding{Position: r.Position(), Message: "union does not admit null"}
			}
			return reflect.Zero(t), nil
		}
		d, ok := tok.(json.Delim)
		if !ok || rune(d) != '{' {
			return reflect.Value{}, &InvalidEncoding{Position: r.Position(), Message: "expected a union wrapper object"}
		}
		key, err := r.ReadString()
		if err != nil {
			return reflect.Value{}, err
		}
		for _, c := range children {
			if c.isNull || c.discriminator != key {
				continue
			}
			val, err := c.deser(r)
			if err != nil {
				return reflect.Value{}, err
			}
			if err := r.ExpectDelim('}'); err != nil {
				return reflect.Value{}, err
			}
			if t.Kind() == reflect.Interface {
				return val, nil
			}
			if val.Type().AssignableTo(t) {
				return val, nil
			}
			return val.Convert(t), nil
		}
		return reflect.Value{}, &InvalidEncoding{Position: r.Position(), Message: "Unknown union member."}
	}
	return ser, deser, nil
}
