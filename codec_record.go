package avro

import (
	"fmt"
	"reflect"
)

func matchRecord(ctx *buildContext, schema Schema, t reflect.Type) bool {
	_, ok := schema.(*RecordSchema)
	return ok
}

// buildSurrogate builds a deserializer that advances the reader past one
// field's value without interpreting it, and a serializer that writes
// nothing — used for schema fields the host type has no member for.
func buildSurrogate(ctx *buildContext, schema Schema) (Serializer, Deserializer) {
	ser := func(w *JSONWriter, v reflect.Value) error { return nil }
	deser := func(r *JSONReader) (reflect.Value, error) { return reflect.Value{}, skipValue(r) }
	return ser, deser
}

type fieldBinding struct {
	field  *RecordField
	member string
	ser    Serializer
	deser  Deserializer
}

func buildRecord(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	if t.Kind() == reflect.Ptr {
		elemSer, elemDeser, err := buildRecord(ctx, schema, t.Elem())
		if err != nil {
			return nil, nil, err
		}
		ser := func(w *JSONWriter, v reflect.Value) error {
			if v.IsNil() {
				return &UnsupportedType{Type: t, Message: "record pointer must not be nil; wrap the field in a nullable union instead"}
			}
			return elemSer(w, v.Elem())
		}
		deser := func(r *JSONReader) (reflect.Value, error) {
			val, err := elemDeser(r)
			if err != nil {
				return reflect.Value{}, err
			}
			ptr := reflect.New(t.Elem())
			ptr.Elem().Set(val)
			return ptr, nil
		}
		return ser, deser, nil
	}
	rs := schema.(*RecordSchema)
	key := recursionKey{schemaFP: rs.Fingerprint(), hostType: t}
	if ph, ok := ctx.refs[key]; ok {
		ser := func(w *JSONWriter, v reflect.Value) error { return ph.ser(w, v) }
		deser := func(r *JSONReader) (reflect.Value, error) { return ph.deser(r) }
		return ser, deser, nil
	}
	ph := &recordPlaceholder{}
	ctx.refs[key] = ph
	defer delete(ctx.refs, key)

	res, err := resolveOrDefault(ctx, t)
	if err != nil {
		return nil, nil, err
	}
	rr, ok := res.(RecordResolution)
	if !ok {
		return nil, nil, &UnsupportedType{Type: t, Message: "resolver did not return a RecordResolution"}
	}

	bindings := make([]fieldBinding, 0, len(rs.fields))
	for _, f := range rs.fields {
		var member string
		var memberType reflect.Type
		matched := false
		for _, rf := range rr.Fields {
			if rf.Name.Matches(f.name) {
				member, memberType = rf.Member, rf.MemberType
				matched = true
				break
			}
		}
		if !matched {
			surrSer, surrDeser := buildSurrogate(ctx, f.typ)
			bindings = append(bindings, fieldBinding{field: f, ser: surrSer, deser: surrDeser})
			continue
		}
		fser, fdeser, err := buildCase(ctx, f.typ, memberType)
		if err != nil {
			return nil, nil, err
		}
		bindings = append(bindings, fieldBinding{field: f, member: member, ser: fser, deser: fdeser})
	}

	byName := make(map[string]fieldBinding, len(bindings))
	for _, b := range bindings {
		byName[b.field.name] = b
	}

	useConstructor := t.Kind() != reflect.Struct
	var ctor *Constructor
	if useConstructor {
		for i := range rr.Constructors {
			c := &rr.Constructors[i]
			covers := true
			for _, p := range c.Parameters {
				found := false
				for _, f := range rs.fields {
					if p.Name.Matches(f.name) {
						found = true
						break
					}
				}
				if !found && !p.HasDefault {
					covers = false
					break
				}
			}
			if covers {
				ctor = c
				break
			}
		}
		if ctor == nil {
			return nil, nil, &UnsupportedType{Type: t, Message: "no constructor covers every record field"}
		}
	}

	ser := func(w *JSONWriter, v reflect.Value) error {
		w.StartObject()
		for _, b := range bindings {
			if b.member == "" {
				continue
			}
			w.WriteKey(b.field.name)
			fv := v.FieldByName(b.member)
			if !fv.IsValid() {
				return &UnsupportedType{Type: v.Type(), Message: fmt.Sprintf("no such field %q", b.member)}
			}
			if err := b.ser(w, fv); err != nil {
				return err
			}
		}
		w.EndObject()
		return nil
	}

	deser := func(r *JSONReader) (reflect.Value, error) {
		if err := r.ExpectDelim('{'); err != nil {
			return reflect.Value{}, err
		}
		values := make(map[string]reflect.Value, len(bindings))
		for r.More() {
			key, err := r.ReadString()
			if err != nil {
				return reflect.Value{}, err
			}
			b, ok := byName[key]
			if !ok {
				return reflect.Value{}, &InvalidEncoding{Position: r.Position(), Message: "Unknown record field name."}
			}
			val, err := b.deser(r)
			if err != nil {
				return reflect.Value{}, err
			}
			if b.member != "" {
				values[key] = val
			}
		}
		if err := r.ExpectDelim('}'); err != nil {
			return reflect.Value{}, err
		}

		if useConstructor {
			args := make([]reflect.Value, len(ctor.Parameters))
			for i, p := range ctor.Parameters {
				v, found := reflect.Value{}, false
				for name, val := range values {
					if p.Name.Matches(name) {
						v, found = val, true
						break
					}
				}
				if !found {
					if p.HasDefault {
						v = p.DefaultValue
					} else {
						v = reflect.Zero(p.ParameterType)
					}
				}
				args[i] = v
			}
			return ctor.New(args), nil
		}

		out := reflect.New(t).Elem()
		for name, v := range values {
			out.FieldByName(byName[name].member).Set(v)
		}
		return out, nil
	}

	ph.ser, ph.deser = ser, deser
	return ser, deser, nil
}
