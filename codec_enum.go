package avro

import "reflect"

func matchEnum(ctx *buildContext, schema Schema, t reflect.Type) bool {
	_, ok := schema.(*EnumSchema)
	return ok
}

func buildEnum(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	es := schema.(*EnumSchema)

	if t.Kind() == reflect.String {
		valid := func(s string) bool {
			for _, sym := range es.symbols {
				if sym == s {
					return true
				}
			}
			return false
		}
		ser := func(w *JSONWriter, v reflect.Value) error {
			s := v.String()
			if !valid(s) {
				return &InvalidEncoding{Message: "value " + s + " is not a symbol of enum " + FullName(es)}
			}
			w.WriteString(s)
			return nil
		}
		deser := func(r *JSONReader) (reflect.Value, error) {
			s, err := r.ReadString()
			if err != nil {
				return reflect.Value{}, err
			}
			if !valid(s) {
				return reflect.Value{}, &InvalidEncoding{Position: r.Position(), Message: "unknown symbol " + s + " for enum " + FullName(es)}
			}
			return reflect.ValueOf(s).Convert(t), nil
		}
		return ser, deser, nil
	}

	if ctx.resolver == nil {
		return nil, nil, &UnsupportedType{Type: t, Message: "enum requires a TypeResolver for non-string host types"}
	}
	res, err := ctx.resolver.Resolve(t)
	if err != nil {
		return nil, nil, err
	}
	er, ok := res.(EnumResolution)
	if !ok {
		return nil, nil, &UnsupportedType{Type: t, Message: "resolver did not return an EnumResolution"}
	}
	bySymbol := make(map[string]reflect.Value, len(es.symbols))
	for _, sym := range es.symbols {
		found := false
		for _, esym := range er.Symbols {
			if esym.Name.Matches(sym) {
				bySymbol[sym] = esym.Value
				found = true
				break
			}
		}
		if !found {
			return nil, nil, &UnsupportedType{Type: t, Message: "no host value resolved for enum symbol " + sym}
		}
	}

	ser := func(w *JSONWriter, v reflect.Value) error {
		for sym, val := range bySymbol {
			if val.Interface() == v.Interface() {
				w.WriteString(sym)
				return nil
			}
		}
		return &UnsupportedType{Type: t, Message: "value does not correspond to any symbol of enum " + FullName(es)}
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		s, err := r.ReadString()
		if err != nil {
			return reflect.Value{}, err
		}
		v, ok := bySymbol[s]
		if !ok {
			return reflect.Value{}, &InvalidEncoding{Position: r.Position(), Message: "unknown symbol " + s + " for enum " + FullName(es)}
		}
		return v, nil
	}
	return ser, deser, nil
}
