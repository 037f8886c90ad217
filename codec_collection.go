package avro

import "reflect"

func matchArray(ctx *buildContext, schema Schema, t reflect.Type) bool {
	_, ok := schema.(*ArraySchema)
	return ok
}

func buildArray(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	as := schema.(*ArraySchema)
	res, err := resolveOrDefault(ctx, t)
	if err != nil {
		return nil, nil, err
	}
	ar, ok := res.(ArrayResolution)
	if !ok {
		return nil, nil, &UnsupportedType{Type: t, Message: "host type is not array-like"}
	}
	if ar.HostType.Kind() != reflect.Slice && len(ar.Constructors) == 0 {
		return nil, nil, &UnsupportedType{Type: t, Message: "array host type is neither a slice nor built from a constructor"}
	}
	itemSer, itemDeser, err := buildCase(ctx, as.items, ar.ItemType)
	if err != nil {
		return nil, nil, err
	}

	ser := func(w *JSONWriter, v reflect.Value) error {
		w.StartArray()
		for i := 0; i < v.Len(); i++ {
			if err := itemSer(w, v.Index(i)); err != nil {
				return err
			}
		}
		w.EndArray()
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		if err := r.ExpectDelim('['); err != nil {
			return reflect.Value{}, err
		}
		sliceType := reflect.SliceOf(ar.ItemType)
		out := reflect.MakeSlice(sliceType, 0, 0)
		for r.More() {
			item, err := itemDeser(r)
			if err != nil {
				return reflect.Value{}, err
			}
			out = reflect.Append(out, item)
		}
		if err := r.ExpectDelim(']'); err != nil {
			return reflect.Value{}, err
		}
		if ar.HostType.Kind() == reflect.Slice {
			return out, nil
		}
		ctor := ar.Constructors[0]
		if len(ctor.Parameters) != 1 {
			return reflect.Value{}, &UnsupportedType{Type: ar.HostType, Message: "array constructor must take exactly one parameter"}
		}
		return ctor.New([]reflect.Value{out}), nil
	}
	return ser, deser, nil
}

func matchMap(ctx *buildContext, schema Schema, t reflect.Type) bool {
	_, ok := schema.(*MapSchema)
	return ok
}

func buildMap(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	ms := schema.(*MapSchema)
	res, err := resolveOrDefault(ctx, t)
	if err != nil {
		return nil, nil, err
	}
	mr, ok := res.(MapResolution)
	if !ok {
		return nil, nil, &UnsupportedType{Type: t, Message: "host type is not map-like"}
	}
	if mr.KeyType.Kind() != reflect.String {
		return nil, nil, &UnsupportedType{Type: t, Message: "map keys must be strings"}
	}
	valSer, valDeser, err := buildCase(ctx, ms.values, mr.ValueType)
	if err != nil {
		return nil, nil, err
	}

	ser := func(w *JSONWriter, v reflect.Value) error {
		w.StartObject()
		iter := v.MapRange()
		for iter.Next() {
			w.WriteKey(iter.Key().String())
			if err := valSer(w, iter.Value()); err != nil {
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
		out := reflect.MakeMap(reflect.MapOf(mr.KeyType, mr.ValueType))
		for r.More() {
			key, err := r.ReadString()
			if err != nil {
				return reflect.Value{}, err
			}
			val, err := valDeser(r)
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(reflect.ValueOf(key).Convert(mr.KeyType), val)
		}
		if err := r.ExpectDelim('}'); err != nil {
			return reflect.Value{}, err
		}
		return out, nil
	}
	return ser, deser, nil
}
