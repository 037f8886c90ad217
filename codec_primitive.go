package avro

import "reflect"

func isPlainPrimitive(schema Schema, kind SchemaType) bool {
	p, ok := schema.(*PrimitiveSchema)
	return ok && p.kind == kind && p.logical == nil
}

func isByteSliceType(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func isFixedArrayType(t reflect.Type, size int) bool {
	return t.Kind() == reflect.Array && t.Elem().Kind() == reflect.Uint8 && t.Len() == size
}

func matchNull(ctx *buildContext, schema Schema, t reflect.Type) bool {
	return isPlainPrimitive(schema, TypeNull)
}

func buildNull(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	ser := func(w *JSONWriter, v reflect.Value) error {
		w.WriteNull()
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		if err := r.ReadNull(); err != nil {
			return reflect.Value{}, err
		}
		return reflect.Zero(t), nil
	}
	return ser, deser, nil
}

func matchBoolean(ctx *buildContext, schema Schema, t reflect.Type) bool {
	return isPlainPrimitive(schema, TypeBoolean) && t.Kind() == reflect.Bool
}

func buildBoolean(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	ser := func(w *JSONWriter, v reflect.Value) error {
		w.WriteBool(v.Bool())
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		b, err := r.ReadBool()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b).Convert(t), nil
	}
	return ser, deser, nil
}

func matchInt(ctx *buildContext, schema Schema, t reflect.Type) bool {
	return isPlainPrimitive(schema, TypeInt) && t.Kind() == reflect.Int32
}

func buildInt(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	ser := func(w *JSONWriter, v reflect.Value) error {
		w.WriteInt(int32(v.Int()))
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		n, err := r.ReadInt()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(t), nil
	}
	return ser, deser, nil
}

func matchLong(ctx *buildContext, schema Schema, t reflect.Type) bool {
	return isPlainPrimitive(schema, TypeLong) && t.Kind() == reflect.Int64
}

func buildLong(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	ser := func(w *JSONWriter, v reflect.Value) error {
		w.WriteLong(v.Int())
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		n, err := r.ReadLong()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(t), nil
	}
	return ser, deser, nil
}

func matchFloat(ctx *buildContext, schema Schema, t reflect.Type) bool {
	return isPlainPrimitive(schema, TypeFloat) && t.Kind() == reflect.Float32
}

func buildFloat(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	ser := func(w *JSONWriter, v reflect.Value) error {
		w.WriteFloat(float32(v.Float()))
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		n, err := r.ReadFloat()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(t), nil
	}
	return ser, deser, nil
}

func matchDouble(ctx *buildContext, schema Schema, t reflect.Type) bool {
	return isPlainPrimitive(schema, TypeDouble) && t.Kind() == reflect.Float64
}

func buildDouble(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	ser := func(w *JSONWriter, v reflect.Value) error {
		w.WriteDouble(v.Float())
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		n, err := r.ReadDouble()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(t), nil
	}
	return ser, deser, nil
}

func matchString(ctx *buildContext, schema Schema, t reflect.Type) bool {
	return isPlainPrimitive(schema, TypeString) && t.Kind() == reflect.String
}

func buildString(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	ser := func(w *JSONWriter, v reflect.Value) error {
		w.WriteString(v.String())
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		s, err := r.ReadString()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s).Convert(t), nil
	}
	return ser, deser, nil
}

func matchBytes(ctx *buildContext, schema Schema, t reflect.Type) bool {
	return isPlainPrimitive(schema, TypeBytes) && isByteSliceType(t)
}

func buildBytes(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	ser := func(w *JSONWriter, v reflect.Value) error {
		w.WriteBytesString(v.Bytes())
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		data, err := r.ReadBytes()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(data).Convert(t), nil
	}
	return ser, deser, nil
}

func matchFixed(ctx *buildContext, schema Schema, t reflect.Type) bool {
	fs, ok := schema.(*FixedSchema)
	return ok && fs.logical == nil && isFixedArrayType(t, fs.size)
}

func buildFixed(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	fs := schema.(*FixedSchema)
	ser := func(w *JSONWriter, v reflect.Value) error {
		data := make([]byte, v.Len())
		reflect.Copy(reflect.ValueOf(data), v)
		w.WriteBytesString(data)
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		data, err := r.ReadBytes()
		if err != nil {
			return reflect.Value{}, err
		}
		if len(data) != fs.size {
			return reflect.Value{}, &InvalidEncoding{Position: r.Position(), Message: "fixed value has the wrong length for " + FullName(fs)}
		}
		out := reflect.New(t).Elem()
		reflect.Copy(out, reflect.ValueOf(data))
		return out, nil
	}
	return ser, deser, nil
}
