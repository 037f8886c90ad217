package avro

import (
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
)

var (
	bigRatType   = reflect.TypeOf(big.Rat{})
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
	uuidType     = reflect.TypeOf(uuid.UUID{})
	epoch        = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
)

func logicalOf(schema Schema) LogicalType {
	if ls, ok := schema.(LogicalSchema); ok {
		return ls.Logical()
	}
	return nil
}

// twosComplement produces the minimal big-endian two's complement
// encoding of a negative n.
func twosComplement(n *big.Int) []byte {
	byteLen := (new(big.Int).Not(n).BitLen() / 8) + 1
	mod := new(big.Int).Lsh(big.NewInt(1), uint(byteLen*8))
	v := new(big.Int).Add(mod, n)
	out := v.Bytes()
	for len(out) < byteLen {
		out = append([]byte{0}, out...)
	}
	return out
}

func padTwosComplement(data []byte, size int, negative bool) []byte {
	pad := byte(0x00)
	if negative {
		pad = 0xff
	}
	out := make([]byte, size)
	for i := range out {
		out[i] = pad
	}
	copy(out[size-len(data):], data)
	return out
}

func bigIntFromTwosComplement(data []byte) *big.Int {
	if len(data) == 0 {
		return big.NewInt(0)
	}
	n := new(big.Int).SetBytes(data)
	if data[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(data)*8))
		n.Sub(n, mod)
	}
	return n
}

func matchDecimal(ctx *buildContext, schema Schema, t reflect.Type) bool {
	_, ok := logicalOf(schema).(*DecimalLogical)
	return ok
}

func buildDecimal(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	dl := logicalOf(schema).(*DecimalLogical)
	fixedSize := -1
	if fs, ok := schema.(*FixedSchema); ok {
		fixedSize = fs.size
	}
	targetIsPtr := t.Kind() == reflect.Ptr
	elemType := t
	if targetIsPtr {
		elemType = t.Elem()
	}
	if elemType != bigRatType {
		return nil, nil, &UnsupportedType{Type: t, Message: "decimal requires a big.Rat (or *big.Rat) host type"}
	}
	scaleFactor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(dl.scale)), nil)

	ser := func(w *JSONWriter, v reflect.Value) error {
		rv := v
		if targetIsPtr {
			rv = rv.Elem()
		}
		rat := rv.Interface().(big.Rat)
		unscaled := new(big.Int).Mul(rat.Num(), scaleFactor)
		unscaled.Quo(unscaled, rat.Denom())
		var data []byte
		if unscaled.Sign() < 0 {
			data = twosComplement(unscaled)
		} else {
			data = unscaled.Bytes()
			if len(data) == 0 || data[0]&0x80 != 0 {
				data = append([]byte{0}, data...)
			}
		}
		if fixedSize >= 0 {
			if len(data) > fixedSize {
				return &InvalidEncoding{Message: "decimal value does not fit in its fixed size"}
			}
			data = padTwosComplement(data, fixedSize, unscaled.Sign() < 0)
		}
		w.WriteBytesString(data)
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		data, err := r.ReadBytes()
		if err != nil {
			return reflect.Value{}, err
		}
		if fixedSize >= 0 && len(data) != fixedSize {
			return reflect.Value{}, &InvalidEncoding{Position: r.Position(), Message: "decimal fixed value has the wrong length"}
		}
		unscaled := bigIntFromTwosComplement(data)
		rat := new(big.Rat).SetFrac(unscaled, scaleFactor)
		if targetIsPtr {
			ptr := reflect.New(bigRatType)
			ptr.Elem().Set(reflect.ValueOf(*rat))
			return ptr, nil
		}
		return reflect.ValueOf(*rat), nil
	}
	return ser, deser, nil
}

func matchDuration(ctx *buildContext, schema Schema, t reflect.Type) bool {
	_, ok := logicalOf(schema).(*DurationLogical)
	return ok
}

func putLE32(b []byte, v uint32) {
	b[0], b[1], b[2], b[3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
}

func getLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func buildDuration(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	if t != durationType {
		return nil, nil, &UnsupportedType{Type: t, Message: "duration requires a time.Duration host type"}
	}
	ser := func(w *JSONWriter, v reflect.Value) error {
		d := v.Interface().(time.Duration)
		totalMillis := d.Milliseconds()
		days := totalMillis / (24 * 60 * 60 * 1000)
		millis := totalMillis % (24 * 60 * 60 * 1000)
		data := make([]byte, 12)
		putLE32(data[0:4], 0)
		putLE32(data[4:8], uint32(days))
		putLE32(data[8:12], uint32(millis))
		w.WriteBytesString(data)
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		data, err := r.ReadBytes()
		if err != nil {
			return reflect.Value{}, err
		}
		if len(data) != 12 {
			return reflect.Value{}, &InvalidEncoding{Position: r.Position(), Message: "duration must be a 12-byte fixed value"}
		}
		months := getLE32(data[0:4])
		days := getLE32(data[4:8])
		millis := getLE32(data[8:12])
		if months != 0 {
			return reflect.Value{}, &OverflowError{Message: "durations containing months cannot be accurately deserialized to a fixed time span"}
		}
		d := time.Duration(days)*24*time.Hour + time.Duration(millis)*time.Millisecond
		return reflect.ValueOf(d), nil
	}
	return ser, deser, nil
}

func matchDate(ctx *buildContext, schema Schema, t reflect.Type) bool {
	_, ok := logicalOf(schema).(*DateLogical)
	return ok
}

func buildDate(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	if t != timeType {
		return nil, nil, &UnsupportedType{Type: t, Message: "date requires a time.Time host type"}
	}
	ser := func(w *JSONWriter, v reflect.Value) error {
		tm := v.Interface().(time.Time).UTC()
		days := int32(tm.Truncate(24 * time.Hour).Sub(epoch).Hours() / 24)
		w.WriteInt(days)
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		days, err := r.ReadInt()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(epoch.Add(time.Duration(days) * 24 * time.Hour)), nil
	}
	return ser, deser, nil
}

func matchTimeMillis(ctx *buildContext, schema Schema, t reflect.Type) bool {
	_, ok := logicalOf(schema).(*TimeMillisLogical)
	return ok
}

func buildTimeMillis(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	if t != durationType {
		return nil, nil, &UnsupportedType{Type: t, Message: "time-millis requires a time.Duration host type"}
	}
	ser := func(w *JSONWriter, v reflect.Value) error {
		w.WriteInt(int32(v.Interface().(time.Duration).Milliseconds()))
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		ms, err := r.ReadInt()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(time.Duration(ms) * time.Millisecond), nil
	}
	return ser, deser, nil
}

func matchTimeMicros(ctx *buildContext, schema Schema, t reflect.Type) bool {
	_, ok := logicalOf(schema).(*TimeMicrosLogical)
	return ok
}

func buildTimeMicros(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	if t != durationType {
		return nil, nil, &UnsupportedType{Type: t, Message: "time-micros requires a time.Duration host type"}
	}
	ser := func(w *JSONWriter, v reflect.Value) error {
		w.WriteLong(int64(v.Interface().(time.Duration) / time.Microsecond))
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		micros, err := r.ReadLong()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(time.Duration(micros) * time.Microsecond), nil
	}
	return ser, deser, nil
}

func matchTimestampMillis(ctx *buildContext, schema Schema, t reflect.Type) bool {
	_, ok := logicalOf(schema).(*TimestampMillisLogical)
	return ok
}

func buildTimestampMillis(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	if t != timeType {
		return nil, nil, &UnsupportedType{Type: t, Message: "timestamp-millis requires a time.Time host type"}
	}
	ser := func(w *JSONWriter, v reflect.Value) error {
		w.WriteLong(v.Interface().(time.Time).UnixMilli())
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		ms, err := r.ReadLong()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(time.UnixMilli(ms).UTC()), nil
	}
	return ser, deser, nil
}

func matchTimestampMicros(ctx *buildContext, schema Schema, t reflect.Type) bool {
	_, ok := logicalOf(schema).(*TimestampMicrosLogical)
	return ok
}

func buildTimestampMicros(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	if t != timeType {
		return nil, nil, &UnsupportedType{Type: t, Message: "timestamp-micros requires a time.Time host type"}
	}
	ser := func(w *JSONWriter, v reflect.Value) error {
		w.WriteLong(v.Interface().(time.Time).UnixMicro())
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		micros, err := r.ReadLong()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(time.UnixMicro(micros).UTC()), nil
	}
	return ser, deser, nil
}

func matchUuid(ctx *buildContext, schema Schema, t reflect.Type) bool {
	_, ok := logicalOf(schema).(*UuidLogical)
	return ok
}

func buildUuid(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	if t != uuidType {
		return nil, nil, &UnsupportedType{Type: t, Message: "uuid requires a github.com/google/uuid.UUID host type"}
	}
	ser := func(w *JSONWriter, v reflect.Value) error {
		w.WriteString(v.Interface().(uuid.UUID).String())
		return nil
	}
	deser := func(r *JSONReader) (reflect.Value, error) {
		s, err := r.ReadString()
		if err != nil {
			return reflect.Value{}, err
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return reflect.Value{}, &InvalidEncoding{Position: r.Position(), Message: "not a canonical UUID string", Cause: err}
		}
		return reflect.ValueOf(id), nil
	}
	return ser, deser, nil
}

func logicalNaturalType(lt LogicalType) reflect.Type {
	switch lt.(type) {
	case *DecimalLogical:
		return bigRatType
	case *DurationLogical, *TimeMillisLogical, *TimeMicrosLogical:
		return durationType
	case *DateLogical, *TimestampMillisLogical, *TimestampMicrosLogical:
		return timeType
	case *UuidLogical:
		return uuidType
	}
	return nil
}
