package avro

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"
)

// Serializer writes one value of a bound host type to w. Deserializer
// reads one value of that type from r. Both are produced by Build and
// composed by the collection/record/union cases to build larger codecs
// out of smaller ones without any of them knowing about the others.
type Serializer func(w *JSONWriter, value reflect.Value) error
type Deserializer func(r *JSONReader) (reflect.Value, error)

// JSONWriter is a minimal streaming JSON writer: it tracks, per open
// object or array, whether the next token needs a leading comma, the way
// a hand-rolled writer would rather than building an intermediate tree.
type JSONWriter struct {
	buf        *bytes.Buffer
	needComma  []bool
	pendingKey bool
}

func NewJSONWriter(buf *bytes.Buffer) *JSONWriter { return &JSONWriter{buf: buf} }

func (w *JSONWriter) beforeValue() {
	if w.pendingKey {
		w.pendingKey = false
		return
	}
	if n := len(w.needComma); n > 0 && w.needComma[n-1] {
		w.buf.WriteByte(',')
	}
}

func (w *JSONWriter) afterValue() {
	if n := len(w.needComma); n > 0 {
		w.needComma[n-1] = true
	}
}

func (w *JSONWriter) StartObject() {
	w.beforeValue()
	w.buf.WriteByte('{')
	w.needComma = append(w.needComma, false)
}

func (w *JSONWriter) EndObject() {
	w.buf.WriteByte('}')
	w.needComma = w.needComma[:len(w.needComma)-1]
	w.afterValue()
}

func (w *JSONWriter) StartArray() {
	w.beforeValue()
	w.buf.WriteByte('[')
	w.needComma = append(w.needComma, false)
}

func (w *JSONWriter) EndArray() {
	w.buf.WriteByte(']')
	w.needComma = w.needComma[:len(w.needComma)-1]
	w.afterValue()
}

func (w *JSONWriter) WriteKey(key string) {
	w.beforeValue()
	data, _ := json.Marshal(key)
	w.buf.Write(data)
	w.buf.WriteByte(':')
	w.pendingKey = true
}

func (w *JSONWriter) WriteNull() {
	w.beforeValue()
	w.buf.WriteString("null")
	w.afterValue()
}

func (w *JSONWriter) WriteBool(v bool) {
	w.beforeValue()
	if v {
		w.buf.WriteString("true")
	} else {
		w.buf.WriteString("false")
	}
	w.afterValue()
}

func (w *JSONWriter) WriteInt(v int32) {
	w.beforeValue()
	w.buf.WriteString(strconv.FormatInt(int64(v), 10))
	w.afterValue()
}

func (w *JSONWriter) WriteLong(v int64) {
	w.beforeValue()
	w.buf.WriteString(strconv.FormatInt(v, 10))
	w.afterValue()
}

func (w *JSONWriter) WriteFloat(v float32) {
	w.beforeValue()
	w.buf.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	w.afterValue()
}

func (w *JSONWriter) WriteDouble(v float64) {
	w.beforeValue()
	w.buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	w.afterValue()
}

func (w *JSONWriter) WriteString(s string) {
	w.beforeValue()
	data, _ := json.Marshal(s)
	w.buf.Write(data)
	w.afterValue()
}

// WriteBytesString encodes b the way Avro's JSON encoding requires bytes
// and fixed values to be written: one Unicode code point per byte
// (ISO-8859-1), so every value in [0,255] round-trips exactly.
func (w *JSONWriter) WriteBytesString(b []byte) {
	runes := make([]rune, len(b))
	for i, bb := range b {
		runes[i] = rune(bb)
	}
	w.WriteString(string(runes))
}

func (w *JSONWriter) Bytes() []byte { return w.buf.Bytes() }

// JSONReader wraps goccy/go-json's token-streaming Decoder, translating
// its errors into InvalidEncoding and exposing the typed reads the codec
// cases need.
type JSONReader struct {
	dec *json.Decoder
}

func NewJSONReader(data []byte) *JSONReader {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return &JSONReader{dec: dec}
}

func (r *JSONReader) Position() int64 { return r.dec.InputOffset() }

func (r *JSONReader) More() bool { return r.dec.More() }

func (r *JSONReader) Token() (json.Token, error) {
	tok, err := r.dec.Token()
	if err != nil {
		return nil, &InvalidEncoding{Position: r.Position(), Message: "failed to read JSON token", Cause: err}
	}
	return tok, nil
}

func (r *JSONReader) ExpectDelim(d rune) error {
	tok, err := r.Token()
	if err != nil {
		return err
	}
	got, ok := tok.(json.Delim)
	if !ok || rune(got) != d {
		return &InvalidEncoding{Position: r.Position(), Message: fmt.Sprintf("expected %q, got %v", string(d), tok)}
	}
	return nil
}

func (r *JSONReader) ReadNull() error {
	tok, err := r.Token()
	if err != nil {
		return err
	}
	if tok != nil {
		return &InvalidEncoding{Position: r.Position(), Message: "expected null"}
	}
	return nil
}

func (r *JSONReader) ReadBool() (bool, error) {
	tok, err := r.Token()
	if err != nil {
		return false, err
	}
	b, ok := tok.(bool)
	if !ok {
		return false, &InvalidEncoding{Position: r.Position(), Message: "expected boolean"}
	}
	return b, nil
}

func (r *JSONReader) readNumber() (json.Number, error) {
	tok, err := r.Token()
	if err != nil {
		return "", err
	}
	n, ok := tok.(json.Number)
	if !ok {
		return "", &InvalidEncoding{Position: r.Position(), Message: "expected number"}
	}
	return n, nil
}

func (r *JSONReader) ReadInt() (int32, error) {
	n, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := n.Int64()
	if err != nil {
		return 0, &InvalidEncoding{Position: r.Position(), Message: "not an integer", Cause: err}
	}
	if v < -(1<<31) || v > (1<<31)-1 {
		cause := &OverflowError{Message: fmt.Sprintf("value %d does not fit in a 32-bit int", v)}
		return 0, &InvalidEncoding{Position: r.Position(), Message: "int overflow", Cause: cause}
	}
	return int32(v), nil
}

func (r *JSONReader) ReadLong() (int64, error) {
	n, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := n.Int64()
	if err != nil {
		return 0, &InvalidEncoding{Position: r.Position(), Message: "not an integer", Cause: err}
	}
	return v, nil
}

func (r *JSONReader) ReadFloat() (float32, error) {
	n, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(string(n), 32)
	if err != nil {
		return 0, &InvalidEncoding{Position: r.Position(), Message: "not a float", Cause: err}
	}
	return float32(v), nil
}

func (r *JSONReader) ReadDouble() (float64, error) {
	n, err := r.readNumber()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, &InvalidEncoding{Position: r.Position(), Message: "not a double", Cause: err}
	}
	return v, nil
}

func (r *JSONReader) ReadString() (string, error) {
	tok, err := r.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", &InvalidEncoding{Position: r.Position(), Message: "expected string"}
	}
	return s, nil
}

// ReadBytes decodes the ISO-8859-1 byte-string convention WriteBytesString
// writes, refusing any code point outside [0,255].
func (r *JSONReader) ReadBytes() ([]byte, error) {
	s, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	out := make([]byte, len(runes))
	for i, rn := range runes {
		if rn < 0 || rn > 255 {
			return nil, &InvalidEncoding{Position: r.Position(), Message: "byte string contains a code point outside [0,255]"}
		}
		out[i] = byte(rn)
	}
	return out, nil
}

func skipValue(r *JSONReader) error {
	tok, err := r.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	if d != '{' && d != '[' {
		return nil
	}
	for r.More() {
		if d == '{' {
			if _, err := r.Token(); err != nil {
				return err
			}
		}
		if err := skipValue(r); err != nil {
			return err
		}
	}
	_, err = r.Token()
	return err
}

// Codec is a compiled, reusable (schema, host type) binding: Serialize and
// Deserialize are pure functions over independent state, safe to call
// concurrently once Build has returned.
type Codec struct {
	schema   Schema
	hostType reflect.Type
	ser      Serializer
	deser    Deserializer
}

func (c *Codec) Schema() Schema          { return c.schema }
func (c *Codec) HostType() reflect.Type  { return c.hostType }

func (c *Codec) Serialize(value interface{}) ([]byte, error) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf)
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		rv = reflect.Zero(c.hostType)
	} else if rv.Type() != c.hostType {
		if !rv.Type().AssignableTo(c.hostType) {
			if !rv.Type().ConvertibleTo(c.hostType) {
				return nil, &UnsupportedType{Type: rv.Type(), Message: "value type does not match the codec's host type"}
			}
			rv = rv.Convert(c.hostType)
		}
	}
	if err := c.ser(w, rv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Codec) Deserialize(data []byte) (interface{}, error) {
	r := NewJSONReader(data)
	v, err := c.deser(r)
	if err != nil {
		return nil, err
	}
	if !v.IsValid() {
		return nil, nil
	}
	return v.Interface(), nil
}

// recursionKey identifies one (schema, host type) pair the record case
// may re-enter while building a self- or mutually-referential record
// graph.
type recursionKey struct {
	schemaFP uint64
	hostType reflect.Type
}

// recordPlaceholder is inserted into buildContext.refs before a record's
// body is built, and back-patched once the body is ready, so a recursive
// reference encountered mid-build calls through to the finished codec.
type recordPlaceholder struct {
	ser   Serializer
	deser Deserializer
}

// buildContext threads the resolver, the recursion reference map, and the
// warning collector through every case invocation.
type buildContext struct {
	resolver TypeResolver
	refs     map[recursionKey]*recordPlaceholder
	log      *BuildLog
}

// Build compiles a Codec binding schema to hostType, consulting resolver
// to map Go types onto the schema's shape. Build is safe to call
// concurrently for independent (schema, hostType) pairs; resolver
// implementations are expected to be read-only after construction.
func Build(schema Schema, hostType reflect.Type, resolver TypeResolver) (*Codec, error) {
	return BuildWithLog(schema, hostType, resolver, nil)
}

// BuildWithLog is Build, additionally recording per-case diagnostics
// (including cases that matched but lost to a build-time error) into log.
func BuildWithLog(schema Schema, hostType reflect.Type, resolver TypeResolver, log *BuildLog) (*Codec, error) {
	if schema == nil {
		return nil, &InvalidSchema{Message: "cannot build a codec for a nil schema"}
	}
	if hostType == nil {
		return nil, &UnsupportedType{Message: "host type must not be nil"}
	}
	ctx := &buildContext{resolver: resolver, refs: make(map[recursionKey]*recordPlaceholder), log: log}
	ser, deser, err := buildCase(ctx, schema, hostType)
	if err != nil {
		return nil, err
	}
	return &Codec{schema: schema, hostType: hostType, ser: ser, deser: deser}, nil
}

// resolveOrDefault consults resolver when present; otherwise it derives a
// resolution from t's own reflect.Kind for the shapes that need no
// domain-specific naming help (slices, arrays, string-keyed maps, and
// structs matched by case-insensitive field name).
func resolveOrDefault(ctx *buildContext, t reflect.Type) (TypeResolution, error) {
	if ctx.resolver != nil {
		res, err := ctx.resolver.Resolve(t)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return ArrayResolution{HostType: t, ItemType: t.Elem()}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, &UnsupportedType{Type: t, Message: "map host type must have string keys"}
		}
		return MapResolution{HostType: t, KeyType: t.Key(), ValueType: t.Elem()}, nil
	case reflect.Struct:
		return defaultRecordResolution(t), nil
	}
	return nil, &UnsupportedType{Type: t, Message: "no resolver supplied and no default resolution applies"}
}

func defaultRecordResolution(t reflect.Type) RecordResolution {
	var fields []RecordFieldResolution
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		member := sf.Name
		fields = append(fields, RecordFieldResolution{
			Name:       matcherFunc(func(avroName string) bool { return equalFold(avroName, member) }),
			Member:     member,
			MemberType: sf.Type,
		})
	}
	return RecordResolution{HostType: t, Fields: fields}
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
