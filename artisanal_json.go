package avro

import (
	"bytes"
	"strconv"

	json "github.com/goccy/go-json"
)

/*
 * this file contains a bunch of helper methods for writing bespoke JSON marshal functions,
 * used by the schema writer's dispatch table (schema_writer.go). Kept as its own file the
 * way the teacher split it out. The value codec's streaming writer (JSONWriter in codec.go)
 * does not use these helpers; it escapes strings with json.Marshal directly.
 */

func writeFieldName(buf *bytes.Buffer, fieldname string, precedingComma bool) {
	if precedingComma {
		buf.WriteRune(',')
	}
	buf.WriteRune('"')
	buf.WriteString(fieldname)
	buf.WriteRune('"')
	buf.WriteRune(':')
}

func writeInt(buf *bytes.Buffer, fieldname string, value int, precedingComma bool) {
	writeFieldName(buf, fieldname, precedingComma)
	buf.WriteString(strconv.FormatInt(int64(value), 10))
}

func writeString(buf *bytes.Buffer, fieldname, value string, precedingComma bool) {
	writeFieldName(buf, fieldname, precedingComma)
	formatted, _ := json.Marshal(value)
	buf.Write(formatted)
}

func writeRaw(buf *bytes.Buffer, fieldname string, raw []byte, precedingComma bool) {
	writeFieldName(buf, fieldname, precedingComma)
	if len(raw) == 0 {
		buf.WriteString("null")
		return
	}
	buf.Write(raw)
}

func writeStringArray(buf *bytes.Buffer, fieldname string, values []string, precedingComma bool) {
	writeFieldName(buf, fieldname, precedingComma)
	buf.WriteRune('[')
	for i, v := range values {
		if i > 0 {
			buf.WriteRune(',')
		}
		formatted, _ := json.Marshal(v)
		buf.Write(formatted)
	}
	buf.WriteRune(']')
}

func jsonQuote(s string) string {
	formatted, _ := json.Marshal(s)
	return string(formatted)
}

// writeProperties emits a named/collection schema's unreserved custom
// properties in their original insertion order.
func writeProperties(buf *bytes.Buffer, props *Properties) {
	if props == nil {
		return
	}
	for _, key := range props.Keys() {
		v, _ := props.Get(key)
		encoded, err := json.Marshal(v)
		if err != nil {
			continue
		}
		writeRaw(buf, key, encoded, true)
	}
}
