package avro

import (
	"bytes"
	"fmt"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// NamesCache lets callers reuse one named-schema cache across several
// Write calls, the same role the reader's Cache plays for parsing. A write
// session that never passes one gets a fresh cache per call.
type NamesCache struct {
	mu         sync.Mutex
	byFullName *orderedmap.OrderedMap[string, Schema]
}

func NewNamesCache() *NamesCache {
	return &NamesCache{byFullName: orderedmap.New[string, Schema]()}
}

// getOrRegister records the first schema written under a full name and
// reports whether a later call under the same name is a plain re-reference
// (alreadyWritten) or a genuine name collision against different content
// (conflict).
func (n *NamesCache) getOrRegister(full string, s Schema) (alreadyWritten, conflict bool) {
	n.mu.Lock()
	existing, ok := n.byFullName.Get(full)
	if !ok {
		n.byFullName.Set(full, s)
	}
	n.mu.Unlock()
	if !ok {
		return false, false
	}
	if existing == Schema(s) {
		return true, false
	}
	if !Equal(existing, s) {
		return true, true
	}
	return true, false
}

// WriteSchema renders a schema in full form (names qualified, doc/aliases/
// custom properties retained).
func WriteSchema(s Schema) ([]byte, error) { return Write(s, false, nil) }

// WriteCanonical renders a schema's Parsing Canonical Form: stripped
// attributes, a fixed key order, and logical types degraded to their
// underlying primitive token.
func WriteCanonical(s Schema) ([]byte, error) { return Write(s, true, nil) }

// Write renders s, reusing names (or a fresh cache, if nil) to collapse
// repeated references to the same named schema down to its name string.
func Write(s Schema, canonical bool, names *NamesCache) ([]byte, error) {
	if names == nil {
		names = NewNamesCache()
	}
	var buf bytes.Buffer
	if err := writeSchema(&buf, s, canonical, names); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSchema(buf *bytes.Buffer, s Schema, canonical bool, names *NamesCache) error {
	if s == nil {
		return &InvalidSchema{Message: "cannot write a nil schema"}
	}
	switch t := s.(type) {
	case *PrimitiveSchema:
		return writePrimitive(buf, t, canonical)
	case *ArraySchema:
		return writeArray(buf, t, canonical, names)
	case *MapSchema:
		return writeMap(buf, t, canonical, names)
	case *UnionSchema:
		return writeUnion(buf, t, canonical, names)
	case *EnumSchema:
		return writeNamed(buf, t, names, func(b *bytes.Buffer) error { return writeEnumBody(b, t, canonical) })
	case *FixedSchema:
		return writeNamed(buf, t, names, func(b *bytes.Buffer) error { return writeFixedBody(b, t, canonical) })
	case *RecordSchema:
		return writeNamed(buf, t, names, func(b *bytes.Buffer) error { return writeRecordBody(b, t, canonical, names) })
	default:
		return &UnsupportedSchema{Schema: s, Message: "unknown schema implementation"}
	}
}

func writeNamed(buf *bytes.Buffer, s NamedSchema, names *NamesCache, body func(*bytes.Buffer) error) error {
	full := s.FullName()
	alreadyWritten, conflict := names.getOrRegister(full, s)
	if conflict {
		return &InvalidSchema{Message: fmt.Sprintf("conflicting name: %s", full)}
	}
	if alreadyWritten {
		buf.WriteString(jsonQuote(full))
		return nil
	}
	return body(buf)
}

func writePrimitive(buf *bytes.Buffer, p *PrimitiveSchema, canonical bool) error {
	if p.logical == nil {
		buf.WriteString(jsonQuote(p.kind.token()))
		return nil
	}
	switch lt := p.logical.(type) {
	case *DateLogical, *TimeMillisLogical, *TimeMicrosLogical, *TimestampMillisLogical, *TimestampMicrosLogical, *UuidLogical:
		if canonical {
			buf.WriteString(jsonQuote(p.kind.token()))
			return nil
		}
		buf.WriteRune('{')
		writeString(buf, "type", p.kind.token(), false)
		writeString(buf, "logicalType", lt.logicalTypeName(), true)
		writeProperties(buf, p.props)
		buf.WriteRune('}')
		return nil
	case *DecimalLogical:
		if canonical {
			buf.WriteString(jsonQuote(p.kind.token()))
			return nil
		}
		buf.WriteRune('{')
		writeString(buf, "type", p.kind.token(), false)
		writeString(buf, "logicalType", "decimal", true)
		writeInt(buf, "precision", lt.precision, true)
		writeInt(buf, "scale", lt.scale, true)
		writeProperties(buf, p.props)
		buf.WriteRune('}')
		return nil
	default:
		return &UnsupportedSchema{Schema: p, Message: "unsupported logical type on a primitive"}
	}
}

func writeArray(buf *bytes.Buffer, a *ArraySchema, canonical bool, names *NamesCache) error {
	buf.WriteRune('{')
	writeString(buf, "type", "array", false)
	writeFieldName(buf, "items", true)
	if err := writeSchema(buf, a.items, canonical, names); err != nil {
		return err
	}
	if !canonical {
		writeProperties(buf, a.props)
	}
	buf.WriteRune('}')
	return nil
}

func writeMap(buf *bytes.Buffer, m *MapSchema, canonical bool, names *NamesCache) error {
	buf.WriteRune('{')
	writeString(buf, "type", "map", false)
	writeFieldName(buf, "values", true)
	if err := writeSchema(buf, m.values, canonical, names); err != nil {
		return err
	}
	if !canonical {
		writeProperties(buf, m.props)
	}
	buf.WriteRune('}')
	return nil
}

func writeUnion(buf *bytes.Buffer, u *UnionSchema, canonical bool, names *NamesCache) error {
	buf.WriteRune('[')
	for i, m := range u.members {
		if i > 0 {
			buf.WriteRune(',')
		}
		if err := writeSchema(buf, m, canonical, names); err != nil {
			return err
		}
	}
	buf.WriteRune(']')
	return nil
}

func writeEnumBody(buf *bytes.Buffer, e *EnumSchema, canonical bool) error {
	if canonical {
		buf.WriteRune('{')
		writeString(buf, "name", FullName(e), false)
		writeString(buf, "type", "enum", true)
		writeStringArray(buf, "symbols", e.symbols, true)
		buf.WriteRune('}')
		return nil
	}
	buf.WriteRune('{')
	writeString(buf, "type", "enum", false)
	if e.namespace != "" {
		writeString(buf, "namespace", e.namespace, true)
	}
	writeString(buf, "name", e.name, true)
	if e.doc != "" {
		writeString(buf, "doc", e.doc, true)
	}
	if len(e.aliases) > 0 {
		writeStringArray(buf, "aliases", e.aliases, true)
	}
	writeStringArray(buf, "symbols", e.symbols, true)
	writeProperties(buf, e.props)
	buf.WriteRune('}')
	return nil
}

func writeFixedBody(buf *bytes.Buffer, f *FixedSchema, canonical bool) error {
	if canonical {
		buf.WriteRune('{')
		writeString(buf, "name", FullName(f), false)
		writeString(buf, "type", "fixed", true)
		writeInt(buf, "size", f.size, true)
		buf.WriteRune('}')
		return nil
	}
	buf.WriteRune('{')
	writeString(buf, "type", "fixed", false)
	if f.namespace != "" {
		writeString(buf, "namespace", f.namespace, true)
	}
	writeString(buf, "name", f.name, true)
	writeInt(buf, "size", f.size, true)
	if len(f.aliases) > 0 {
		writeStringArray(buf, "aliases", f.aliases, true)
	}
	if f.logical != nil {
		writeString(buf, "logicalType", f.logical.logicalTypeName(), true)
		if dl, ok := f.logical.(*DecimalLogical); ok {
			writeInt(buf, "precision", dl.precision, true)
			writeInt(buf, "scale", dl.scale, true)
		}
	}
	writeProperties(buf, f.props)
	buf.WriteRune('}')
	return nil
}

func writeRecordBody(buf *bytes.Buffer, r *RecordSchema, canonical bool, names *NamesCache) error {
	if canonical {
		buf.WriteRune('{')
		writeString(buf, "name", FullName(r), false)
		writeString(buf, "type", "record", true)
		writeFieldName(buf, "fields", true)
		buf.WriteRune('[')
		for i, f := range r.fields {
			if i > 0 {
				buf.WriteRune(',')
			}
			buf.WriteRune('{')
			writeString(buf, "name", f.name, false)
			writeFieldName(buf, "type", true)
			if err := writeSchema(buf, f.typ, canonical, names); err != nil {
				return err
			}
			buf.WriteRune('}')
		}
		buf.WriteRune(']')
		buf.WriteRune('}')
		return nil
	}
	buf.WriteRune('{')
	writeString(buf, "type", "record", false)
	if r.namespace != "" {
		writeString(buf, "namespace", r.namespace, true)
	}
	writeString(buf, "name", r.name, true)
	if r.doc != "" {
		writeString(buf, "doc", r.doc, true)
	}
	if len(r.aliases) > 0 {
		writeStringArray(buf, "aliases", r.aliases, true)
	}
	writeFieldName(buf, "fields", true)
	buf.WriteRune('[')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteRune(',')
		}
		if err := writeField(buf, f, canonical, names); err != nil {
			return err
		}
	}
	buf.WriteRune(']')
	writeProperties(buf, r.props)
	buf.WriteRune('}')
	return nil
}

func writeField(buf *bytes.Buffer, f *RecordField, canonical bool, names *NamesCache) error {
	buf.WriteRune('{')
	writeString(buf, "name", f.name, false)
	if f.doc != "" {
		writeString(buf, "doc", f.doc, true)
	}
	writeFieldName(buf, "type", true)
	if err := writeSchema(buf, f.typ, canonical, names); err != nil {
		return err
	}
	if def, ok := f.Default(); ok {
		writeRaw(buf, "default", def.raw, true)
	}
	if len(f.aliases) > 0 {
		writeStringArray(buf, "aliases", f.aliases, true)
	}
	writeProperties(buf, f.props)
	buf.WriteRune('}')
	return nil
}
