package avro

import "bytes"

// Equal reports full structural equality: same shape, same names,
// namespaces, docs, aliases, logical-type parameters, and custom
// properties. Implemented by comparing full-form serializations (which
// collapse self/mutual record references through the writer's own names
// cache, so it terminates on cyclic schemas without a separate visited-set
// walk).
func Equal(a, b Schema) bool {
	if a == nil || b == nil {
		return a == b
	}
	ca, err := WriteSchema(a)
	if err != nil {
		return false
	}
	cb, err := WriteSchema(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ca, cb)
}

// CanonicalEqual reports equality up to alias, doc, namespace, and custom
// property differences: two schemas are CanonicalEqual iff their Parsing
// Canonical Forms match byte-for-byte.
func CanonicalEqual(a, b Schema) bool {
	if a == nil || b == nil {
		return a == b
	}
	ca, err := WriteCanonical(a)
	if err != nil {
		return false
	}
	cb, err := WriteCanonical(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ca, cb)
}
