package avro

import (
	"fmt"
	"reflect"
)

// InvalidName reports a simple name, full name, namespace, or alias that
// does not match the Avro identifier grammar.
type InvalidName struct {
	Name string
}

func (e *InvalidName) Error() string {
	return fmt.Sprintf("avro: invalid name %q", e.Name)
}

// InvalidSymbol reports an enum symbol that does not match the Avro
// identifier grammar.
type InvalidSymbol struct {
	Symbol string
}

func (e *InvalidSymbol) Error() string {
	return fmt.Sprintf("avro: invalid enum symbol %q", e.Symbol)
}

// InvalidSchema reports a schema document that is structurally malformed
// or violates one of the model's construction invariants (bad field type,
// conflicting name, out-of-range decimal precision/scale, and so on).
type InvalidSchema struct {
	Message string
	Causes  []error
}

func (e *InvalidSchema) Error() string {
	return "avro: invalid schema: " + e.Message
}

func (e *InvalidSchema) Unwrap() []error { return e.Causes }

// UnknownSchema reports a schema reference, or a shape no reader case
// recognized, that could not be resolved to a concrete schema node.
type UnknownSchema struct {
	Message string
	Causes  []error
}

func (e *UnknownSchema) Error() string {
	return "avro: unknown schema: " + e.Message
}

func (e *UnknownSchema) Unwrap() []error { return e.Causes }

// UnsupportedSchema reports a schema shape that is well-formed but that
// this implementation's writer or codec builder declines to handle.
type UnsupportedSchema struct {
	Schema  Schema
	Message string
}

func (e *UnsupportedSchema) Error() string {
	name := "?"
	if e.Schema != nil {
		name = FullName(e.Schema)
	}
	return fmt.Sprintf("avro: unsupported schema %s: %s", name, e.Message)
}

// UnsupportedType reports a host Go type that the codec builder, or the
// type resolver it was given, could not map onto a schema.
type UnsupportedType struct {
	Type    reflect.Type
	Message string
	Causes  []error
}

func (e *UnsupportedType) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("avro: unsupported type %s: %s", e.Type, e.Message)
	}
	return "avro: unsupported type: " + e.Message
}

func (e *UnsupportedType) Unwrap() []error { return e.Causes }

// InvalidEncoding reports a wire-format violation discovered while
// serializing or deserializing a value: wrong token kind, an unknown union
// discriminator, an unknown record field, an out-of-range numeric literal.
type InvalidEncoding struct {
	Position int64
	Message  string
	Cause    error
}

func (e *InvalidEncoding) Error() string {
	return fmt.Sprintf("avro: invalid encoding at position %d: %s", e.Position, e.Message)
}

func (e *InvalidEncoding) Unwrap() error { return e.Cause }

// OverflowError reports a wire value that does not fit its host
// representation: a duration with a non-zero month count decoded into a
// time.Duration (months have no fixed length), or, as the Cause of an
// InvalidEncoding, an int literal outside the 32-bit range.
type OverflowError struct {
	Message string
}

func (e *OverflowError) Error() string { return "avro: " + e.Message }
