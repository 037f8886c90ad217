package avro

import "fmt"

// LogicalType is the closed set of annotations a schema's underlying kind
// may carry. Each variant is paired with one underlying kind (Decimal with
// either Bytes or Fixed), plus a size constraint for Decimal-on-Fixed and
// Duration; validateLogicalPairing
// enforces that pairing at construction time.
type LogicalType interface {
	logicalTypeName() string
}

type DateLogical struct{}

func (*DateLogical) logicalTypeName() string { return "date" }

type TimeMillisLogical struct{}

func (*TimeMillisLogical) logicalTypeName() string { return "time-millis" }

type TimeMicrosLogical struct{}

func (*TimeMicrosLogical) logicalTypeName() string { return "time-micros" }

type TimestampMillisLogical struct{}

func (*TimestampMillisLogical) logicalTypeName() string { return "timestamp-millis" }

type TimestampMicrosLogical struct{}

func (*TimestampMicrosLogical) logicalTypeName() string { return "timestamp-micros" }

type DurationLogical struct{}

func (*DurationLogical) logicalTypeName() string { return "duration" }

type UuidLogical struct{}

func (*UuidLogical) logicalTypeName() string { return "uuid" }

// DecimalLogical carries the precision/scale pair, with precision >= 1 and
// 0 <= scale <= precision enforced by every mutator.
type DecimalLogical struct {
	precision int
	scale     int
}

func NewDecimalLogical(precision, scale int) (*DecimalLogical, error) {
	d := &DecimalLogical{}
	if err := d.set(precision, scale); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *DecimalLogical) logicalTypeName() string { return "decimal" }
func (d *DecimalLogical) Precision() int          { return d.precision }
func (d *DecimalLogical) Scale() int              { return d.scale }

func (d *DecimalLogical) SetPrecision(precision int) error { return d.set(precision, d.scale) }
func (d *DecimalLogical) SetScale(scale int) error         { return d.set(d.precision, scale) }

func (d *DecimalLogical) set(precision, scale int) error {
	if precision < 1 {
		return &InvalidSchema{Message: fmt.Sprintf("decimal precision must be >= 1, got %d", precision)}
	}
	if scale < 0 {
		return &InvalidSchema{Message: fmt.Sprintf("decimal scale must be >= 0, got %d", scale)}
	}
	if scale > precision {
		return &InvalidSchema{Message: fmt.Sprintf("decimal scale (%d) must not exceed precision (%d)", scale, precision)}
	}
	d.precision = precision
	d.scale = scale
	return nil
}

// validateLogicalPairing enforces the kind (and, for Fixed, size) that a
// given LogicalType is allowed to annotate. fixedSize is ignored unless
// kind is TypeFixed.
func validateLogicalPairing(lt LogicalType, kind SchemaType, fixedSize int) error {
	switch lt.(type) {
	case *DateLogical, *TimeMillisLogical:
		if kind != TypeInt {
			return logicalMismatch(lt, kind)
		}
	case *TimeMicrosLogical, *TimestampMillisLogical, *TimestampMicrosLogical:
		if kind != TypeLong {
			return logicalMismatch(lt, kind)
		}
	case *DecimalLogical:
		if kind != TypeBytes && kind != TypeFixed {
			return logicalMismatch(lt, kind)
		}
		if kind == TypeFixed && fixedSize < 1 {
			return &InvalidSchema{Message: "decimal on fixed requires a size of at least 1 byte"}
		}
	case *DurationLogical:
		if kind != TypeFixed {
			return logicalMismatch(lt, kind)
		}
		if fixedSize != 12 {
			return &InvalidSchema{Message: fmt.Sprintf("duration requires a fixed size of 12, got %d", fixedSize)}
		}
	case *UuidLogical:
		if kind != TypeString {
			return logicalMismatch(lt, kind)
		}
	default:
		return &InvalidSchema{Message: "unrecognized logical type"}
	}
	return nil
}

func logicalMismatch(lt LogicalType, kind SchemaType) error {
	return &InvalidSchema{Message: fmt.Sprintf("logical type %s is not valid on %s", lt.logicalTypeName(), kind)}
}
