// Package reflect provides the shipped avro.TypeResolver: it binds Go
// types to Avro shapes by reflect.Kind, struct tags, and a small set of
// well-known types (time.Time, time.Duration, big.Rat, uuid.UUID). Kept
// out of the core avro package so that package never needs to import
// reflect-heavy struct-tag scanning logic just to parse or write a
// schema document.
package reflect

import (
	"math/big"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	avro "github.com/ch-robinson/dotnet-avro-sub002"
)

var (
	bigRatType   = reflect.TypeOf(big.Rat{})
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
	uuidType     = reflect.TypeOf(uuid.UUID{})
)

// Resolver is a struct-tag-driven avro.TypeResolver. The zero value is
// ready to use; RegisterRecord lets a caller pre-declare the concrete Go
// type behind a named record so union members referencing that record
// by name can be resolved (see avro.RecordTypeLookup).
type Resolver struct {
	mu      sync.RWMutex
	records map[string]reflect.Type
}

func NewResolver() *Resolver {
	return &Resolver{records: make(map[string]reflect.Type)}
}

// RegisterRecord associates a schema's full name with the Go type that
// represents it, so a union member naming that record can be bound back
// to a concrete host type (a Go package path rarely matches an Avro
// namespace, so the caller supplies fullName rather than having one
// derived from t).
func (r *Resolver) RegisterRecord(fullName string, t reflect.Type) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.records == nil {
		r.records = make(map[string]reflect.Type)
	}
	r.records[fullName] = t
}

func (r *Resolver) HostTypeForRecord(fullName string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.records[fullName]
	return t, ok
}

// Resolve implements avro.TypeResolver.
func (r *Resolver) Resolve(t reflect.Type) (avro.TypeResolution, error) {
	elem := t
	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}

	switch elem {
	case bigRatType:
		return avro.DecimalResolution{HostType: t}, nil
	case durationType:
		return avro.DurationResolution{HostType: t}, nil
	case timeType:
		return avro.TimestampResolution{HostType: t}, nil
	case uuidType:
		return avro.PrimitiveResolution{HostType: t, Kind: avro.PrimitiveString}, nil
	}

	if t.Kind() == reflect.Ptr && elem.Kind() == reflect.Struct {
		return recordResolutionOf(elem), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return avro.PrimitiveResolution{HostType: t, Kind: avro.PrimitiveBoolean}, nil
	case reflect.Int32:
		return avro.PrimitiveResolution{HostType: t, Kind: avro.PrimitiveInt}, nil
	case reflect.Int, reflect.Int64:
		return avro.PrimitiveResolution{HostType: t, Kind: avro.PrimitiveLong}, nil
	case reflect.Float32:
		return avro.PrimitiveResolution{HostType: t, Kind: avro.PrimitiveFloat}, nil
	case reflect.Float64:
		return avro.PrimitiveResolution{HostType: t, Kind: avro.PrimitiveDouble}, nil
	case reflect.String:
		return avro.PrimitiveResolution{HostType: t, Kind: avro.PrimitiveString}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return avro.PrimitiveResolution{HostType: t, Kind: avro.PrimitiveBytes}, nil
		}
		return avro.ArrayResolution{HostType: t, ItemType: t.Elem()}, nil
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			// A fixed-size byte array also satisfies the fixed case in
			// codec_primitive.go via isFixedArrayType; reporting bytes
			// here would be wrong for it, so fall through to treating it
			// as a generic array of items instead.
			return avro.ArrayResolution{HostType: t, ItemType: t.Elem()}, nil
		}
		return avro.ArrayResolution{HostType: t, ItemType: t.Elem()}, nil
	case reflect.Map:
		return avro.MapResolution{HostType: t, KeyType: t.Key(), ValueType: t.Elem()}, nil
	case reflect.Struct:
		return recordResolutionOf(t), nil
	}
	return nil, &avro.UnsupportedType{Type: t, Message: "reflect resolver has no mapping for this host type"}
}

// recordResolutionOf builds a RecordResolution from t's exported fields.
// A field's Avro name comes from its `avro:"name"` tag when present
// (an `avro:"-"` tag excludes the field), otherwise the field's own Go
// name, matched with avro.ExactMatcher so the name survives the round
// trip needed by avro.BuildSchema.
func recordResolutionOf(t reflect.Type) avro.RecordResolution {
	var fields []avro.RecordFieldResolution
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("avro"); ok {
			tagName := strings.Split(tag, ",")[0]
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		fields = append(fields, avro.RecordFieldResolution{
			Name:       avro.ExactMatcher(name),
			Member:     sf.Name,
			MemberType: sf.Type,
		})
	}
	return avro.RecordResolution{HostType: t, Fields: fields}
}
