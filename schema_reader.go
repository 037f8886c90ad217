package avro

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Cache maps a schema's full name (and synthetic keys for anonymous
// schemas, like "array<int>" or "long!timestamp-millis") to the Schema
// instance already produced for it, so a second reference to the same
// name, or the same concrete anonymous shape, reuses the identical node
// instead of constructing a duplicate.
type Cache struct {
	mu    sync.Mutex
	byKey *orderedmap.OrderedMap[string, Schema]
}

func NewCache() *Cache {
	return &Cache{byKey: orderedmap.New[string, Schema]()}
}

func (c *Cache) lookup(key string) (Schema, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byKey.Get(key)
}

// insertNamed registers a named schema under key, failing if that key has
// already been claimed by an earlier definition in the same read.
func (c *Cache) insertNamed(key string, s Schema) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byKey.Get(key); exists {
		return &InvalidSchema{Message: fmt.Sprintf("definition already read: %s", key)}
	}
	c.byKey.Set(key, s)
	return nil
}

// getOrCreateSynthetic returns the cached node for an anonymous schema's
// synthetic key, building it with create only the first time the key is
// seen.
func (c *Cache) getOrCreateSynthetic(key string, create func() (Schema, error)) (Schema, error) {
	c.mu.Lock()
	if s, ok := c.byKey.Get(key); ok {
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()
	s, err := create()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.byKey.Get(key); ok {
		return existing, nil
	}
	c.byKey.Set(key, s)
	return s, nil
}

type readContext struct {
	cache *Cache
	scope string
}

var primitiveTokens = map[string]SchemaType{
	"null": TypeNull, "boolean": TypeBoolean, "int": TypeInt, "long": TypeLong,
	"float": TypeFloat, "double": TypeDouble, "bytes": TypeBytes, "string": TypeString,
}

// ParseSchema reads a schema from its JSON (or bare reference name) text,
// using a fresh cache and no enclosing namespace.
func ParseSchema(rawSchema string) (Schema, error) {
	return ParseSchemaWithCache(rawSchema, NewCache(), "")
}

// ParseSchemaFile reads a schema document from disk.
func ParseSchemaFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSchema(string(data))
}

// MustParseSchema is ParseSchema, panicking on error. Convenience for
// package-level schema literals in tests and examples.
func MustParseSchema(rawSchema string) Schema {
	s, err := ParseSchema(rawSchema)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseSchemaWithCache reads a schema, sharing cache across calls (so a
// later document can reference an earlier one's named schemas) and scoping
// unqualified names against scope.
func ParseSchemaWithCache(rawSchema string, cache *Cache, scope string) (Schema, error) {
	if cache == nil {
		cache = NewCache()
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(rawSchema), &decoded); err != nil {
		decoded = rawSchema
	}
	return readSchema(decoded, &readContext{cache: cache, scope: scope})
}

func readSchema(raw interface{}, ctx *readContext) (Schema, error) {
	switch v := raw.(type) {
	case nil:
		return NewPrimitiveSchema(TypeNull)
	case string:
		return readReference(v, ctx)
	case []interface{}:
		return readUnion(v, ctx)
	case map[string]interface{}:
		return readObject(v, ctx)
	default:
		return nil, &UnknownSchema{Message: fmt.Sprintf("cannot interpret schema value of type %T", raw)}
	}
}

func readReference(token string, ctx *readContext) (Schema, error) {
	if kind, ok := primitiveTokens[token]; ok {
		return ctx.cache.getOrCreateSynthetic(token, func() (Schema, error) { return NewPrimitiveSchema(kind) })
	}
	qualified := qualify(token, ctx.scope)
	if s, ok := ctx.cache.lookup(qualified); ok {
		return s, nil
	}
	if qualified != token {
		if s, ok := ctx.cache.lookup(token); ok {
			return s, nil
		}
	}
	return nil, &UnknownSchema{Message: fmt.Sprintf("unknown schema reference %q", token)}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

type objectReaderCase struct {
	name  string
	match func(map[string]interface{}) bool
	read  func(map[string]interface{}, *readContext) (Schema, error)
}

// objectReaderCases is evaluated in order: logical-type cases first (in
// the sub-order given here), then the collection cases, then the named
// cases, then the primitive-or-reference default.
var objectReaderCases = []objectReaderCase{
	{"date", isDateCase, readDate},
	{"decimal", isDecimalCase, readDecimal},
	{"duration", isDurationCase, readDuration},
	{"time-micros", isTimeMicrosCase, readTimeMicros},
	{"timestamp-micros", isTimestampMicrosCase, readTimestampMicros},
	{"time-millis", isTimeMillisCase, readTimeMillis},
	{"timestamp-millis", isTimestampMillisCase, readTimestampMillis},
	{"uuid", isUuidCase, readUuid},
	{"array", isArrayCase, readArray},
	{"map", isMapCase, readMap},
	{"enum", isEnumCase, readEnum},
	{"fixed", isFixedCase, readFixed},
	{"record", isRecordCase, readRecord},
	{"default", isDefaultObjectCase, readDefaultObject},
}

func readObject(v map[string]interface{}, ctx *readContext) (Schema, error) {
	var causes []error
	for _, c := range objectReaderCases {
		if !c.match(v) {
			continue
		}
		s, err := c.read(v, ctx)
		if err == nil {
			return s, nil
		}
		causes = append(causes, fmt.Errorf("case %q: %w", c.name, err))
	}
	return nil, &UnknownSchema{Message: "no schema case matched this object", Causes: causes}
}

func isDateCase(v map[string]interface{}) bool {
	return asString(v["type"]) == "int" && asString(v["logicalType"]) == "date"
}
func isDecimalCase(v map[string]interface{}) bool {
	t := asString(v["type"])
	return (t == "bytes" || t == "fixed") && asString(v["logicalType"]) == "decimal"
}
func isDurationCase(v map[string]interface{}) bool {
	return asString(v["type"]) == "fixed" && asString(v["logicalType"]) == "duration"
}
func isTimeMicrosCase(v map[string]interface{}) bool {
	return asString(v["type"]) == "long" && asString(v["logicalType"]) == "time-micros"
}
func isTimestampMicrosCase(v map[string]interface{}) bool {
	return asString(v["type"]) == "long" && asString(v["logicalType"]) == "timestamp-micros"
}
func isTimeMillisCase(v map[string]interface{}) bool {
	return asString(v["type"]) == "int" && asString(v["logicalType"]) == "time-millis"
}
func isTimestampMillisCase(v map[string]interface{}) bool {
	return asString(v["type"]) == "long" && asString(v["logicalType"]) == "timestamp-millis"
}
func isUuidCase(v map[string]interface{}) bool {
	return asString(v["type"]) == "string" && asString(v["logicalType"]) == "uuid"
}
func isArrayCase(v map[string]interface{}) bool  { return asString(v["type"]) == "array" }
func isMapCase(v map[string]interface{}) bool    { return asString(v["type"]) == "map" }
func isEnumCase(v map[string]interface{}) bool   { return asString(v["type"]) == "enum" }
func isFixedCase(v map[string]interface{}) bool  { return asString(v["type"]) == "fixed" }
func isRecordCase(v map[string]interface{}) bool { return asString(v["type"]) == "record" }
func isDefaultObjectCase(v map[string]interface{}) bool {
	_, ok := v["type"].(string)
	return ok
}

func readDefaultObject(v map[string]interface{}, ctx *readContext) (Schema, error) {
	return readReference(v["type"].(string), ctx)
}

func readLogicalOnPrimitive(kind SchemaType, lt LogicalType, ctx *readContext) (Schema, error) {
	key := kind.token() + "!" + lt.logicalTypeName()
	return ctx.cache.getOrCreateSynthetic(key, func() (Schema, error) {
		s, err := NewPrimitiveSchema(kind)
		if err != nil {
			return nil, err
		}
		if err := s.SetLogicalType(lt); err != nil {
			return nil, err
		}
		return s, nil
	})
}

func readDate(v map[string]interface{}, ctx *readContext) (Schema, error) {
	return readLogicalOnPrimitive(TypeInt, &DateLogical{}, ctx)
}
func readTimeMillis(v map[string]interface{}, ctx *readContext) (Schema, error) {
	return readLogicalOnPrimitive(TypeInt, &TimeMillisLogical{}, ctx)
}
func readTimeMicros(v map[string]interface{}, ctx *readContext) (Schema, error) {
	return readLogicalOnPrimitive(TypeLong, &TimeMicrosLogical{}, ctx)
}
func readTimestampMillis(v map[string]interface{}, ctx *readContext) (Schema, error) {
	return readLogicalOnPrimitive(TypeLong, &TimestampMillisLogical{}, ctx)
}
func readTimestampMicros(v map[string]interface{}, ctx *readContext) (Schema, error) {
	return readLogicalOnPrimitive(TypeLong, &TimestampMicrosLogical{}, ctx)
}
func readUuid(v map[string]interface{}, ctx *readContext) (Schema, error) {
	return readLogicalOnPrimitive(TypeString, &UuidLogical{}, ctx)
}

func parseDecimalParams(v map[string]interface{}) (precision, scale int, err error) {
	pf, ok := v["precision"].(float64)
	if !ok {
		return 0, 0, &InvalidSchema{Message: "decimal logical type requires precision"}
	}
	precision = int(pf)
	if sf, ok := v["scale"].(float64); ok {
		scale = int(sf)
	}
	return precision, scale, nil
}

func readDecimal(v map[string]interface{}, ctx *readContext) (Schema, error) {
	if asString(v["type"]) == "fixed" {
		return readFixed(v, ctx)
	}
	precision, scale, err := parseDecimalParams(v)
	if err != nil {
		return nil, err
	}
	lt, err := NewDecimalLogical(precision, scale)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("bytes!decimal(%d,%d)", precision, scale)
	return ctx.cache.getOrCreateSynthetic(key, func() (Schema, error) {
		s, err := NewPrimitiveSchema(TypeBytes)
		if err != nil {
			return nil, err
		}
		if err := s.SetLogicalType(lt); err != nil {
			return nil, err
		}
		return s, nil
	})
}

func readDuration(v map[string]interface{}, ctx *readContext) (Schema, error) {
	return readFixed(v, ctx)
}

func readArray(v map[string]interface{}, ctx *readContext) (Schema, error) {
	itemsRaw, ok := v["items"]
	if !ok {
		return nil, &InvalidSchema{Message: "array schema missing items"}
	}
	items, err := readSchema(itemsRaw, ctx)
	if err != nil {
		return nil, err
	}
	key := "array<" + cacheKeyOf(items) + ">"
	s, err := ctx.cache.getOrCreateSynthetic(key, func() (Schema, error) { return NewArraySchema(items) })
	if err != nil {
		return nil, err
	}
	readProperties(v, s.(*ArraySchema).props)
	return s, nil
}

func readMap(v map[string]interface{}, ctx *readContext) (Schema, error) {
	valuesRaw, ok := v["values"]
	if !ok {
		return nil, &InvalidSchema{Message: "map schema missing values"}
	}
	values, err := readSchema(valuesRaw, ctx)
	if err != nil {
		return nil, err
	}
	key := "map<" + cacheKeyOf(values) + ">"
	s, err := ctx.cache.getOrCreateSynthetic(key, func() (Schema, error) { return NewMapSchema(values) })
	if err != nil {
		return nil, err
	}
	readProperties(v, s.(*MapSchema).props)
	return s, nil
}

func readUnion(arr []interface{}, ctx *readContext) (Schema, error) {
	members := make([]Schema, 0, len(arr))
	var causes []error
	for _, raw := range arr {
		m, err := readSchema(raw, ctx)
		if err != nil {
			causes = append(causes, err)
			continue
		}
		members = append(members, m)
	}
	if len(causes) > 0 {
		return nil, &UnknownSchema{Message: "failed to read union member(s)", Causes: causes}
	}
	u, err := NewUnionSchema(members...)
	if err != nil {
		return nil, err
	}
	key := cacheKeyOf(u)
	return ctx.cache.getOrCreateSynthetic(key, func() (Schema, error) { return u, nil })
}

func cacheKeyOf(s Schema) string {
	switch t := s.(type) {
	case *PrimitiveSchema:
		if t.logical != nil {
			if dl, ok := t.logical.(*DecimalLogical); ok {
				return fmt.Sprintf("%s!decimal(%d,%d)", t.kind.token(), dl.precision, dl.scale)
			}
			return t.kind.token() + "!" + t.logical.logicalTypeName()
		}
		return t.kind.token()
	case *ArraySchema:
		return "array<" + cacheKeyOf(t.items) + ">"
	case *MapSchema:
		return "map<" + cacheKeyOf(t.values) + ">"
	case *UnionSchema:
		parts := make([]string, len(t.members))
		for i, m := range t.members {
			parts[i] = cacheKeyOf(m)
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return FullName(s)
	}
}

func readProperties(v map[string]interface{}, props *Properties) {
	if props == nil {
		return
	}
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if isReservedSchemaKey(key) {
			continue
		}
		props.Set(key, v[key])
	}
}

func isReservedSchemaKey(name string) bool {
	switch name {
	case "aliases", "doc", "fields", "items", "name", "logicalType", "precision",
		"scale", "namespace", "size", "symbols", "type", "values", "default":
		return true
	}
	return false
}

func readEnum(v map[string]interface{}, ctx *readContext) (Schema, error) {
	name, ok := v["name"].(string)
	if !ok {
		return nil, &InvalidSchema{Message: "enum schema missing name"}
	}
	namespace := ctx.scope
	if ns, ok := v["namespace"].(string); ok {
		namespace = ns
	}
	full := qualify(name, namespace)
	e, err := NewEnumSchema(full, nil)
	if err != nil {
		return nil, err
	}
	if doc, ok := v["doc"].(string); ok {
		e.doc = doc
	}
	symbolsRaw, ok := v["symbols"].([]interface{})
	if !ok {
		return nil, &InvalidSchema{Message: "enum schema missing symbols"}
	}
	for _, sv := range symbolsRaw {
		sym, ok := sv.(string)
		if !ok {
			return nil, &InvalidSchema{Message: "enum symbol must be a string"}
		}
		if err := e.AddSymbol(sym); err != nil {
			return nil, err
		}
	}
	if err := ctx.cache.insertNamed(full, e); err != nil {
		return nil, err
	}
	if aliasesRaw, ok := v["aliases"].([]interface{}); ok {
		for _, a := range aliasesRaw {
			alias, _ := a.(string)
			if err := e.AddAlias(alias); err != nil {
				return nil, err
			}
			if err := ctx.cache.insertNamed(qualifyAlias(alias, namespace), e); err != nil {
				return nil, err
			}
		}
	}
	readProperties(v, e.props)
	return e, nil
}

func readFixed(v map[string]interface{}, ctx *readContext) (Schema, error) {
	name, ok := v["name"].(string)
	if !ok {
		return nil, &InvalidSchema{Message: "fixed schema missing name"}
	}
	namespace := ctx.scope
	if ns, ok := v["namespace"].(string); ok {
		namespace = ns
	}
	full := qualify(name, namespace)
	sizeF, ok := v["size"].(float64)
	if !ok {
		return nil, &InvalidSchema{Message: "fixed schema missing size"}
	}
	f, err := NewFixedSchema(full, int(sizeF))
	if err != nil {
		return nil, err
	}
	if err := ctx.cache.insertNamed(full, f); err != nil {
		return nil, err
	}
	if aliasesRaw, ok := v["aliases"].([]interface{}); ok {
		for _, a := range aliasesRaw {
			alias, _ := a.(string)
			if err := f.AddAlias(alias); err != nil {
				return nil, err
			}
			if err := ctx.cache.insertNamed(qualifyAlias(alias, namespace), f); err != nil {
				return nil, err
			}
		}
	}
	if lt, ok := v["logicalType"].(string); ok {
		switch lt {
		case "decimal":
			precision, scale, err := parseDecimalParams(v)
			if err != nil {
				return nil, err
			}
			dl, err := NewDecimalLogical(precision, scale)
			if err != nil {
				return nil, err
			}
			if err := f.SetLogicalType(dl); err != nil {
				return nil, err
			}
		case "duration":
			if err := f.SetLogicalType(&DurationLogical{}); err != nil {
				return nil, err
			}
		}
	}
	readProperties(v, f.props)
	return f, nil
}

func readRecord(v map[string]interface{}, ctx *readContext) (Schema, error) {
	name, ok := v["name"].(string)
	if !ok {
		return nil, &InvalidSchema{Message: "record schema missing name"}
	}
	namespace := ctx.scope
	if ns, ok := v["namespace"].(string); ok {
		namespace = ns
	}
	full := qualify(name, namespace)
	r, err := NewRecordSchema(full)
	if err != nil {
		return nil, err
	}
	if doc, ok := v["doc"].(string); ok {
		r.doc = doc
	}
	// Inserted before fields are read so a field may reference this record
	// recursively.
	if err := ctx.cache.insertNamed(full, r); err != nil {
		return nil, err
	}
	if aliasesRaw, ok := v["aliases"].([]interface{}); ok {
		for _, a := range aliasesRaw {
			alias, _ := a.(string)
			if err := r.AddAlias(alias); err != nil {
				return nil, err
			}
			if err := ctx.cache.insertNamed(qualifyAlias(alias, namespace), r); err != nil {
				return nil, err
			}
		}
	}
	fieldsRaw, ok := v["fields"].([]interface{})
	if !ok {
		return nil, &InvalidSchema{Message: "record schema missing fields"}
	}
	// r.Namespace() is the namespace actually bound to this record (split
	// from a dotted name when no explicit "namespace" field was given),
	// not the raw namespace/scope variable above — an unqualified child
	// reference must resolve against that derived namespace or the
	// round trip through the writer (which emits the derived namespace
	// explicitly) would resolve it differently the second time.
	childCtx := &readContext{cache: ctx.cache, scope: r.Namespace()}
	var causes []error
	for _, fr := range fieldsRaw {
		fm, ok := fr.(map[string]interface{})
		if !ok {
			causes = append(causes, &InvalidSchema{Message: "record field must be an object"})
			continue
		}
		fname, ok := fm["name"].(string)
		if !ok {
			causes = append(causes, &InvalidSchema{Message: "record field missing name"})
			continue
		}
		ftypeRaw, ok := fm["type"]
		if !ok {
			causes = append(causes, &InvalidSchema{Message: fmt.Sprintf("record field %q missing type", fname)})
			continue
		}
		ftype, err := readSchema(ftypeRaw, childCtx)
		if err != nil {
			causes = append(causes, err)
			continue
		}
		field, err := NewRecordField(fname, ftype)
		if err != nil {
			causes = append(causes, err)
			continue
		}
		if doc, ok := fm["doc"].(string); ok {
			field.doc = doc
		}
		if def, ok := fm["default"]; ok {
			raw, _ := json.Marshal(def)
			field.SetDefault(raw)
		}
		if aliasesRaw, ok := fm["aliases"].([]interface{}); ok {
			for _, a := range aliasesRaw {
				if s, ok := a.(string); ok {
					if err := field.AddAlias(s); err != nil {
						causes = append(causes, err)
					}
				}
			}
		}
		readProperties(fm, field.props)
		if err := r.AddField(field); err != nil {
			causes = append(causes, err)
		}
	}
	if len(causes) > 0 {
		return nil, &InvalidSchema{Message: fmt.Sprintf("failed to read fields of record %s", full), Causes: causes}
	}
	readProperties(v, r.props)
	return r, nil
}
