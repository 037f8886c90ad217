package avro

import "reflect"

// codecCase pairs a predicate over (schema, host type) with the builder
// to run when it matches. Cases are tried in codecCases order; the first
// one that both matches and builds without error wins.
type codecCase struct {
	name  string
	match func(*buildContext, Schema, reflect.Type) bool
	build func(*buildContext, Schema, reflect.Type) (Serializer, Deserializer, error)
}

// codecCases is the canonical priority order from the codec builder's
// dispatch table: logical types first (so a Long carrying timestamp-micros
// is never mistaken for a plain Long), then primitives, then collections,
// then enum, then record, then union last (a union's members are resolved
// by recursing back into this same table).
var codecCases = []codecCase{
	{"decimal", matchDecimal, buildDecimal},
	{"duration", matchDuration, buildDuration},
	{"date", matchDate, buildDate},
	{"time-millis", matchTimeMillis, buildTimeMillis},
	{"time-micros", matchTimeMicros, buildTimeMicros},
	{"timestamp-millis", matchTimestampMillis, buildTimestampMillis},
	{"timestamp-micros", matchTimestampMicros, buildTimestampMicros},
	{"uuid", matchUuid, buildUuid},
	{"boolean", matchBoolean, buildBoolean},
	{"bytes", matchBytes, buildBytes},
	{"double", matchDouble, buildDouble},
	{"fixed", matchFixed, buildFixed},
	{"float", matchFloat, buildFloat},
	{"int", matchInt, buildInt},
	{"long", matchLong, buildLong},
	{"null", matchNull, buildNull},
	{"string", matchString, buildString},
	{"array", matchArray, buildArray},
	{"map", matchMap, buildMap},
	{"enum", matchEnum, buildEnum},
	{"record", matchRecord, buildRecord},
	{"union", matchUnion, buildUnion},
}

func buildCase(ctx *buildContext, schema Schema, t reflect.Type) (Serializer, Deserializer, error) {
	if schema == nil {
		return nil, nil, &InvalidSchema{Message: "cannot build a codec for a nil schema"}
	}
	var causes []error
	for _, c := range codecCases {
		if !c.match(ctx, schema, t) {
			continue
		}
		ser, deser, err := c.build(ctx, schema, t)
		if err == nil {
			return ser, deser, nil
		}
		ctx.log.Warn(c.name, "matched %s but failed to bind %s: %v", FullName(schema), t, err)
		causes = append(causes, err)
	}
	return nil, nil, &UnsupportedType{Type: t, Message: "no codec case matched schema " + FullName(schema), Causes: causes}
}
