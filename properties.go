package avro

import orderedmap "github.com/wk8/go-ordered-map/v2"

// Properties holds the unreserved JSON keys a named or collection schema
// carries (anything outside the Avro attributes the model itself reads).
// Backed by an ordered map so re-emitting a schema's custom properties
// follows their insertion order instead of Go's randomized map iteration.
// The schema reader decodes a document into a Go map first, so it inserts
// a document's custom keys in sorted key order; the document's own key
// order is not preserved.
type Properties struct {
	m *orderedmap.OrderedMap[string, interface{}]
}

func newProperties() *Properties {
	return &Properties{m: orderedmap.New[string, interface{}]()}
}

// Get returns the value stored under key and whether it was present.
func (p *Properties) Get(key string) (interface{}, bool) {
	if p == nil || p.m == nil {
		return nil, false
	}
	return p.m.Get(key)
}

// Set stores value under key, preserving insertion order for new keys.
func (p *Properties) Set(key string, value interface{}) {
	if p.m == nil {
		p.m = orderedmap.New[string, interface{}]()
	}
	p.m.Set(key, value)
}

// Len reports the number of custom properties.
func (p *Properties) Len() int {
	if p == nil || p.m == nil {
		return 0
	}
	return p.m.Len()
}

// Keys returns the property keys in insertion order.
func (p *Properties) Keys() []string {
	if p == nil || p.m == nil {
		return nil
	}
	keys := make([]string, 0, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}
