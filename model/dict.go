package model

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Dict is an insertion-ordered mapping from string keys to model values.
//
// Values are one of: *Dict, []any, string, bool, int, int64, float64 or nil.
// A nil *Dict behaves as an empty, read-only mapping.
type Dict struct {
	om *orderedmap.OrderedMap[string, any]
}

// NewDict returns an empty Dict.
func NewDict() *Dict {
	return &Dict{om: orderedmap.New[string, any]()}
}

// DictOf builds a Dict from alternating key/value arguments.
// It panics if a key is not a string or the argument count is odd.
func DictOf(kv ...any) *Dict {
	if len(kv)%2 != 0 {
		panic("model: DictOf requires an even number of arguments")
	}
	d := NewDict()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic("model: DictOf keys must be strings")
		}
		d.Set(key, kv[i+1])
	}
	return d
}

// Len returns the number of keys.
func (d *Dict) Len() int {
	if d == nil || d.om == nil {
		return 0
	}
	return d.om.Len()
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (any, bool) {
	if d == nil || d.om == nil {
		return nil, false
	}
	return d.om.Get(key)
}

// Has reports whether key is present.
func (d *Dict) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (d *Dict) Set(key string, value any) {
	if d.om == nil {
		d.om = orderedmap.New[string, any]()
	}
	d.om.Set(key, value)
}

// Delete removes key and reports whether it was present.
func (d *Dict) Delete(key string) bool {
	if d == nil || d.om == nil {
		return false
	}
	_, ok := d.om.Delete(key)
	return ok
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	if d.Len() == 0 {
		return nil
	}
	keys := make([]string, 0, d.om.Len())
	for pair := d.om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Range calls fn for each entry in insertion order until fn returns false.
// fn must not add or remove keys.
func (d *Dict) Range(fn func(key string, value any) bool) {
	if d.Len() == 0 {
		return
	}
	for pair := d.om.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Dict returns the mapping stored under key. A key holding an explicit null
// yields an empty Dict, since YAML writes "Folder:" for an empty folder.
func (d *Dict) Dict(key string) (*Dict, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	return AsDict(v)
}

// AsDict converts a model value into a mapping. nil converts to an empty Dict.
func AsDict(v any) (*Dict, bool) {
	switch t := v.(type) {
	case *Dict:
		if t == nil {
			return NewDict(), true
		}
		return t, true
	case nil:
		return NewDict(), true
	default:
		return nil, false
	}
}

// Clone returns a deep copy of d.
func (d *Dict) Clone() *Dict {
	out := NewDict()
	d.Range(func(key string, value any) bool {
		out.Set(key, CloneValue(value))
		return true
	})
	return out
}

// CloneValue deep-copies a model value.
func CloneValue(v any) any {
	switch t := v.(type) {
	case *Dict:
		if t == nil {
			return (*Dict)(nil)
		}
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON writes the mapping as a JSON object in insertion order.
func (d *Dict) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var err error
	d.Range(func(key string, value any) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		var kb, vb []byte
		if kb, err = json.Marshal(key); err != nil {
			return false
		}
		if vb, err = json.Marshal(value); err != nil {
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Plain converts d into nested map[string]any / []any values, dropping key
// order. It is used where a generic-data library expects plain maps.
func (d *Dict) Plain() map[string]any {
	out := make(map[string]any, d.Len())
	d.Range(func(key string, value any) bool {
		out[key] = plainValue(value)
		return true
	})
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Dict:
		return t.Plain()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}
