package model

import (
	"math"
	"reflect"
)

// Equal reports whether two model values are the same. Mappings compare
// key-by-key ignoring order, lists compare element-wise, and numbers compare
// by value regardless of their Go type (YAML and JSON decode differently).
func Equal(a, b any) bool {
	if da, ok := a.(*Dict); ok {
		db, ok := b.(*Dict)
		if !ok {
			return false
		}
		return dictEqual(da, db)
	}
	if la, ok := a.([]any); ok {
		lb, ok := b.([]any)
		if !ok || len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !Equal(la[i], lb[i]) {
				return false
			}
		}
		return true
	}
	if na, ok := toFloat(a); ok {
		nb, ok := toFloat(b)
		return ok && (na == nb || (math.IsNaN(na) && math.IsNaN(nb)))
	}
	return reflect.DeepEqual(a, b)
}

func dictEqual(a, b *Dict) bool {
	if a.Len() != b.Len() {
		return false
	}
	equal := true
	a.Range(func(key string, va any) bool {
		vb, ok := b.Get(key)
		if !ok || !Equal(va, vb) {
			equal = false
			return false
		}
		return true
	})
	return equal
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
