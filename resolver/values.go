package resolver

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/erraggy/modeltools/model"
	"github.com/erraggy/modeltools/modelerrors"
	"github.com/erraggy/modeltools/registry"
)

// MaskedValue replaces password values in logs and reports.
const MaskedValue = "******"

// Check reports whether value fits the attribute's declared type. A nil
// value (an attribute written with no value) always fits.
func (a *AttributeFacts) Check(value any) error {
	_, err := a.Convert(value)
	return err
}

// Convert normalizes value to the attribute's type: integers (32-bit) and
// longs become int64, doubles float64, booleans bool, lists and references
// []any of strings, properties *model.Dict and everything else string.
func (a *AttributeFacts) Convert(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	mismatch := &modelerrors.AttributeTypeMismatchError{Attribute: a.Name, Expected: string(a.Type), Value: value}
	switch a.Type {
	case registry.TypeInteger, registry.TypeLong:
		n, ok := toInt(value)
		if !ok {
			return nil, mismatch
		}
		if a.Type == registry.TypeInteger && (n < math.MinInt32 || n > math.MaxInt32) {
			return nil, mismatch
		}
		return n, nil
	case registry.TypeDouble:
		f, ok := toFloat(value)
		if !ok {
			return nil, mismatch
		}
		return f, nil
	case registry.TypeBoolean:
		b, ok := toBool(value)
		if !ok {
			return nil, mismatch
		}
		return b, nil
	case registry.TypeList, registry.TypeReferences:
		if _, isDict := value.(*model.Dict); isDict {
			return nil, mismatch
		}
		elems := model.SplitList(value)
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = e
		}
		return out, nil
	case registry.TypeProperties:
		d, ok := value.(*model.Dict)
		if !ok {
			return nil, mismatch
		}
		return d.Clone(), nil
	default:
		switch v := value.(type) {
		case *model.Dict, []any:
			return nil, mismatch
		case string:
			return v, nil
		default:
			return fmt.Sprint(v), nil
		}
	}
}

// Display returns value formatted for logs, masking passwords.
func (a *AttributeFacts) Display(value any) string {
	if a.Password && value != nil {
		return MaskedValue
	}
	switch v := value.(type) {
	case *model.Dict:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v.Plain())
		}
		return string(data)
	case []any:
		return strings.Join(model.SplitList(v), ",")
	default:
		return fmt.Sprint(v)
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		// -2^63 is exact in float64; 2^63 is not representable as int64.
		if n != math.Trunc(n) || n < math.MinInt64 || n >= -math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	default:
		return false, false
	}
}
