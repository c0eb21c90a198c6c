package value

import (
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/tuannm99/miniscylla/internal/cqlerr"
)

// Equal reports value equality with numeric widening, falling back to deep
// equality for collections.
func Equal(a, b any) bool {
	if c, err := Compare(a, b); err == nil {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// Compare orders two scalar values: negative when a < b, zero when equal.
// Mixed int/float pairs are widened; strings, booleans and UUIDs compare in
// their natural order. Nil compares equal to nil and below everything else.
func Compare(a, b any) (int, error) {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0, nil
		case a == nil:
			return -1, nil
		default:
			return 1, nil
		}
	}

	if ai, aok := asInt(a); aok {
		if bi, bok := asInt(b); bok {
			return compareOrdered(ai, bi), nil
		}
	}
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return compareOrdered(af, bf), nil
		}
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, nil
			case !x:
				return -1, nil
			default:
				return 1, nil
			}
		}
	case uuid.UUID:
		if y, ok := b.(uuid.UUID); ok {
			return strings.Compare(x.String(), y.String()), nil
		}
	}
	return 0, cqlerr.Invalidf("cannot compare %T with %T", a, b)
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		f, err := cast.ToFloat64E(v)
		return f, err == nil
	}
	return 0, false
}

// AsNumber widens a value for aggregation: integers stay exact, floats go
// through float64. ok is false for non-numeric values.
func AsNumber(v any) (i int64, f float64, isInt, ok bool) {
	if n, good := asInt(v); good {
		return n, float64(n), true, true
	}
	if x, good := asFloat(v); good {
		return 0, x, false, true
	}
	return 0, 0, false, false
}
