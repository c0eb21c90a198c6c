package engine

import (
	"github.com/tuannm99/miniscylla/internal/catalog"
	"github.com/tuannm99/miniscylla/internal/cqlerr"
	"github.com/tuannm99/miniscylla/internal/value"
)

// computeAggregate evaluates one aggregate function over a row set.
// Null/absent values are excluded except for COUNT(*)/COUNT(1). SUM of an
// empty set is 0; MIN/MAX/AVG of an empty set are null.
func computeAggregate(fn, arg string, distinct bool, rows []*catalog.Row) (any, error) {
	if fn == "count" && (arg == "*" || arg == "1") {
		return int64(len(rows)), nil
	}

	var vals []any
	seen := map[string]bool{}
	for _, row := range rows {
		v := row.Values[arg]
		if v == nil {
			continue
		}
		if distinct {
			sig := value.Signature([]any{v})
			if seen[sig] {
				continue
			}
			seen[sig] = true
		}
		vals = append(vals, v)
	}

	switch fn {
	case "count":
		return int64(len(vals)), nil

	case "sum":
		intSum, floatSum, anyFloat, err := sumValues(fn, arg, vals)
		if err != nil {
			return nil, err
		}
		if anyFloat {
			return float64(intSum) + floatSum, nil
		}
		return intSum, nil

	case "min", "max":
		if len(vals) == 0 {
			return nil, nil
		}
		best := vals[0]
		for _, v := range vals[1:] {
			cmp, err := value.Compare(v, best)
			if err != nil {
				return nil, cqlerr.Invalidf("cannot compute %s over column %q: mixed value types", fn, arg)
			}
			if (fn == "min" && cmp < 0) || (fn == "max" && cmp > 0) {
				best = v
			}
		}
		return best, nil

	case "avg":
		if len(vals) == 0 {
			return nil, nil
		}
		intSum, floatSum, _, err := sumValues(fn, arg, vals)
		if err != nil {
			return nil, err
		}
		return (float64(intSum) + floatSum) / float64(len(vals)), nil

	default:
		return nil, cqlerr.Unsupportedf("aggregate function %q", fn)
	}
}

func sumValues(fn, arg string, vals []any) (intSum int64, floatSum float64, anyFloat bool, err error) {
	for _, v := range vals {
		i, f, isInt, ok := value.AsNumber(v)
		if !ok {
			return 0, 0, false, cqlerr.Invalidf("%s requires numeric values in column %q", fn, arg)
		}
		if isInt {
			intSum += i
		} else {
			anyFloat = true
			floatSum += f
		}
	}
	return intSum, floatSum, anyFloat, nil
}
