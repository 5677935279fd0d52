package constraint

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParam matches every *ParamError through errors.Is.
var ErrInvalidParam = errors.New("constraint: invalid parameter")

// ParamError reports a malformed or missing constraint parameter.
type ParamError struct {
	Constraint string
	Param      string
	Reason     string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: parameter %s: %s", e.Constraint, e.Param, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidParam) match.
func (e *ParamError) Is(target error) bool { return target == ErrInvalidParam }

func paramErr(constraint, param, format string, args ...any) error {
	return &ParamError{Constraint: constraint, Param: param, Reason: fmt.Sprintf(format, args...)}
}

// Params carries the raw parameters of one descriptor. Values are usually
// decoded from JSON or written as Go literals, so numbers may arrive as
// float64, int or []any.
type Params map[string]any

func (p Params) floats(constraint, key string) ([]float64, error) {
	raw, ok := p[key]
	if !ok {
		return nil, paramErr(constraint, key, "missing")
	}
	var out []float64
	switch v := raw.(type) {
	case []float64:
		out = append(out, v...)
	case []int:
		for _, x := range v {
			out = append(out, float64(x))
		}
	case []any:
		for k, x := range v {
			f, ok := number(x)
			if !ok {
				return nil, paramErr(constraint, key, "element %d is %T, want number", k, x)
			}
			out = append(out, f)
		}
	default:
		return nil, paramErr(constraint, key, "got %T, want number list", raw)
	}
	for k, f := range out {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, paramErr(constraint, key, "element %d is not finite", k)
		}
	}
	return out, nil
}

func (p Params) ints(constraint, key string) ([]int, error) {
	fs, err := p.floats(constraint, key)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(fs))
	for k, f := range fs {
		if f != math.Trunc(f) {
			return nil, paramErr(constraint, key, "element %d is %v, want integer", k, f)
		}
		out[k] = int(f)
	}
	return out, nil
}

func (p Params) bools(constraint, key string) ([]bool, error) {
	raw, ok := p[key]
	if !ok {
		return nil, paramErr(constraint, key, "missing")
	}
	switch v := raw.(type) {
	case []bool:
		return append([]bool(nil), v...), nil
	case []any:
		out := make([]bool, len(v))
		for k, x := range v {
			b, ok := x.(bool)
			if !ok {
				return nil, paramErr(constraint, key, "element %d is %T, want bool", k, x)
			}
			out[k] = b
		}
		return out, nil
	default:
		return nil, paramErr(constraint, key, "got %T, want bool list", raw)
	}
}

func (p Params) matrix(constraint, key string) ([][]float64, error) {
	raw, ok := p[key]
	if !ok {
		return nil, paramErr(constraint, key, "missing")
	}
	var rows []any
	switch v := raw.(type) {
	case [][]float64:
		for _, r := range v {
			rows = append(rows, r)
		}
	case [][]int:
		for _, r := range v {
			rows = append(rows, r)
		}
	case [][]any:
		for _, r := range v {
			rows = append(rows, r)
		}
	case []any:
		rows = v
	default:
		return nil, paramErr(constraint, key, "got %T, want matrix", raw)
	}
	out := make([][]float64, len(rows))
	for r, row := range rows {
		f, err := Params{key: row}.floats(constraint, key)
		if err != nil {
			var pe *ParamError
			if errors.As(err, &pe) {
				pe.Reason = fmt.Sprintf("row %d: %s", r, pe.Reason)
			}
			return nil, err
		}
		out[r] = f
	}
	return out, nil
}

// float reads an optional scalar, falling back to def when absent.
func (p Params) float(constraint, key string, def float64) (float64, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	f, ok := number(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, paramErr(constraint, key, "got %v, want finite number", raw)
	}
	return f, nil
}

func number(x any) (float64, bool) {
	switch n := x.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	default:
		return 0, false
	}
}

// perKind checks that a per-kind array covers every kind, background
// included.
func perKind(constraint, param string, n, kinds int) error {
	if n != kinds {
		return paramErr(constraint, param, "has %d entries, want one per kind (%d)", n, kinds)
	}
	return nil
}

func nonNegative(constraint, param string, xs []float64) error {
	for k, x := range xs {
		if x < 0 {
			return paramErr(constraint, param, "entry %d is negative (%v)", k, x)
		}
	}
	return nil
}
