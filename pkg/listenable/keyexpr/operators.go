package keyexpr

import (
	"strings"

	"github.com/spf13/cast"
)

type comparator func(left, right any) bool

// Longer tokens come first so ">=" is not read as ">".
var comparators = []struct {
	token string
	cmp   comparator
}{
	{"==", equals},
	{"!=", func(l, r any) bool { return !equals(l, r) }},
	{">=", numeric(func(l, r float64) bool { return l >= r })},
	{"<=", numeric(func(l, r float64) bool { return l <= r })},
	{">", numeric(func(l, r float64) bool { return l > r })},
	{"<", numeric(func(l, r float64) bool { return l < r })},
	{" contains ", text(strings.Contains)},
	{" startswith ", text(strings.HasPrefix)},
	{" endswith ", text(strings.HasSuffix)},
}

// equals compares numerically when both sides are numbers, as strings otherwise.
func equals(left, right any) bool {
	if isNumber(left) && isNumber(right) {
		return cast.ToFloat64(left) == cast.ToFloat64(right)
	}
	return cast.ToString(left) == cast.ToString(right)
}

func numeric(fn func(l, r float64) bool) comparator {
	return func(left, right any) bool {
		l, errL := cast.ToFloat64E(left)
		r, errR := cast.ToFloat64E(right)
		if errL != nil || errR != nil {
			return false
		}
		return fn(l, r)
	}
}

func text(fn func(s, sub string) bool) comparator {
	return func(left, right any) bool {
		return fn(cast.ToString(left), cast.ToString(right))
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int64, float64:
		return true
	}
	return false
}

func isTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case float64:
		return val != 0
	}
	return true
}
