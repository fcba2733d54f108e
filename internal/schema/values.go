package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToNumber attempts to interpret v as a float64. It accepts Go numeric
// types, json.Number and numeric strings. The second return value is false
// when no numeric interpretation exists.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// ToText renders v as its canonical text form. Numbers drop a trailing
// ".0" so that 50.0 and 50 produce the same text.
func ToText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// ToList returns v as a slice. Non-slice values are wrapped into a
// one-element slice; nil yields nil.
func ToList(v any) []any {
	switch l := v.(type) {
	case nil:
		return nil
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, e := range l {
			out[i] = e
		}
		return out
	case []float64:
		out := make([]any, len(l))
		for i, e := range l {
			out[i] = e
		}
		return out
	}
	return []any{v}
}

// FirstElement returns the first element of a slice value, or v itself
// when v is not a slice. Empty slices yield nil.
func FirstElement(v any) any {
	l, ok := v.([]any)
	if !ok {
		return v
	}
	if len(l) == 0 {
		return nil
	}
	return l[0]
}

// SplitCommaList splits comma-separated text into trimmed elements,
// dropping empties. Order is preserved and duplicates are kept.
func SplitCommaList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ValuesEqual compares two field values. Strings compare case-insensitively
// after trimming, numbers compare by value regardless of representation,
// and slices compare elementwise.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	la, aIsList := a.([]any)
	lb, bIsList := b.([]any)
	if aIsList || bIsList {
		la, lb = ToList(a), ToList(b)
		if len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !ValuesEqual(la[i], lb[i]) {
				return false
			}
		}
		return true
	}

	if na, ok := ToNumber(a); ok {
		if nb, ok := ToNumber(b); ok {
			return na == nb
		}
	}

	sa, aIsStr := a.(string)
	sb, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return strings.EqualFold(strings.TrimSpace(sa), strings.TrimSpace(sb))
	}

	// Structured values (maps etc.) compare by canonical JSON.
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ja) == string(jb)
}

// CoerceValue converts a field value to the given data type. Conversion is
// lenient: scalars are wrapped when a list type is requested (comma-bearing
// text is split into elements), the first element is taken when a scalar
// type is requested from a list, and values that cannot be parsed as
// numbers become nil rather than an error.
func CoerceValue(v any, to DataType) any {
	if v == nil {
		return nil
	}

	switch to {
	case DataTypeJSON:
		return v

	case DataTypeNumber:
		scalar := FirstElement(v)
		if n, ok := ToNumber(scalar); ok {
			return n
		}
		return nil

	case DataTypeString:
		scalar := FirstElement(v)
		if scalar == nil {
			return nil
		}
		return ToText(scalar)

	case DataTypeListNumber:
		out := make([]any, 0)
		for _, e := range coerceToElements(v) {
			if n, ok := ToNumber(e); ok {
				out = append(out, n)
			}
		}
		return out

	case DataTypeListString:
		elements := coerceToElements(v)
		out := make([]any, 0, len(elements))
		for _, e := range elements {
			out = append(out, ToText(e))
		}
		return out
	}

	return v
}

// coerceToElements turns v into list elements for a list-type coercion:
// slices stay as-is, comma-bearing text splits, scalars wrap.
func coerceToElements(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	if s, ok := v.(string); ok && strings.Contains(s, ",") {
		parts := SplitCommaList(s)
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out
	}
	return ToList(v)
}
