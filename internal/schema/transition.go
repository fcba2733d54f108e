package schema

import "strings"

// defaultRangeSpan is the width of the range synthesized when switching a
// rule to the range kind: [R, R+100].
const defaultRangeSpan = 100

// Transition converts a rule from its current kind to the target kind,
// carrying a representative value across so the user's data survives the
// switch. The returned value is the new Field.Value: populated only when
// the target is exact, nil otherwise.
//
// Representative extraction: exact uses the field value, tolerance its
// value parameter, range its min, contains its substring, contains_any and
// contains_all their item list. Numeric targets coerce the representative
// with a lenient parse; unparseable input falls back to deterministic
// defaults rather than raising.
func Transition(rule Rule, value any, dataType DataType, target ConstraintKind) (Rule, any) {
	rep := representative(rule, value)

	switch target {
	case KindExact:
		return ExactRule(), rep

	case KindTolerance:
		tol := 0.0
		if c, ok := rule.Constraint.(Tolerance); ok {
			// Switching data type re-coerces the value but keeps the
			// tolerance the user already entered.
			tol = c.Tolerance
		}
		return Rule{Constraint: Tolerance{Value: toleranceValue(rep, dataType), Tolerance: tol}}, nil

	case KindRange:
		n := 0.0
		if num, ok := ToNumber(FirstElement(rep)); ok {
			n = num
		}
		minV, maxV := n, n+defaultRangeSpan
		return Rule{Constraint: Range{Min: &minV, Max: &maxV}}, nil

	case KindContains:
		return Rule{Constraint: Contains{Substring: ToText(FirstElement(rep))}}, nil

	case KindContainsAny:
		return Rule{Constraint: ContainsAny{Items: representativeList(rep)}}, nil

	case KindContainsAll:
		return Rule{Constraint: ContainsAll{Items: representativeList(rep)}}, nil
	}

	return rule, value
}

// representative extracts the value carried across a transition from the
// current rule state.
func representative(rule Rule, value any) any {
	switch c := rule.Constraint.(type) {
	case nil, Exact:
		return value
	case Tolerance:
		return c.Value
	case Range:
		if c.Min != nil {
			return *c.Min
		}
		if c.Max != nil {
			return *c.Max
		}
		return nil
	case Contains:
		return c.Substring
	case ContainsAny:
		return listOrSingle(c.Items)
	case ContainsAll:
		return listOrSingle(c.Items)
	}
	return value
}

// listOrSingle unwraps a one-element list so scalar targets pick up the
// element itself.
func listOrSingle(items []any) any {
	if len(items) == 1 {
		return items[0]
	}
	out := make([]any, len(items))
	copy(out, items)
	return out
}

// toleranceValue coerces the representative into the tolerance value
// parameter: a number, or a list of numbers for list data types.
// Unparseable input yields the deterministic default 0.
func toleranceValue(rep any, dataType DataType) any {
	if dataType.IsList() {
		nums := make([]any, 0)
		for _, e := range ToList(rep) {
			if n, ok := ToNumber(e); ok {
				nums = append(nums, n)
			}
		}
		if len(nums) > 0 {
			return nums
		}
		return []any{0.0}
	}

	if n, ok := ToNumber(FirstElement(rep)); ok {
		return n
	}
	return 0.0
}

// representativeList coerces the representative into the item list for the
// contains_any / contains_all kinds. Comma-bearing text splits into
// ordered, trimmed elements (no dedup); other scalars wrap into a
// one-element list; lists pass through unchanged.
func representativeList(rep any) []any {
	switch r := rep.(type) {
	case nil:
		return []any{}
	case []any:
		return r
	case string:
		if strings.Contains(r, ",") {
			parts := SplitCommaList(r)
			out := make([]any, len(parts))
			for i, p := range parts {
				out[i] = p
			}
			return out
		}
		return []any{r}
	}
	return []any{rep}
}

// ChangeDataType applies the data-type coercion that accompanies a
// transition: the field value and the rule's own value parameters are
// re-coerced to the new type. The rule kind never changes here.
func ChangeDataType(rule Rule, value any, to DataType) (Rule, any) {
	newValue := CoerceValue(value, to)

	switch c := rule.Constraint.(type) {
	case Tolerance:
		target := DataTypeNumber
		if to.IsList() {
			target = DataTypeListNumber
		}
		return Rule{Constraint: Tolerance{Value: CoerceValue(c.Value, target), Tolerance: c.Tolerance}}, newValue
	case ContainsAny:
		return Rule{Constraint: ContainsAny{Items: coerceItems(c.Items, to)}}, newValue
	case ContainsAll:
		return Rule{Constraint: ContainsAll{Items: coerceItems(c.Items, to)}}, newValue
	}

	return rule, newValue
}

// coerceItems re-coerces constraint item lists elementwise when the field
// switches between numeric and string list types.
func coerceItems(items []any, to DataType) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		if to.IsNumeric() {
			if n, ok := ToNumber(item); ok {
				out = append(out, n)
			}
			continue
		}
		out = append(out, ToText(item))
	}
	return out
}
