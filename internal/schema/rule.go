// Package schema defines the acquisition schema model: typed DICOM fields,
// validation constraints, series-level overrides and the JSON interchange
// format used to save and load schemas.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ConstraintKind identifies one of the six validation constraint kinds.
type ConstraintKind string

const (
	KindExact       ConstraintKind = "exact"
	KindTolerance   ConstraintKind = "tolerance"
	KindRange       ConstraintKind = "range"
	KindContains    ConstraintKind = "contains"
	KindContainsAny ConstraintKind = "contains_any"
	KindContainsAll ConstraintKind = "contains_all"
)

// AllConstraintKinds returns every valid constraint kind.
func AllConstraintKinds() []ConstraintKind {
	return []ConstraintKind{KindExact, KindTolerance, KindRange, KindContains, KindContainsAny, KindContainsAll}
}

// Constraint is the sum type over the six constraint kinds. Each kind is a
// separate struct so that parameters from one kind cannot leak into
// another.
type Constraint interface {
	Kind() ConstraintKind
	// validate reports whether the constraint's own parameters are usable.
	validate() error
}

// Exact matches when the actual value equals the field's stored value.
// String comparison is case-insensitive and whitespace-trimmed. The
// expected value itself lives in Field.Value, not here.
type Exact struct{}

// Kind implements Constraint.
func (Exact) Kind() ConstraintKind { return KindExact }

func (Exact) validate() error { return nil }

// Tolerance matches numeric values within Value ± Tolerance, elementwise
// when Value is a list.
type Tolerance struct {
	Value     any
	Tolerance float64
}

// Kind implements Constraint.
func (Tolerance) Kind() ConstraintKind { return KindTolerance }

func (t Tolerance) validate() error {
	if t.Tolerance < 0 {
		return fmt.Errorf("tolerance must be >= 0, got %v", t.Tolerance)
	}
	return nil
}

// Range matches numeric values within [Min, Max]. A nil bound is open; at
// least one bound must be present.
type Range struct {
	Min *float64
	Max *float64
}

// Kind implements Constraint.
func (Range) Kind() ConstraintKind { return KindRange }

func (r Range) validate() error {
	if r.Min == nil && r.Max == nil {
		return fmt.Errorf("range requires at least one of min/max")
	}
	return nil
}

// Contains matches string values containing Substring, case-insensitively.
type Contains struct {
	Substring string
}

// Kind implements Constraint.
func (Contains) Kind() ConstraintKind { return KindContains }

func (c Contains) validate() error {
	if c.Substring == "" {
		return fmt.Errorf("contains requires a non-empty substring")
	}
	return nil
}

// ContainsAny matches when the value contains at least one listed element
// (for lists) or substring (for strings).
type ContainsAny struct {
	Items []any
}

// Kind implements Constraint.
func (ContainsAny) Kind() ConstraintKind { return KindContainsAny }

func (c ContainsAny) validate() error {
	if len(c.Items) == 0 {
		return fmt.Errorf("contains_any requires a non-empty list")
	}
	return nil
}

// ContainsAll matches when a list value contains every listed element.
type ContainsAll struct {
	Items []any
}

// Kind implements Constraint.
func (ContainsAll) Kind() ConstraintKind { return KindContainsAll }

func (c ContainsAll) validate() error {
	if len(c.Items) == 0 {
		return fmt.Errorf("contains_all requires a non-empty list")
	}
	return nil
}

// Rule wraps a Constraint for JSON interchange. The wire form is a tagged
// object: {"type": "tolerance", "value": 50, "tolerance": 5}. Only the
// parameters belonging to the active kind are ever serialized.
type Rule struct {
	Constraint Constraint
}

// ExactRule returns a Rule of the exact kind.
func ExactRule() Rule { return Rule{Constraint: Exact{}} }

// Kind returns the wrapped constraint's kind; an empty Rule counts as
// exact.
func (r Rule) Kind() ConstraintKind {
	if r.Constraint == nil {
		return KindExact
	}
	return r.Constraint.Kind()
}

// Validate checks the wrapped constraint's parameters.
func (r Rule) Validate() error {
	if r.Constraint == nil {
		return nil
	}
	return r.Constraint.validate()
}

// ruleJSON is the superset wire shape used for encoding and decoding.
type ruleJSON struct {
	Type        ConstraintKind `json:"type"`
	Value       any            `json:"value,omitempty"`
	Tolerance   *float64       `json:"tolerance,omitempty"`
	Min         *float64       `json:"min,omitempty"`
	Max         *float64       `json:"max,omitempty"`
	Contains    string         `json:"contains,omitempty"`
	ContainsAny []any          `json:"contains_any,omitempty"`
	ContainsAll []any          `json:"contains_all,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r Rule) MarshalJSON() ([]byte, error) {
	out := ruleJSON{Type: r.Kind()}
	switch c := r.Constraint.(type) {
	case nil, Exact:
	case Tolerance:
		out.Value = c.Value
		tol := c.Tolerance
		out.Tolerance = &tol
	case Range:
		out.Min = c.Min
		out.Max = c.Max
	case Contains:
		out.Contains = c.Substring
	case ContainsAny:
		out.ContainsAny = c.Items
	case ContainsAll:
		out.ContainsAll = c.Items
	default:
		return nil, fmt.Errorf("unknown constraint kind %q", r.Kind())
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Unknown kinds and invalid
// parameter combinations are rejected.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var in ruleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	switch in.Type {
	case KindExact, "":
		r.Constraint = Exact{}
	case KindTolerance:
		tol := 0.0
		if in.Tolerance != nil {
			tol = *in.Tolerance
		}
		r.Constraint = Tolerance{Value: in.Value, Tolerance: tol}
	case KindRange:
		r.Constraint = Range{Min: in.Min, Max: in.Max}
	case KindContains:
		r.Constraint = Contains{Substring: in.Contains}
	case KindContainsAny:
		r.Constraint = ContainsAny{Items: in.ContainsAny}
	case KindContainsAll:
		r.Constraint = ContainsAll{Items: in.ContainsAll}
	default:
		return fmt.Errorf("unknown validation rule type %q", in.Type)
	}

	if err := r.Constraint.validate(); err != nil {
		return fmt.Errorf("invalid %s rule: %w", in.Type, err)
	}
	return nil
}

// Matches reports whether actual satisfies the rule. expected is the
// field's own value, consulted only by the exact kind.
func (r Rule) Matches(expected, actual any) bool {
	switch c := r.Constraint.(type) {
	case nil, Exact:
		return ValuesEqual(expected, actual)

	case Tolerance:
		want := ToList(c.Value)
		got := ToList(actual)
		if len(want) != len(got) {
			return false
		}
		for i := range want {
			w, okW := ToNumber(want[i])
			g, okG := ToNumber(got[i])
			if !okW || !okG {
				return false
			}
			if g < w-c.Tolerance || g > w+c.Tolerance {
				return false
			}
		}
		return true

	case Range:
		n, ok := ToNumber(actual)
		if !ok {
			return false
		}
		if c.Min != nil && n < *c.Min {
			return false
		}
		if c.Max != nil && n > *c.Max {
			return false
		}
		return true

	case Contains:
		s, ok := actual.(string)
		if !ok {
			return false
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(c.Substring))

	case ContainsAny:
		for _, item := range c.Items {
			if valueContains(actual, item) {
				return true
			}
		}
		return false

	case ContainsAll:
		for _, item := range c.Items {
			if !valueContains(actual, item) {
				return false
			}
		}
		return true
	}
	return false
}

// valueContains reports whether v (a string or list) contains item: as a
// case-insensitive substring for strings, as an element for lists.
func valueContains(v, item any) bool {
	switch actual := v.(type) {
	case string:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(ToText(item)))
	case []any:
		for _, e := range actual {
			if ValuesEqual(e, item) {
				return true
			}
		}
	}
	return false
}
