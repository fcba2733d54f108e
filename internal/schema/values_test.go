package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
		ok    bool
	}{
		{"float", 50.5, 50.5, true},
		{"int", 42, 42, true},
		{"numeric string", "1500", 1500, true},
		{"numeric string with spaces", " 2.5 ", 2.5, true},
		{"text", "T1-weighted", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ToNumber(tc.input)
			if ok != tc.ok {
				t.Fatalf("ToNumber(%v) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("ToNumber(%v) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestToText(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{50.0, "50"},
		{2.5, "2.5"},
		{"hello", "hello"},
		{nil, ""},
		{[]any{"a", "b"}, `["a","b"]`},
	}

	for _, tc := range tests {
		if got := ToText(tc.input); got != tc.want {
			t.Errorf("ToText(%v) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSplitCommaList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"ordered trimmed no dedup", "T1, t1, T1-weighted", []string{"T1", "t1", "T1-weighted"}},
		{"drops empties", "a,,b, ,c", []string{"a", "b", "c"}},
		{"single", "MPRAGE", []string{"MPRAGE"}},
		{"empty", "", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitCommaList(tc.input)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("SplitCommaList(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"case-insensitive trimmed strings", " T1w ", "t1w", true},
		{"different strings", "T1w", "T2w", false},
		{"number vs numeric string", 50.0, "50", true},
		{"numbers", 50.0, 50.0, true},
		{"lists elementwise", []any{"a", "b"}, []any{"A", "b"}, true},
		{"lists different length", []any{"a"}, []any{"a", "b"}, false},
		{"nil both", nil, nil, true},
		{"nil one side", nil, "x", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValuesEqual(tc.a, tc.b); got != tc.want {
				t.Errorf("ValuesEqual(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		to   DataType
		want any
	}{
		{"string to number", "1500", DataTypeNumber, 1500.0},
		{"text to number is nil", "MPRAGE", DataTypeNumber, nil},
		{"number to string", 50.0, DataTypeString, "50"},
		{"scalar to list wraps", "T1w", DataTypeListString, []any{"T1w"}},
		{"comma text splits", "T1, T2", DataTypeListString, []any{"T1", "T2"}},
		{"comma text to number list", "50, 60", DataTypeListNumber, []any{50.0, 60.0}},
		{"list to scalar takes first", []any{"a", "b"}, DataTypeString, "a"},
		{"list to number takes first", []any{"42", "b"}, DataTypeNumber, 42.0},
		{"json passthrough", map[string]any{"k": "v"}, DataTypeJSON, map[string]any{"k": "v"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CoerceValue(tc.in, tc.to)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("CoerceValue(%v, %s) mismatch (-want +got):\n%s", tc.in, tc.to, diff)
			}
		})
	}
}
