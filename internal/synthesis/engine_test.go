package synthesis

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mrsinham/dicomschema/internal/dict"
	"github.com/mrsinham/dicomschema/internal/schema"
)

func echoTimeField(value float64) schema.Field {
	return schema.Field{
		Tag:      "0018,0081",
		Name:     "EchoTime",
		VR:       "DS",
		Level:    schema.LevelAcquisition,
		DataType: schema.DataTypeNumber,
		Value:    value,
		Rule:     schema.ExactRule(),
	}
}

func TestSynthesizeConflicts(t *testing.T) {
	// The schema says EchoTime is 55; two validation functions each assert
	// a different value. Expect one conflict per disagreeing function, and
	// rows defaulting to the schema value.
	fields := []schema.Field{echoTimeField(55)}
	fns := []schema.ValidationFunction{
		{Name: "check_te_low", TestCases: []schema.TestCase{
			{ExpectedResult: "pass", FieldValues: map[string]any{"EchoTime": 50.0}},
		}},
		{Name: "check_te_high", TestCases: []schema.TestCase{
			{ExpectedResult: "pass", FieldValues: map[string]any{"EchoTime": 60.0}},
		}},
	}

	e := NewEngine(dict.New())
	res := e.Synthesize(fields, nil, fns)

	wantConflicts := []Conflict{
		{FieldName: "EchoTime", ExistingValue: 55.0, TestValue: 50.0, ValidationName: "check_te_low"},
		{FieldName: "EchoTime", ExistingValue: 55.0, TestValue: 60.0, ValidationName: "check_te_high"},
	}
	if diff := cmp.Diff(wantConflicts, res.Conflicts); diff != "" {
		t.Errorf("conflicts mismatch (-want +got):\n%s", diff)
	}

	for i, row := range res.Rows {
		if row["EchoTime"] != 55.0 {
			t.Errorf("row %d EchoTime = %v, want schema default 55", i, row["EchoTime"])
		}
	}

	// The sources table must expose every choice for resolution.
	wantSources := map[string][]any{
		SchemaChoice:    {55.0},
		"check_te_low":  {50.0},
		"check_te_high": {60.0},
	}
	if diff := cmp.Diff(wantSources, res.Sources["EchoTime"]); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeAgreementIsNotConflict(t *testing.T) {
	fields := []schema.Field{echoTimeField(50)}
	fns := []schema.ValidationFunction{
		{Name: "check_te", TestCases: []schema.TestCase{
			{ExpectedResult: "pass", FieldValues: map[string]any{"EchoTime": "50"}},
		}},
	}

	res := NewEngine(dict.New()).Synthesize(fields, nil, fns)
	if len(res.Conflicts) != 0 {
		t.Errorf("numerically equal values must not conflict, got %+v", res.Conflicts)
	}
}

func TestSynthesizeRowCount(t *testing.T) {
	// Row count follows the largest passing-case count, minimum one.
	fields := []schema.Field{echoTimeField(50)}

	res := NewEngine(dict.New()).Synthesize(fields, nil, nil)
	if len(res.Rows) != 1 {
		t.Errorf("no functions: %d rows, want 1", len(res.Rows))
	}

	fns := []schema.ValidationFunction{
		{Name: "a", TestCases: []schema.TestCase{
			{ExpectedResult: "pass", FieldValues: map[string]any{"EchoTime": 50.0}},
			{ExpectedResult: "pass", FieldValues: map[string]any{"EchoTime": 50.0}},
			{ExpectedResult: "fail", FieldValues: map[string]any{"EchoTime": 999.0}},
		}},
		{Name: "b", TestCases: []schema.TestCase{
			{ExpectedResult: "pass", FieldValues: map[string]any{"EchoTime": 50.0}},
		}},
	}
	res = NewEngine(dict.New()).Synthesize(fields, nil, fns)
	if len(res.Rows) != 2 {
		t.Errorf("two passing cases: %d rows, want 2", len(res.Rows))
	}
}

func TestSynthesizeZeroPassingCasesWarns(t *testing.T) {
	fields := []schema.Field{echoTimeField(50)}
	fns := []schema.ValidationFunction{
		{Name: "always_fails", TestCases: []schema.TestCase{
			{ExpectedResult: "fail", FieldValues: map[string]any{"EchoTime": 1.0}},
		}},
	}

	res := NewEngine(dict.New()).Synthesize(fields, nil, fns)
	if len(res.Conflicts) != 0 {
		t.Errorf("a function with no passing cases must not conflict, got %+v", res.Conflicts)
	}
	if !hasWarning(res.Warnings, "always_fails") {
		t.Errorf("expected a no-passing-cases warning, got %v", res.Warnings)
	}
}

func TestSynthesizeBaseValues(t *testing.T) {
	minV := 40.0
	tests := []struct {
		name  string
		field schema.Field
		want  any
	}{
		{"exact uses schema value", echoTimeField(55), 55.0},
		{"tolerance uses stated value", schema.Field{
			Name: "RepetitionTime", Tag: "0018,0080", DataType: schema.DataTypeNumber,
			Rule: schema.Rule{Constraint: schema.Tolerance{Value: 1500.0, Tolerance: 50}},
		}, 1500.0},
		{"range uses min", schema.Field{
			Name: "FlipAngle", Tag: "0018,1314", DataType: schema.DataTypeNumber,
			Rule: schema.Rule{Constraint: schema.Range{Min: &minV}},
		}, 40.0},
		{"contains uses substring", schema.Field{
			Name: "SeriesDescription", Tag: "0008,103e", DataType: schema.DataTypeString,
			Rule: schema.Rule{Constraint: schema.Contains{Substring: "MPRAGE"}},
		}, "MPRAGE"},
		{"contains_any uses first item", schema.Field{
			Name: "SeriesDescription", Tag: "0008,103e", DataType: schema.DataTypeString,
			Rule: schema.Rule{Constraint: schema.ContainsAny{Items: []any{"T1", "T2"}}},
		}, "T1"},
		{"contains_all on list keeps items", schema.Field{
			Name: "ImageType", Tag: "0008,0008", DataType: schema.DataTypeListString,
			Rule: schema.Rule{Constraint: schema.ContainsAll{Items: []any{"ORIGINAL", "PRIMARY"}}},
		}, []any{"ORIGINAL", "PRIMARY"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := NewEngine(dict.New()).Synthesize([]schema.Field{tc.field}, nil, nil)
			if diff := cmp.Diff(tc.want, res.Rows[0][tc.field.Name]); diff != "" {
				t.Errorf("base value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSynthesizeContainsAllScalarWarns(t *testing.T) {
	field := schema.Field{
		Name: "SeriesDescription", Tag: "0008,103e", DataType: schema.DataTypeString,
		Rule: schema.Rule{Constraint: schema.ContainsAll{Items: []any{"Sag", "MPRAGE"}}},
	}

	res := NewEngine(dict.New()).Synthesize([]schema.Field{field}, nil, nil)
	if got := res.Rows[0]["SeriesDescription"]; got != "Sag MPRAGE" {
		t.Errorf("joined value = %v, want %q", got, "Sag MPRAGE")
	}
	if !hasWarning(res.Warnings, "ambiguous") {
		t.Errorf("expected an ambiguity warning, got %v", res.Warnings)
	}
}

func TestSynthesizeSeriesFieldsCycleOverrides(t *testing.T) {
	fields := []schema.Field{{
		Tag: "0018,0081", Name: "EchoTime", Level: schema.LevelSeries,
		DataType: schema.DataTypeNumber, Rule: schema.ExactRule(),
	}}
	series := []schema.Series{
		{Name: "Series 1", Fields: map[string]schema.SeriesOverride{"0018,0081": {Value: 10.0}}},
		{Name: "Series 2", Fields: map[string]schema.SeriesOverride{"0018,0081": {Value: 20.0}}},
	}
	fns := []schema.ValidationFunction{{Name: "n", TestCases: []schema.TestCase{
		{ExpectedResult: "pass", FieldValues: map[string]any{}},
		{ExpectedResult: "pass", FieldValues: map[string]any{}},
		{ExpectedResult: "pass", FieldValues: map[string]any{}},
	}}}

	res := NewEngine(dict.New()).Synthesize(fields, series, fns)
	want := []any{10.0, 20.0, 10.0}
	for i, row := range res.Rows {
		if row["EchoTime"] != want[i] {
			t.Errorf("row %d EchoTime = %v, want %v", i, row["EchoTime"], want[i])
		}
	}
}

func TestSynthesizeUnhandledFieldWarns(t *testing.T) {
	fields := []schema.Field{{
		Tag: "9901,0001", Name: "EchoTme", DataType: schema.DataTypeNumber, Rule: schema.ExactRule(),
	}}

	res := NewEngine(dict.New()).Synthesize(fields, nil, nil)
	if !hasWarning(res.Warnings, "unhandled") {
		t.Fatalf("expected an unhandled-field warning, got %v", res.Warnings)
	}
	if !hasWarning(res.Warnings, "EchoTime") {
		t.Errorf("expected a keyword suggestion in %v", res.Warnings)
	}
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
