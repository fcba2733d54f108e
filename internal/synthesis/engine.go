// Package synthesis generates concrete test-data rows for an acquisition
// schema: values that satisfy every field's validation constraint and the
// example values asserted by user validation functions, with conflicts
// between the two sources detected and resolvable. It also drives the
// editing session that round-trips rows through externally edited code and
// hands them to the DICOM encoder.
package synthesis

import (
	"fmt"
	"strings"

	"github.com/mrsinham/dicomschema/internal/dict"
	"github.com/mrsinham/dicomschema/internal/schema"
)

// Row maps field name to one synthesized value.
type Row map[string]any

// SchemaChoice is the reserved resolution key selecting the schema's own
// value over any validation function's value.
const SchemaChoice = "schema"

// Conflict records a disagreement between a field's schema-declared value
// and a value asserted by one validation function's passing test cases.
// A field can carry several conflicts, one per disagreeing function, all
// sharing the same schema value.
type Conflict struct {
	FieldName      string
	ExistingValue  any
	TestValue      any
	ValidationName string
}

// ValueSources maps field name to the candidate value lists for that
// field, keyed by choice: SchemaChoice for the schema's value, or a
// validation function name for the values its passing cases assert.
type ValueSources map[string]map[string][]any

// Result is one synthesis run's output.
type Result struct {
	Rows      []Row
	Conflicts []Conflict
	Warnings  []string
	Sources   ValueSources
}

// Engine synthesizes test rows. It consults the dictionary only to
// categorize fields; value generation is pure.
type Engine struct {
	dict *dict.Dictionary
}

// NewEngine creates an Engine.
func NewEngine(d *dict.Dictionary) *Engine {
	return &Engine{dict: d}
}

// Synthesize produces rows satisfying every field's constraint, using the
// schema value for any field a validation function disagrees on.
//
// The row count is the largest passing-test-case count across validation
// functions, minimum one: each passing case is a candidate row, so a
// function asserting two distinct examples fans out into two rows.
func (e *Engine) Synthesize(fields []schema.Field, series []schema.Series, fns []schema.ValidationFunction) Result {
	var warnings []string

	// Collect validation examples from passing test cases.
	maxRows := 1
	type fnExamples struct {
		name   string
		values map[string][]any // field name -> values across passing cases
	}
	examples := make([]fnExamples, 0, len(fns))
	for _, fn := range fns {
		passing := fn.PassingCases()
		if len(passing) == 0 {
			warnings = append(warnings,
				fmt.Sprintf("validation function %q has no passing test cases; its field requirements cannot be inferred", fn.Name))
			continue
		}
		if len(passing) > maxRows {
			maxRows = len(passing)
		}
		values := map[string][]any{}
		for _, tc := range passing {
			for name, v := range tc.FieldValues {
				values[name] = append(values[name], v)
			}
		}
		examples = append(examples, fnExamples{name: fn.Name, values: values})
	}

	// Base values per field, with per-field synthesis warnings.
	baseValues := map[string]any{}
	for _, f := range fields {
		v, warn := baseValue(f)
		baseValues[f.Name] = v
		if warn != "" {
			warnings = append(warnings, warn)
		}
	}

	// Detect conflicts: one entry per validation function that asserts a
	// different value than the schema for the same field.
	var conflicts []Conflict
	for _, ex := range examples {
		for _, f := range fields {
			values, ok := ex.values[f.Name]
			if !ok {
				continue
			}
			for _, v := range values {
				if !schema.ValuesEqual(baseValues[f.Name], v) {
					conflicts = append(conflicts, Conflict{
						FieldName:      f.Name,
						ExistingValue:  baseValues[f.Name],
						TestValue:      v,
						ValidationName: ex.name,
					})
					break
				}
			}
		}
	}

	// Build the sources table used for conflict resolution.
	sources := ValueSources{}
	for _, f := range fields {
		sources[f.Name] = map[string][]any{SchemaChoice: {baseValues[f.Name]}}
	}
	for _, ex := range examples {
		for name, values := range ex.values {
			if _, ok := sources[name]; !ok {
				sources[name] = map[string][]any{}
			}
			sources[name][ex.name] = values
		}
	}

	// Synthesize base rows. Conflicting fields default to the schema
	// value, which is what baseValue already produced. Series-level
	// fields cycle their per-series overrides across rows.
	rows := make([]Row, maxRows)
	for i := range rows {
		row := Row{}
		for _, f := range fields {
			row[f.Name] = baseValues[f.Name]
			if f.Level == schema.LevelSeries && len(series) > 0 {
				if ov, ok := series[i%len(series)].Fields[f.Tag]; ok {
					row[f.Name] = ov.Value
				}
			}
		}
		rows[i] = row
	}

	// Categorize fields the encoder will not be able to place.
	for _, f := range fields {
		if e.dict == nil {
			break
		}
		if e.dict.ByTag(f.Tag) != nil || e.dict.ByKeyword(f.Name) != nil {
			continue
		}
		msg := fmt.Sprintf("field %q (%s) is unhandled: no resolvable DICOM tag; generated files will omit it", f.Name, f.Tag)
		if suggestion := dict.SuggestKeyword(f.Name); suggestion != "" {
			msg = fmt.Sprintf("%s (did you mean %q?)", msg, suggestion)
		}
		warnings = append(warnings, msg)
	}

	return Result{Rows: rows, Conflicts: conflicts, Warnings: warnings, Sources: sources}
}

// baseValue derives the value a synthesized row carries for a field: the
// smallest value that satisfies the field's constraint. The second return
// value is a warning for ambiguous synthesis, or empty.
func baseValue(f schema.Field) (any, string) {
	switch c := f.Rule.Constraint.(type) {
	case nil, schema.Exact:
		return f.Value, ""

	case schema.Tolerance:
		// The tolerance bounds acceptable actual values; the generated
		// value is the stated value itself.
		return c.Value, ""

	case schema.Range:
		if c.Min != nil {
			return *c.Min, ""
		}
		if c.Max != nil {
			return *c.Max, ""
		}
		return 0.0, ""

	case schema.Contains:
		return c.Substring, ""

	case schema.ContainsAny:
		if len(c.Items) == 0 {
			return nil, fmt.Sprintf("field %q has an empty contains_any list", f.Name)
		}
		return c.Items[0], ""

	case schema.ContainsAll:
		if f.DataType.IsList() {
			items := make([]any, len(c.Items))
			copy(items, c.Items)
			return items, ""
		}
		// A scalar string can only satisfy contains_all by carrying
		// every required substring; the join is ambiguous, so flag it.
		parts := make([]string, len(c.Items))
		for i, item := range c.Items {
			parts[i] = schema.ToText(item)
		}
		warn := fmt.Sprintf("field %q: contains_all on a scalar string is ambiguous; synthesized a joined value", f.Name)
		return strings.Join(parts, " "), warn
	}
	return nil, ""
}
