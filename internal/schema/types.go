package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofrs/uuid"
)

// DataType describes the shape of a field's value.
type DataType string

const (
	DataTypeString     DataType = "string"
	DataTypeNumber     DataType = "number"
	DataTypeListString DataType = "list_string"
	DataTypeListNumber DataType = "list_number"
	DataTypeJSON       DataType = "json"
)

// AllDataTypes returns every valid data type.
func AllDataTypes() []DataType {
	return []DataType{DataTypeString, DataTypeNumber, DataTypeListString, DataTypeListNumber, DataTypeJSON}
}

// IsList reports whether the data type holds one value per element.
func (d DataType) IsList() bool {
	return d == DataTypeListString || d == DataTypeListNumber
}

// IsNumeric reports whether the data type holds numbers.
func (d DataType) IsNumeric() bool {
	return d == DataTypeNumber || d == DataTypeListNumber
}

// Validate checks that the data type is one of the known values.
func (d DataType) Validate() error {
	for _, t := range AllDataTypes() {
		if d == t {
			return nil
		}
	}
	return fmt.Errorf("unknown data type %q, valid types: %v", d, AllDataTypes())
}

// Level indicates whether a field's value is constant for the whole
// acquisition or varies per series.
type Level string

const (
	LevelAcquisition Level = "acquisition"
	LevelSeries      Level = "series"
)

// Field is one expected DICOM attribute in an acquisition schema. Value is
// populated only when the rule is of the exact kind; for every other kind
// the expectation lives entirely inside the rule's parameters.
type Field struct {
	Tag      string   `json:"tag"`
	Name     string   `json:"name"`
	VR       string   `json:"vr"`
	Level    Level    `json:"level"`
	DataType DataType `json:"dataType"`
	Value    any      `json:"value,omitempty"`
	Rule     Rule     `json:"validationRule"`
}

// SeriesOverride carries a series-specific value for a series-level field,
// optionally overriding the field's data type and rule.
type SeriesOverride struct {
	Value    any      `json:"value"`
	DataType DataType `json:"dataType,omitempty"`
	Rule     *Rule    `json:"validationRule,omitempty"`
}

// Series is one of several sibling captures within an acquisition. Fields
// maps field tag to that series' override.
type Series struct {
	Name   string                    `json:"name"`
	Fields map[string]SeriesOverride `json:"fields"`
}

// TestCase is one example input for a validation function, tagged with the
// result the function is expected to produce for it.
type TestCase struct {
	ExpectedResult string         `json:"expectedResult"`
	FieldValues    map[string]any `json:"fieldValues"`
}

// Passes reports whether this case is a passing example.
func (t TestCase) Passes() bool { return t.ExpectedResult == "pass" }

// ValidationFunction is a user-authored check with example test cases. The
// synthesis engine uses only its passing cases, as a source of example
// field values.
type ValidationFunction struct {
	Name      string     `json:"name"`
	TestCases []TestCase `json:"testCases"`
}

// PassingCases returns the test cases expected to pass, in order.
func (v ValidationFunction) PassingCases() []TestCase {
	out := make([]TestCase, 0, len(v.TestCases))
	for _, tc := range v.TestCases {
		if tc.Passes() {
			out = append(out, tc)
		}
	}
	return out
}

// Acquisition is a named DICOM capture protocol description. It owns
// acquisition-level fields, series-level fields with their per-series
// overrides, and validation functions.
type Acquisition struct {
	ID                  string               `json:"id"`
	ProtocolName        string               `json:"protocolName"`
	SeriesDescription   string               `json:"seriesDescription"`
	AcquisitionFields   []Field              `json:"acquisitionFields"`
	SeriesFields        []Field              `json:"seriesFields"`
	Series              []Series             `json:"series"`
	ValidationFunctions []ValidationFunction `json:"validationFunctions"`
}

// NewAcquisition creates an empty acquisition with a fresh ID.
func NewAcquisition(protocolName string) Acquisition {
	id, err := uuid.NewV4()
	if err != nil {
		// NewV4 only fails when the system entropy source is broken.
		panic(fmt.Sprintf("generate acquisition id: %v", err))
	}
	return Acquisition{
		ID:           id.String(),
		ProtocolName: protocolName,
	}
}

// Validate checks the acquisition's structural invariants: when series
// fields exist there must be at least two series, every series must carry
// an override for every series-level field, and every rule must have valid
// parameters.
func (a Acquisition) Validate() error {
	if len(a.SeriesFields) > 0 && len(a.Series) < 2 {
		return fmt.Errorf("acquisition %q has %d series-level fields but only %d series (minimum 2)",
			a.ProtocolName, len(a.SeriesFields), len(a.Series))
	}

	for _, f := range a.SeriesFields {
		for _, s := range a.Series {
			if _, ok := s.Fields[f.Tag]; !ok {
				return fmt.Errorf("series %q is missing an override for series-level field %s (%s)",
					s.Name, f.Tag, f.Name)
			}
		}
	}

	for _, f := range append(append([]Field{}, a.AcquisitionFields...), a.SeriesFields...) {
		if err := f.Rule.Validate(); err != nil {
			return fmt.Errorf("field %s (%s): %w", f.Tag, f.Name, err)
		}
		if err := f.DataType.Validate(); err != nil {
			return fmt.Errorf("field %s (%s): %w", f.Tag, f.Name, err)
		}
	}

	return nil
}

// FieldByTag returns the field with the given tag from either field list,
// or nil when absent.
func (a Acquisition) FieldByTag(tag string) *Field {
	for i := range a.AcquisitionFields {
		if a.AcquisitionFields[i].Tag == tag {
			return &a.AcquisitionFields[i]
		}
	}
	for i := range a.SeriesFields {
		if a.SeriesFields[i].Tag == tag {
			return &a.SeriesFields[i]
		}
	}
	return nil
}

// Load reads an acquisition schema from a JSON file.
func Load(path string) (Acquisition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Acquisition{}, fmt.Errorf("read schema: %w", err)
	}
	var a Acquisition
	if err := json.Unmarshal(data, &a); err != nil {
		return Acquisition{}, fmt.Errorf("parse schema: %w", err)
	}
	return a, nil
}

// Save writes an acquisition schema as indented JSON.
func Save(path string, a Acquisition) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	return nil
}
