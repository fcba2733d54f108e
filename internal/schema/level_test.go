package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testAcquisition() Acquisition {
	return Acquisition{
		ID:           "acq-1",
		ProtocolName: "T1w_MPRAGE",
		AcquisitionFields: []Field{
			{
				Tag:      "0018,0080",
				Name:     "RepetitionTime",
				VR:       "DS",
				Level:    LevelAcquisition,
				DataType: DataTypeNumber,
				Value:    1500.0,
				Rule:     ExactRule(),
			},
		},
	}
}

func TestPromoteCreatesMinimumSeries(t *testing.T) {
	acq := testAcquisition()

	out := Convert(acq, "0018,0080", LevelSeries)

	if len(out.Series) != 2 {
		t.Fatalf("promoting with zero series must create 2, got %d", len(out.Series))
	}
	if len(out.AcquisitionFields) != 0 {
		t.Errorf("field must leave acquisitionFields, still has %d", len(out.AcquisitionFields))
	}
	if len(out.SeriesFields) != 1 || out.SeriesFields[0].Level != LevelSeries {
		t.Fatalf("field must move to seriesFields with series level, got %+v", out.SeriesFields)
	}

	for i, s := range out.Series {
		ov, ok := s.Fields["0018,0080"]
		if !ok {
			t.Fatalf("series %d missing override", i)
		}
		if ov.Value != 1500.0 {
			t.Errorf("series %d override value = %v, want 1500", i, ov.Value)
		}
		if ov.DataType != DataTypeNumber {
			t.Errorf("series %d override dataType = %s, want number", i, ov.DataType)
		}
		if ov.Rule == nil || ov.Rule.Kind() != KindExact {
			t.Errorf("series %d override rule = %v, want exact", i, ov.Rule)
		}
	}
}

func TestPromotePreservesOtherOverrides(t *testing.T) {
	acq := testAcquisition()
	acq.SeriesFields = []Field{{Tag: "0018,0081", Name: "EchoTime", Level: LevelSeries, DataType: DataTypeNumber, Rule: ExactRule()}}
	acq.Series = []Series{
		{Name: "Series 1", Fields: map[string]SeriesOverride{"0018,0081": {Value: 10.0}}},
		{Name: "Series 2", Fields: map[string]SeriesOverride{"0018,0081": {Value: 20.0}}},
		{Name: "Series 3", Fields: map[string]SeriesOverride{"0018,0081": {Value: 30.0}}},
	}

	out := Convert(acq, "0018,0080", LevelSeries)

	if len(out.Series) != 3 {
		t.Fatalf("existing series must be kept, got %d", len(out.Series))
	}
	for i, want := range []float64{10, 20, 30} {
		if got := out.Series[i].Fields["0018,0081"].Value; got != want {
			t.Errorf("series %d EchoTime override = %v, want %v", i, got, want)
		}
		if got := out.Series[i].Fields["0018,0080"].Value; got != 1500.0 {
			t.Errorf("series %d promoted override = %v, want 1500", i, got)
		}
	}
}

func TestPromoteThenDemoteRoundTrip(t *testing.T) {
	acq := testAcquisition()

	promoted := Convert(acq, "0018,0080", LevelSeries)
	demoted := Convert(promoted, "0018,0080", LevelAcquisition)

	if len(demoted.AcquisitionFields) != 1 {
		t.Fatalf("field must return to acquisitionFields, got %d", len(demoted.AcquisitionFields))
	}
	f := demoted.AcquisitionFields[0]
	if f.Value != 1500.0 {
		t.Errorf("round-trip value = %v, want 1500", f.Value)
	}
	if f.Level != LevelAcquisition {
		t.Errorf("round-trip level = %s, want acquisition", f.Level)
	}
	for i, s := range demoted.Series {
		if _, ok := s.Fields["0018,0080"]; ok {
			t.Errorf("series %d still carries an override after demotion", i)
		}
	}
}

func TestDemoteTakesSeriesZero(t *testing.T) {
	acq := testAcquisition()
	promoted := Convert(acq, "0018,0080", LevelSeries)

	// Diverge the second series; demotion keeps series 0 and discards it.
	promoted.Series[1].Fields["0018,0080"] = SeriesOverride{Value: 9999.0, DataType: DataTypeNumber}

	demoted := Convert(promoted, "0018,0080", LevelAcquisition)
	if got := demoted.AcquisitionFields[0].Value; got != 1500.0 {
		t.Errorf("demoted value = %v, want series 0's 1500", got)
	}
}

func TestConvertUnknownTagIsNoOp(t *testing.T) {
	acq := testAcquisition()

	out := Convert(acq, "0008,0000", LevelSeries)
	if diff := cmp.Diff(acq, out); diff != "" {
		t.Errorf("unknown tag must be a no-op (-want +got):\n%s", diff)
	}

	out = Convert(acq, "0018,0080", LevelAcquisition)
	if diff := cmp.Diff(acq, out); diff != "" {
		t.Errorf("demoting an acquisition-level tag must be a no-op (-want +got):\n%s", diff)
	}
}

func TestConvertDoesNotMutateInput(t *testing.T) {
	acq := testAcquisition()
	_ = Convert(acq, "0018,0080", LevelSeries)

	if len(acq.AcquisitionFields) != 1 || len(acq.Series) != 0 {
		t.Errorf("input acquisition was mutated: %+v", acq)
	}
}

func TestAcquisitionValidate(t *testing.T) {
	acq := testAcquisition()
	if err := acq.Validate(); err != nil {
		t.Fatalf("valid acquisition rejected: %v", err)
	}

	// Series fields without enough series.
	bad := acq
	bad.SeriesFields = []Field{{Tag: "0018,0081", Name: "EchoTime", DataType: DataTypeNumber, Rule: ExactRule()}}
	bad.Series = []Series{{Name: "Series 1", Fields: map[string]SeriesOverride{"0018,0081": {Value: 10.0}}}}
	if err := bad.Validate(); err == nil {
		t.Error("series-level fields with a single series must be rejected")
	}

	// A series missing an override.
	bad.Series = append(bad.Series, Series{Name: "Series 2", Fields: map[string]SeriesOverride{}})
	if err := bad.Validate(); err == nil {
		t.Error("series missing an override must be rejected")
	}
}
