package synthesis

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitConstantFields(t *testing.T) {
	rows := []Row{
		{"EchoTime": 50.0, "RepetitionTime": 1500.0, "SeriesDescription": "Sag MPRAGE"},
		{"EchoTime": 60.0, "RepetitionTime": 1500.0, "SeriesDescription": "Sag MPRAGE"},
	}
	order := []string{"EchoTime", "RepetitionTime", "SeriesDescription"}

	constants, varying := SplitConstantFields(rows, order)

	wantConstants := map[string]any{"RepetitionTime": 1500.0, "SeriesDescription": "Sag MPRAGE"}
	if diff := cmp.Diff(wantConstants, constants); diff != "" {
		t.Errorf("constants mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"EchoTime"}, varying); diff != "" {
		t.Errorf("varying mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitConstantFieldsSingleRow(t *testing.T) {
	rows := []Row{{"EchoTime": 50.0}}
	constants, varying := SplitConstantFields(rows, []string{"EchoTime"})
	if len(constants) != 1 || len(varying) != 0 {
		t.Errorf("a single row makes every field constant, got constants %v varying %v", constants, varying)
	}
}

func TestCodeBodyLayout(t *testing.T) {
	rows := []Row{
		{"EchoTime": 50.0, "SeriesDescription": "Sag MPRAGE"},
		{"EchoTime": 60.0, "SeriesDescription": "Sag MPRAGE"},
	}
	body := CodeBody(rows, []string{"EchoTime", "SeriesDescription"})

	for _, want := range []string{
		"var rowCount = 2;",
		`"SeriesDescription": "Sag MPRAGE"`,
		`"EchoTime": [50,60]`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestRowsFromCodeResult(t *testing.T) {
	rows, err := rowsFromCodeResult(map[string]any{
		"EchoTime":          []any{50.0, 60.0},
		"SeriesDescription": []any{"a", "b"},
	})
	if err != nil {
		t.Fatalf("rowsFromCodeResult: %v", err)
	}

	want := []Row{
		{"EchoTime": 50.0, "SeriesDescription": "a"},
		{"EchoTime": 60.0, "SeriesDescription": "b"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}
