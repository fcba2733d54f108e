package dicomgen

import (
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomschema/internal/dict"
	"github.com/mrsinham/dicomschema/internal/schema"
)

// mustNewElement creates a new DICOM element, panicking on error.
func mustNewElement(t tag.Tag, value interface{}) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// floatToDS converts a float64 to a DICOM Decimal String.
func floatToDS(f float64) string {
	return fmt.Sprintf("%.6g", f)
}

// binaryIntVRs hold integers in binary form rather than as strings.
var binaryIntVRs = map[string]bool{"US": true, "SS": true, "UL": true, "SL": true}

// floatVRs hold IEEE floats.
var floatVRs = map[string]bool{"FL": true, "FD": true}

// elementForValue converts a synthesized row value into a DICOM element
// for the field's dictionary entry. Values that cannot be represented in
// the field's VR are skipped (false).
func elementForValue(def *dict.FieldDef, value any) (*dicom.Element, bool) {
	if def == nil || value == nil {
		return nil, false
	}

	items := schema.ToList(value)
	if len(items) == 0 {
		return nil, false
	}

	switch {
	case binaryIntVRs[def.VR]:
		ints := make([]int, 0, len(items))
		for _, item := range items {
			n, ok := schema.ToNumber(item)
			if !ok {
				return nil, false
			}
			ints = append(ints, int(n))
		}
		return newElement(def.Tag, ints)

	case floatVRs[def.VR]:
		floats := make([]float64, 0, len(items))
		for _, item := range items {
			n, ok := schema.ToNumber(item)
			if !ok {
				return nil, false
			}
			floats = append(floats, n)
		}
		return newElement(def.Tag, floats)

	default:
		// Everything else, including DS and IS, travels as strings.
		strs := make([]string, 0, len(items))
		for _, item := range items {
			if n, ok := schema.ToNumber(item); ok && (def.VR == "DS" || def.VR == "FL" || def.VR == "FD") {
				strs = append(strs, floatToDS(n))
				continue
			}
			strs = append(strs, schema.ToText(item))
		}
		return newElement(def.Tag, strs)
	}
}

// newElement wraps dicom.NewElement, treating failure as unrepresentable
// rather than fatal.
func newElement(t tag.Tag, value interface{}) (*dicom.Element, bool) {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		return nil, false
	}
	return elem, true
}
