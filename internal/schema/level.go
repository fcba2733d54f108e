package schema

import "fmt"

// minSeriesCount is the minimum number of series an acquisition holds once
// any field is series-level.
const minSeriesCount = 2

// Convert moves the field with the given tag between acquisition level and
// series level, returning a new acquisition. The input is never mutated.
//
// Promoting snapshots the field's value, data type and rule into an
// override on every series, creating series up to the minimum of two when
// needed. Demoting takes the field's value and rule from series index 0
// and removes the tag's override from every series; per-series divergence
// beyond series 0 is discarded.
//
// Converting a tag that is not present at the source level is a no-op:
// the input acquisition is returned unchanged.
func Convert(a Acquisition, fieldTag string, to Level) Acquisition {
	switch to {
	case LevelSeries:
		return promote(a, fieldTag)
	case LevelAcquisition:
		return demote(a, fieldTag)
	}
	return a
}

func promote(a Acquisition, fieldTag string) Acquisition {
	idx := -1
	for i := range a.AcquisitionFields {
		if a.AcquisitionFields[i].Tag == fieldTag {
			idx = i
			break
		}
	}
	if idx < 0 {
		return a
	}

	out := cloneAcquisition(a)
	field := out.AcquisitionFields[idx]
	out.AcquisitionFields = append(out.AcquisitionFields[:idx], out.AcquisitionFields[idx+1:]...)

	// Grow the series list to the minimum; existing series and their
	// overrides for other tags are kept.
	target := len(out.Series)
	if target < minSeriesCount {
		target = minSeriesCount
	}
	for len(out.Series) < target {
		out.Series = append(out.Series, Series{
			Name:   fmt.Sprintf("Series %d", len(out.Series)+1),
			Fields: map[string]SeriesOverride{},
		})
	}

	rule := field.Rule
	for i := range out.Series {
		if out.Series[i].Fields == nil {
			out.Series[i].Fields = map[string]SeriesOverride{}
		}
		out.Series[i].Fields[fieldTag] = SeriesOverride{
			Value:    field.Value,
			DataType: field.DataType,
			Rule:     &rule,
		}
	}

	field.Level = LevelSeries
	out.SeriesFields = append(out.SeriesFields, field)
	return out
}

func demote(a Acquisition, fieldTag string) Acquisition {
	idx := -1
	for i := range a.SeriesFields {
		if a.SeriesFields[i].Tag == fieldTag {
			idx = i
			break
		}
	}
	if idx < 0 {
		return a
	}

	out := cloneAcquisition(a)
	field := out.SeriesFields[idx]
	out.SeriesFields = append(out.SeriesFields[:idx], out.SeriesFields[idx+1:]...)

	// Series 0 is the authoritative copy; anything the other series
	// diverged into is dropped.
	if len(out.Series) > 0 {
		if ov, ok := out.Series[0].Fields[fieldTag]; ok {
			field.Value = ov.Value
			if ov.DataType != "" {
				field.DataType = ov.DataType
			}
			if ov.Rule != nil {
				field.Rule = *ov.Rule
			}
		}
	}
	for i := range out.Series {
		delete(out.Series[i].Fields, fieldTag)
	}

	field.Level = LevelAcquisition
	out.AcquisitionFields = append(out.AcquisitionFields, field)
	return out
}

// cloneAcquisition copies the slices and maps Convert rewrites so callers
// holding the input acquisition never observe partial updates.
func cloneAcquisition(a Acquisition) Acquisition {
	out := a
	out.AcquisitionFields = append([]Field(nil), a.AcquisitionFields...)
	out.SeriesFields = append([]Field(nil), a.SeriesFields...)
	out.Series = make([]Series, len(a.Series))
	for i, s := range a.Series {
		fields := make(map[string]SeriesOverride, len(s.Fields))
		for k, v := range s.Fields {
			fields[k] = v
		}
		out.Series[i] = Series{Name: s.Name, Fields: fields}
	}
	return out
}
