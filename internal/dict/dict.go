// Package dict adapts the DICOM data dictionary for schema building: tag
// and keyword lookups, data-type and constraint suggestions, and close-match
// suggestions for mistyped keywords. Lookups are read-only and idempotent,
// so results are memoized in an LRU cache.
package dict

import (
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/dicomschema/internal/schema"
)

// FieldDef describes one dictionary entry.
type FieldDef struct {
	Tag               tag.Tag
	Keyword           string
	Name              string
	VR                string
	ValueMultiplicity string
}

// cacheSize bounds the memoization cache. A schema references at most a few
// hundred distinct fields.
const cacheSize = 512

// Dictionary performs memoized dictionary lookups. The zero value is not
// usable; construct with New.
type Dictionary struct {
	cache *lru.Cache[string, *FieldDef]
}

// New creates a Dictionary.
func New() *Dictionary {
	cache, err := lru.New[string, *FieldDef](cacheSize)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(fmt.Sprintf("create lookup cache: %v", err))
	}
	return &Dictionary{cache: cache}
}

// ByTag looks up a field definition by tag text, e.g. "0018,0081",
// "(0018,0081)" or "00180081". Unknown or unparseable tags return nil, not
// an error.
func (d *Dictionary) ByTag(tagText string) *FieldDef {
	key := "tag:" + tagText
	if def, ok := d.cache.Get(key); ok {
		return def
	}

	def := lookupByTag(tagText)
	d.cache.Add(key, def)
	return def
}

// ByKeyword looks up a field definition by its keyword (e.g. "EchoTime").
// Unknown keywords return nil.
func (d *Dictionary) ByKeyword(keyword string) *FieldDef {
	key := "kw:" + keyword
	if def, ok := d.cache.Get(key); ok {
		return def
	}

	var def *FieldDef
	if info, err := tag.FindByName(keyword); err == nil {
		def = defFromInfo(info)
	}
	d.cache.Add(key, def)
	return def
}

// lookupByTag parses tag text and consults the dictionary.
func lookupByTag(tagText string) *FieldDef {
	t, err := ParseTag(tagText)
	if err != nil {
		return nil
	}
	info, err := tag.Find(t)
	if err != nil {
		return nil
	}
	return defFromInfo(info)
}

func defFromInfo(info tag.Info) *FieldDef {
	return &FieldDef{
		Tag:               info.Tag,
		Keyword:           info.Keyword,
		Name:              info.Name,
		VR:                info.VRs[0],
		ValueMultiplicity: info.VM,
	}
}

// ParseTag parses tag text in "GGGG,EEEE", "(GGGG,EEEE)" or "GGGGEEEE"
// form.
func ParseTag(tagText string) (tag.Tag, error) {
	s := strings.TrimSpace(tagText)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	s = strings.ReplaceAll(s, ",", "")
	if len(s) != 8 {
		return tag.Tag{}, fmt.Errorf("invalid tag %q", tagText)
	}
	group, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return tag.Tag{}, fmt.Errorf("invalid tag group in %q: %w", tagText, err)
	}
	element, err := strconv.ParseUint(s[4:], 16, 16)
	if err != nil {
		return tag.Tag{}, fmt.Errorf("invalid tag element in %q: %w", tagText, err)
	}
	return tag.Tag{Group: uint16(group), Element: uint16(element)}, nil
}

// numericVRs are value representations whose values are numbers.
var numericVRs = map[string]bool{
	"DS": true, "FL": true, "FD": true, "IS": true,
	"SL": true, "SS": true, "UL": true, "US": true,
}

// SuggestDataType proposes a schema data type for a VR and value
// multiplicity. Sequences map to json; numeric VRs map to number (or
// list_number when the multiplicity allows more than one value); everything
// else maps to string or list_string.
func SuggestDataType(vr, multiplicity string) schema.DataType {
	if vr == "SQ" {
		return schema.DataTypeJSON
	}

	multi := multiplicity != "" && multiplicity != "1"
	if numericVRs[vr] {
		if multi {
			return schema.DataTypeListNumber
		}
		return schema.DataTypeNumber
	}
	if multi {
		return schema.DataTypeListString
	}
	return schema.DataTypeString
}

// SuggestConstraint proposes a constraint kind for a field definition:
// tolerance for numeric fields (quantitative acquisition parameters drift
// within scanner precision), exact for everything else.
func SuggestConstraint(def *FieldDef) schema.ConstraintKind {
	if def == nil {
		return schema.KindExact
	}
	if SuggestDataType(def.VR, def.ValueMultiplicity).IsNumeric() {
		return schema.KindTolerance
	}
	return schema.KindExact
}
