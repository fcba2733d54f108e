package dict

import "strings"

// commonKeywords are the acquisition metadata keywords users type most
// often; mistyped keywords are matched against this list.
var commonKeywords = []string{
	"AcquisitionMatrix",
	"BodyPartExamined",
	"EchoTime",
	"EchoTrainLength",
	"FlipAngle",
	"ImageType",
	"InversionTime",
	"MagneticFieldStrength",
	"Manufacturer",
	"ManufacturerModelName",
	"Modality",
	"NumberOfAverages",
	"PercentPhaseFieldOfView",
	"PixelBandwidth",
	"PixelSpacing",
	"ProtocolName",
	"RepetitionTime",
	"ScanningSequence",
	"SequenceName",
	"SequenceVariant",
	"SeriesDescription",
	"SliceThickness",
	"SpacingBetweenSlices",
}

// SuggestKeyword returns the closest known keyword to a failed lookup
// (Levenshtein distance at most 5), or empty when nothing is close.
func SuggestKeyword(input string) string {
	const maxDistance = 5
	normalized := strings.ToLower(strings.TrimSpace(input))

	bestDistance := maxDistance + 1
	var bestMatch string
	for _, kw := range commonKeywords {
		distance := levenshteinDistance(normalized, strings.ToLower(kw))
		if distance < bestDistance {
			bestDistance = distance
			bestMatch = kw
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance calculates the minimum number of single-character
// edits (insertions, deletions, or substitutions) required to change one
// string into the other.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}

	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
