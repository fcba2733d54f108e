package util

import (
	"fmt"
	"hash/fnv"
)

// uidRoot is the UUID-derived UID root (ISO/IEC 9834-8).
const uidRoot = "2.25"

// GenerateDeterministicUID derives a DICOM UID from a seed string. The
// same seed always yields the same UID, so re-encoding the same rows
// reproduces identical study and series identifiers.
func GenerateDeterministicUID(seed string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed)) // hash.Write never returns an error
	return fmt.Sprintf("%s.%d", uidRoot, h.Sum64())
}
