// Package util provides identity helpers for generated test DICOM files:
// synthetic patient names and deterministic UIDs.
package util

import (
	"math/rand/v2"
	"time"
)

// Package-level default RNG used when callers pass nil
var defaultRNG = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))

var (
	// MaleFirstNames is the list of male first names for synthetic patients
	MaleFirstNames = []string{
		"James", "John", "Robert", "Michael", "William", "David", "Richard", "Thomas",
		"Daniel", "Matthew", "Andrew", "Joshua", "Kevin", "Brian", "George", "Eric",
		"Jonathan", "Stephen", "Benjamin", "Samuel", "Patrick", "Jack", "Tyler", "Aaron",
		"Nathan", "Henry", "Peter", "Noah", "Ethan", "Walter", "Sean", "Carl",
		"Vincent", "Logan", "Luke", "Caleb", "Evan", "Ian", "Connor", "Owen",
	}

	// FemaleFirstNames is the list of female first names for synthetic patients
	FemaleFirstNames = []string{
		"Mary", "Patricia", "Jennifer", "Linda", "Barbara", "Elizabeth", "Susan", "Sarah",
		"Karen", "Lisa", "Nancy", "Margaret", "Sandra", "Emily", "Michelle", "Amanda",
		"Melissa", "Stephanie", "Rebecca", "Laura", "Kathleen", "Amy", "Anna", "Pamela",
		"Emma", "Nicole", "Helen", "Samantha", "Katherine", "Rachel", "Janet", "Maria",
		"Heather", "Diane", "Julie", "Olivia", "Victoria", "Lauren", "Hannah", "Grace",
	}

	// LastNames is the list of last names for synthetic patients
	LastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
		"Martinez", "Lopez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson",
		"Martin", "Lee", "Thompson", "White", "Harris", "Clark", "Lewis", "Robinson",
		"Walker", "Young", "Allen", "King", "Wright", "Scott", "Hill", "Green",
		"Adams", "Nelson", "Baker", "Hall", "Campbell", "Mitchell", "Carter", "Roberts",
	}
)

// GeneratePatientName generates a synthetic patient name based on sex.
//
// Sex should be "M" or "F". Invalid values default to "F".
// If rng is nil, uses shared default RNG.
// Returns name in DICOM format: "LASTNAME^FIRSTNAME"
func GeneratePatientName(sex string, rng *rand.Rand) string {
	if rng == nil {
		rng = defaultRNG
	}

	var firstName string
	if sex == "M" {
		firstName = MaleFirstNames[rng.IntN(len(MaleFirstNames))]
	} else {
		firstName = FemaleFirstNames[rng.IntN(len(FemaleFirstNames))]
	}
	lastName := LastNames[rng.IntN(len(LastNames))]

	// DICOM format: LASTNAME^FIRSTNAME
	return lastName + "^" + firstName
}
