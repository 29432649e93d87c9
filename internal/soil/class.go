package soil

import (
	"errors"
	"fmt"
)

// ErrUnknownSoilClass is returned when a class label has no integer code.
var ErrUnknownSoilClass = errors.New("unknown AASHTO soil class")

// SoilClasses lists every AASHTO class the forms can offer.
var SoilClasses = []string{
	"A-1-a", "A-1-b", "A-2-4", "A-2-5", "A-2-6", "A-2-7",
	"A-3", "A-4", "A-5", "A-6", "A-7-5", "A-7-6",
}

// classCodes is the encoding the base model was trained with.
// A-2-5 and A-7-5 never appeared in training data and have no code.
var classCodes = map[string]int{
	"A-1-a": 0,
	"A-1-b": 1,
	"A-2-4": 2,
	"A-2-6": 3,
	"A-2-7": 4,
	"A-3":   5,
	"A-4":   6,
	"A-5":   7,
	"A-6":   8,
	"A-7-6": 9,
}

// EncodeClass maps a class label to the base model's integer code.
func EncodeClass(label string) (int, error) {
	code, ok := classCodes[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q has no model encoding", ErrUnknownSoilClass, label)
	}
	return code, nil
}

// EncodableClasses returns the labels that have a code, ordered by code.
func EncodableClasses() []string {
	out := make([]string, len(classCodes))
	for label, code := range classCodes {
		out[code] = label
	}
	return out
}
