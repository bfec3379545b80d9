// Package attr defines the closed set of attributes the tagger predicts.
package attr

import (
	"fmt"

	"github.com/cognicore/autotag/pkg/autotag/internalerr"
)

// Name identifies one predicted attribute
type Name string

const (
	Cuisine        Name = "cuisine"
	Budget         Name = "budget"
	Ambience       Name = "ambience"
	DietaryOptions Name = "dietary_options"
)

var all = [...]Name{Cuisine, Budget, Ambience, DietaryOptions}

// Count is the number of attributes in the closed set
const Count = len(all)

// All returns every attribute in canonical order
func All() []Name {
	out := make([]Name, len(all))
	copy(out, all[:])
	return out
}

// Index returns the canonical position of n, or -1 if n is not in the set
func Index(n Name) int {
	for i, a := range all {
		if a == n {
			return i
		}
	}
	return -1
}

// Valid reports whether n belongs to the closed set
func (n Name) Valid() bool {
	return Index(n) >= 0
}

// Parse converts s to a Name
func Parse(s string) (Name, error) {
	n := Name(s)
	if !n.Valid() {
		return "", fmt.Errorf("%w: %q", internalerr.ErrUnknownAttribute, s)
	}
	return n, nil
}
