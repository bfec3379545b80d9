package inference

import (
	"github.com/goccy/go-json"

	"github.com/cognicore/autotag/pkg/autotag/attr"
)

// Prediction maps every attribute to exactly one predicted label. The zero
// value holds no labels; predictions returned by Infer always hold all of them.
type Prediction struct {
	values [attr.Count]string
}

// NewPrediction builds a Prediction from labels in canonical attribute order
func NewPrediction(labels [attr.Count]string) Prediction {
	return Prediction{values: labels}
}

// Get returns the label for name
func (p Prediction) Get(name attr.Name) (string, bool) {
	i := attr.Index(name)
	if i < 0 || p.values[i] == "" {
		return "", false
	}
	return p.values[i], true
}

// Cuisine returns the predicted cuisine
func (p Prediction) Cuisine() string { return p.values[attr.Index(attr.Cuisine)] }

// Budget returns the predicted budget tier
func (p Prediction) Budget() string { return p.values[attr.Index(attr.Budget)] }

// Ambience returns the predicted ambience
func (p Prediction) Ambience() string { return p.values[attr.Index(attr.Ambience)] }

// DietaryOptions returns the predicted dietary options
func (p Prediction) DietaryOptions() string {
	return p.values[attr.Index(attr.DietaryOptions)]
}

// Complete reports whether every attribute has a label
func (p Prediction) Complete() bool {
	for _, v := range p.values {
		if v == "" {
			return false
		}
	}
	return true
}

// Map returns a fresh attribute -> label map
func (p Prediction) Map() map[attr.Name]string {
	out := make(map[attr.Name]string, attr.Count)
	for i, name := range attr.All() {
		if p.values[i] != "" {
			out[name] = p.values[i]
		}
	}
	return out
}

// MarshalJSON encodes the prediction as an object keyed by attribute name
func (p Prediction) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Map())
}
