// Package classify holds the trained single-label classifiers, one per
// attribute, that share the feature space of one extractor.
package classify

import (
	"errors"
	"fmt"

	"github.com/cognicore/autotag/pkg/autotag/features"
	"github.com/cognicore/autotag/pkg/autotag/internalerr"
)

// Classifier predicts one label from a feature vector
type Classifier interface {
	// Predict returns exactly one label from Labels()
	Predict(v features.Vector) (string, error)

	// Labels returns the label set the classifier was trained with
	Labels() []string

	// Dim returns the feature dimension the classifier expects
	Dim() int
}

// Kinds of serialized classifiers
const (
	KindLinear          = "linear"
	KindMultinomialNB   = "multinomial_nb"
	KindNearestCentroid = "nearest_centroid"
)

// Spec is the serialized form of a trained classifier. Which weight fields
// are used depends on Kind.
type Spec struct {
	Kind    string   `json:"kind"`
	Classes []string `json:"classes"`

	// linear
	Coef      [][]float64 `json:"coef,omitempty"`
	Intercept []float64   `json:"intercept,omitempty"`

	// multinomial_nb
	ClassLogPrior  []float64   `json:"class_log_prior,omitempty"`
	FeatureLogProb [][]float64 `json:"feature_log_prob,omitempty"`

	// nearest_centroid
	Centroids [][]float64 `json:"centroids,omitempty"`
}

// Build constructs a classifier from its serialized form
func Build(s Spec) (Classifier, error) {
	if len(s.Classes) < 2 {
		return nil, fmt.Errorf("classifier needs at least 2 classes, got %d", len(s.Classes))
	}
	seen := make(map[string]struct{}, len(s.Classes))
	for i, c := range s.Classes {
		// an empty label would read as "no prediction" downstream
		if c == "" {
			return nil, fmt.Errorf("class %d has an empty name", i)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		seen[c] = struct{}{}
	}

	switch s.Kind {
	case KindLinear:
		return newLinear(s.Classes, s.Coef, s.Intercept)
	case KindMultinomialNB:
		return newMultinomialNB(s.Classes, s.ClassLogPrior, s.FeatureLogProb)
	case KindNearestCentroid:
		return newNearestCentroid(s.Classes, s.Centroids)
	case "":
		return nil, errors.New("classifier kind is required")
	default:
		return nil, fmt.Errorf("unknown classifier kind %q", s.Kind)
	}
}

func checkDim(v features.Vector, dim int) error {
	if v.Dim() != dim {
		return fmt.Errorf("%w: vector has %d features, classifier expects %d",
			internalerr.ErrDimensionMismatch, v.Dim(), dim)
	}
	return nil
}

// matrixDim checks every row has the same non-zero width and returns it
func matrixDim(rows [][]float64) (int, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, errors.New("empty weight matrix")
	}
	dim := len(rows[0])
	for i, row := range rows {
		if len(row) != dim {
			return 0, fmt.Errorf("row %d has %d weights, expected %d", i, len(row), dim)
		}
	}
	return dim, nil
}

func copyMatrix(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// argmax returns the index of the largest score; ties go to the lowest index
func argmax(scores []float64) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}
