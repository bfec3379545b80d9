package classify

import (
	"fmt"

	"github.com/cognicore/autotag/pkg/autotag/features"
)

// Linear is a one-vs-rest linear model (logistic regression or linear SVM).
// With a single weight row it is a binary model: classes[1] wins when the
// decision value is positive.
type Linear struct {
	classes   []string
	coef      [][]float64
	intercept []float64
	dim       int
}

func newLinear(classes []string, coef [][]float64, intercept []float64) (*Linear, error) {
	dim, err := matrixDim(coef)
	if err != nil {
		return nil, fmt.Errorf("linear: %w", err)
	}

	binary := len(coef) == 1
	if binary && len(classes) != 2 {
		return nil, fmt.Errorf("linear: single weight row needs 2 classes, got %d", len(classes))
	}
	if !binary && len(coef) != len(classes) {
		return nil, fmt.Errorf("linear: %d weight rows for %d classes", len(coef), len(classes))
	}

	b := make([]float64, len(coef))
	switch len(intercept) {
	case 0:
	case len(coef):
		copy(b, intercept)
	default:
		return nil, fmt.Errorf("linear: %d intercepts for %d weight rows", len(intercept), len(coef))
	}

	return &Linear{
		classes:   append([]string(nil), classes...),
		coef:      copyMatrix(coef),
		intercept: b,
		dim:       dim,
	}, nil
}

// Predict implements Classifier
func (l *Linear) Predict(v features.Vector) (string, error) {
	if err := checkDim(v, l.dim); err != nil {
		return "", err
	}

	if len(l.coef) == 1 {
		if v.Dot(l.coef[0])+l.intercept[0] > 0 {
			return l.classes[1], nil
		}
		return l.classes[0], nil
	}

	scores := make([]float64, len(l.coef))
	for k, row := range l.coef {
		scores[k] = v.Dot(row) + l.intercept[k]
	}
	return l.classes[argmax(scores)], nil
}

// Labels implements Classifier
func (l *Linear) Labels() []string { return append([]string(nil), l.classes...) }

// Dim implements Classifier
func (l *Linear) Dim() int { return l.dim }
