package classify

import (
	"fmt"

	"github.com/cognicore/autotag/pkg/autotag/features"
)

// MultinomialNB scores each class by its joint log likelihood
// log P(c) + sum_j x_j log P(j|c).
type MultinomialNB struct {
	classes        []string
	classLogPrior  []float64
	featureLogProb [][]float64
	dim            int
}

func newMultinomialNB(classes []string, prior []float64, flp [][]float64) (*MultinomialNB, error) {
	dim, err := matrixDim(flp)
	if err != nil {
		return nil, fmt.Errorf("multinomial_nb: %w", err)
	}
	if len(flp) != len(classes) {
		return nil, fmt.Errorf("multinomial_nb: %d feature rows for %d classes", len(flp), len(classes))
	}
	if len(prior) != len(classes) {
		return nil, fmt.Errorf("multinomial_nb: %d priors for %d classes", len(prior), len(classes))
	}

	return &MultinomialNB{
		classes:        append([]string(nil), classes...),
		classLogPrior:  append([]float64(nil), prior...),
		featureLogProb: copyMatrix(flp),
		dim:            dim,
	}, nil
}

// Predict implements Classifier
func (m *MultinomialNB) Predict(v features.Vector) (string, error) {
	if err := checkDim(v, m.dim); err != nil {
		return "", err
	}

	scores := make([]float64, len(m.classes))
	for k, row := range m.featureLogProb {
		scores[k] = m.classLogPrior[k] + v.Dot(row)
	}
	return m.classes[argmax(scores)], nil
}

// Labels implements Classifier
func (m *MultinomialNB) Labels() []string { return append([]string(nil), m.classes...) }

// Dim implements Classifier
func (m *MultinomialNB) Dim() int { return m.dim }
