package classify

import (
	"fmt"

	"github.com/cognicore/autotag/pkg/autotag/features"
)

// NearestCentroid picks the class whose centroid is closest in squared
// euclidean distance
type NearestCentroid struct {
	classes   []string
	centroids [][]float64
	dim       int
}

func newNearestCentroid(classes []string, centroids [][]float64) (*NearestCentroid, error) {
	dim, err := matrixDim(centroids)
	if err != nil {
		return nil, fmt.Errorf("nearest_centroid: %w", err)
	}
	if len(centroids) != len(classes) {
		return nil, fmt.Errorf("nearest_centroid: %d centroids for %d classes", len(centroids), len(classes))
	}

	return &NearestCentroid{
		classes:   append([]string(nil), classes...),
		centroids: copyMatrix(centroids),
		dim:       dim,
	}, nil
}

// Predict implements Classifier
func (n *NearestCentroid) Predict(v features.Vector) (string, error) {
	if err := checkDim(v, n.dim); err != nil {
		return "", err
	}

	// negate distances so argmax keeps the lowest-index tie rule
	scores := make([]float64, len(n.centroids))
	for k, c := range n.centroids {
		var d float64
		for j, x := range v {
			diff := x - c[j]
			d += diff * diff
		}
		scores[k] = -d
	}
	return n.classes[argmax(scores)], nil
}

// Labels implements Classifier
func (n *NearestCentroid) Labels() []string { return append([]string(nil), n.classes...) }

// Dim implements Classifier
func (n *NearestCentroid) Dim() int { return n.dim }
