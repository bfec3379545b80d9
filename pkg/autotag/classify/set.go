package classify

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/autotag/pkg/autotag/attr"
	"github.com/cognicore/autotag/pkg/autotag/features"
	"github.com/cognicore/autotag/pkg/autotag/internalerr"
)

// Set holds one classifier per attribute. It is read-only after NewSet.
type Set struct {
	byAttr map[attr.Name]Classifier
	dim    int
}

// NewSet requires a classifier for every attribute, all sharing one dimension
func NewSet(classifiers map[attr.Name]Classifier) (*Set, error) {
	byAttr := make(map[attr.Name]Classifier, attr.Count)
	dim := -1
	for name, c := range classifiers {
		if !name.Valid() {
			return nil, fmt.Errorf("%w: %q", internalerr.ErrUnknownAttribute, name)
		}
		if c == nil {
			return nil, fmt.Errorf("classifier for %s is nil", name)
		}
		if dim == -1 {
			dim = c.Dim()
		} else if c.Dim() != dim {
			return nil, fmt.Errorf("%w: %s expects %d features, others expect %d",
				internalerr.ErrDimensionMismatch, name, c.Dim(), dim)
		}
		byAttr[name] = c
	}

	for _, name := range attr.All() {
		if _, ok := byAttr[name]; !ok {
			return nil, fmt.Errorf("missing classifier for %s", name)
		}
	}

	return &Set{byAttr: byAttr, dim: dim}, nil
}

// Dim returns the feature dimension shared by every classifier
func (s *Set) Dim() int { return s.dim }

// Classifier returns the classifier for name
func (s *Set) Classifier(name attr.Name) (Classifier, bool) {
	c, ok := s.byAttr[name]
	return c, ok
}

// Predict runs the classifier for a single attribute
func (s *Set) Predict(name attr.Name, v features.Vector) (string, error) {
	c, ok := s.byAttr[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", internalerr.ErrUnknownAttribute, name)
	}
	return c.Predict(v)
}

// PredictAll runs every classifier on v and returns the labels in canonical
// attribute order. Either all labels are returned or an error.
func (s *Set) PredictAll(v features.Vector) ([attr.Count]string, error) {
	var labels [attr.Count]string
	var g errgroup.Group

	for i, name := range attr.All() {
		c := s.byAttr[name]
		g.Go(func() error {
			label, err := c.Predict(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			labels[i] = label
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return [attr.Count]string{}, err
	}
	return labels, nil
}
