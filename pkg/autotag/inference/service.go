// Package inference turns a free-text description into a Prediction by
// running every attribute classifier over one shared feature vector.
package inference

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cognicore/autotag/internal/logging"
	"github.com/cognicore/autotag/pkg/autotag/artifact"
	"github.com/cognicore/autotag/pkg/autotag/attr"
	"github.com/cognicore/autotag/pkg/autotag/classify"
	"github.com/cognicore/autotag/pkg/autotag/features"
	"github.com/cognicore/autotag/pkg/autotag/internalerr"
)

// Tagger is anything that can infer a Prediction from text
type Tagger interface {
	Infer(text string) (Prediction, error)
}

// Service runs inference against one loaded artifact. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	extractor   *features.Extractor
	classifiers *classify.Set
}

// New creates a Service over an already loaded artifact
func New(a *artifact.Artifact) (*Service, error) {
	if a == nil || a.Extractor() == nil || a.Classifiers() == nil {
		return nil, internalerr.ErrArtifactNotLoaded
	}
	return &Service{
		extractor:   a.Extractor(),
		classifiers: a.Classifiers(),
	}, nil
}

// Open loads the artifact at path and creates a Service. A load failure is
// fatal for inference; callers should not retry it in-process.
func Open(path string) (*Service, error) {
	start := time.Now()
	a, err := artifact.Load(path)
	if err != nil {
		ArtifactLoadsTotal.WithLabelValues("error").Inc()
		logging.Error().Err(err).Str("path", path).Msg("artifact load failed")
		return nil, err
	}
	ArtifactLoadsTotal.WithLabelValues("ok").Inc()

	s := a.Summary()
	logging.Info().
		Str("path", path).
		Int("version", s.Version).
		Int("features", s.Features).
		Dur("took", time.Since(start)).
		Msg("artifact loaded")

	return New(a)
}

// Infer extracts features from text once and predicts every attribute.
// Empty text is valid input and is classified from the all-zero vector.
func (s *Service) Infer(text string) (Prediction, error) {
	start := time.Now()
	p, err := s.infer(text)
	InferenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		InferencesTotal.WithLabelValues("error").Inc()
		return Prediction{}, err
	}
	InferencesTotal.WithLabelValues("ok").Inc()

	for i, name := range attr.All() {
		PredictedLabelsTotal.WithLabelValues(string(name), p.values[i]).Inc()
	}
	return p, nil
}

func (s *Service) infer(text string) (Prediction, error) {
	if s == nil || s.extractor == nil {
		return Prediction{}, internalerr.ErrArtifactNotLoaded
	}

	vec, err := s.extractor.Extract(text)
	if err != nil {
		return Prediction{}, fmt.Errorf("extract features: %w", err)
	}

	labels, err := s.classifiers.PredictAll(vec)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}
	return NewPrediction(labels), nil
}

// Predict runs a single attribute classifier on text
func (s *Service) Predict(name attr.Name, text string) (string, error) {
	if s == nil || s.extractor == nil {
		return "", internalerr.ErrArtifactNotLoaded
	}
	if !name.Valid() {
		return "", fmt.Errorf("%w: %q", internalerr.ErrUnknownAttribute, name)
	}

	vec, err := s.extractor.Extract(text)
	if err != nil {
		return "", fmt.Errorf("extract features: %w", err)
	}
	return s.classifiers.Predict(name, vec)
}

// Labels returns the trained label set for name
func (s *Service) Labels(name attr.Name) ([]string, error) {
	if s == nil || s.classifiers == nil {
		return nil, internalerr.ErrArtifactNotLoaded
	}
	c, ok := s.classifiers.Classifier(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", internalerr.ErrUnknownAttribute, name)
	}
	return c.Labels(), nil
}

// Lazy defers loading until the first call, then loads exactly once no
// matter how many goroutines race on that first call. A load failure is
// remembered and returned to every later caller.
type Lazy struct {
	get func() (*Service, error)
}

// NewLazy wraps a loader. The loader runs at most once.
func NewLazy(load func() (*artifact.Artifact, error)) *Lazy {
	return &Lazy{
		get: sync.OnceValues(func() (*Service, error) {
			start := time.Now()
			a, err := load()
			if err != nil {
				ArtifactLoadsTotal.WithLabelValues("error").Inc()
				if !errors.Is(err, internalerr.ErrArtifactLoad) {
					err = fmt.Errorf("%w: %w", internalerr.ErrArtifactLoad, err)
				}
				logging.Error().Err(err).Msg("lazy artifact load failed")
				return nil, err
			}
			ArtifactLoadsTotal.WithLabelValues("ok").Inc()

			s := a.Summary()
			logging.Info().
				Int("version", s.Version).
				Int("features", s.Features).
				Dur("took", time.Since(start)).
				Msg("artifact loaded on first use")
			return New(a)
		}),
	}
}

// LazyPath loads the artifact at path on first use
func LazyPath(path string) *Lazy {
	return NewLazy(func() (*artifact.Artifact, error) {
		return artifact.Load(path)
	})
}

// Service returns the loaded service, loading it if needed
func (l *Lazy) Service() (*Service, error) {
	return l.get()
}

// Infer implements Tagger
func (l *Lazy) Infer(text string) (Prediction, error) {
	s, err := l.get()
	if err != nil {
		return Prediction{}, err
	}
	return s.Infer(text)
}
