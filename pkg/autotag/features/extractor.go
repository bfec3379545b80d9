// Package features turns free text into TF-IDF vectors using a vocabulary
// fitted ahead of time.
//
// Tokens must be produced exactly as they were at fit time, so lowercasing
// uses full Unicode case mapping (golang.org/x/text/cases) instead of
// per-rune unicode.ToLower, which differs for runes such as U+0130 and
// word-final sigma.
package features

import (
	"errors"
	"fmt"
	"math"

	"github.com/cognicore/autotag/pkg/autotag/internalerr"
)

// Norm names the row normalization applied after weighting
const (
	NormL2   = "l2"
	NormL1   = "l1"
	NormNone = "none"
)

// State is the serialized form of a fitted extractor
type State struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf,omitempty"` // empty disables idf weighting
	NGramRange  [2]int         `json:"ngram_range"`
	StopWords   []string       `json:"stop_words,omitempty"`
	SublinearTF bool           `json:"sublinear_tf,omitempty"`
	Norm        string         `json:"norm,omitempty"` // defaults to l2
}

// Extractor converts text to a Vector. It is immutable once built and safe
// for concurrent use.
type Extractor struct {
	tokenizer *Tokenizer
	vocab     map[string]int
	idf       []float64
	sublinear bool
	norm      string
}

// NewExtractor validates s and builds an extractor from it
func NewExtractor(s State) (*Extractor, error) {
	if len(s.Vocabulary) == 0 {
		return nil, errors.New("extractor: empty vocabulary")
	}
	dim := len(s.Vocabulary)
	if len(s.IDF) != 0 && len(s.IDF) != dim {
		return nil, fmt.Errorf("extractor: idf has %d weights for %d terms", len(s.IDF), dim)
	}

	seen := make([]bool, dim)
	vocab := make(map[string]int, dim)
	for term, idx := range s.Vocabulary {
		if idx < 0 || idx >= dim {
			return nil, fmt.Errorf("extractor: term %q has index %d outside [0,%d)", term, idx, dim)
		}
		if seen[idx] {
			return nil, fmt.Errorf("extractor: index %d assigned twice", idx)
		}
		seen[idx] = true
		vocab[term] = idx
	}

	minN, maxN := s.NGramRange[0], s.NGramRange[1]
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 1
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("extractor: invalid ngram range [%d,%d]", minN, maxN)
	}

	norm := s.Norm
	switch norm {
	case "":
		norm = NormL2
	case NormL2, NormL1, NormNone:
	default:
		return nil, fmt.Errorf("extractor: unknown norm %q", s.Norm)
	}

	tok := NewTokenizer(s.StopWords)
	tok.SetNGramRange(minN, maxN)

	var idf []float64
	if len(s.IDF) > 0 {
		idf = make([]float64, dim)
		copy(idf, s.IDF)
	}

	return &Extractor{
		tokenizer: tok,
		vocab:     vocab,
		idf:       idf,
		sublinear: s.SublinearTF,
		norm:      norm,
	}, nil
}

// Dim returns the vocabulary size, which is the length of every Vector
func (e *Extractor) Dim() int {
	if e == nil {
		return 0
	}
	return len(e.vocab)
}

// Extract converts text to a feature vector. Empty text, or text with no
// in-vocabulary terms, yields the all-zero vector.
func (e *Extractor) Extract(text string) (Vector, error) {
	if e == nil || e.vocab == nil {
		return nil, internalerr.ErrArtifactNotLoaded
	}

	vec := make(Vector, len(e.vocab))
	for _, term := range e.tokenizer.Terms(text) {
		if idx, ok := e.vocab[term]; ok {
			vec[idx]++
		}
	}

	for i, tf := range vec {
		if tf == 0 {
			continue
		}
		if e.sublinear {
			tf = 1 + math.Log(tf)
		}
		if e.idf != nil {
			tf *= e.idf[i]
		}
		vec[i] = tf
	}

	normalize(vec, e.norm)
	return vec, nil
}

func normalize(v Vector, norm string) {
	var total float64
	switch norm {
	case NormL2:
		for _, x := range v {
			total += x * x
		}
		total = math.Sqrt(total)
	case NormL1:
		for _, x := range v {
			total += math.Abs(x)
		}
	default:
		return
	}
	if total == 0 {
		return
	}
	for i := range v {
		v[i] /= total
	}
}
