// Package artifacttest provides a small trained artifact for tests.
package artifacttest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/autotag/pkg/autotag/artifact"
	"github.com/cognicore/autotag/pkg/autotag/classify"
	"github.com/cognicore/autotag/pkg/autotag/features"
)

var vocabulary = []string{
	"pizza", "pasta", "italian", "burger", "fries",
	"quick", "bites", "affordable", "cheap", "expensive",
	"luxury", "candlelit", "romantic", "vegan", "vegetarian",
	"curry", "spicy", "thai", "tacos", "cozy",
}

// Dim is the fixture's feature dimension
var Dim = len(vocabulary)

// Labels lists the fixture label set per attribute
var Labels = map[string][]string{
	"cuisine":         {"italian", "fast-food", "thai", "mexican"},
	"budget":          {"low", "moderate", "high"},
	"ambience":        {"casual", "formal", "romantic"},
	"dietary_options": {"none", "vegan", "vegetarian"},
}

// File returns the fixture artifact. With it:
//
//	""                        -> italian / moderate / casual / none
//	"affordable quick bites"  -> fast-food / low / casual / none
//	"romantic candlelit dinner with expensive wine" -> italian / high / romantic / none
//	"spicy vegan curry"       -> thai / moderate / casual / vegan
func File() artifact.File {
	vocab := make(map[string]int, len(vocabulary))
	for i, term := range vocabulary {
		vocab[term] = i
	}

	idf := make([]float64, len(vocabulary))
	for i := range idf {
		idf[i] = 1
	}

	return artifact.File{
		Format:    artifact.Format,
		Version:   artifact.Version,
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Extractor: features.State{
			Vocabulary: vocab,
			IDF:        idf,
			NGramRange: [2]int{1, 1},
			Norm:       features.NormL2,
		},
		Classifiers: map[string]classify.Spec{
			"cuisine": {
				Kind:    classify.KindLinear,
				Classes: Labels["cuisine"],
				Coef: [][]float64{
					row(vocab, "pizza", "pasta", "italian"),
					row(vocab, "burger", "fries", "quick", "bites"),
					row(vocab, "curry", "spicy", "thai"),
					row(vocab, "tacos"),
				},
				Intercept: []float64{0.01, 0, 0, 0},
			},
			"budget": {
				Kind:    classify.KindLinear,
				Classes: Labels["budget"],
				Coef: [][]float64{
					row(vocab, "affordable", "cheap"),
					row(vocab),
					row(vocab, "expensive", "luxury", "candlelit"),
				},
				Intercept: []float64{0, 0.1, 0},
			},
			"ambience": {
				Kind:    classify.KindLinear,
				Classes: Labels["ambience"],
				Coef: [][]float64{
					row(vocab, "quick", "bites", "burger", "cozy"),
					row(vocab, "luxury", "expensive"),
					row(vocab, "candlelit", "romantic"),
				},
				Intercept: []float64{0.1, 0, 0},
			},
			"dietary_options": {
				Kind:          classify.KindMultinomialNB,
				Classes:       Labels["dietary_options"],
				ClassLogPrior: []float64{-0.51, -1.61, -1.61},
				FeatureLogProb: [][]float64{
					logProbRow(vocab),
					logProbRow(vocab, "vegan"),
					logProbRow(vocab, "vegetarian"),
				},
			},
		},
	}
}

// Write encodes the fixture into dir and returns its path
func Write(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "artifact.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create artifact: %v", err)
	}
	defer f.Close()

	if err := artifact.Encode(f, File()); err != nil {
		t.Fatalf("encode artifact: %v", err)
	}
	return path
}

// Load builds the fixture artifact in memory
func Load(t testing.TB) *artifact.Artifact {
	t.Helper()
	a, err := artifact.FromFile(File())
	if err != nil {
		t.Fatalf("build fixture artifact: %v", err)
	}
	return a
}

func row(vocab map[string]int, terms ...string) []float64 {
	r := make([]float64, len(vocab))
	for _, term := range terms {
		r[vocab[term]] = 1
	}
	return r
}

func logProbRow(vocab map[string]int, strong ...string) []float64 {
	r := make([]float64, len(vocab))
	for i := range r {
		r[i] = -3
	}
	for _, term := range strong {
		r[vocab[term]] = -0.5
	}
	return r
}
