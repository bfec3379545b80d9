package inference

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cognicore/autotag/internal/logging"
	"github.com/cognicore/autotag/pkg/autotag/artifact"
	"github.com/cognicore/autotag/pkg/autotag/artifact/artifacttest"
	"github.com/cognicore/autotag/pkg/autotag/attr"
	"github.com/cognicore/autotag/pkg/autotag/internalerr"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := New(artifacttest.Load(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestInferExamples(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		text string
		want map[attr.Name]string
	}{
		{"", map[attr.Name]string{
			attr.Cuisine: "italian", attr.Budget: "moderate", attr.Ambience: "casual", attr.DietaryOptions: "none",
		}},
		{"affordable quick bites", map[attr.Name]string{
			attr.Cuisine: "fast-food", attr.Budget: "low", attr.Ambience: "casual", attr.DietaryOptions: "none",
		}},
		{"Romantic candlelit dinner with expensive wine", map[attr.Name]string{
			attr.Cuisine: "italian", attr.Budget: "high", attr.Ambience: "romantic", attr.DietaryOptions: "none",
		}},
		{"spicy vegan curry", map[attr.Name]string{
			attr.Cuisine: "thai", attr.Budget: "moderate", attr.Ambience: "casual", attr.DietaryOptions: "vegan",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			p, err := s.Infer(tt.text)
			if err != nil {
				t.Fatalf("Infer: %v", err)
			}
			got := p.Map()
			for name, want := range tt.want {
				if got[name] != want {
					t.Errorf("%s: expected %s, got %s", name, want, got[name])
				}
			}
		})
	}
}

func TestInferEmptyBudgetIsModerate(t *testing.T) {
	p, err := newTestService(t).Infer("")
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if p.Budget() != "moderate" {
		t.Errorf("expected moderate, got %s", p.Budget())
	}
	if !p.Complete() {
		t.Errorf("expected all four attributes, got %v", p.Map())
	}
}

func TestInferDeterministic(t *testing.T) {
	s := newTestService(t)
	texts := []string{"", "cozy burger joint", "vegetarian pasta and pizza", "tacos tacos tacos"}
	for _, text := range texts {
		a, err := s.Infer(text)
		if err != nil {
			t.Fatalf("Infer(%q): %v", text, err)
		}
		b, _ := s.Infer(text)
		if a != b {
			t.Errorf("Infer(%q) not deterministic: %v vs %v", text, a.Map(), b.Map())
		}
	}
}

func TestInferTotalityAndLabelSets(t *testing.T) {
	s := newTestService(t)
	texts := []string{
		"", " ", "!!!", "unrelated words entirely",
		"cheap luxury vegan tacos", "ITALIAN PIZZA", "quick thai curry, spicy",
		strings.Repeat("romantic ", 50),
	}

	for _, text := range texts {
		p, err := s.Infer(text)
		if err != nil {
			t.Fatalf("Infer(%q): %v", text, err)
		}
		m := p.Map()
		if len(m) != attr.Count {
			t.Fatalf("Infer(%q) returned %d keys, want %d", text, len(m), attr.Count)
		}
		for name, label := range m {
			allowed := artifacttest.Labels[string(name)]
			found := false
			for _, l := range allowed {
				if l == label {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Infer(%q): %s=%q not in trained labels %v", text, name, label, allowed)
			}
		}
	}
}

func TestPredictSingleAttribute(t *testing.T) {
	s := newTestService(t)

	got, err := s.Predict(attr.DietaryOptions, "spicy vegan curry")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != "vegan" {
		t.Errorf("expected vegan, got %s", got)
	}

	if _, err := s.Predict("price", "anything"); !errors.Is(err, internalerr.ErrUnknownAttribute) {
		t.Errorf("expected ErrUnknownAttribute, got %v", err)
	}
}

func TestLabels(t *testing.T) {
	s := newTestService(t)
	labels, err := s.Labels(attr.Ambience)
	if err != nil {
		t.Fatalf("Labels: %v", err)
	}
	if len(labels) != 3 {
		t.Errorf("expected 3 ambience labels, got %v", labels)
	}
	if _, err := s.Labels("price"); !errors.Is(err, internalerr.ErrUnknownAttribute) {
		t.Errorf("expected ErrUnknownAttribute, got %v", err)
	}
}

func TestNewWithoutArtifact(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, internalerr.ErrArtifactNotLoaded) {
		t.Errorf("expected ErrArtifactNotLoaded, got %v", err)
	}

	var s *Service
	if _, err := s.Infer("pizza"); !errors.Is(err, internalerr.ErrArtifactNotLoaded) {
		t.Errorf("expected ErrArtifactNotLoaded, got %v", err)
	}
}

func TestLabelsWithoutArtifact(t *testing.T) {
	var s *Service
	if _, err := s.Labels(attr.Cuisine); !errors.Is(err, internalerr.ErrArtifactNotLoaded) {
		t.Errorf("nil service: expected ErrArtifactNotLoaded, got %v", err)
	}
	if _, err := (&Service{}).Labels(attr.Cuisine); !errors.Is(err, internalerr.ErrArtifactNotLoaded) {
		t.Errorf("zero service: expected ErrArtifactNotLoaded, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	path := artifacttest.Write(t, t.TempDir())
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Infer("pizza"); err != nil {
		t.Errorf("Infer: %v", err)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, internalerr.ErrArtifactLoad) {
		t.Errorf("expected ErrArtifactLoad, got %v", err)
	}
}

func TestLazyLoadsExactlyOnce(t *testing.T) {
	var loads atomic.Int32
	fixture := artifacttest.File()
	lazy := NewLazy(func() (*artifact.Artifact, error) {
		loads.Add(1)
		return artifact.FromFile(fixture)
	})

	const workers = 64
	var wg sync.WaitGroup
	results := make([]Prediction, workers)
	errs := make([]error, workers)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = lazy.Infer("affordable quick bites")
		}(i)
	}
	close(start)
	wg.Wait()

	if n := loads.Load(); n != 1 {
		t.Fatalf("expected exactly one load, got %d", n)
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if !results[i].Complete() || results[i].Cuisine() != "fast-food" {
			t.Errorf("worker %d: unexpected prediction %v", i, results[i].Map())
		}
	}
}

func TestLazyLoadErrorIsSticky(t *testing.T) {
	var loads atomic.Int32
	lazy := NewLazy(func() (*artifact.Artifact, error) {
		loads.Add(1)
		return nil, errors.New("disk on fire")
	})

	for i := 0; i < 3; i++ {
		_, err := lazy.Infer("pizza")
		if !errors.Is(err, internalerr.ErrArtifactLoad) {
			t.Fatalf("call %d: expected ErrArtifactLoad, got %v", i, err)
		}
	}
	if loads.Load() != 1 {
		t.Errorf("expected one load attempt, got %d", loads.Load())
	}
}

func TestLazyLogsLoadOutcome(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "info", Format: "json", Output: &buf})
	defer logging.Init(logging.Config{})

	failing := NewLazy(func() (*artifact.Artifact, error) {
		return nil, errors.New("disk on fire")
	})
	for i := 0; i < 3; i++ {
		_, _ = failing.Infer("pizza")
	}
	if n := strings.Count(buf.String(), "lazy artifact load failed"); n != 1 {
		t.Errorf("expected the load failure logged once, got %d in %s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "disk on fire") {
		t.Errorf("expected the cause in the log, got %s", buf.String())
	}

	buf.Reset()
	fixture := artifacttest.File()
	ok := NewLazy(func() (*artifact.Artifact, error) {
		return artifact.FromFile(fixture)
	})
	if _, err := ok.Infer("pizza"); err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if !strings.Contains(buf.String(), "artifact loaded on first use") {
		t.Errorf("expected a load success log, got %s", buf.String())
	}
}

func TestLazyPathMissing(t *testing.T) {
	lazy := LazyPath(filepath.Join(t.TempDir(), "nope.json"))
	if _, err := lazy.Service(); !errors.Is(err, internalerr.ErrArtifactLoad) {
		t.Errorf("expected ErrArtifactLoad, got %v", err)
	}
}

func TestPredictionJSON(t *testing.T) {
	p := NewPrediction([attr.Count]string{"thai", "low", "casual", "vegan"})
	data, err := p.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	for _, want := range []string{`"cuisine":"thai"`, `"budget":"low"`, `"ambience":"casual"`, `"dietary_options":"vegan"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %s in %s", want, data)
		}
	}
}

func TestPredictionZeroValue(t *testing.T) {
	var p Prediction
	if p.Complete() {
		t.Error("zero prediction should not be complete")
	}
	if _, ok := p.Get(attr.Budget); ok {
		t.Error("zero prediction should have no budget")
	}
	if len(p.Map()) != 0 {
		t.Errorf("expected empty map, got %v", p.Map())
	}
}
