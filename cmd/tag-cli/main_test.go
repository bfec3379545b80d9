package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/autotag/pkg/autotag/artifact/artifacttest"
)

func TestBuildTagger(t *testing.T) {
	path := artifacttest.Write(t, t.TempDir())

	a, svc, err := buildTagger(path)
	if err != nil {
		t.Fatalf("buildTagger: %v", err)
	}
	if a == nil || svc == nil {
		t.Fatal("expected artifact and service")
	}
}

func TestBuildTaggerMissingArtifact(t *testing.T) {
	if _, _, err := buildTagger(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("buildTagger should fail with a missing artifact")
	}
}

func TestTagText(t *testing.T) {
	_, svc, err := buildTagger(artifacttest.Write(t, t.TempDir()))
	if err != nil {
		t.Fatalf("buildTagger: %v", err)
	}

	var buf bytes.Buffer
	if err := tagText(&buf, svc, "spicy vegan curry", false); err != nil {
		t.Fatalf("tagText: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"cuisine:", "thai", "dietary_options:", "vegan"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTagTextFilterMode(t *testing.T) {
	_, svc, err := buildTagger(artifacttest.Write(t, t.TempDir()))
	if err != nil {
		t.Fatalf("buildTagger: %v", err)
	}

	var buf bytes.Buffer
	if err := tagText(&buf, svc, "affordable quick bites", true); err != nil {
		t.Fatalf("tagText: %v", err)
	}
	if !strings.Contains(buf.String(), `cuisine = "fast-food"`) {
		t.Errorf("unexpected filter output:\n%s", buf.String())
	}
	if got := strings.Count(buf.String(), " = "); got != 4 {
		t.Errorf("expected 4 filter terms, got %d", got)
	}
}

func TestPrintInfo(t *testing.T) {
	a := artifacttest.Load(t)
	var buf bytes.Buffer
	printInfo(&buf, a.Summary())

	out := buf.String()
	if !strings.Contains(out, "Features:         20") {
		t.Errorf("missing feature count:\n%s", out)
	}
	if !strings.Contains(out, "budget: high, low, moderate") {
		t.Errorf("missing sorted budget labels:\n%s", out)
	}
}
