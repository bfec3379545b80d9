// Package artifact loads the trained bundle of one feature extractor and one
// classifier per attribute.
//
// The on-disk form is a JSON document, optionally gzip-compressed:
//
//	{
//	  "format": "autotag-artifact",
//	  "version": 1,
//	  "extractor": {"vocabulary": {...}, "idf": [...], "ngram_range": [1, 2]},
//	  "classifiers": {
//	    "cuisine": {"kind": "linear", "classes": [...], "coef": [[...]], "intercept": [...]},
//	    ...
//	  }
//	}
package artifact

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/cognicore/autotag/pkg/autotag/attr"
	"github.com/cognicore/autotag/pkg/autotag/classify"
	"github.com/cognicore/autotag/pkg/autotag/features"
	"github.com/cognicore/autotag/pkg/autotag/internalerr"
)

const (
	// Format identifies autotag artifact documents
	Format = "autotag-artifact"
	// Version is the only artifact version this package reads
	Version = 1
)

// File is the serialized artifact
type File struct {
	Format      string                   `json:"format"`
	Version     int                      `json:"version"`
	CreatedAt   time.Time                `json:"created_at,omitempty"`
	Extractor   features.State           `json:"extractor"`
	Classifiers map[string]classify.Spec `json:"classifiers"`
}

// Artifact is the loaded, immutable bundle
type Artifact struct {
	extractor   *features.Extractor
	classifiers *classify.Set
	version     int
	createdAt   time.Time
}

// Extractor returns the shared feature extractor
func (a *Artifact) Extractor() *features.Extractor { return a.extractor }

// Classifiers returns the per-attribute classifier set
func (a *Artifact) Classifiers() *classify.Set { return a.classifiers }

// Load reads and validates the artifact at path. Every failure wraps
// internalerr.ErrArtifactLoad.
func Load(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrArtifactLoad, err)
	}
	defer f.Close()

	a, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Decode reads an artifact from r, transparently handling gzip
func Decode(r io.Reader) (*Artifact, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %w", internalerr.ErrArtifactLoad, err)
		}
		defer zr.Close()
		r = zr
	} else {
		r = br
	}

	var file File
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", internalerr.ErrArtifactLoad, err)
	}
	return FromFile(file)
}

// FromFile validates a decoded File and builds the Artifact
func FromFile(file File) (*Artifact, error) {
	a, err := build(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrArtifactLoad, err)
	}
	return a, nil
}

func build(file File) (*Artifact, error) {
	if file.Format != Format {
		return nil, fmt.Errorf("unexpected format %q", file.Format)
	}
	if file.Version != Version {
		return nil, fmt.Errorf("unsupported version %d (want %d)", file.Version, Version)
	}
	if len(file.Classifiers) == 0 {
		return nil, errors.New("no classifiers")
	}

	extractor, err := features.NewExtractor(file.Extractor)
	if err != nil {
		return nil, err
	}

	classifiers := make(map[attr.Name]classify.Classifier, len(file.Classifiers))
	for name, spec := range file.Classifiers {
		a, err := attr.Parse(name)
		if err != nil {
			return nil, err
		}
		c, err := classify.Build(spec)
		if err != nil {
			return nil, fmt.Errorf("classifier %s: %w", name, err)
		}
		if c.Dim() != extractor.Dim() {
			return nil, fmt.Errorf("%w: classifier %s expects %d features, extractor produces %d",
				internalerr.ErrDimensionMismatch, name, c.Dim(), extractor.Dim())
		}
		classifiers[a] = c
	}

	set, err := classify.NewSet(classifiers)
	if err != nil {
		return nil, err
	}

	return &Artifact{
		extractor:   extractor,
		classifiers: set,
		version:     file.Version,
		createdAt:   file.CreatedAt,
	}, nil
}

// Encode writes file as JSON. Tools and tests use it to produce artifacts.
func Encode(w io.Writer, file File) error {
	return json.NewEncoder(w).Encode(file)
}

// EncodeGzip writes file as gzip-compressed JSON
func EncodeGzip(w io.Writer, file File) error {
	zw := gzip.NewWriter(w)
	if err := Encode(zw, file); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// Summary describes a loaded artifact
type Summary struct {
	Version   int                    `json:"version"`
	CreatedAt time.Time              `json:"created_at,omitempty"`
	Features  int                    `json:"features"`
	Labels    map[attr.Name][]string `json:"labels"`
}

// Summary returns the artifact's version, dimension and label sets
func (a *Artifact) Summary() Summary {
	labels := make(map[attr.Name][]string, attr.Count)
	for _, name := range attr.All() {
		c, _ := a.classifiers.Classifier(name)
		l := c.Labels()
		sort.Strings(l)
		labels[name] = l
	}
	return Summary{
		Version:   a.version,
		CreatedAt: a.createdAt,
		Features:  a.extractor.Dim(),
		Labels:    labels,
	}
}
