// Package filter turns an optional free-text query into an equality filter
// over the predicted attributes. The filter is plain data; stores decide how
// to execute it.
package filter

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cognicore/autotag/pkg/autotag/attr"
	"github.com/cognicore/autotag/pkg/autotag/inference"
)

// BuildsTotal counts filter builds by kind (empty, inferred, error)
var BuildsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "autotag_filter_builds_total",
		Help: "Total number of attribute filters built",
	},
	[]string{"kind"},
)

// Term restricts one attribute to one exact value
type Term struct {
	Attribute attr.Name
	Value     string
}

// Filter is a conjunction of Terms. The zero value is the empty filter,
// which matches every record.
type Filter struct {
	terms []Term
}

// FromPrediction builds a filter with one term per predicted attribute, in
// canonical attribute order
func FromPrediction(p inference.Prediction) Filter {
	var terms []Term
	for _, name := range attr.All() {
		if v, ok := p.Get(name); ok {
			terms = append(terms, Term{Attribute: name, Value: v})
		}
	}
	return Filter{terms: terms}
}

// Empty reports whether the filter places no restriction
func (f Filter) Empty() bool { return len(f.terms) == 0 }

// Terms returns a copy of the filter terms
func (f Filter) Terms() []Term {
	return append([]Term(nil), f.terms...)
}

// Map returns the filter as attribute -> required value
func (f Filter) Map() map[attr.Name]string {
	out := make(map[attr.Name]string, len(f.terms))
	for _, t := range f.terms {
		out[t.Attribute] = t.Value
	}
	return out
}

// Matches reports whether fields satisfies every term. A missing field never
// matches a term.
func (f Filter) Matches(fields map[attr.Name]string) bool {
	for _, t := range f.terms {
		if v, ok := fields[t.Attribute]; !ok || v != t.Value {
			return false
		}
	}
	return true
}

// Builder infers filters from free text
type Builder struct {
	tagger inference.Tagger
}

// NewBuilder creates a Builder over the given tagger
func NewBuilder(tagger inference.Tagger) *Builder {
	return &Builder{tagger: tagger}
}

// Build returns the empty filter when query is nil. Any non-nil query,
// including the empty string, is inferred and yields a full four-term filter.
func (b *Builder) Build(query *string) (Filter, error) {
	if query == nil {
		BuildsTotal.WithLabelValues("empty").Inc()
		return Filter{}, nil
	}

	p, err := b.tagger.Infer(*query)
	if err != nil {
		BuildsTotal.WithLabelValues("error").Inc()
		return Filter{}, fmt.Errorf("infer filter: %w", err)
	}
	BuildsTotal.WithLabelValues("inferred").Inc()
	return FromPrediction(p), nil
}
