package store

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/autotag/pkg/autotag/attr"
	"github.com/cognicore/autotag/pkg/autotag/filter"
	"github.com/cognicore/autotag/pkg/autotag/inference"
)

// Store persists cuisine records and answers attribute-equality queries
type Store interface {
	Close() error

	// Create inserts c, assigning an ID when c.ID is empty
	Create(ctx context.Context, c Cuisine) (Cuisine, error)
	Get(ctx context.Context, id string) (Cuisine, bool, error)
	// Update replaces the stored record with the same ID.
	// Returns internalerr.ErrNotFound if there is none.
	Update(ctx context.Context, c Cuisine) error
	Delete(ctx context.Context, id string) error

	ListByUser(ctx context.Context, userID string) ([]Cuisine, error)
	// Find returns every record whose attributes equal all filter terms.
	// The empty filter returns every record.
	Find(ctx context.Context, f filter.Filter) ([]Cuisine, error)
}

// Cuisine is a stored listing with its predicted attributes
type Cuisine struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Latitude       string    `json:"latitude,omitempty"`
	Longitude      string    `json:"longitude,omitempty"`
	Cuisine        string    `json:"cuisine"`
	Budget         string    `json:"budget"`
	Ambience       string    `json:"ambience"`
	DietaryOptions string    `json:"dietary_options"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ApplyTags stamps the predicted attributes onto the record
func (c *Cuisine) ApplyTags(p inference.Prediction) {
	c.Cuisine = p.Cuisine()
	c.Budget = p.Budget()
	c.Ambience = p.Ambience()
	c.DietaryOptions = p.DietaryOptions()
}

// Attributes returns the record's predicted attributes keyed by name
func (c Cuisine) Attributes() map[attr.Name]string {
	return map[attr.Name]string{
		attr.Cuisine:        c.Cuisine,
		attr.Budget:         c.Budget,
		attr.Ambience:       c.Ambience,
		attr.DietaryOptions: c.DietaryOptions,
	}
}

// NewID returns a new lexically sortable record ID
func NewID() string {
	return ulid.Make().String()
}
