package autotag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cognicore/autotag/internal/logging"
	"github.com/cognicore/autotag/pkg/autotag/filter"
	"github.com/cognicore/autotag/pkg/autotag/inference"
	"github.com/cognicore/autotag/pkg/autotag/internalerr"
	"github.com/cognicore/autotag/pkg/autotag/store"
)

// Catalog is the listing facade: it tags listings on write and turns free
// text into attribute filters on read
type Catalog struct {
	store   store.Store
	tagger  inference.Tagger
	filters *filter.Builder
	now     func() time.Time
}

// Options configures a Catalog instance
type Options struct {
	Store  store.Store
	Tagger inference.Tagger
	// Now defaults to time.Now
	Now func() time.Time
}

// New creates a Catalog with the given dependencies
func New(opts Options) *Catalog {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Catalog{
		store:   opts.Store,
		tagger:  opts.Tagger,
		filters: filter.NewBuilder(opts.Tagger),
		now:     now,
	}
}

// Close cleanly shuts down the Catalog instance
func (c *Catalog) Close() error {
	return c.store.Close()
}

// NewCuisine is a listing to be created
type NewCuisine struct {
	Name        string
	Description string
	Latitude    string
	Longitude   string
}

// CuisinePatch carries the fields to change. Nil fields are left alone.
type CuisinePatch struct {
	Name        *string
	Description *string
	Latitude    *string
	Longitude   *string
}

// Empty reports whether the patch changes nothing
func (p CuisinePatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Latitude == nil && p.Longitude == nil
}

// Create tags the listing from its description and stores it
func (c *Catalog) Create(ctx context.Context, userID string, in NewCuisine) (store.Cuisine, error) {
	if strings.TrimSpace(userID) == "" {
		return store.Cuisine{}, fmt.Errorf("%w: user id is required", internalerr.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Name) == "" {
		return store.Cuisine{}, fmt.Errorf("%w: name is required", internalerr.ErrInvalidInput)
	}
	if strings.TrimSpace(in.Description) == "" {
		return store.Cuisine{}, fmt.Errorf("%w: description is required", internalerr.ErrInvalidInput)
	}

	p, err := c.tagger.Infer(in.Description)
	if err != nil {
		return store.Cuisine{}, fmt.Errorf("tag cuisine: %w", err)
	}

	now := c.now().UTC()
	rec := store.Cuisine{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	rec.ApplyTags(p)

	rec, err = c.store.Create(ctx, rec)
	if err != nil {
		return store.Cuisine{}, err
	}

	logging.Debug().
		Str("id", rec.ID).
		Str("user_id", userID).
		Interface("tags", p.Map()).
		Msg("cuisine created")
	return rec, nil
}

// Update applies patch to a listing owned by userID. Tags are re-derived
// only when the patch carries a description; otherwise the stored tags are
// kept even if other fields change.
func (c *Catalog) Update(ctx context.Context, userID, id string, patch CuisinePatch) (store.Cuisine, error) {
	if patch.Empty() {
		return store.Cuisine{}, fmt.Errorf("%w: nothing to update", internalerr.ErrInvalidInput)
	}

	rec, err := c.owned(ctx, userID, id)
	if err != nil {
		return store.Cuisine{}, err
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return store.Cuisine{}, fmt.Errorf("%w: name cannot be blank", internalerr.ErrInvalidInput)
		}
		rec.Name = *patch.Name
	}
	if patch.Latitude != nil {
		rec.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		rec.Longitude = *patch.Longitude
	}
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return store.Cuisine{}, fmt.Errorf("%w: description cannot be blank", internalerr.ErrInvalidInput)
		}
		p, err := c.tagger.Infer(*patch.Description)
		if err != nil {
			return store.Cuisine{}, fmt.Errorf("tag cuisine: %w", err)
		}
		rec.Description = *patch.Description
		rec.ApplyTags(p)
	}
	rec.UpdatedAt = c.now().UTC()

	if err := c.store.Update(ctx, rec); err != nil {
		return store.Cuisine{}, err
	}
	return rec, nil
}

// Delete removes a listing owned by userID
func (c *Catalog) Delete(ctx context.Context, userID, id string) error {
	if _, err := c.owned(ctx, userID, id); err != nil {
		return err
	}
	return c.store.Delete(ctx, id)
}

// Get returns any listing by ID
func (c *Catalog) Get(ctx context.Context, id string) (store.Cuisine, error) {
	rec, found, err := c.store.Get(ctx, id)
	if err != nil {
		return store.Cuisine{}, err
	}
	if !found {
		return store.Cuisine{}, fmt.Errorf("cuisine %s: %w", id, internalerr.ErrNotFound)
	}
	return rec, nil
}

// ListMine returns the listings owned by userID, oldest first
func (c *Catalog) ListMine(ctx context.Context, userID string) ([]store.Cuisine, error) {
	return c.store.ListByUser(ctx, userID)
}

// Search lists every listing when prompt is nil. Otherwise the prompt is
// tagged and only listings matching all four predicted attributes are
// returned.
func (c *Catalog) Search(ctx context.Context, prompt *string) ([]store.Cuisine, error) {
	f, err := c.Filter(prompt)
	if err != nil {
		return nil, err
	}
	return c.Find(ctx, f)
}

// Filter returns the filter a prompt produces
func (c *Catalog) Filter(prompt *string) (filter.Filter, error) {
	f, err := c.filters.Build(prompt)
	if err != nil {
		return filter.Filter{}, err
	}
	if !f.Empty() {
		logging.Debug().Interface("filter", f.Map()).Msg("search filter")
	}
	return f, nil
}

// Find lists the listings matching an already built filter
func (c *Catalog) Find(ctx context.Context, f filter.Filter) ([]store.Cuisine, error) {
	return c.store.Find(ctx, f)
}

// Tags runs inference on text without touching the store
func (c *Catalog) Tags(text string) (inference.Prediction, error) {
	return c.tagger.Infer(text)
}

// owned loads id and checks that userID owns it
func (c *Catalog) owned(ctx context.Context, userID, id string) (store.Cuisine, error) {
	rec, err := c.Get(ctx, id)
	if err != nil {
		return store.Cuisine{}, err
	}
	if rec.UserID != userID {
		return store.Cuisine{}, fmt.Errorf("cuisine %s: %w", id, internalerr.ErrForbidden)
	}
	return rec, nil
}
