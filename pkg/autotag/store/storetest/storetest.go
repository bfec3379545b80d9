// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/autotag/pkg/autotag/attr"
	"github.com/cognicore/autotag/pkg/autotag/filter"
	"github.com/cognicore/autotag/pkg/autotag/inference"
	"github.com/cognicore/autotag/pkg/autotag/internalerr"
	"github.com/cognicore/autotag/pkg/autotag/store"
)

// Opener returns a fresh, empty store. Run closes it.
type Opener func(t *testing.T) store.Store

// Run exercises the full store.Store contract against stores from open
func Run(t *testing.T, open Opener) {
	t.Run("CreateGet", func(t *testing.T) { testCreateGet(t, open) })
	t.Run("UpdateDelete", func(t *testing.T) { testUpdateDelete(t, open) })
	t.Run("ListByUser", func(t *testing.T) { testListByUser(t, open) })
	t.Run("FindConjunction", func(t *testing.T) { testFindConjunction(t, open) })
}

// Tagged returns a record for user with the four attribute values in
// canonical order, created at base+offset
func Tagged(user, name string, offset time.Duration, tags [attr.Count]string) store.Cuisine {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := store.Cuisine{
		UserID:      user,
		Name:        name,
		Description: name + " description",
		CreatedAt:   base.Add(offset),
		UpdatedAt:   base.Add(offset),
	}
	c.ApplyTags(inference.NewPrediction(tags))
	return c
}

func testCreateGet(t *testing.T, open Opener) {
	ctx := context.Background()
	st := open(t)
	defer st.Close()

	in := Tagged("u1", "Trattoria", 0, [attr.Count]string{"italian", "moderate", "casual", "none"})
	in.Latitude, in.Longitude = "41.9", "12.5"

	created, err := st.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected an assigned ID")
	}

	got, found, err := st.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("record should be found")
	}
	if got.Name != in.Name || got.UserID != in.UserID || got.Latitude != "41.9" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Attributes()[attr.Cuisine] != "italian" || got.DietaryOptions != "none" {
		t.Errorf("tags not stored: %+v", got.Attributes())
	}
	if !got.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, in.CreatedAt)
	}

	if _, found, err := st.Get(ctx, "missing"); err != nil || found {
		t.Errorf("Get(missing): found=%v err=%v", found, err)
	}
}

func testUpdateDelete(t *testing.T, open Opener) {
	ctx := context.Background()
	st := open(t)
	defer st.Close()

	c, err := st.Create(ctx, Tagged("u1", "Burger Shack", 0, [attr.Count]string{"fast-food", "low", "casual", "none"}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	c.Name = "Burger Palace"
	c.Budget = "high"
	c.UpdatedAt = c.UpdatedAt.Add(time.Hour)
	if err := st.Update(ctx, c); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _, err := st.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Burger Palace" || got.Budget != "high" {
		t.Errorf("update not applied: %+v", got)
	}
	if !got.UpdatedAt.Equal(c.UpdatedAt) {
		t.Errorf("UpdatedAt: got %v, want %v", got.UpdatedAt, c.UpdatedAt)
	}

	ghost := c
	ghost.ID = "does-not-exist"
	if err := st.Update(ctx, ghost); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := st.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := st.Get(ctx, c.ID); found {
		t.Error("record should be gone after Delete")
	}
}

func testListByUser(t *testing.T, open Opener) {
	ctx := context.Background()
	st := open(t)
	defer st.Close()

	tags := [attr.Count]string{"thai", "low", "casual", "vegan"}
	for _, c := range []store.Cuisine{
		Tagged("u1", "second", 2*time.Minute, tags),
		Tagged("u2", "other", time.Minute, tags),
		Tagged("u1", "first", 0, tags),
	} {
		if _, err := st.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	mine, err := st.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 records, got %d", len(mine))
	}
	if mine[0].Name != "first" || mine[1].Name != "second" {
		t.Errorf("expected oldest first, got %s, %s", mine[0].Name, mine[1].Name)
	}

	none, err := st.ListByUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no records, got %d", len(none))
	}
}

func testFindConjunction(t *testing.T, open Opener) {
	ctx := context.Background()
	st := open(t)
	defer st.Close()

	want := [attr.Count]string{"italian", "high", "romantic", "none"}
	records := []store.Cuisine{
		Tagged("u1", "exact", 0, want),
		Tagged("u2", "three of four", time.Minute, [attr.Count]string{"italian", "high", "romantic", "vegan"}),
		Tagged("u2", "unrelated", 2*time.Minute, [attr.Count]string{"thai", "low", "casual", "vegan"}),
		Tagged("u3", "exact again", 3*time.Minute, want),
	}
	for _, c := range records {
		if _, err := st.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := st.Find(ctx, filter.Filter{})
	if err != nil {
		t.Fatalf("Find(empty): %v", err)
	}
	if len(all) != len(records) {
		t.Errorf("empty filter: expected %d records, got %d", len(records), len(all))
	}

	got, err := st.Find(ctx, filter.FromPrediction(inference.NewPrediction(want)))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 exact matches, got %d", len(got))
	}
	if got[0].Name != "exact" || got[1].Name != "exact again" {
		t.Errorf("unexpected matches: %s, %s", got[0].Name, got[1].Name)
	}

	none, err := st.Find(ctx, filter.FromPrediction(inference.NewPrediction(
		[attr.Count]string{"mexican", "low", "formal", "vegetarian"})))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no matches, got %d", len(none))
	}
}
