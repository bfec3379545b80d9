package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cognicore/autotag/pkg/autotag/attr"
	"github.com/cognicore/autotag/pkg/autotag/filter"
	"github.com/cognicore/autotag/pkg/autotag/inference"
	"github.com/cognicore/autotag/pkg/autotag/store"
	"github.com/cognicore/autotag/pkg/autotag/store/storetest"
)

func openTemp(t *testing.T) store.Store {
	t.Helper()
	st, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	return st
}

func TestSQLiteContract(t *testing.T) {
	storetest.Run(t, openTemp)
}

// TestSQLitePersistence reopens the database and checks records survive
func TestSQLitePersistence(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "persist.db")

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	c, err := st.Create(ctx, storetest.Tagged("u1", "Taqueria", 0, [attr.Count]string{"mexican", "low", "casual", "none"}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()

	got, found, err := st.Get(ctx, c.ID)
	if err != nil || !found {
		t.Fatalf("Get after reopen: found=%v err=%v", found, err)
	}
	if got.Cuisine != "mexican" {
		t.Errorf("expected mexican, got %s", got.Cuisine)
	}
}

// TestSQLiteSubsecondOrdering checks fractional timestamps sort correctly
func TestSQLiteSubsecondOrdering(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)
	defer st.Close()

	tags := [attr.Count]string{"thai", "low", "casual", "vegan"}
	for _, c := range []store.Cuisine{
		storetest.Tagged("u1", "later", 500*time.Millisecond, tags),
		storetest.Tagged("u1", "earlier", 0, tags),
	} {
		if _, err := st.Create(ctx, c); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, err := st.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].Name != "earlier" {
		t.Errorf("expected earlier first, got %+v", list)
	}
}

func TestSQLiteDuplicateID(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)
	defer st.Close()

	c := storetest.Tagged("u1", "dup", 0, [attr.Count]string{"thai", "low", "casual", "vegan"})
	c.ID = "fixed"
	if _, err := st.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := st.Create(ctx, c); err == nil {
		t.Error("expected error on duplicate ID")
	}
}

func TestWhereClause(t *testing.T) {
	where, args, err := whereClause(filter.Filter{})
	if err != nil || where != "" || len(args) != 0 {
		t.Errorf("empty filter: where=%q args=%v err=%v", where, args, err)
	}

	f := filter.FromPrediction(inference.NewPrediction([attr.Count]string{"italian", "high", "romantic", "none"}))
	where, args, err = whereClause(f)
	if err != nil {
		t.Fatalf("whereClause: %v", err)
	}
	want := " WHERE cuisine = ? AND budget = ? AND ambience = ? AND dietary_options = ?"
	if where != want {
		t.Errorf("got %q, want %q", where, want)
	}
	if len(args) != 4 || args[0] != "italian" || args[3] != "none" {
		t.Errorf("unexpected args %v", args)
	}
}

// TestSQLiteConcurrentCreates exercises WAL mode under parallel writers
func TestSQLiteConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	st := openTemp(t)
	defer st.Close()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := storetest.Tagged("u1", fmt.Sprintf("place-%d", i), time.Duration(i)*time.Second,
				[attr.Count]string{"italian", "moderate", "casual", "none"})
			if _, err := st.Create(ctx, c); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Create: %v", err)
	}

	list, err := st.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != workers {
		t.Errorf("expected %d records, got %d", workers, len(list))
	}
}
