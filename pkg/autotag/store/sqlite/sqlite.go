package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/autotag/pkg/autotag/attr"
	"github.com/cognicore/autotag/pkg/autotag/filter"
	"github.com/cognicore/autotag/pkg/autotag/internalerr"
	"github.com/cognicore/autotag/pkg/autotag/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS cuisines (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	latitude TEXT NOT NULL DEFAULT '',
	longitude TEXT NOT NULL DEFAULT '',
	cuisine TEXT NOT NULL,
	budget TEXT NOT NULL,
	ambience TEXT NOT NULL,
	dietary_options TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cuisines_user ON cuisines(user_id);
CREATE INDEX IF NOT EXISTS idx_cuisines_tags ON cuisines(cuisine, budget, ambience, dietary_options);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

const selectColumns = `id, user_id, name, description, latitude, longitude,
	cuisine, budget, ambience, dietary_options, created_at, updated_at`

// attrColumns maps each attribute to its column. Filter terms are only ever
// translated through this table.
var attrColumns = map[attr.Name]string{
	attr.Cuisine:        "cuisine",
	attr.Budget:         "budget",
	attr.Ambience:       "ambience",
	attr.DietaryOptions: "dietary_options",
}

// Create inserts a record
func (s *sqliteStore) Create(ctx context.Context, c store.Cuisine) (store.Cuisine, error) {
	if c.ID == "" {
		c.ID = store.NewID()
	}

	const stmt = `
INSERT INTO cuisines (` + selectColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		c.ID, c.UserID, c.Name, c.Description, c.Latitude, c.Longitude,
		c.Cuisine, c.Budget, c.Ambience, c.DietaryOptions,
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return store.Cuisine{}, fmt.Errorf("insert cuisine: %w", err)
	}
	return c, nil
}

// Get returns a record by ID
func (s *sqliteStore) Get(ctx context.Context, id string) (store.Cuisine, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM cuisines WHERE id = ?`, id)
	c, err := scanCuisine(row)
	if err == sql.ErrNoRows {
		return store.Cuisine{}, false, nil
	}
	if err != nil {
		return store.Cuisine{}, false, err
	}
	return c, true, nil
}

// Update replaces all mutable columns of an existing record
func (s *sqliteStore) Update(ctx context.Context, c store.Cuisine) error {
	const stmt = `
UPDATE cuisines SET
	name = ?,
	description = ?,
	latitude = ?,
	longitude = ?,
	cuisine = ?,
	budget = ?,
	ambience = ?,
	dietary_options = ?,
	updated_at = ?
WHERE id = ?;
`
	res, err := s.db.ExecContext(ctx, stmt,
		c.Name, c.Description, c.Latitude, c.Longitude,
		c.Cuisine, c.Budget, c.Ambience, c.DietaryOptions,
		formatTime(c.UpdatedAt), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update cuisine: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return internalerr.ErrNotFound
	}
	return nil
}

// Delete removes a record
func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cuisines WHERE id = ?`, id)
	return err
}

// ListByUser returns the records owned by userID, oldest first
func (s *sqliteStore) ListByUser(ctx context.Context, userID string) ([]store.Cuisine, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM cuisines WHERE user_id = ? ORDER BY created_at, id`, userID)
}

// Find translates the filter into an AND of column equalities
func (s *sqliteStore) Find(ctx context.Context, f filter.Filter) ([]store.Cuisine, error) {
	where, args, err := whereClause(f)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, `SELECT `+selectColumns+` FROM cuisines`+where+` ORDER BY created_at, id`, args...)
}

func whereClause(f filter.Filter) (string, []any, error) {
	terms := f.Terms()
	if len(terms) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms))
	for _, t := range terms {
		col, ok := attrColumns[t.Attribute]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", internalerr.ErrUnknownAttribute, t.Attribute)
		}
		conds = append(conds, col+" = ?")
		args = append(args, t.Value)
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (s *sqliteStore) query(ctx context.Context, q string, args ...any) ([]store.Cuisine, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Cuisine
	for rows.Next() {
		c, err := scanCuisine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCuisine(row scanner) (store.Cuisine, error) {
	var c store.Cuisine
	var createdAt, updatedAt string
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Description, &c.Latitude, &c.Longitude,
		&c.Cuisine, &c.Budget, &c.Ambience, &c.DietaryOptions,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return store.Cuisine{}, err
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}

// timeLayout is fixed width so text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
