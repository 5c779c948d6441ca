package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
	dbutil "github.com/bryanwahyu/ecosense/internal/infra/db"
)

const schema = `CREATE TABLE IF NOT EXISTS emission_factors (
	name          TEXT PRIMARY KEY,
	category      TEXT NOT NULL,
	co2e_kg       REAL NOT NULL,
	source        TEXT NOT NULL,
	confidence    TEXT NOT NULL,
	notes         TEXT,
	production_kg REAL,
	packaging_kg  REAL,
	transport_kg  REAL
)`

// Open opens an embedded database file. ":memory:" gives a private
// in-memory database, pinned to a single connection.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// FactorRepository is the embedded emission factor database.
type FactorRepository struct {
	DB *sql.DB
}

func NewFactorRepository(db *sql.DB) *FactorRepository {
	return &FactorRepository{DB: db}
}

func (r *FactorRepository) Migrate(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

func (r *FactorRepository) Upsert(ctx context.Context, f footprint.Factor) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO emission_factors (`+dbutil.FactorColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			category = excluded.category, co2e_kg = excluded.co2e_kg,
			source = excluded.source, confidence = excluded.confidence, notes = excluded.notes,
			production_kg = excluded.production_kg, packaging_kg = excluded.packaging_kg,
			transport_kg = excluded.transport_kg`,
		dbutil.FactorArgs(f)...)
	return err
}

func (r *FactorRepository) Lookup(ctx context.Context, e footprint.Standardized) (*footprint.Knowledge, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+dbutil.FactorColumns+` FROM emission_factors WHERE name = ?`,
		dbutil.NormalizeName(e.CanonicalName))
	f, err := dbutil.ScanFactor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f.Knowledge(e), nil
}

// Count returns the number of stored factors.
func (r *FactorRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM emission_factors`).Scan(&n)
	return n, err
}
