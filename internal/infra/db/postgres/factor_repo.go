package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
	dbutil "github.com/bryanwahyu/ecosense/internal/infra/db"
)

const schema = `CREATE TABLE IF NOT EXISTS emission_factors (
	name          TEXT PRIMARY KEY,
	category      TEXT NOT NULL,
	co2e_kg       DOUBLE PRECISION NOT NULL,
	source        TEXT NOT NULL,
	confidence    TEXT NOT NULL,
	notes         TEXT,
	production_kg DOUBLE PRECISION,
	packaging_kg  DOUBLE PRECISION,
	transport_kg  DOUBLE PRECISION
)`

// FactorRepository is the internal emission factor database on Postgres.
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE SET
			category = EXCLUDED.category, co2e_kg = EXCLUDED.co2e_kg,
			source = EXCLUDED.source, confidence = EXCLUDED.confidence, notes = EXCLUDED.notes,
			production_kg = EXCLUDED.production_kg, packaging_kg = EXCLUDED.packaging_kg,
			transport_kg = EXCLUDED.transport_kg`,
		dbutil.FactorArgs(f)...)
	return err
}

func (r *FactorRepository) Lookup(ctx context.Context, e footprint.Standardized) (*footprint.Knowledge, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+dbutil.FactorColumns+` FROM emission_factors WHERE name = $1`,
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
