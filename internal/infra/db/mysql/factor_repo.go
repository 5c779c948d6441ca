package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
	dbutil "github.com/bryanwahyu/ecosense/internal/infra/db"
)

const schema = `CREATE TABLE IF NOT EXISTS emission_factors (
	name          VARCHAR(255) NOT NULL PRIMARY KEY,
	category      VARCHAR(32)  NOT NULL,
	co2e_kg       DOUBLE       NOT NULL,
	source        VARCHAR(255) NOT NULL,
	confidence    VARCHAR(16)  NOT NULL,
	notes         TEXT         NULL,
	production_kg DOUBLE       NULL,
	packaging_kg  DOUBLE       NULL,
	transport_kg  DOUBLE       NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// FactorRepository is the internal emission factor database on MySQL.
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
		ON DUPLICATE KEY UPDATE
			category = VALUES(category), co2e_kg = VALUES(co2e_kg),
			source = VALUES(source), confidence = VALUES(confidence), notes = VALUES(notes),
			production_kg = VALUES(production_kg), packaging_kg = VALUES(packaging_kg),
			transport_kg = VALUES(transport_kg)`,
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
