// Package db holds the emission factor row mapping shared by the SQL dialects.
package db

import (
	"database/sql"
	"strings"

	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
)

// FactorColumns is the select list every dialect uses, in scan order.
const FactorColumns = "name, category, co2e_kg, source, confidence, notes, production_kg, packaging_kg, transport_kg"

type Scanner interface {
	Scan(dest ...any) error
}

// ScanFactor reads one row selected with FactorColumns.
func ScanFactor(s Scanner) (footprint.Factor, error) {
	var (
		f                                footprint.Factor
		category                         string
		notes                            sql.NullString
		production, packaging, transport sql.NullFloat64
	)
	if err := s.Scan(&f.Name, &category, &f.CO2eKg, &f.Source, &f.Confidence, &notes,
		&production, &packaging, &transport); err != nil {
		return f, err
	}
	f.Category = footprint.Category(category)
	f.Notes = notes.String
	if production.Valid && packaging.Valid && transport.Valid {
		f.Components = &footprint.Components{
			Production: production.Float64,
			Packaging:  packaging.Float64,
			Transport:  transport.Float64,
		}
	}
	return f, nil
}

// FactorArgs returns insert arguments in FactorColumns order. The name is
// stored lower-cased so lookups can match on equality.
func FactorArgs(f footprint.Factor) []any {
	var production, packaging, transport sql.NullFloat64
	co2e := f.CO2eKg
	if f.Components != nil {
		production = sql.NullFloat64{Float64: f.Components.Production, Valid: true}
		packaging = sql.NullFloat64{Float64: f.Components.Packaging, Valid: true}
		transport = sql.NullFloat64{Float64: f.Components.Transport, Valid: true}
		if co2e == 0 {
			co2e = footprint.Round4(f.Components.Total())
		}
	}
	return []any{
		NormalizeName(f.Name), string(f.Category), co2e, f.Source, f.Confidence,
		sql.NullString{String: f.Notes, Valid: f.Notes != ""},
		production, packaging, transport,
	}
}

func NormalizeName(name string) string { return strings.ToLower(strings.TrimSpace(name)) }
