package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
)

// DefaultFactors is the curated internal database shipped with the service.
func DefaultFactors() []footprint.Factor {
	return []footprint.Factor{
		{
			Name:       "coca-cola, 0.5l, pet bottle",
			Category:   footprint.CategoryBeverage,
			CO2eKg:     0.17,
			Source:     "Internal DB (EcoInvent)",
			Confidence: "High",
		},
		{
			Name:       "t-shirt, cotton, blue, large",
			Category:   footprint.CategoryClothing,
			CO2eKg:     6.8,
			Source:     "Internal DB (OpenApparel)",
			Confidence: "High",
		},
		{
			Name:       "t-shirt, cotton, made in india",
			Category:   footprint.CategoryClothing,
			Source:     "Internal LCA DB",
			Confidence: "High",
			Components: &footprint.Components{Production: 5.5, Packaging: 0.3, Transport: 1.0},
		},
	}
}

// Catalog is an in-memory factor table with exact, case-insensitive matching.
type Catalog struct {
	factors map[string]footprint.Factor
}

func NewCatalog(factors []footprint.Factor) *Catalog {
	c := &Catalog{factors: make(map[string]footprint.Factor, len(factors))}
	for _, f := range factors {
		c.factors[normalize(f.Name)] = f
	}
	return c
}

func (c *Catalog) Lookup(_ context.Context, e footprint.Standardized) (*footprint.Knowledge, error) {
	f, ok := c.factors[normalize(e.CanonicalName)]
	if !ok {
		return nil, nil
	}
	return f.Knowledge(e), nil
}

// Seed writes every factor through w.
func Seed(ctx context.Context, w footprint.FactorWriter, factors []footprint.Factor) error {
	for _, f := range factors {
		if err := w.Upsert(ctx, f); err != nil {
			return fmt.Errorf("seed %q: %w", f.Name, err)
		}
	}
	return nil
}

func normalize(name string) string { return strings.ToLower(strings.TrimSpace(name)) }
