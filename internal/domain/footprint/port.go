package footprint

import "context"

// KnowledgeSource is one tier of the emission factor lookup.
// Lookup returns (nil, nil) when the source has no entry for the entity.
type KnowledgeSource interface {
	Lookup(ctx context.Context, entity Standardized) (*Knowledge, error)
}

// Sample is a reference image served by the test endpoint.
type Sample struct {
	Name     string
	Data     []byte
	MIMEType string
}

type SampleStore interface {
	Sample(ctx context.Context) (*Sample, error)
}

// FactorWriter stores emission factors; used to seed a knowledge database.
type FactorWriter interface {
	Upsert(ctx context.Context, f Factor) error
}
