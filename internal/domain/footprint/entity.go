package footprint

import (
	"math"
	"strings"
	"time"
)

type Category string

const (
	CategoryFood        Category = "Food"
	CategoryBeverage    Category = "Beverage"
	CategoryClothing    Category = "Clothing"
	CategoryElectronics Category = "Electronics"
	CategoryFlights     Category = "Flights"
	CategoryOther       Category = "Other"
	// CategoryError marks a standardization that could not be completed.
	CategoryError Category = "Error"
)

// Categories lists the categories the standardizer may answer with.
var Categories = []Category{
	CategoryFood, CategoryBeverage, CategoryClothing,
	CategoryElectronics, CategoryFlights, CategoryOther,
}

// ParseCategory matches s case-insensitively against Categories.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, true
		}
	}
	return "", false
}

var categoryFallbackKg = map[Category]float64{
	CategoryFood:        1.5,
	CategoryBeverage:    0.5,
	CategoryClothing:    7.0,
	CategoryElectronics: 25.0,
	CategoryFlights:     0.115,
	CategoryOther:       5.0,
}

// DefaultFallbackKg is used for categories without a heuristic value.
const DefaultFallbackKg = 5.0

// CategoryFallbackKg returns the heuristic kg CO2e for a category.
func CategoryFallbackKg(c Category) float64 {
	if v, ok := categoryFallbackKg[c]; ok {
		return v
	}
	return DefaultFallbackKg
}

// InputRecord is the structured object extracted from an image (layer 1).
// Its shape depends on what the model recognised, so it stays a map.
type InputRecord map[string]any

// Type returns the record's "type" field or "other".
func (r InputRecord) Type() string {
	if s, ok := r["type"].(string); ok && s != "" {
		return s
	}
	return "other"
}

// Standardized is the canonical entity produced by layer 2.
type Standardized struct {
	CanonicalName string   `json:"canonical_name"`
	Category      Category `json:"category"`
}

// Components is a production/packaging/transport split in kg CO2e.
type Components struct {
	Production float64 `json:"production_impact"`
	Packaging  float64 `json:"packaging_impact"`
	Transport  float64 `json:"transport_impact"`
}

func (c Components) Total() float64 { return c.Production + c.Packaging + c.Transport }

// Valid reports whether every component is non-negative and the sum is positive.
func (c Components) Valid() bool {
	return c.Production >= 0 && c.Packaging >= 0 && c.Transport >= 0 && c.Total() > 0
}

// Knowledge is the emission factor found for an entity (layer 3).
type Knowledge struct {
	CanonicalName string      `json:"canonical_name"`
	Category      Category    `json:"category"`
	CO2eKg        float64     `json:"co2e_kg"`
	Source        string      `json:"source"`
	Confidence    string      `json:"confidence"`
	Notes         string      `json:"notes,omitempty"`
	Components    *Components `json:"components,omitempty"`
}

type Breakdown struct {
	Production float64 `json:"production"`
	Packaging  float64 `json:"packaging"`
	Transport  float64 `json:"transport"`
}

// Formula describes how Estimate.TotalCO2eKg is derived.
const Formula = "Total = Production + Packaging + Transport"

// Estimate is the final footprint (layer 4).
type Estimate struct {
	CanonicalName string    `json:"canonical_name"`
	TotalCO2eKg   float64   `json:"total_co2e_kg"`
	Breakdown     Breakdown `json:"breakdown"`
	Formula       string    `json:"formula"`
	Source        string    `json:"source"`
	Confidence    string    `json:"confidence"`
	Notes         string    `json:"notes"`
}

// Calculate sums the components, rounding every figure to 4 decimals.
func Calculate(c Components) Estimate {
	return Estimate{
		TotalCO2eKg: Round4(c.Total()),
		Breakdown: Breakdown{
			Production: Round4(c.Production),
			Packaging:  Round4(c.Packaging),
			Transport:  Round4(c.Transport),
		},
		Formula: Formula,
	}
}

// Fallback shares used when no component split is available.
const (
	FallbackProductionShare = 0.60
	FallbackPackagingShare  = 0.20
	FallbackTransportShare  = 0.20
)

// SplitFallback divides total using the fallback shares.
func SplitFallback(total float64) Components {
	return Components{
		Production: total * FallbackProductionShare,
		Packaging:  total * FallbackPackagingShare,
		Transport:  total * FallbackTransportShare,
	}
}

func Round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

type Metadata struct {
	Filename          string    `json:"filename"`
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`
	APIVersion        string    `json:"api_version"`
	TestMode          bool      `json:"test_mode,omitempty"`
	RequestID         string    `json:"request_id,omitempty"`
}

// Report is the full output of the five-layer pipeline.
type Report struct {
	Input        InputRecord  `json:"layer1_input_processing"`
	Standardized Standardized `json:"layer2_standardization"`
	Knowledge    Knowledge    `json:"layer3_knowledge_retrieval"`
	Estimate     Estimate     `json:"layer4_footprint_estimation"`
	Summary      string       `json:"layer5_final_summary"`
	Metadata     Metadata     `json:"metadata"`
}

// Factor is one stored emission factor, keyed by lower-case name.
type Factor struct {
	Name       string
	Category   Category
	CO2eKg     float64
	Source     string
	Confidence string
	Notes      string
	Components *Components
}

// Knowledge renders the factor as a lookup result for entity.
func (f Factor) Knowledge(entity Standardized) *Knowledge {
	k := &Knowledge{
		CanonicalName: entity.CanonicalName,
		Category:      entity.Category,
		CO2eKg:        f.CO2eKg,
		Source:        f.Source,
		Confidence:    f.Confidence,
		Notes:         f.Notes,
	}
	if k.Category == "" {
		k.Category = f.Category
	}
	if f.Components != nil {
		c := *f.Components
		k.Components = &c
		if k.CO2eKg == 0 {
			k.CO2eKg = Round4(c.Total())
		}
	}
	return k
}
