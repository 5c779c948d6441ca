// Package normalize maps possibly partial backend JSON into fully populated
// display records. Missing or mistyped fields take the defaults; nothing
// here returns an error.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	Unknown = "Unknown"
	None    = "N/A"
)

// Input is the layer 1 interpretation of the uploaded image.
type Input struct {
	Type        string
	Name        string
	Brand       string
	Description string
}

type Entity struct {
	CanonicalName string
	Category      string
}

// Source is the knowledge lookup that produced the emission factor.
type Source struct {
	Name       string
	Confidence string
	CO2eKg     float64
	Notes      string
}

// Breakdown is in kg CO2e.
type Breakdown struct {
	Production float64
	Packaging  float64
	Transport  float64
	Total      float64
}

type CarbonResult struct {
	Input     Input
	Entity    Entity
	Source    Source
	Breakdown Breakdown
	Formula   string
	Notes     string
	Summary   string
	Filename  string
	TestMode  bool
	// Notice is an informational message from the server, such as a
	// missing AI key. Empty when there is nothing to report.
	Notice string
	// Demo marks results synthesized locally while the backend was offline.
	Demo bool
}

// DefaultCarbon is the record every missing carbon field falls back to.
func DefaultCarbon() CarbonResult {
	return CarbonResult{
		Input:   Input{Type: Unknown, Name: Unknown, Brand: Unknown, Description: Unknown},
		Entity:  Entity{CanonicalName: Unknown, Category: Unknown},
		Source:  Source{Name: Unknown, Confidence: Unknown, Notes: None},
		Formula: "Total = Production + Packaging + Transport",
		Notes:   None,
		Summary: "No summary available.",
	}
}

// Carbon normalizes a footprint report using DefaultCarbon.
func Carbon(raw map[string]any) CarbonResult { return CarbonWithDefaults(raw, DefaultCarbon()) }

func CarbonWithDefaults(raw map[string]any, d CarbonResult) CarbonResult {
	in := object(raw, "layer1_input_processing")
	std := object(raw, "layer2_standardization")
	kn := object(raw, "layer3_knowledge_retrieval")
	est := object(raw, "layer4_footprint_estimation")
	bd := object(est, "breakdown")
	meta := object(raw, "metadata")

	out := CarbonResult{
		Input: Input{
			Type:        str(in, d.Input.Type, "type"),
			Name:        str(in, d.Input.Name, "product_name", "name", "item", "dish_name", "service"),
			Brand:       str(in, d.Input.Brand, "brand", "vendor"),
			Description: str(in, d.Input.Description, "description", "raw_text"),
		},
		Entity: Entity{
			CanonicalName: str(std, d.Entity.CanonicalName, "canonical_name"),
			Category:      str(std, d.Entity.Category, "category"),
		},
		Source: Source{
			Name:       str(kn, d.Source.Name, "source"),
			Confidence: str(kn, d.Source.Confidence, "confidence"),
			CO2eKg:     num(kn, d.Source.CO2eKg, "co2e_kg"),
			Notes:      str(kn, d.Source.Notes, "notes"),
		},
		Breakdown: Breakdown{
			Production: num(bd, d.Breakdown.Production, "production", "production_impact"),
			Packaging:  num(bd, d.Breakdown.Packaging, "packaging", "packaging_impact"),
			Transport:  num(bd, d.Breakdown.Transport, "transport", "transport_impact"),
		},
		Formula:  str(est, d.Formula, "formula"),
		Notes:    str(est, d.Notes, "notes"),
		Summary:  str(raw, d.Summary, "layer5_final_summary"),
		Notice:   str(in, d.Notice, "notice"),
		Filename: str(meta, d.Filename, "filename"),
		TestMode: boolean(meta, d.TestMode, "test_mode"),
		Demo:     d.Demo,
	}

	// Total: the estimate's figure, else the summary prose, else the default.
	if v, ok := number(est["total_co2e_kg"]); ok {
		out.Breakdown.Total = v
	} else if v := ExtractKgCO2(out.Summary); v > 0 {
		out.Breakdown.Total = v
	} else {
		out.Breakdown.Total = d.Breakdown.Total
	}
	if out.Entity.CanonicalName == d.Entity.CanonicalName {
		out.Entity.CanonicalName = str(est, d.Entity.CanonicalName, "canonical_name")
	}
	return out
}

// Percentages returns each component's share of the component sum. The
// shares sum to 100 when the sum is positive and are all 0 otherwise.
func Percentages(b Breakdown) (production, packaging, transport float64) {
	total := b.Production + b.Packaging + b.Transport
	if total <= 0 {
		return 0, 0, 0
	}
	return b.Production / total * 100, b.Packaging / total * 100, b.Transport / total * 100
}

var kgCO2Pattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*kg\s*(?:of\s*)?co(?:2|₂)`)

// ExtractKgCO2 pulls the first "<number> kg CO2" figure out of free text.
// It returns 0 when the text has none.
func ExtractKgCO2(text string) float64 {
	m := kgCO2Pattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

func object(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

// str returns the first non-empty string or number found under keys.
func str(m map[string]any, def string, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return def
}

func num(m map[string]any, def float64, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := number(m[k]); ok {
			return v
		}
	}
	return def
}

// number accepts JSON numbers only; numeric strings are not coerced.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func boolean(m map[string]any, def bool, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return def
}
