package prompt

import (
	"strings"

	"github.com/bryanwahyu/ecosense/internal/domain/ai"
	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
)

const visionSystem = `You are a document and product recognition engine for a carbon footprint analyzer. You must produce one valid JSON object only (no markdown, no commentary).`

const visionPrompt = `Analyze the image and identify its type (e.g., 'grocery receipt', 'product photo', 'flight ticket').
Extract all relevant entities based on the type.
Return the result as a single, clean JSON object with a "type" key.

- For a 'grocery receipt', extract: 'store_name', and a list of 'items' with 'name', 'quantity', and 'price'.
- For a 'product photo', extract: 'product_name', 'brand', and potential 'materials' or 'specifications'.
- For a 'flight ticket', extract: 'passenger_name', 'flight_number', 'departure_airport', 'arrival_airport', and 'date'.

If the image content is unclear or doesn't fit these categories, set the 'type' to 'other' and provide a 'description' and any 'raw_text' you can extract.`

// Vision asks the model to turn an image into a structured input record.
func Vision(img ai.Image) ai.Request {
	return ai.Request{System: visionSystem, Prompt: visionPrompt, Image: &img, JSON: true}
}

var standardizeTmpl = mustParse("standardize", `You are a highly accurate data processing engine. Analyze the input JSON object and perform two steps:

Step 1: Create a Canonical Name
Combine the most important fields from the JSON into a single, standardized, human-readable product name. Extract key attributes like brand, product type, specifications and routes.
- For a product photo, combine brand, product name, and a key specification like weight.
- For a flight, describe the route clearly.
- For a grocery receipt, name the most carbon-relevant item.

Step 2: Categorize the Entity
Map the entity to one of the following categories: {{.Categories}}

Output Format:
Respond with a single valid JSON object with exactly two keys:
1. "canonical_name": the standardized name from Step 1.
2. "category": the category from Step 2.

Input JSON:
{{json .Input}}`)

// Standardize asks the model for {canonical_name, category}.
func Standardize(input footprint.InputRecord) ai.Request {
	cats := make([]string, len(footprint.Categories))
	for i, c := range footprint.Categories {
		cats[i] = string(c)
	}
	return ai.Request{
		Prompt: render(standardizeTmpl, struct {
			Categories string
			Input      footprint.InputRecord
		}{strings.Join(cats, ", "), input}),
		JSON: true,
	}
}

var breakdownTmpl = mustParse("breakdown", `You are a Life Cycle Assessment (LCA) expert.
A product, "{{.Name}}", has a known total carbon footprint of {{.Total}} kg CO2e, according to the source: "{{.Source}}".

Provide a plausible, estimated breakdown of this total into three components:
1. "production_impact": CO2e from manufacturing the product itself.
2. "packaging_impact": CO2e from the product's packaging.
3. "transport_impact": CO2e from average distribution and shipping.

The sum of the three components MUST equal {{.Total}} kg.

Respond ONLY with a valid JSON object with the keys "production_impact", "packaging_impact" and "transport_impact". Example for a different product:
{"production_impact": 0.1, "packaging_impact": 0.05, "transport_impact": 0.02}`)

// Breakdown asks the model to split a known total into components.
func Breakdown(k footprint.Knowledge) ai.Request {
	return ai.Request{
		Prompt: render(breakdownTmpl, struct {
			Name   string
			Total  float64
			Source string
		}{k.CanonicalName, k.CO2eKg, k.Source}),
		JSON: true,
	}
}
