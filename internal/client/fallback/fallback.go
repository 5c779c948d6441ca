// Package fallback synthesizes plausible results while the backend is
// offline so the client never ends in a dead end. Output is demo data.
package fallback

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/bryanwahyu/ecosense/internal/client/backend"
	"github.com/bryanwahyu/ecosense/internal/client/normalize"
	"github.com/bryanwahyu/ecosense/internal/domain/solar"
)

const (
	DemoSource     = "Demo Mode (offline estimate)"
	DemoConfidence = "Low"
	DemoNotice     = "Backend unreachable. Values are simulated for demonstration."
)

// Bounds of a synthesized carbon total, in grams CO2e.
const (
	minTotalGrams = 10
	maxTotalGrams = 5500
)

// Carbon derives a bounded pseudo-random footprint from the input size.
// The same input always yields the same result. Components are whole
// grams, so they sum exactly to the total, which is at least 0.01 kg.
func Carbon(in backend.ImageInput) normalize.CarbonResult {
	size := uint64(len(in.Data) + len(in.Filename))
	r := rand.New(rand.NewPCG(size, 0x5eed))

	total := minTotalGrams + r.IntN(maxTotalGrams-minTotalGrams+1)
	production := total * (50 + r.IntN(21)) / 100
	packaging := total * (10 + r.IntN(16)) / 100
	transport := total - production - packaging

	name := "Sample Product"
	if !in.Sample && in.Filename != "" {
		name = strings.TrimSuffix(filepath.Base(in.Filename), filepath.Ext(in.Filename))
	}

	res := normalize.DefaultCarbon()
	res.Demo = true
	res.Filename = in.Filename
	res.TestMode = in.Sample
	res.Input = normalize.Input{
		Type:        "other",
		Name:        name,
		Brand:       normalize.Unknown,
		Description: DemoNotice,
	}
	res.Entity = normalize.Entity{CanonicalName: name, Category: "Other"}
	res.Breakdown = normalize.Breakdown{
		Production: kg(production),
		Packaging:  kg(packaging),
		Transport:  kg(transport),
		Total:      kg(total),
	}
	res.Source = normalize.Source{
		Name:       DemoSource,
		Confidence: DemoConfidence,
		CO2eKg:     res.Breakdown.Total,
		Notes:      DemoNotice,
	}
	res.Notes = DemoNotice
	res.Summary = fmt.Sprintf("**Demo estimate for %s:** %.3f kg CO₂e (production %.3f, packaging %.3f, transport %.3f). %s",
		name, res.Breakdown.Total, res.Breakdown.Production, res.Breakdown.Packaging, res.Breakdown.Transport, DemoNotice)
	return res
}

func kg(grams int) float64 { return float64(grams) / 1000 }

// Solar answers with the rule-based plan: one row per appliance plus the
// demo alert. Missing setup falls back to the default battery and appliances.
func Solar(in backend.SolarInput, now time.Time) normalize.SolarResult {
	appliances := solar.Appliances(in.Appliances)
	if len(appliances) == 0 {
		appliances = solar.DefaultAppliances()
	}
	capacity := in.BatteryCapacityWh
	if capacity <= 0 {
		capacity = solar.DefaultBatteryCapacityWh
	}

	plan := solar.RulePlan(solar.Reading{
		SolarProductionW:  in.SolarProductionW,
		BatteryPercentage: in.BatteryPercentage,
	}, appliances)

	res := normalize.DefaultSolar()
	res.Demo = true
	res.Simulated = true
	res.Summary = plan.RecommendationSummary
	res.BatteryManagement = plan.BatteryManagement
	res.Alerts = append([]string{}, plan.Alerts...)
	res.Timestamp = now.Format(time.RFC3339)
	res.Input = normalize.SolarInput{
		SolarProductionW:  in.SolarProductionW,
		BatteryPercentage: in.BatteryPercentage,
		BatteryCapacityWh: capacity,
	}
	res.Allocations = make([]normalize.Allocation, 0, len(plan.EnergyAllocationPlan))
	for _, a := range plan.EnergyAllocationPlan {
		res.Allocations = append(res.Allocations, normalize.Allocation{
			Appliance:   a.Appliance,
			TimeToRun:   a.TimeToRun,
			PowerSource: a.PowerSource,
			Priority:    a.Priority,
		})
	}
	return res
}
