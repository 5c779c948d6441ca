package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ecosense/internal/domain/ai"
	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
	"github.com/bryanwahyu/ecosense/internal/domain/solar"
)

func TestVisionCarriesImage(t *testing.T) {
	req := Vision(ai.Image{Data: []byte{1, 2}, MIMEType: "image/png"})
	require.NotNil(t, req.Image)
	assert.Equal(t, "image/png", req.Image.MIMEType)
	assert.True(t, req.JSON)
	assert.Contains(t, req.Prompt, "flight ticket")
}

func TestStandardizeEmbedsInput(t *testing.T) {
	req := Standardize(footprint.InputRecord{"type": "product photo", "brand": "Lay's"})
	assert.Contains(t, req.Prompt, `"brand": "Lay's"`)
	assert.Contains(t, req.Prompt, "Food, Beverage, Clothing, Electronics, Flights, Other")
}

func TestBreakdown(t *testing.T) {
	req := Breakdown(footprint.Knowledge{CanonicalName: "Chips", CO2eKg: 0.075, Source: "web"})
	assert.Contains(t, req.Prompt, `"Chips"`)
	assert.Contains(t, req.Prompt, "MUST equal 0.075 kg")
}

func TestSolarPlanKeepsLastThreeEntries(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var history []solar.LogEntry
	for i := 0; i < 5; i++ {
		history = append(history, solar.LogEntry{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Reading:   solar.Reading{SolarProductionW: float64(1000 + i)},
		})
	}

	req := SolarPlan(base, solar.Reading{SolarProductionW: 2500, BatteryPercentage: 75}, 10000, solar.DefaultAppliances(), history)

	assert.Contains(t, req.Prompt, "Solar Panel Production: 2500 Watts")
	assert.Contains(t, req.Prompt, "Current Battery Charge: 75% (7500.00 Wh)")
	assert.Contains(t, req.Prompt, "last 3 entries")
	assert.NotContains(t, req.Prompt, "1001")
	assert.Contains(t, req.Prompt, "1004")
	assert.Contains(t, req.Prompt, `"Water Heater": 3000`)
}
