package fallback

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ecosense/internal/client/backend"
	"github.com/bryanwahyu/ecosense/internal/domain/solar"
)

func TestCarbonZeroByteInput(t *testing.T) {
	res := Carbon(backend.ImageInput{})
	b := res.Breakdown
	assert.True(t, res.Demo)
	assert.GreaterOrEqual(t, b.Total, 0.01)
	assert.InDelta(t, b.Total, b.Production+b.Packaging+b.Transport, 1e-9)
	assert.Equal(t, DemoSource, res.Source.Name)
}

func TestCarbonBoundedAndDeterministic(t *testing.T) {
	for size := 0; size < 2000; size += 37 {
		in := backend.ImageInput{Filename: "photo.jpg", Data: bytes.Repeat([]byte{1}, size)}
		res := Carbon(in)
		b := res.Breakdown
		require.GreaterOrEqual(t, b.Total, 0.01, size)
		require.LessOrEqual(t, b.Total, 5.5, size)
		require.InDelta(t, b.Total, b.Production+b.Packaging+b.Transport, 1e-9, size)
		require.Positive(t, b.Production, size)
		require.GreaterOrEqual(t, b.Transport, 0.0, size)
		assert.Equal(t, res, Carbon(in))
	}
}

func TestCarbonNames(t *testing.T) {
	assert.Equal(t, "coffee cup", Carbon(backend.ImageInput{Filename: "uploads/coffee cup.png"}).Entity.CanonicalName)
	sample := Carbon(backend.ImageInput{Sample: true, Filename: "x.png"})
	assert.Equal(t, "Sample Product", sample.Input.Name)
	assert.True(t, sample.TestMode)
}

func TestSolarOneRowPerAppliance(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	res := Solar(backend.SolarInput{SolarProductionW: 2500, BatteryPercentage: 75}, now)

	assert.True(t, res.Demo)
	assert.Len(t, res.Allocations, len(solar.DefaultAppliances()))
	assert.Contains(t, res.Alerts, solar.DemoAlert)
	assert.Equal(t, "2024-06-01T09:30:00Z", res.Timestamp)
	assert.Equal(t, solar.DefaultBatteryCapacityWh, res.Input.BatteryCapacityWh)

	res = Solar(backend.SolarInput{Appliances: map[string]float64{"Pump": 750, "Fan": 60}, BatteryCapacityWh: 5000}, now)
	require.Len(t, res.Allocations, 2)
	assert.Equal(t, "Pump", res.Allocations[0].Appliance)
	assert.Equal(t, 5000.0, res.Input.BatteryCapacityWh)
}
