package solar

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/ecosense/internal/application"
	appai "github.com/bryanwahyu/ecosense/internal/application/ai"
	"github.com/bryanwahyu/ecosense/internal/domain/ai"
	domain "github.com/bryanwahyu/ecosense/internal/domain/solar"
)

type recordingClient struct {
	mu      sync.Mutex
	answer  string
	prompts []string
}

func (c *recordingClient) Generate(_ context.Context, req ai.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, req.Prompt)
	return c.answer, nil
}

var clock = application.FixedClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

func TestAnalyzeWithoutAIUsesRulePlan(t *testing.T) {
	svc := NewService(appai.NewService(nil, 0, nil), clock, nil, 0, nil)

	res, cfg := svc.Analyze(t.Context(), AnalyzeCommand{Reading: domain.Reading{SolarProductionW: 2500, BatteryPercentage: 75}})

	assert.True(t, res.Simulated)
	assert.Len(t, res.Plan.EnergyAllocationPlan, 6)
	assert.Contains(t, res.Plan.RecommendationSummary, "Peak Sun")
	assert.Equal(t, domain.DefaultBatteryCapacityWh, cfg.BatteryCapacityWh)
	assert.Equal(t, 1, cfg.EnergyLogCount)
}

func TestAnalyzeReconcilesModelPlan(t *testing.T) {
	client := &recordingClient{answer: `Sure! {"recommendation_summary":"Run the kettle now",
		"energy_allocation_plan":[{"appliance":"Kettle","time_to_run":"now","power_source":"Direct Solar","priority":"High"},
		{"appliance":"Jacuzzi","time_to_run":"never","power_source":"Battery","priority":"Low"}],
		"battery_management":"Charge","alerts":["Excess energy available"]}`}
	svc := NewService(appai.NewService(client, 0, nil), clock, nil, 0, nil)

	res, cfg := svc.Analyze(t.Context(), AnalyzeCommand{
		Reading:           domain.Reading{SolarProductionW: 2500, BatteryPercentage: 75},
		BatteryCapacityWh: 5000,
		Appliances:        domain.Appliances{"Kettle": 1800, "Fridge": 150},
	})

	assert.False(t, res.Simulated)
	assert.Equal(t, "Run the kettle now", res.Plan.RecommendationSummary)
	require.Len(t, res.Plan.EnergyAllocationPlan, 2)
	assert.Equal(t, "now", res.Plan.EnergyAllocationPlan[0].TimeToRun)
	assert.Equal(t, "Fridge", res.Plan.EnergyAllocationPlan[1].Appliance)
	assert.Equal(t, 5000.0, cfg.BatteryCapacityWh)
	assert.Contains(t, client.prompts[0], "Battery Capacity: 5000 Wh")
}

func TestSimulateAccumulatesLog(t *testing.T) {
	client := &recordingClient{answer: "no plan today"}
	svc := NewService(appai.NewService(client, 0, nil), clock, nil, 0, nil)

	steps, cfg, err := svc.Simulate(t.Context(), 0, nil, []domain.Reading{
		{SolarProductionW: 3500, BatteryPercentage: 75},
		{SolarProductionW: 1500, BatteryPercentage: 95},
		{SolarProductionW: 100, BatteryPercentage: 85},
		{SolarProductionW: 0, BatteryPercentage: 70},
	})
	require.NoError(t, err)
	require.Len(t, steps, 4)
	assert.Equal(t, 4, steps[3].Step)
	assert.True(t, steps[3].Simulated)
	assert.Contains(t, steps[3].Plan.RecommendationSummary, "Night/No Sun")
	assert.Equal(t, 4, cfg.EnergyLogCount)

	// the fourth prompt carries only the last three log entries
	last := client.prompts[3]
	assert.Equal(t, 3, strings.Count(last, `"solar_production_watts"`))
	assert.NotContains(t, last, `"solar_production_watts": 3500`)
}

func TestConfigureResetsLog(t *testing.T) {
	svc := NewService(appai.NewService(nil, 0, nil), clock, nil, 8000, nil)
	svc.Analyze(t.Context(), AnalyzeCommand{Reading: domain.Reading{SolarProductionW: 10}})

	cfg := svc.Configure(12000, domain.Appliances{"Pump": 750})
	assert.Equal(t, 12000.0, cfg.BatteryCapacityWh)
	assert.Equal(t, domain.Appliances{"Pump": 750}, cfg.Appliances)
	assert.Zero(t, cfg.EnergyLogCount)

	cfg = svc.Configure(0, nil)
	assert.Equal(t, 8000.0, cfg.BatteryCapacityWh)
	assert.Len(t, cfg.Appliances, 6)
}

func TestSimulateHonoursCancellation(t *testing.T) {
	svc := NewService(appai.NewService(nil, 0, nil), clock, nil, 0, nil)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, _, err := svc.Simulate(ctx, 0, nil, []domain.Reading{{}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentAnalyzeKeepsRequestsApart(t *testing.T) {
	svc := NewService(appai.NewService(nil, 0, nil), clock, nil, 0, nil)

	const n = 16
	cfgs := make([]Config, n)
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			capacity := float64(1000 * (i + 1))
			_, cfgs[i] = svc.Analyze(t.Context(), AnalyzeCommand{
				Reading:           domain.Reading{SolarProductionW: 800, BatteryPercentage: 40},
				BatteryCapacityWh: capacity,
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i, cfg := range cfgs {
		assert.Equal(t, float64(1000*(i+1)), cfg.BatteryCapacityWh)
		assert.Equal(t, 1, cfg.EnergyLogCount)
	}
	assert.Equal(t, 1, svc.Config().EnergyLogCount)
}

func TestSimulateDoesNotLeakIntoAnalyze(t *testing.T) {
	client := &recordingClient{answer: "not json"}
	svc := NewService(appai.NewService(client, 0, nil), clock, nil, 0, nil)

	readings := make([]domain.Reading, 5)
	var g errgroup.Group
	g.Go(func() error {
		_, cfg, err := svc.Simulate(t.Context(), 0, nil, readings)
		assert.Equal(t, 5, cfg.EnergyLogCount)
		return err
	})
	g.Go(func() error {
		_, cfg := svc.Analyze(t.Context(), AnalyzeCommand{BatteryCapacityWh: 2000})
		assert.Equal(t, 1, cfg.EnergyLogCount)
		assert.Equal(t, 2000.0, cfg.BatteryCapacityWh)
		return nil
	})
	require.NoError(t, g.Wait())
}
