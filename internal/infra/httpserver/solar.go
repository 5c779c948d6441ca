package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	appsolar "github.com/bryanwahyu/ecosense/internal/application/solar"
	"github.com/bryanwahyu/ecosense/internal/domain/solar"
	"github.com/bryanwahyu/ecosense/internal/middleware"
)

type solarInput struct {
	SolarProductionW  float64 `json:"solar_production_watts"`
	BatteryPercentage float64 `json:"battery_percentage"`
	BatteryCapacityWh float64 `json:"battery_capacity_wh,omitempty"`
}

type solarConfiguration struct {
	BatteryCapacityWh float64          `json:"battery_capacity_wh"`
	Appliances        solar.Appliances `json:"appliances"`
	EnergyLogCount    *int             `json:"energy_log_count,omitempty"`
}

func decodeJSON(req *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(req.Body, 1<<20)).Decode(v)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("Bad request", "No JSON data provided")
		}
		return badRequest("Bad request", "Invalid JSON: "+err.Error())
	}
	return nil
}

func validateSetup(capacity float64, appliances map[string]float64) error {
	if err := middleware.ValidateCapacity(capacity); err != nil {
		return badRequest("Bad request", err.Error())
	}
	if err := middleware.ValidateAppliances(appliances); err != nil {
		return badRequest("Bad request", err.Error())
	}
	return nil
}

// POST /api/solar/analyze
// Body: {"solar_production": 2500, "battery_percentage": 75, "battery_capacity": 10000, "appliances": {...}}
func (r *Router) handleSolarAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		SolarProduction   *float64           `json:"solar_production"`
		BatteryPercentage *float64           `json:"battery_percentage"`
		BatteryCapacity   float64            `json:"battery_capacity"`
		Appliances        map[string]float64 `json:"appliances"`
	}
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	if body.SolarProduction == nil || body.BatteryPercentage == nil {
		return badRequest("Bad request", "Missing required fields: solar_production and battery_percentage")
	}
	if err := middleware.ValidateSolarReading(*body.SolarProduction, *body.BatteryPercentage); err != nil {
		return badRequest("Bad request", err.Error())
	}
	if err := validateSetup(body.BatteryCapacity, body.Appliances); err != nil {
		return err
	}

	reading := solar.Reading{SolarProductionW: *body.SolarProduction, BatteryPercentage: *body.BatteryPercentage}
	res, cfg := r.solarSvc.Analyze(req.Context(), appsolar.AnalyzeCommand{
		Reading:           reading,
		BatteryCapacityWh: body.BatteryCapacity,
		Appliances:        body.Appliances,
	})
	middleware.RecordSolarPlan(res.Simulated)

	return writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"timestamp": appsolar.Timestamp(r.clock.Now()),
		"input": solarInput{
			SolarProductionW:  reading.SolarProductionW,
			BatteryPercentage: reading.BatteryPercentage,
			BatteryCapacityWh: cfg.BatteryCapacityWh,
		},
		"management_plan": res.Plan,
		"simulated":       res.Simulated,
	})
}

// POST /api/solar/simulate
// Body: {"battery_capacity": 10000, "appliances": {...}, "simulation_data": [{"solar": 3500, "battery": 75}, ...]}
func (r *Router) handleSolarSimulate(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		BatteryCapacity float64            `json:"battery_capacity"`
		Appliances      map[string]float64 `json:"appliances"`
		SimulationData  []struct {
			Solar   *float64 `json:"solar"`
			Battery *float64 `json:"battery"`
		} `json:"simulation_data"`
	}
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateSimulationSize(len(body.SimulationData), r.maxSim); err != nil {
		return badRequest("Bad request", err.Error())
	}
	if err := validateSetup(body.BatteryCapacity, body.Appliances); err != nil {
		return err
	}

	readings := make([]solar.Reading, len(body.SimulationData))
	for i, p := range body.SimulationData {
		readings[i] = solar.Reading{SolarProductionW: 0, BatteryPercentage: 50}
		if p.Solar != nil {
			readings[i].SolarProductionW = *p.Solar
		}
		if p.Battery != nil {
			readings[i].BatteryPercentage = *p.Battery
		}
		if err := middleware.ValidateSolarReading(readings[i].SolarProductionW, readings[i].BatteryPercentage); err != nil {
			return badRequest("Bad request", err.Error())
		}
	}

	steps, cfg, err := r.solarSvc.Simulate(req.Context(), body.BatteryCapacity, body.Appliances, readings)
	if err != nil {
		return err
	}

	results := make([]map[string]any, 0, len(steps))
	for _, s := range steps {
		middleware.RecordSolarPlan(s.Simulated)
		results = append(results, map[string]any{
			"step": s.Step,
			"input": solarInput{
				SolarProductionW:  s.Reading.SolarProductionW,
				BatteryPercentage: s.Reading.BatteryPercentage,
			},
			"management_plan": s.Plan,
			"simulated":       s.Simulated,
		})
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"timestamp": appsolar.Timestamp(r.clock.Now()),
		"configuration": solarConfiguration{
			BatteryCapacityWh: cfg.BatteryCapacityWh,
			Appliances:        cfg.Appliances,
		},
		"simulation_results": results,
	})
}

// GET /api/solar/config
func (r *Router) handleSolarConfigGet(w http.ResponseWriter, req *http.Request) error {
	cfg := r.solarSvc.Config()
	return writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"configuration": solarConfiguration{
			BatteryCapacityWh: cfg.BatteryCapacityWh,
			Appliances:        cfg.Appliances,
			EnergyLogCount:    &cfg.EnergyLogCount,
		},
	})
}

// POST /api/solar/config
// Body: {"battery_capacity": 10000, "appliances": {...}}
func (r *Router) handleSolarConfigSet(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		BatteryCapacity float64            `json:"battery_capacity"`
		Appliances      map[string]float64 `json:"appliances"`
	}
	if err := decodeJSON(req, &body); err != nil {
		return err
	}
	if err := validateSetup(body.BatteryCapacity, body.Appliances); err != nil {
		return err
	}
	cfg := r.solarSvc.Configure(body.BatteryCapacity, body.Appliances)
	return writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Configuration updated successfully",
		"configuration": solarConfiguration{
			BatteryCapacityWh: cfg.BatteryCapacityWh,
			Appliances:        cfg.Appliances,
		},
	})
}
