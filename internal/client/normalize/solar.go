package normalize

// Allocation is one row of the energy allocation plan.
type Allocation struct {
	Appliance   string
	TimeToRun   string
	PowerSource string
	Priority    string
}

type SolarInput struct {
	SolarProductionW  float64
	BatteryPercentage float64
	BatteryCapacityWh float64
}

type SolarResult struct {
	Summary           string
	Allocations       []Allocation
	BatteryManagement string
	Alerts            []string
	Input             SolarInput
	Timestamp         string
	// Simulated is set when the server answered with its rule-based plan.
	Simulated bool
	Demo      bool
}

// DefaultSolar is the record every missing solar field falls back to.
func DefaultSolar() SolarResult {
	return SolarResult{
		Summary:           "No recommendation available.",
		Allocations:       []Allocation{},
		BatteryManagement: None,
		Alerts:            []string{},
		Timestamp:         Unknown,
	}
}

func Solar(raw map[string]any) SolarResult { return SolarWithDefaults(raw, DefaultSolar()) }

func SolarWithDefaults(raw map[string]any, d SolarResult) SolarResult {
	plan := object(raw, "management_plan")
	in := object(raw, "input")

	out := SolarResult{
		Summary:           str(plan, d.Summary, "recommendation_summary"),
		BatteryManagement: str(plan, d.BatteryManagement, "battery_management"),
		Input: SolarInput{
			SolarProductionW:  num(in, d.Input.SolarProductionW, "solar_production_watts", "solar_production"),
			BatteryPercentage: num(in, d.Input.BatteryPercentage, "battery_percentage"),
			BatteryCapacityWh: num(in, d.Input.BatteryCapacityWh, "battery_capacity_wh", "battery_capacity"),
		},
		Timestamp: str(raw, d.Timestamp, "timestamp"),
		Simulated: boolean(raw, d.Simulated, "simulated"),
		Demo:      d.Demo,
	}

	out.Allocations = append([]Allocation{}, d.Allocations...)
	if rows, ok := plan["energy_allocation_plan"].([]any); ok {
		out.Allocations = make([]Allocation, 0, len(rows))
		for _, r := range rows {
			row, ok := r.(map[string]any)
			if !ok {
				continue
			}
			out.Allocations = append(out.Allocations, Allocation{
				Appliance:   str(row, Unknown, "appliance"),
				TimeToRun:   str(row, Unknown, "time_to_run"),
				PowerSource: str(row, Unknown, "power_source"),
				Priority:    str(row, Unknown, "priority"),
			})
		}
	}

	out.Alerts = append([]string{}, d.Alerts...)
	if alerts, ok := plan["alerts"].([]any); ok {
		out.Alerts = make([]string, 0, len(alerts))
		for _, a := range alerts {
			if s, ok := a.(string); ok && s != "" {
				out.Alerts = append(out.Alerts, s)
			}
		}
	}
	return out
}
