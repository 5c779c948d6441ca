package solar

import (
	"sort"
	"time"
)

// DefaultBatteryCapacityWh is used when a request does not specify a capacity.
const DefaultBatteryCapacityWh = 10000.0

// Appliances maps an appliance name to its power draw in watts.
type Appliances map[string]float64

func DefaultAppliances() Appliances {
	return Appliances{
		"Refrigerator":    200,
		"Lights (LED x5)": 50,
		"Television":      150,
		"Washing Machine": 2000,
		"Water Heater":    3000,
		"Laptop Charger":  65,
	}
}

// Names returns appliance names sorted by descending power, then by name.
func (a Appliances) Names() []string {
	names := make([]string, 0, len(a))
	for n := range a {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if a[names[i]] != a[names[j]] {
			return a[names[i]] > a[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func (a Appliances) Clone() Appliances {
	out := make(Appliances, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Reading is one observation of production and battery charge.
type Reading struct {
	SolarProductionW  float64 `json:"solar_production_watts"`
	BatteryPercentage float64 `json:"battery_percentage"`
}

// BatteryWh converts the charge percentage into watt-hours for capacity.
func (r Reading) BatteryWh(capacityWh float64) float64 {
	return capacityWh * r.BatteryPercentage / 100
}

// LogEntry is a reading stamped with the time it was tracked.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Reading
}

// Power sources and priorities used in allocation rows.
const (
	SourceDirectSolar  = "Direct Solar"
	SourceBattery      = "Battery"
	SourceSolarBattery = "Solar/Battery"

	PriorityEssential = "Essential"
	PriorityHigh      = "High"
	PriorityMedium    = "Medium"
	PriorityLow       = "Low"
)

type Allocation struct {
	Appliance   string `json:"appliance"`
	TimeToRun   string `json:"time_to_run"`
	PowerSource string `json:"power_source"`
	Priority    string `json:"priority"`
}

// Plan is the energy management plan returned for a reading.
type Plan struct {
	RecommendationSummary string       `json:"recommendation_summary"`
	EnergyAllocationPlan  []Allocation `json:"energy_allocation_plan"`
	BatteryManagement     string       `json:"battery_management"`
	Alerts                []string     `json:"alerts"`
}
