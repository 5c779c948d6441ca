package solar

import (
	"fmt"
	"strings"
)

// DemoAlert is attached to every rule-based plan.
const DemoAlert = "Demo mode active - simulated AI responses"

type period struct {
	name           string
	heavySource    string
	recommendation string
}

func periodFor(solarW float64) period {
	switch {
	case solarW > 2000:
		return period{"Peak Sun (High Production)", SourceDirectSolar,
			"Excellent time for high-power appliances. Run water heater and washing machine now."}
	case solarW > 500:
		return period{"Moderate Sun", SourceDirectSolar,
			"Good time for medium-power appliances. Save heavy tasks if possible."}
	case solarW > 100:
		return period{"Low Sun", SourceBattery,
			"Transition to battery power. Minimize non-essential usage."}
	default:
		return period{"Night/No Sun", SourceBattery,
			"Use only essential appliances. Preserve battery for overnight needs."}
	}
}

func batteryAdvice(pct float64) string {
	switch {
	case pct > 80:
		return "Battery well charged. Can support high-power loads if needed."
	case pct > 50:
		return "Battery at moderate level. Monitor usage and prioritize essentials."
	default:
		return "Battery getting low. Conserve power and avoid non-essential appliances."
	}
}

// RulePlan builds a plan without the AI model. It always has exactly one
// allocation row per appliance.
func RulePlan(r Reading, appliances Appliances) Plan {
	p := periodFor(r.SolarProductionW)

	mode := "Conservation mode - discharge minimally"
	if r.SolarProductionW > 1000 {
		mode = "Charge mode active"
	}

	plan := Plan{
		RecommendationSummary: fmt.Sprintf("%s Current conditions: %s, Battery: %g%%",
			p.recommendation, p.name, r.BatteryPercentage),
		BatteryManagement: fmt.Sprintf("%s Current solar: %gW. %s.",
			batteryAdvice(r.BatteryPercentage), r.SolarProductionW, mode),
		Alerts: []string{
			fmt.Sprintf("Current solar production: %gW", r.SolarProductionW),
			fmt.Sprintf("Battery level: %g%%", r.BatteryPercentage),
			DemoAlert,
		},
	}
	for _, name := range appliances.Names() {
		plan.EnergyAllocationPlan = append(plan.EnergyAllocationPlan,
			ruleAllocation(name, appliances[name], r.SolarProductionW, p.heavySource))
	}
	return plan
}

func ruleAllocation(name string, watts, solarW float64, heavySource string) Allocation {
	lower := strings.ToLower(name)
	daySource := SourceBattery
	if solarW > 100 {
		daySource = SourceDirectSolar
	}

	switch {
	case strings.Contains(lower, "fridge") || strings.Contains(lower, "refrigerator") || strings.Contains(lower, "freezer"):
		return Allocation{name, "24/7", SourceSolarBattery, PriorityEssential}
	case strings.Contains(lower, "light"):
		src := SourceDirectSolar
		if solarW < 100 {
			src = SourceBattery
		}
		return Allocation{name, "As needed", src, PriorityEssential}
	case watts >= 2500:
		return Allocation{name, "During peak sun if available", heavySource, PriorityHigh}
	case watts >= 1000:
		return Allocation{name, "When solar > 2000W", heavySource, PriorityMedium}
	case strings.Contains(lower, "tv") || strings.Contains(lower, "television"):
		return Allocation{name, "Evening (limited use)", SourceBattery, PriorityLow}
	case watts >= 100:
		return Allocation{name, "Daytime preferred", daySource, PriorityMedium}
	default:
		return Allocation{name, "Daytime preferred", daySource, PriorityLow}
	}
}

// Reconcile makes the plan hold exactly one allocation per appliance, in
// appliance order. Rows for unknown appliances are dropped and missing rows
// are filled from the rule-based plan.
func (p *Plan) Reconcile(r Reading, appliances Appliances) {
	byName := make(map[string]Allocation, len(p.EnergyAllocationPlan))
	for _, a := range p.EnergyAllocationPlan {
		key := strings.ToLower(strings.TrimSpace(a.Appliance))
		if _, dup := byName[key]; !dup {
			byName[key] = a
		}
	}

	heavy := periodFor(r.SolarProductionW).heavySource
	rows := make([]Allocation, 0, len(appliances))
	for _, name := range appliances.Names() {
		a, ok := byName[strings.ToLower(name)]
		if !ok {
			a = ruleAllocation(name, appliances[name], r.SolarProductionW, heavy)
		}
		a.Appliance = name
		rows = append(rows, a)
	}
	p.EnergyAllocationPlan = rows
	if p.Alerts == nil {
		p.Alerts = []string{}
	}
}
