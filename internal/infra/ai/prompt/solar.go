package prompt

import (
	"time"

	"github.com/bryanwahyu/ecosense/internal/domain/ai"
	"github.com/bryanwahyu/ecosense/internal/domain/solar"
)

// HistoryWindow is how many past log entries are included in the solar prompt.
const HistoryWindow = 3

var solarTmpl = mustParse("solar", `Act as an expert AI Solar Energy Management Agent.

Current State at {{.Now}}:
- Solar Panel Production: {{.Reading.SolarProductionW}} Watts
- Battery Capacity: {{.CapacityWh}} Wh
- Current Battery Charge: {{.Reading.BatteryPercentage}}% ({{printf "%.2f" .BatteryWh}} Wh)

List of available electrical appliances and their power draw:
{{json .Appliances}}

Previous Energy Log (last {{len .History}} entries):
{{json .History}}

Task:
Provide a detailed energy management plan as a single valid JSON object, no other text.
The JSON must include:
1. "recommendation_summary": a brief, actionable summary.
2. "energy_allocation_plan": a list of objects, one per appliance, each with "appliance", "time_to_run", "power_source" (Direct Solar or Battery) and "priority" (Essential, High, Medium, Low).
3. "battery_management": specific instructions on when to charge or discharge the battery.
4. "alerts": a list of important alerts for the user (e.g. "Low production forecast", "Excess energy available").

Prioritize running high-power appliances directly from solar during peak production.
Use the battery for essential loads when solar production is low or at night.
Ensure the battery is preserved for essential needs.`)

// SolarPlan asks the model for a management plan. history is trimmed to the
// last HistoryWindow entries.
func SolarPlan(now time.Time, r solar.Reading, capacityWh float64, appliances solar.Appliances, history []solar.LogEntry) ai.Request {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}
	if history == nil {
		history = []solar.LogEntry{}
	}
	return ai.Request{
		Prompt: render(solarTmpl, struct {
			Now        string
			Reading    solar.Reading
			CapacityWh float64
			BatteryWh  float64
			Appliances solar.Appliances
			History    []solar.LogEntry
		}{now.Format("2006-01-02 15:04:05"), r, capacityWh, r.BatteryWh(capacityWh), appliances, history}),
		JSON: true,
	}
}
