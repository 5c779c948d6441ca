package footprint

import (
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/ecosense/internal/domain/footprint"
)

// Summary renders the layer 5 markdown summary.
func Summary(e domain.Estimate) string {
	formula := e.Formula
	if formula == "" {
		formula = domain.Formula
	}
	var b strings.Builder
	b.WriteString("🌱 **CARBON FOOTPRINT ANALYSIS COMPLETE** 🌱\n\n")
	fmt.Fprintf(&b, "**Product:** %s\n", e.CanonicalName)
	fmt.Fprintf(&b, "**Total Carbon Footprint:** %g kg CO₂e\n\n", e.TotalCO2eKg)
	b.WriteString("**Detailed Breakdown:**\n")
	fmt.Fprintf(&b, "• **Production Impact:** %g kg CO₂e\n", e.Breakdown.Production)
	fmt.Fprintf(&b, "• **Packaging Impact:** %g kg CO₂e\n", e.Breakdown.Packaging)
	fmt.Fprintf(&b, "• **Transport Impact:** %g kg CO₂e\n\n", e.Breakdown.Transport)
	fmt.Fprintf(&b, "**Data Source:** %s\n", e.Source)
	fmt.Fprintf(&b, "**Confidence Level:** %s\n", e.Confidence)
	fmt.Fprintf(&b, "**Analysis Notes:** %s\n\n", e.Notes)
	fmt.Fprintf(&b, "**Formula:** %s", formula)
	return b.String()
}
