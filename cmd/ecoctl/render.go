package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/bryanwahyu/ecosense/internal/client/fallback"
	"github.com/bryanwahyu/ecosense/internal/client/normalize"
	"github.com/bryanwahyu/ecosense/internal/client/workflow"
)

// analyze submits in and reports progress on progressOut until the attempt
// settles. A settled Error state is returned as an error.
func analyze[In, Out any](ctx context.Context, progressOut io.Writer, wf *workflow.Workflow[In, Out], in In) (workflow.Snapshot[In, Out], error) {
	last := -1
	unsubscribe := wf.Subscribe(func(s workflow.Snapshot[In, Out]) {
		if s.State != workflow.Analyzing || s.Step == last {
			return
		}
		last = s.Step
		fmt.Fprintf(progressOut, "[%d/%d] %s...\n", s.Step+1, len(s.Steps), s.StepLabel())
	})
	defer unsubscribe()

	snap, err := wf.Submit(ctx, in)
	if err != nil {
		return snap, err
	}
	switch snap.State {
	case workflow.Error:
		return snap, errors.New(snap.Err)
	case workflow.Fallback:
		fmt.Fprintln(progressOut, fallback.DemoNotice)
	}
	if snap.Result == nil {
		return snap, fmt.Errorf("analysis ended in state %s without a result", snap.State)
	}
	return snap, nil
}

func printCarbon(w io.Writer, r normalize.CarbonResult, plain bool) {
	if r.Demo {
		fmt.Fprintln(w, "DEMO DATA")
	}
	if r.TestMode {
		fmt.Fprintln(w, "Test mode: sample image")
	}
	if r.Notice != "" {
		fmt.Fprintln(w, "Info: "+r.Notice)
	}
	field(w, "Product", r.Entity.CanonicalName)
	field(w, "Category", r.Entity.Category)
	if r.Input.Brand != normalize.Unknown {
		field(w, "Brand", r.Input.Brand)
	}
	field(w, "Total", fmt.Sprintf("%.4g kg CO2e", r.Breakdown.Total))
	p, k, t := normalize.Percentages(r.Breakdown)
	field(w, "  Production", fmt.Sprintf("%.4g kg (%.1f%%)", r.Breakdown.Production, p))
	field(w, "  Packaging", fmt.Sprintf("%.4g kg (%.1f%%)", r.Breakdown.Packaging, k))
	field(w, "  Transport", fmt.Sprintf("%.4g kg (%.1f%%)", r.Breakdown.Transport, t))
	field(w, "Source", fmt.Sprintf("%s (%s confidence)", r.Source.Name, r.Source.Confidence))
	field(w, "Formula", r.Formula)
	field(w, "Notes", r.Notes)
	if r.Summary != "" {
		fmt.Fprintln(w)
		fmt.Fprint(w, renderMarkdown(r.Summary, plain))
	}
}

func printSolar(w io.Writer, r normalize.SolarResult) {
	if r.Demo {
		fmt.Fprintln(w, "DEMO DATA")
	}
	field(w, "Recommendation", r.Summary)
	field(w, "Battery", r.BatteryManagement)
	if r.Timestamp != "" {
		field(w, "Generated", r.Timestamp)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-20s %-30s %-14s %s\n", "APPLIANCE", "WHEN", "SOURCE", "PRIORITY")
	for _, al := range r.Allocations {
		fmt.Fprintf(w, "%-20s %-30s %-14s %s\n", al.Appliance, al.TimeToRun, al.PowerSource, al.Priority)
	}
	if len(r.Alerts) > 0 {
		fmt.Fprintln(w)
		for _, a := range r.Alerts {
			fmt.Fprintln(w, "! "+a)
		}
	}
}

func field(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-16s %s\n", label+":", value)
}

// renderMarkdown styles the report summary for the terminal. The raw text
// is returned when plain is set or rendering fails.
func renderMarkdown(md string, plain bool) string {
	raw := strings.TrimRight(md, "\n") + "\n"
	if plain {
		return raw
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		logger.Debug("markdown renderer unavailable", zap.Error(err))
		return raw
	}
	out, err := r.Render(md)
	if err != nil {
		return raw
	}
	return out
}
