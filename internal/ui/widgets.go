package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bryanwahyu/ecosense/internal/client/backend"
	"github.com/bryanwahyu/ecosense/internal/client/dashboard"
	"github.com/bryanwahyu/ecosense/internal/client/normalize"
	"github.com/bryanwahyu/ecosense/internal/client/workflow"
)

// watcher turns workflow notifications into WorkflowChanged messages.
// Notifications coalesce; the view always reads the latest snapshot.
type watcher struct {
	notify      chan struct{}
	done        chan struct{}
	unsubscribe func()
	once        sync.Once
}

func watchWorkflow[In, Out any](wf *workflow.Workflow[In, Out]) *watcher {
	w := &watcher{notify: make(chan struct{}, 1), done: make(chan struct{})}
	w.unsubscribe = wf.Subscribe(func(workflow.Snapshot[In, Out]) {
		select {
		case w.notify <- struct{}{}:
		default:
		}
	})
	return w
}

func (w *watcher) wait(mount int) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.notify:
			return WorkflowChanged{Mount: mount}
		case <-w.done:
			return nil
		}
	}
}

func (w *watcher) stop() {
	w.once.Do(func() {
		w.unsubscribe()
		close(w.done)
	})
}

func ping(ctx context.Context, mount int, fn func(context.Context) backend.Connectivity) tea.Cmd {
	return func() tea.Msg { return Pinged{Mount: mount, Connectivity: fn(ctx)} }
}

func newInput(prompt, placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = 256
	return in
}

func formFor(m dashboard.Module) []textinput.Model {
	switch m {
	case dashboard.ModuleSolar:
		return []textinput.Model{
			newInput("Solar production (W):  ", "2500"),
			newInput("Battery level (%):     ", "75"),
			newInput("Battery capacity (Wh): ", "10000 (optional)"),
		}
	case dashboard.ModuleCarbon:
		return []textinput.Model{newInput("Image path: ", "leave empty to use the sample image")}
	case dashboard.ModuleWater:
		return []textinput.Model{
			newInput("Activity:    ", "shower"),
			newInput("Litres used: ", "40"),
		}
	}
	return nil
}

func (a *App) updateWidget(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "down":
		step := 1
		if msg.String() == "up" {
			step = -1
		}
		if cw, ok := a.widget.(*dashboard.ChallengesWidget); ok {
			if n := len(cw.Challenges()); n > 0 {
				a.cursor = ((a.cursor+step)%n + n) % n
			}
			return nil
		}
		if len(a.form) > 0 {
			a.form[a.focus].Blur()
			a.focus = ((a.focus+step)%len(a.form) + len(a.form)) % len(a.form)
			return a.form[a.focus].Focus()
		}
		return nil
	case "ctrl+r":
		a.errMsg, a.statusMsg = "", ""
		switch w := a.widget.(type) {
		case *dashboard.SolarWidget:
			w.Workflow.Reset()
		case *dashboard.CarbonWidget:
			w.Workflow.Reset()
		case *dashboard.WaterWidget:
			w.Reset()
		}
		return nil
	case "enter":
		a.errMsg = ""
		return a.submit()
	}
	if len(a.form) == 0 {
		return nil
	}
	var cmd tea.Cmd
	a.form[a.focus], cmd = a.form[a.focus].Update(msg)
	return cmd
}

func (a *App) field(i int) string { return strings.TrimSpace(a.form[i].Value()) }

func parseNumber(label, s string, optional bool) (float64, error) {
	if s == "" && optional {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", label)
	}
	return v, nil
}

func (a *App) submit() tea.Cmd {
	mount := a.mount
	switch w := a.widget.(type) {
	case *dashboard.SolarWidget:
		solarW, err := parseNumber("solar production", a.field(0), false)
		if err != nil {
			a.errMsg = err.Error()
			return nil
		}
		battery, err := parseNumber("battery level", a.field(1), false)
		if err != nil {
			a.errMsg = err.Error()
			return nil
		}
		capacity, err := parseNumber("battery capacity", a.field(2), true)
		if err != nil {
			a.errMsg = err.Error()
			return nil
		}
		in := backend.SolarInput{SolarProductionW: solarW, BatteryPercentage: battery, BatteryCapacityWh: capacity}
		return func() tea.Msg {
			_, err := w.Workflow.Submit(a.ctx, in)
			return Submitted{Mount: mount, Err: err}
		}

	case *dashboard.CarbonWidget:
		path := a.field(0)
		return func() tea.Msg {
			in := backend.ImageInput{Sample: true}
			if path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return Submitted{Mount: mount, Err: err}
				}
				in = backend.ImageInput{Filename: filepath.Base(path), Data: data}
			}
			_, err := w.Workflow.Submit(a.ctx, in)
			return Submitted{Mount: mount, Err: err}
		}

	case *dashboard.WaterWidget:
		litres, err := parseNumber("litres", a.field(1), false)
		if err == nil {
			err = w.Log(a.field(0), litres)
		}
		if err != nil {
			a.errMsg = err.Error()
			return nil
		}
		a.statusMsg = fmt.Sprintf("Logged %g L for %s", litres, a.field(0))
		for i := range a.form {
			a.form[i].SetValue("")
		}
		return nil

	case *dashboard.ChallengesWidget:
		cs := w.Challenges()
		if len(cs) == 0 {
			return nil
		}
		c, err := w.Complete(cs[a.cursor].ID)
		if err != nil {
			a.errMsg = err.Error()
			return nil
		}
		a.statusMsg = fmt.Sprintf("Completed %q: +%d points", c.Title, c.Points)
	}
	return nil
}

func (a *App) viewWidget() string {
	var b strings.Builder
	for _, in := range a.form {
		b.WriteString(in.View() + "\n")
	}
	if len(a.form) > 0 {
		b.WriteString("\n")
	}

	switch w := a.widget.(type) {
	case *dashboard.SolarWidget:
		snap := w.Workflow.Snapshot()
		b.WriteString(a.viewProgress(snap.State, snap.Step, snap.Steps, snap.Err))
		if snap.Result != nil {
			b.WriteString(viewSolar(*snap.Result))
		}
	case *dashboard.CarbonWidget:
		snap := w.Workflow.Snapshot()
		b.WriteString(a.viewProgress(snap.State, snap.Step, snap.Steps, snap.Err))
		if snap.Result != nil {
			b.WriteString(viewCarbon(*snap.Result))
		}
	case *dashboard.WaterWidget:
		b.WriteString(viewWater(w))
	case *dashboard.ChallengesWidget:
		b.WriteString(viewChallenges(w, a.cursor))
	default:
		b.WriteString(LabelStyle.Render("No module selected."))
	}
	return b.String()
}

func (a *App) viewProgress(state workflow.State, step int, steps []string, errMsg string) string {
	switch state {
	case workflow.Analyzing:
		label := ""
		if step >= 0 && step < len(steps) {
			label = steps[step]
		}
		return fmt.Sprintf("%s %s (%d/%d)\n", a.spinner.View(), label, step+1, len(steps))
	case workflow.Error:
		return ErrorStyle.Render("Analysis failed: "+errMsg) + "\n"
	case workflow.Fallback:
		return DemoBadge.Render("OFFLINE DEMO") + LabelStyle.Render(" backend unreachable, showing simulated data") + "\n"
	}
	return ""
}

func row(label string, value any) string {
	return LabelStyle.Render(label+": ") + ValueStyle.Render(fmt.Sprint(value)) + "\n"
}

func viewCarbon(r normalize.CarbonResult) string {
	var b strings.Builder
	if r.Notice != "" {
		b.WriteString(InfoStyle.Render("ⓘ "+r.Notice) + "\n")
	}
	b.WriteString(row("Product", r.Entity.CanonicalName))
	b.WriteString(row("Category", r.Entity.Category))
	b.WriteString(row("Total", fmt.Sprintf("%.4g kg CO₂e", r.Breakdown.Total)))
	p, k, t := normalize.Percentages(r.Breakdown)
	b.WriteString(row("  Production", fmt.Sprintf("%.4g kg (%.1f%%)", r.Breakdown.Production, p)))
	b.WriteString(row("  Packaging", fmt.Sprintf("%.4g kg (%.1f%%)", r.Breakdown.Packaging, k)))
	b.WriteString(row("  Transport", fmt.Sprintf("%.4g kg (%.1f%%)", r.Breakdown.Transport, t)))
	b.WriteString(row("Source", fmt.Sprintf("%s (%s confidence)", r.Source.Name, r.Source.Confidence)))
	b.WriteString(row("Notes", r.Notes))
	return b.String()
}

func viewSolar(r normalize.SolarResult) string {
	var b strings.Builder
	if r.Demo {
		b.WriteString(DemoBadge.Render("DEMO") + "\n")
	}
	b.WriteString(row("Recommendation", r.Summary))
	b.WriteString(row("Battery", r.BatteryManagement))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Render(fmt.Sprintf("%-20s %-30s %-14s %s", "Appliance", "When", "Source", "Priority")) + "\n")
	for _, al := range r.Allocations {
		b.WriteString(fmt.Sprintf("%-20s %-30s %-14s %s\n", al.Appliance, al.TimeToRun, al.PowerSource, al.Priority))
	}
	if len(r.Alerts) > 0 {
		b.WriteString("\n")
		for _, al := range r.Alerts {
			b.WriteString("⚠ " + al + "\n")
		}
	}
	return b.String()
}

func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	filled = max(0, min(filled, width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func viewWater(w *dashboard.WaterWidget) string {
	var b strings.Builder
	b.WriteString(row("Used today", fmt.Sprintf("%g / %g L", w.Total(), w.Goal())))
	bar := progressBar(w.Progress(), 30) + fmt.Sprintf(" %.0f%%", w.Progress())
	if w.OverGoal() {
		bar = ErrorStyle.Render(bar + " over goal")
	}
	b.WriteString(bar + "\n")
	for _, e := range w.Entries() {
		b.WriteString(fmt.Sprintf("  %s  %-20s %g L\n", e.At.Format("15:04"), e.Activity, e.Litres))
	}
	return b.String()
}

func viewChallenges(w *dashboard.ChallengesWidget, cursor int) string {
	var b strings.Builder
	b.WriteString(row("Points", w.Points()))
	b.WriteString(row("Level", w.Level()))
	b.WriteString("\n")
	for i, c := range w.Challenges() {
		mark := "[ ]"
		if w.Completed(c.ID) {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s (+%d) %s", mark, c.Title, c.Points, LabelStyle.Render(c.Description))
		if i == cursor {
			line = SelectedItem.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
