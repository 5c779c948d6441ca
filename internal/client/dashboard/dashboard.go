// Package dashboard switches between the four EcoSense modules. Only one
// widget is mounted at a time and none of its state survives a switch.
package dashboard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bryanwahyu/ecosense/internal/client/auth"
	"github.com/bryanwahyu/ecosense/internal/client/backend"
	"github.com/bryanwahyu/ecosense/internal/client/normalize"
	"github.com/bryanwahyu/ecosense/internal/client/progress"
	"github.com/bryanwahyu/ecosense/internal/client/workflow"
)

var (
	ErrNotSignedIn   = errors.New("sign in to use the dashboard")
	ErrUnknownModule = errors.New("unknown dashboard module")
)

type Module string

const (
	ModuleSolar      Module = "solar"
	ModuleCarbon     Module = "carbon"
	ModuleWater      Module = "water"
	ModuleChallenges Module = "challenges"
)

// Modules in tab order.
var Modules = []Module{ModuleSolar, ModuleCarbon, ModuleWater, ModuleChallenges}

func (m Module) Title() string {
	switch m {
	case ModuleSolar:
		return "Solar Energy"
	case ModuleCarbon:
		return "Carbon Footprint"
	case ModuleWater:
		return "Water Tracker"
	case ModuleChallenges:
		return "Eco Challenges"
	default:
		return string(m)
	}
}

func ParseModule(s string) (Module, error) {
	for _, m := range Modules {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModule, s)
}

// Widget is a mounted module. Close releases everything it owns.
type Widget interface {
	Module() Module
	Close()
}

type Options struct {
	// Interval is the progress step interval of the analysis widgets.
	Interval        time.Duration
	WaterGoalLitres float64
	Now             func() time.Time
}

type Dashboard struct {
	auth   *auth.Provider
	client *backend.Client
	opts   Options

	mu          sync.Mutex
	active      Module
	widget      Widget
	unsubscribe func()
}

// New gates the dashboard on provider: signing out unmounts the widget.
func New(provider *auth.Provider, client *backend.Client, opts Options) *Dashboard {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	d := &Dashboard{auth: provider, client: client, opts: opts}
	d.unsubscribe = provider.Subscribe(func(u *auth.User) {
		if u == nil {
			d.unmount()
		}
	})
	return d
}

// Select unmounts the current widget and mounts a fresh one for m.
func (d *Dashboard) Select(m Module) (Widget, error) {
	if d.auth.Current() == nil {
		return nil, ErrNotSignedIn
	}
	w, err := d.build(m)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	prev := d.widget
	d.active, d.widget = m, w
	d.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return w, nil
}

func (d *Dashboard) build(m Module) (Widget, error) {
	switch m {
	case ModuleSolar:
		wf := workflow.New[backend.SolarInput, normalize.SolarResult](
			workflow.SolarAnalyzer{Client: d.client, Now: d.opts.Now}, progress.SolarSteps,
			workflow.WithInterval(d.opts.Interval), workflow.WithPinger(d.client))
		return &SolarWidget{Workflow: wf}, nil
	case ModuleCarbon:
		return &CarbonWidget{Workflow: workflow.NewCarbon(d.client, workflow.WithInterval(d.opts.Interval))}, nil
	case ModuleWater:
		return NewWaterWidget(d.opts.WaterGoalLitres, d.opts.Now), nil
	case ModuleChallenges:
		return NewChallengesWidget(DefaultChallenges()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModule, m)
	}
}

// Active returns the mounted module and widget, or "" and nil.
func (d *Dashboard) Active() (Module, Widget) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active, d.widget
}

func (d *Dashboard) unmount() {
	d.mu.Lock()
	prev := d.widget
	d.active, d.widget = "", nil
	d.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}

// Close unmounts the widget and stops following the auth provider.
func (d *Dashboard) Close() {
	d.unsubscribe()
	d.unmount()
}
