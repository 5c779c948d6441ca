package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bryanwahyu/ecosense/internal/client/workflow"
)

// SolarWidget owns one solar analysis workflow.
type SolarWidget struct {
	Workflow *workflow.Solar
}

func (*SolarWidget) Module() Module { return ModuleSolar }
func (w *SolarWidget) Close() { w.Workflow.Close() }

// CarbonWidget owns one carbon analysis workflow.
type CarbonWidget struct {
	Workflow *workflow.Carbon
}

func (*CarbonWidget) Module() Module { return ModuleCarbon }
func (w *CarbonWidget) Close() { w.Workflow.Close() }

// DefaultWaterGoalLitres is a typical daily household goal per person.
const DefaultWaterGoalLitres = 150.0

type WaterEntry struct {
	Activity string
	Litres   float64
	At       time.Time
}

// WaterWidget tracks water use against a daily goal.
type WaterWidget struct {
	goal float64
	now  func() time.Time

	mu      sync.Mutex
	entries []WaterEntry
}

func NewWaterWidget(goalLitres float64, now func() time.Time) *WaterWidget {
	if goalLitres <= 0 {
		goalLitres = DefaultWaterGoalLitres
	}
	if now == nil {
		now = time.Now
	}
	return &WaterWidget{goal: goalLitres, now: now}
}

func (*WaterWidget) Module() Module { return ModuleWater }
func (*WaterWidget) Close() {}

func (w *WaterWidget) Goal() float64 { return w.goal }

func (w *WaterWidget) Log(activity string, litres float64) error {
	activity = strings.TrimSpace(activity)
	if activity == "" {
		return errors.New("activity is required")
	}
	if litres <= 0 {
		return fmt.Errorf("litres must be positive, got %g", litres)
	}
	w.mu.Lock()
	w.entries = append(w.entries, WaterEntry{Activity: activity, Litres: litres, At: w.now()})
	w.mu.Unlock()
	return nil
}

func (w *WaterWidget) Entries() []WaterEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]WaterEntry(nil), w.entries...)
}

func (w *WaterWidget) Total() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	var sum float64
	for _, e := range w.entries {
		sum += e.Litres
	}
	return sum
}

// Progress is usage as a percentage of the goal, capped at 100.
func (w *WaterWidget) Progress() float64 {
	return min(w.Total()/w.goal*100, 100)
}

// OverGoal reports whether usage exceeded the goal.
func (w *WaterWidget) OverGoal() bool { return w.Total() > w.goal }

func (w *WaterWidget) Reset() {
	w.mu.Lock()
	w.entries = nil
	w.mu.Unlock()
}

var (
	ErrUnknownChallenge = errors.New("unknown challenge")
	ErrAlreadyCompleted = errors.New("challenge already completed")
)

type Challenge struct {
	ID          string
	Title       string
	Description string
	Points      int
}

// PointsPerLevel is how many points advance one level.
const PointsPerLevel = 100

func DefaultChallenges() []Challenge {
	return []Challenge{
		{ID: "meatless-monday", Title: "Meatless Monday", Description: "Skip meat for a whole day.", Points: 50},
		{ID: "bike-to-work", Title: "Bike to Work", Description: "Replace one car commute with a bike ride.", Points: 75},
		{ID: "short-showers", Title: "Five-Minute Showers", Description: "Keep every shower under five minutes for a week.", Points: 40},
		{ID: "zero-waste-lunch", Title: "Zero-Waste Lunch", Description: "Pack a lunch with no disposable packaging.", Points: 30},
		{ID: "unplug", Title: "Unplug Idle Devices", Description: "Switch off standby devices overnight.", Points: 25},
		{ID: "reusable-bottle", Title: "Reusable Bottle", Description: "Use only a refillable bottle for a week.", Points: 35},
	}
}

// ChallengesWidget awards points for completed challenges. Each challenge
// completes at most once.
type ChallengesWidget struct {
	challenges []Challenge

	mu        sync.Mutex
	completed map[string]bool
}

func NewChallengesWidget(challenges []Challenge) *ChallengesWidget {
	return &ChallengesWidget{
		challenges: append([]Challenge(nil), challenges...),
		completed:  make(map[string]bool),
	}
}

func (*ChallengesWidget) Module() Module { return ModuleChallenges }
func (*ChallengesWidget) Close() {}

func (w *ChallengesWidget) Challenges() []Challenge {
	return append([]Challenge(nil), w.challenges...)
}

func (w *ChallengesWidget) Complete(id string) (Challenge, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range w.challenges {
		if c.ID != id {
			continue
		}
		if w.completed[id] {
			return c, ErrAlreadyCompleted
		}
		w.completed[id] = true
		return c, nil
	}
	return Challenge{}, fmt.Errorf("%w: %q", ErrUnknownChallenge, id)
}

func (w *ChallengesWidget) Completed(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completed[id]
}

func (w *ChallengesWidget) Points() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	total := 0
	for _, c := range w.challenges {
		if w.completed[c.ID] {
			total += c.Points
		}
	}
	return total
}

// Level starts at 1 and rises every PointsPerLevel points.
func (w *ChallengesWidget) Level() int { return w.Points()/PointsPerLevel + 1 }
