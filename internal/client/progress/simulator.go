// Package progress drives a cosmetic step indicator while one request is in
// flight. It is not tied to real backend progress.
package progress

import (
	"sync"
	"time"
)

var CarbonSteps = []string{
	"Image Processing",
	"Entity Standardization",
	"Knowledge Retrieval",
	"Footprint Estimation",
	"Summary Generation",
}

var SolarSteps = []string{
	"Reading Inputs",
	"Solar Production Analysis",
	"Battery Assessment",
	"Appliance Scheduling",
	"Plan Generation",
}

// DefaultInterval is how long each step is shown.
const DefaultInterval = 2 * time.Second

// Simulator advances an index over a fixed list of steps every interval,
// stopping at the last index. The index stays in [0, last] and only moves
// forward between Start calls. onChange runs on the simulator goroutine, or
// on the caller's goroutine for Finish, and never after Stop returns.
type Simulator struct {
	steps    []string
	interval time.Duration
	onChange func(index int)

	mu    sync.Mutex
	index int
	stop  chan struct{}
	done  chan struct{}
}

func New(steps []string, interval time.Duration, onChange func(index int)) *Simulator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if onChange == nil {
		onChange = func(int) {}
	}
	return &Simulator{steps: steps, interval: interval, onChange: onChange}
}

func (s *Simulator) last() int { return len(s.steps) - 1 }

// Start resets the index to 0 and begins advancing. A running simulation is
// stopped first. Start does not call onChange.
func (s *Simulator) Start() {
	s.Stop()
	if len(s.steps) == 0 {
		return
	}

	s.mu.Lock()
	s.index = 0
	stop, done := make(chan struct{}), make(chan struct{})
	s.stop, s.done = stop, done
	s.mu.Unlock()

	go s.run(stop, done)
}

func (s *Simulator) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
		}

		s.mu.Lock()
		if s.index < s.last() {
			s.index++
		}
		i := s.index
		s.mu.Unlock()

		select {
		case <-stop:
			return
		default:
		}
		s.onChange(i)
		if i >= s.last() {
			return
		}
	}
}

// Stop cancels the timer and waits for the goroutine to exit. It is safe to
// call repeatedly.
func (s *Simulator) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Finish stops the timer and forces the last step.
func (s *Simulator) Finish() {
	s.Stop()
	if len(s.steps) == 0 {
		return
	}
	s.mu.Lock()
	s.index = s.last()
	i := s.index
	s.mu.Unlock()
	s.onChange(i)
}

func (s *Simulator) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Step returns the label of the current step.
func (s *Simulator) Step() string {
	if len(s.steps) == 0 {
		return ""
	}
	return s.steps[s.Index()]
}

func (s *Simulator) Steps() []string { return append([]string(nil), s.steps...) }
