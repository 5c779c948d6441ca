// Package workflow is the analysis state machine shared by the carbon and
// solar modules: one dispatch per attempt, a cosmetic progress timer while
// it runs, and a local fallback when the backend is unreachable.
package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/ecosense/internal/client/backend"
	"github.com/bryanwahyu/ecosense/internal/client/progress"
	"github.com/bryanwahyu/ecosense/internal/logging"
)

var (
	// ErrSuperseded is returned by Submit when a newer attempt or a Reset
	// replaced it. Its outcome was dropped.
	ErrSuperseded = errors.New("analysis superseded")
	ErrClosed     = errors.New("workflow closed")
)

type State int

const (
	Idle State = iota
	Analyzing
	Success
	Fallback
	Error
)

func (s State) String() string {
	switch s {
	case Analyzing:
		return "analyzing"
	case Success:
		return "success"
	case Fallback:
		return "fallback"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// Settled reports whether s is a terminal state of an attempt.
func (s State) Settled() bool { return s == Success || s == Fallback || s == Error }

// Analyzer dispatches one input and normalizes the answer. Fallback
// synthesizes a result when the backend cannot be reached.
type Analyzer[In, Out any] interface {
	Analyze(ctx context.Context, in In) (Out, error)
	Fallback(in In) Out
}

// Pinger reports backend reachability.
type Pinger interface {
	Ping(ctx context.Context) backend.Connectivity
}

// Snapshot is an immutable view of the workflow. Result is non-nil only in
// Success and Fallback; Err is non-empty only in Error.
type Snapshot[In, Out any] struct {
	Seq          uint64
	State        State
	Input        *In
	Result       *Out
	Err          string
	Step         int
	Steps        []string
	Connectivity backend.Connectivity
}

// StepLabel returns the current progress label.
func (s Snapshot[In, Out]) StepLabel() string {
	if s.Step < 0 || s.Step >= len(s.Steps) {
		return ""
	}
	return s.Steps[s.Step]
}

type options struct {
	interval time.Duration
	pinger   Pinger
	logger   *zap.Logger
}

type Option func(*options)

// WithInterval sets how long each progress step is shown.
func WithInterval(d time.Duration) Option { return func(o *options) { o.interval = d } }

func WithPinger(p Pinger) Option { return func(o *options) { o.pinger = p } }

func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// Workflow holds at most one input and one outcome. Starting a new attempt
// or resetting cancels the in-flight request and drops its late answer.
type Workflow[In, Out any] struct {
	analyzer Analyzer[In, Out]
	steps    []string
	opts     options
	logger   *zap.Logger

	mu      sync.Mutex
	seq     uint64
	gen     uint64
	state   State
	input   *In
	result  *Out
	errMsg  string
	step    int
	conn    backend.Connectivity
	cancel  context.CancelFunc
	sim     *progress.Simulator
	subs    map[int]func(Snapshot[In, Out])
	nextSub int
	closed  bool

	// pubMu orders deliveries; snapshots older than lastPub are skipped.
	pubMu   sync.Mutex
	lastPub uint64
}

func New[In, Out any](a Analyzer[In, Out], steps []string, opts ...Option) *Workflow[In, Out] {
	o := options{interval: progress.DefaultInterval}
	for _, opt := range opts {
		opt(&o)
	}
	return &Workflow[In, Out]{
		analyzer: a,
		steps:    append([]string(nil), steps...),
		opts:     o,
		logger:   logging.Or(o.logger),
		subs:     make(map[int]func(Snapshot[In, Out])),
	}
}

// Subscribe registers fn for every snapshot change. fn runs synchronously
// on the goroutine that made the change and must not call back into the
// workflow.
func (w *Workflow[In, Out]) Subscribe(fn func(Snapshot[In, Out])) (unsubscribe func()) {
	w.mu.Lock()
	id := w.nextSub
	w.nextSub++
	w.subs[id] = fn
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.subs, id)
			w.mu.Unlock()
		})
	}
}

func (w *Workflow[In, Out]) Snapshot() Snapshot[In, Out] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Workflow[In, Out]) snapshotLocked() Snapshot[In, Out] {
	return Snapshot[In, Out]{
		Seq:          w.seq,
		State:        w.state,
		Input:        w.input,
		Result:       w.result,
		Err:          w.errMsg,
		Step:         w.step,
		Steps:        w.steps,
		Connectivity: w.conn,
	}
}

// changedLocked bumps the sequence and returns the new snapshot with the
// current subscribers.
func (w *Workflow[In, Out]) changedLocked() (Snapshot[In, Out], []func(Snapshot[In, Out])) {
	w.seq++
	subs := make([]func(Snapshot[In, Out]), 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	return w.snapshotLocked(), subs
}

func (w *Workflow[In, Out]) publish(snap Snapshot[In, Out], subs []func(Snapshot[In, Out])) {
	w.pubMu.Lock()
	defer w.pubMu.Unlock()
	if snap.Seq <= w.lastPub {
		return
	}
	w.lastPub = snap.Seq
	for _, fn := range subs {
		fn(snap)
	}
}

// Submit starts a new attempt for in and blocks until it settles. The
// outcome is reported through the returned snapshot and subscribers; an
// error is returned only when the attempt was superseded or the workflow
// closed.
func (w *Workflow[In, Out]) Submit(ctx context.Context, in In) (Snapshot[In, Out], error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return Snapshot[In, Out]{}, ErrClosed
	}
	w.gen++
	gen := w.gen
	prevCancel, prevSim := w.cancel, w.sim

	actx, cancel := context.WithCancel(ctx)
	sim := progress.New(w.steps, w.opts.interval, func(i int) { w.onStep(gen, i) })
	w.cancel, w.sim = cancel, sim
	w.state = Analyzing
	w.input = &in
	w.result = nil
	w.errMsg = ""
	w.step = 0
	sim.Start()
	snap, subs := w.changedLocked()
	w.mu.Unlock()

	stopAttempt(prevCancel, prevSim)
	w.publish(snap, subs)

	out, err := w.analyzer.Analyze(actx, in)
	sim.Finish()
	cancel()

	w.mu.Lock()
	if gen != w.gen {
		cur := w.snapshotLocked()
		w.mu.Unlock()
		w.logger.Debug("dropping superseded analysis", zap.Uint64("attempt", gen), zap.Error(err))
		return cur, ErrSuperseded
	}
	w.cancel, w.sim = nil, nil
	w.settleLocked(ctx, in, out, err)
	snap, subs = w.changedLocked()
	w.mu.Unlock()

	w.publish(snap, subs)
	return snap, nil
}

func (w *Workflow[In, Out]) settleLocked(ctx context.Context, in In, out Out, err error) {
	var se *backend.StatusError
	switch {
	case err == nil:
		w.state, w.result, w.conn = Success, &out, backend.Connected
	case errors.As(err, &se):
		// the server answered, so it is reachable
		w.state, w.errMsg, w.conn = Error, se.Message, backend.Connected
	case errors.Is(err, backend.ErrUnreachable):
		fb := w.analyzer.Fallback(in)
		w.state, w.result, w.conn = Fallback, &fb, backend.Disconnected
		w.logger.Info("backend unreachable, using demo result", zap.Error(err))
	case ctx.Err() != nil:
		w.state, w.errMsg = Error, "analysis cancelled"
	default:
		w.state, w.errMsg = Error, err.Error()
	}
}

func (w *Workflow[In, Out]) onStep(gen uint64, i int) {
	w.mu.Lock()
	if gen != w.gen || w.state != Analyzing {
		w.mu.Unlock()
		return
	}
	w.step = i
	snap, subs := w.changedLocked()
	w.mu.Unlock()
	w.publish(snap, subs)
}

// Reset returns to Idle immediately, cancels the in-flight request and
// stops the progress timer.
func (w *Workflow[In, Out]) Reset() {
	w.mu.Lock()
	cancel, sim := w.detachLocked()
	snap, subs := w.changedLocked()
	w.mu.Unlock()

	stopAttempt(cancel, sim)
	w.publish(snap, subs)
}

// Close resets the workflow and drops every subscriber. Later Submits fail
// with ErrClosed.
func (w *Workflow[In, Out]) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	cancel, sim := w.detachLocked()
	w.subs = map[int]func(Snapshot[In, Out]){}
	w.mu.Unlock()

	stopAttempt(cancel, sim)
}

func (w *Workflow[In, Out]) detachLocked() (context.CancelFunc, *progress.Simulator) {
	w.gen++
	cancel, sim := w.cancel, w.sim
	w.cancel, w.sim = nil, nil
	w.state = Idle
	w.input = nil
	w.result = nil
	w.errMsg = ""
	w.step = 0
	return cancel, sim
}

// Ping refreshes the connectivity flag. Without a pinger it leaves the
// flag unknown.
func (w *Workflow[In, Out]) Ping(ctx context.Context) backend.Connectivity {
	if w.opts.pinger == nil {
		return w.Snapshot().Connectivity
	}
	conn := w.opts.pinger.Ping(ctx)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return conn
	}
	w.conn = conn
	snap, subs := w.changedLocked()
	w.mu.Unlock()

	w.publish(snap, subs)
	return conn
}

func stopAttempt(cancel context.CancelFunc, sim *progress.Simulator) {
	if cancel != nil {
		cancel()
	}
	if sim != nil {
		sim.Stop()
	}
}
