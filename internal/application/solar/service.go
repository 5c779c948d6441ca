package solar

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/ecosense/internal/application"
	appai "github.com/bryanwahyu/ecosense/internal/application/ai"
	domain "github.com/bryanwahyu/ecosense/internal/domain/solar"
	"github.com/bryanwahyu/ecosense/internal/infra/ai/prompt"
	"github.com/bryanwahyu/ecosense/internal/logging"
)

// Config is the agent's current battery and appliance setup.
type Config struct {
	BatteryCapacityWh float64           `json:"battery_capacity_wh"`
	Appliances        domain.Appliances `json:"appliances"`
	EnergyLogCount    int               `json:"energy_log_count"`
}

// Result is a plan plus how it was produced.
type Result struct {
	Plan domain.Plan
	// Simulated is true when the rule-based plan answered instead of the model.
	Simulated bool
}

// Step is one point of a simulation run.
type Step struct {
	Step    int
	Reading domain.Reading
	Result
}

// Service is the solar energy management agent. It keeps one configuration
// and energy log for the process. Every request works on its own session
// and publishes it when done, so concurrent requests never mix their logs.
type Service struct {
	ai     *appai.Service
	clock  application.Clock
	logger *zap.Logger

	defaultCapacity   float64
	defaultAppliances domain.Appliances

	mu      sync.Mutex
	current *session
}

// session is one reinitialised agent: a setup and the readings tracked on it.
type session struct {
	capacity   float64
	appliances domain.Appliances
	log        []domain.LogEntry
}

func (ss *session) config() Config {
	return Config{
		BatteryCapacityWh: ss.capacity,
		Appliances:        ss.appliances.Clone(),
		EnergyLogCount:    len(ss.log),
	}
}

func NewService(ai *appai.Service, clock application.Clock, logger *zap.Logger, capacityWh float64, appliances domain.Appliances) *Service {
	if capacityWh <= 0 {
		capacityWh = domain.DefaultBatteryCapacityWh
	}
	if len(appliances) == 0 {
		appliances = domain.DefaultAppliances()
	}
	if clock == nil {
		clock = application.SystemClock{}
	}
	s := &Service{
		ai:                ai,
		clock:             clock,
		logger:            logging.Or(logger),
		defaultCapacity:   capacityWh,
		defaultAppliances: appliances.Clone(),
	}
	s.current = s.newSession(0, nil)
	return s
}

// newSession reinitialises the agent; zero values fall back to the defaults.
func (s *Service) newSession(capacityWh float64, appliances domain.Appliances) *session {
	if capacityWh <= 0 {
		capacityWh = s.defaultCapacity
	}
	if len(appliances) == 0 {
		appliances = s.defaultAppliances
	}
	return &session{capacity: capacityWh, appliances: appliances.Clone()}
}

// publish makes ss the agent state reported by Config.
func (s *Service) publish(ss *session) Config {
	cfg := ss.config()
	s.mu.Lock()
	s.current = ss
	s.mu.Unlock()
	return cfg
}

type AnalyzeCommand struct {
	Reading           domain.Reading
	BatteryCapacityWh float64
	Appliances        domain.Appliances
}

// Analyze reinitialises the agent with the command's setup and advises on
// one reading.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (Result, Config) {
	ss := s.newSession(cmd.BatteryCapacityWh, cmd.Appliances)
	res := s.track(ctx, ss, cmd.Reading)
	return res, s.publish(ss)
}

// Simulate reinitialises the agent and tracks every reading in order, so the
// energy log accumulates across steps.
func (s *Service) Simulate(ctx context.Context, capacityWh float64, appliances domain.Appliances, readings []domain.Reading) ([]Step, Config, error) {
	ss := s.newSession(capacityWh, appliances)
	steps := make([]Step, 0, len(readings))
	for i, r := range readings {
		if err := ctx.Err(); err != nil {
			return nil, Config{}, err
		}
		steps = append(steps, Step{Step: i + 1, Reading: r, Result: s.track(ctx, ss, r)})
	}
	return steps, s.publish(ss), nil
}

func (s *Service) Configure(capacityWh float64, appliances domain.Appliances) Config {
	return s.publish(s.newSession(capacityWh, appliances))
}

func (s *Service) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.config()
}

// track logs r on ss and asks for a plan. ss belongs to the calling request.
func (s *Service) track(ctx context.Context, ss *session, r domain.Reading) Result {
	now := s.clock.Now()
	ss.log = append(ss.log, domain.LogEntry{Timestamp: now, Reading: r})

	var plan domain.Plan
	_, err := s.ai.GenerateJSON(ctx, prompt.SolarPlan(now, r, ss.capacity, ss.appliances, ss.log), &plan)
	if err != nil {
		s.logger.Info("using rule-based solar plan", zap.Error(err),
			zap.Float64("solar_w", r.SolarProductionW), zap.Float64("battery_pct", r.BatteryPercentage))
		return Result{Plan: domain.RulePlan(r, ss.appliances), Simulated: true}
	}
	plan.Reconcile(r, ss.appliances)
	return Result{Plan: plan}
}

// Timestamp formats t the way solar responses report it.
func Timestamp(t time.Time) string { return t.Format(time.RFC3339) }
