package workflow

import (
	"context"
	"time"

	"github.com/bryanwahyu/ecosense/internal/client/backend"
	"github.com/bryanwahyu/ecosense/internal/client/fallback"
	"github.com/bryanwahyu/ecosense/internal/client/normalize"
	"github.com/bryanwahyu/ecosense/internal/client/progress"
)

type (
	Carbon = Workflow[backend.ImageInput, normalize.CarbonResult]
	Solar  = Workflow[backend.SolarInput, normalize.SolarResult]
)

// CarbonAnalyzer uploads an image and normalizes the footprint report.
type CarbonAnalyzer struct {
	Client *backend.Client
}

func (a CarbonAnalyzer) Analyze(ctx context.Context, in backend.ImageInput) (normalize.CarbonResult, error) {
	raw, err := a.Client.AnalyzeImage(ctx, in)
	if err != nil {
		return normalize.CarbonResult{}, err
	}
	return normalize.Carbon(raw), nil
}

func (CarbonAnalyzer) Fallback(in backend.ImageInput) normalize.CarbonResult { return fallback.Carbon(in) }

// SolarAnalyzer requests a management plan for one reading.
type SolarAnalyzer struct {
	Client *backend.Client
	// Now stamps demo plans; defaults to time.Now.
	Now func() time.Time
}

func (a SolarAnalyzer) Analyze(ctx context.Context, in backend.SolarInput) (normalize.SolarResult, error) {
	raw, err := a.Client.AnalyzeSolar(ctx, in)
	if err != nil {
		return normalize.SolarResult{}, err
	}
	return normalize.Solar(raw), nil
}

func (a SolarAnalyzer) Fallback(in backend.SolarInput) normalize.SolarResult {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	return fallback.Solar(in, now())
}

// NewCarbon builds the carbon workflow over client, probing it for
// connectivity.
func NewCarbon(client *backend.Client, opts ...Option) *Carbon {
	opts = append([]Option{WithPinger(client)}, opts...)
	return New[backend.ImageInput, normalize.CarbonResult](CarbonAnalyzer{Client: client}, progress.CarbonSteps, opts...)
}

func NewSolar(client *backend.Client, opts ...Option) *Solar {
	opts = append([]Option{WithPinger(client)}, opts...)
	return New[backend.SolarInput, normalize.SolarResult](SolarAnalyzer{Client: client}, progress.SolarSteps, opts...)
}
