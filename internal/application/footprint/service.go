package footprint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/ecosense/internal/application"
	appai "github.com/bryanwahyu/ecosense/internal/application/ai"
	"github.com/bryanwahyu/ecosense/internal/domain/ai"
	domain "github.com/bryanwahyu/ecosense/internal/domain/footprint"
	"github.com/bryanwahyu/ecosense/internal/infra/ai/prompt"
	"github.com/bryanwahyu/ecosense/internal/logging"
)

// APIVersion is reported in every report's metadata.
const APIVersion = "1.0.0"

// Source names for knowledge produced by the service itself.
const (
	SourceCategoryFallback = "Category Fallback Heuristic"
	ConfidenceLow          = "Low"
)

// NoAIKeyNotice is reported in layer 1 when no AI provider is configured.
const NoAIKeyNotice = "No AI API key configured, downstream layers use heuristics."

// Service runs the five-layer carbon footprint pipeline.
type Service struct {
	AI *appai.Service
	// Knowledge is consulted in order; the first hit wins. The category
	// heuristic answers when every source misses.
	Knowledge []domain.KnowledgeSource
	Samples   domain.SampleStore
	Clock     application.Clock
	Logger    *zap.Logger
}

type AnalyzeCommand struct {
	Image     ai.Image
	Filename  string
	RequestID string
	TestMode  bool
}

func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*domain.Report, error) {
	log := logging.Or(s.Logger).With(zap.String("request_id", cmd.RequestID), zap.String("filename", cmd.Filename))

	input, err := s.processInput(ctx, cmd.Image)
	if err != nil {
		return nil, domain.NewStageError(1, err)
	}
	log.Debug("layer 1 complete", zap.String("type", input.Type()))

	std := s.standardize(ctx, input)
	log.Debug("layer 2 complete", zap.String("canonical_name", std.CanonicalName), zap.String("category", string(std.Category)))

	knowledge, err := s.retrieve(ctx, std)
	if err != nil {
		return nil, domain.NewStageError(3, err)
	}
	log.Debug("layer 3 complete", zap.Float64("co2e_kg", knowledge.CO2eKg), zap.String("source", knowledge.Source))

	estimate := s.estimate(ctx, knowledge)
	log.Info("footprint estimated",
		zap.String("canonical_name", estimate.CanonicalName),
		zap.Float64("total_co2e_kg", estimate.TotalCO2eKg),
		zap.String("confidence", estimate.Confidence))

	return &domain.Report{
		Input:        input,
		Standardized: std,
		Knowledge:    *knowledge,
		Estimate:     estimate,
		Summary:      Summary(estimate),
		Metadata: domain.Metadata{
			Filename:          cmd.Filename,
			AnalysisTimestamp: s.now(),
			APIVersion:        APIVersion,
			TestMode:          cmd.TestMode,
			RequestID:         cmd.RequestID,
		},
	}, nil
}

// AnalyzeSample runs the pipeline on the configured sample image.
func (s *Service) AnalyzeSample(ctx context.Context, requestID string) (*domain.Report, error) {
	if s.Samples == nil {
		return nil, domain.ErrSampleNotFound
	}
	sample, err := s.Samples.Sample(ctx)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, AnalyzeCommand{
		Image:     ai.Image{Data: sample.Data, MIMEType: sample.MIMEType},
		Filename:  sample.Name,
		RequestID: requestID,
		TestMode:  true,
	})
}

// layer 1
func (s *Service) processInput(ctx context.Context, img ai.Image) (domain.InputRecord, error) {
	var record domain.InputRecord
	raw, err := s.AI.GenerateJSON(ctx, prompt.Vision(img), &record)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		return domain.InputRecord{
			"type":        "other",
			"description": "Image received; visual recognition is unavailable.",
			"notice":      NoAIKeyNotice,
			"image_bytes": len(img.Data),
		}, nil
	case errors.Is(err, appai.ErrInvalidJSON):
		return domain.InputRecord{
			"type":        "other",
			"description": "Model answer was not structured.",
			"raw_text":    strings.TrimSpace(raw),
		}, nil
	case err != nil:
		return nil, err
	}
	if record == nil {
		record = domain.InputRecord{"type": "other"}
	}
	return record, nil
}

// layer 2. Never fails: errors become the "Error" category.
func (s *Service) standardize(ctx context.Context, input domain.InputRecord) domain.Standardized {
	var out struct {
		CanonicalName string `json:"canonical_name"`
		Category      string `json:"category"`
	}
	_, err := s.AI.GenerateJSON(ctx, prompt.Standardize(input), &out)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		return heuristicEntity(input)
	case errors.Is(err, appai.ErrInvalidJSON):
		return domain.Standardized{CanonicalName: "Error processing JSON", Category: domain.CategoryError}
	case err != nil:
		return domain.Standardized{CanonicalName: "API call failed", Category: domain.CategoryError}
	}
	if strings.TrimSpace(out.CanonicalName) == "" || out.Category == "" {
		return domain.Standardized{CanonicalName: "Error processing JSON", Category: domain.CategoryError}
	}
	cat, ok := domain.ParseCategory(out.Category)
	if !ok {
		cat = domain.CategoryOther
	}
	return domain.Standardized{CanonicalName: strings.TrimSpace(out.CanonicalName), Category: cat}
}

// heuristicEntity names the entity from well-known layer-1 fields.
func heuristicEntity(input domain.InputRecord) domain.Standardized {
	str := func(k string) string {
		v, _ := input[k].(string)
		return strings.TrimSpace(v)
	}
	switch {
	case str("departure_airport") != "" && str("arrival_airport") != "":
		return domain.Standardized{
			CanonicalName: fmt.Sprintf("Flight %s to %s", str("departure_airport"), str("arrival_airport")),
			Category:      domain.CategoryFlights,
		}
	case str("product_name") != "":
		name := str("product_name")
		if b := str("brand"); b != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(b)) {
			name = b + " " + name
		}
		return domain.Standardized{CanonicalName: name, Category: domain.CategoryOther}
	case str("store_name") != "":
		return domain.Standardized{CanonicalName: "Groceries from " + str("store_name"), Category: domain.CategoryFood}
	}
	return domain.Standardized{CanonicalName: "Unidentified item", Category: domain.CategoryOther}
}

// layer 3
func (s *Service) retrieve(ctx context.Context, e domain.Standardized) (*domain.Knowledge, error) {
	for _, src := range s.Knowledge {
		k, err := src.Lookup(ctx, e)
		if err != nil {
			return nil, err
		}
		if k != nil {
			return k, nil
		}
	}
	return &domain.Knowledge{
		CanonicalName: e.CanonicalName,
		Category:      e.Category,
		CO2eKg:        domain.CategoryFallbackKg(e.Category),
		Source:        SourceCategoryFallback,
		Confidence:    ConfidenceLow,
	}, nil
}

// layer 4. AI trouble degrades to the fallback split.
func (s *Service) estimate(ctx context.Context, k *domain.Knowledge) domain.Estimate {
	var (
		components domain.Components
		notes      string
	)
	switch {
	case k.Components != nil:
		components = *k.Components
		notes = "Component breakdown taken from LCA database."
	default:
		_, err := s.AI.GenerateJSON(ctx, prompt.Breakdown(*k), &components)
		if err != nil || !components.Valid() {
			if err != nil && !errors.Is(err, ai.ErrNotConfigured) {
				logging.Or(s.Logger).Warn("breakdown estimation failed, using fallback split", zap.Error(err))
			}
			components = domain.SplitFallback(k.CO2eKg)
			notes = "Component breakdown used fallback percentages."
		} else {
			notes = "Component breakdown was estimated by AI."
		}
	}

	e := domain.Calculate(components)
	e.CanonicalName = k.CanonicalName
	e.Source = k.Source
	e.Confidence = k.Confidence
	e.Notes = notes
	return e
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}
