package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/ecosense/internal/domain/ai"
	"github.com/bryanwahyu/ecosense/internal/logging"
)

// ErrInvalidJSON is returned when a model answer has no decodable JSON object.
var ErrInvalidJSON = errors.New("model response contains no valid JSON object")

type Service struct {
	client  ai.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewService wraps client. A nil client makes every call fail with
// ai.ErrNotConfigured so callers can degrade instead of crashing.
func NewService(client ai.Client, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{client: client, timeout: timeout, logger: logging.Or(logger)}
}

func (s *Service) Configured() bool { return s != nil && s.client != nil }

func (s *Service) Generate(ctx context.Context, req ai.Request) (string, error) {
	if !s.Configured() {
		return "", ai.ErrNotConfigured
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	out, err := s.client.Generate(ctx, req)
	if err != nil {
		s.logger.Warn("ai generate failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return "", err
	}
	s.logger.Debug("ai generate", zap.Duration("duration", time.Since(start)), zap.Int("chars", len(out)))
	return out, nil
}

// GenerateJSON runs req and decodes the first JSON object of the answer into v.
// The raw answer is returned as well for diagnostics.
func (s *Service) GenerateJSON(ctx context.Context, req ai.Request, v any) (string, error) {
	out, err := s.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	obj, ok := ai.ExtractJSON(out)
	if !ok {
		return out, ErrInvalidJSON
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return out, nil
}
