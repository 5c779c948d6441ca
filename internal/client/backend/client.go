// Package backend talks to the EcoSense analysis API. Every call issues
// exactly one request and never retries.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/ecosense/internal/logging"
)

// ErrUnreachable wraps transport failures reaching the backend.
var ErrUnreachable = errors.New("backend unreachable")

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Message)
}

// Connectivity is the tri-state reachability of the backend.
type Connectivity int

const (
	ConnectivityUnknown Connectivity = iota
	Connected
	Disconnected
)

func (c Connectivity) String() string {
	switch c {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ImageInput is one image to analyze. Sample selects the server's fixed
// sample instead of Data.
type ImageInput struct {
	Filename string
	Data     []byte
	Sample   bool
}

// SolarInput mirrors the /api/solar/analyze body.
type SolarInput struct {
	SolarProductionW  float64            `json:"solar_production"`
	BatteryPercentage float64            `json:"battery_percentage"`
	BatteryCapacityWh float64            `json:"battery_capacity,omitempty"`
	Appliances        map[string]float64 `json:"appliances,omitempty"`
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithTimeout bounds every request. Zero means no timeout. It applies to
// the client given by WithHTTPClient regardless of option order.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.logger = logging.Or(l) } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Ping reports Connected only for a 200 from the liveness endpoint.
func (c *Client) Ping(ctx context.Context) Connectivity {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return Disconnected
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("ping failed", zap.Error(err))
		return Disconnected
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return Disconnected
	}
	return Connected
}

// AnalyzeImage uploads in as multipart "image". A sample input calls
// AnalyzeSample instead.
func (c *Client) AnalyzeImage(ctx context.Context, in ImageInput) (map[string]any, error) {
	if in.Sample {
		return c.AnalyzeSample(ctx)
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", in.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(in.Data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return c.post(ctx, "/api/analyze", mw.FormDataContentType(), &body)
}

func (c *Client) AnalyzeSample(ctx context.Context) (map[string]any, error) {
	return c.post(ctx, "/api/test", "", nil)
}

func (c *Client) AnalyzeSolar(ctx context.Context, in SolarInput) (map[string]any, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	return c.post(ctx, "/api/solar/analyze", "application/json", bytes.NewReader(b))
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("backend unreachable", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: read body: %v", ErrUnreachable, err)
	}
	c.logger.Debug("backend call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	var raw map[string]any
	decodeErr := json.Unmarshal(data, &raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}
	if decodeErr != nil || raw == nil {
		// left to the normalizer's defaults
		return map[string]any{}, nil
	}
	return raw, nil
}

// errorMessage prefers the server's "message", then "error", then the
// status text.
func errorMessage(raw map[string]any, code int) string {
	for _, k := range []string{"message", "error"} {
		if s, ok := raw[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	if t := http.StatusText(code); t != "" {
		return t
	}
	return fmt.Sprintf("status %d", code)
}
