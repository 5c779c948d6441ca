package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/bryanwahyu/ecosense/internal/domain/ai"
)

const (
	maxTokens    = 2048
	defaultModel = "gemini-1.5-flash"
)

type Client struct {
	client *genai.Client
	Model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	return NewClientWithConfig(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

// NewClientWithConfig allows overriding HTTP options (base URL) in tests.
func NewClientWithConfig(ctx context.Context, cfg *genai.ClientConfig, model string) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ai.ErrNotConfigured
	}
	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{client: c, Model: model}, nil
}

func (c *Client) Generate(ctx context.Context, in ai.Request) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(in.Prompt)}
	if in.Image != nil {
		mime := in.Image.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, genai.NewPartFromBytes(in.Image.Data, mime))
	}

	cfg := &genai.GenerateContentConfig{MaxOutputTokens: maxTokens}
	if in.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(in.System, genai.RoleUser)
	}
	if in.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.Model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return "", mapError(err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}

func mapError(err error) error {
	code, msg := 0, ""
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, msg = apiErr.Code, apiErr.Message
	case errors.As(err, &apiErrPtr):
		code, msg = apiErrPtr.Code, apiErrPtr.Message
	}
	if code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ai.ErrQuotaExceeded, msg)
	}
	return fmt.Errorf("gemini generate content: %w", err)
}
