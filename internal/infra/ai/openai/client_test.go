package openai

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ecosense/internal/domain/ai"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"
	return NewClientWithConfig(cfg, "gpt-4o-mini")
}

func TestGenerateSendsImageAsDataURL(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{\"type\":\"other\"}"}}]}`))
	})

	out, err := c.Generate(t.Context(), ai.Request{
		System: "sys",
		Prompt: "describe",
		Image:  &ai.Image{Data: []byte("abc"), MIMEType: "image/jpeg"},
		JSON:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"type":"other"}`, out)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	require.Len(t, got.Messages[1].MultiContent, 2)
	assert.Equal(t, "data:image/jpeg;base64,YWJj", got.Messages[1].MultiContent[1].ImageURL.URL)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, 2048, got.MaxTokens)
}

func TestGenerateMapsRateLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota","type":"insufficient_quota"}}`))
	})

	_, err := c.Generate(t.Context(), ai.Request{Prompt: "hi"})
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
}
