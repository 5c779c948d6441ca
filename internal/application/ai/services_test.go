package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ecosense/internal/domain/ai"
)

type stubClient struct {
	out string
	err error
}

func (s stubClient) Generate(context.Context, ai.Request) (string, error) { return s.out, s.err }

func TestGenerateWithoutClient(t *testing.T) {
	svc := NewService(nil, 0, nil)
	assert.False(t, svc.Configured())
	_, err := svc.Generate(t.Context(), ai.Request{})
	assert.ErrorIs(t, err, ai.ErrNotConfigured)
}

func TestGenerateJSON(t *testing.T) {
	svc := NewService(stubClient{out: "```json\n{\"canonical_name\":\"x\"}\n```"}, 0, nil)
	var v struct {
		CanonicalName string `json:"canonical_name"`
	}
	_, err := svc.GenerateJSON(t.Context(), ai.Request{}, &v)
	require.NoError(t, err)
	assert.Equal(t, "x", v.CanonicalName)
}

func TestGenerateJSONErrors(t *testing.T) {
	var v map[string]any
	raw, err := NewService(stubClient{out: "sorry"}, 0, nil).GenerateJSON(t.Context(), ai.Request{}, &v)
	assert.ErrorIs(t, err, ErrInvalidJSON)
	assert.Equal(t, "sorry", raw)

	_, err = NewService(stubClient{out: `{"a":`}, 0, nil).GenerateJSON(t.Context(), ai.Request{}, &v)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	boom := errors.New("boom")
	_, err = NewService(stubClient{err: boom}, 0, nil).GenerateJSON(t.Context(), ai.Request{}, &v)
	assert.ErrorIs(t, err, boom)
}
