package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`, ok: true},
		{name: "fenced", in: "```json\n{\"a\": {\"b\": 2}}\n```", want: `{"a": {"b": 2}}`, ok: true},
		{name: "prose around", in: `Here you go: {"x":"}"} thanks`, want: `{"x":"}"}`, ok: true},
		{name: "escaped quote", in: `{"x":"a\"}"}`, want: `{"x":"a\"}"}`, ok: true},
		{name: "none", in: "no json here", ok: false},
		{name: "unbalanced", in: `{"a":1`, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
