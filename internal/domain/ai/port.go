package ai

import "context"

// Image is raw image bytes sent alongside a prompt.
type Image struct {
	Data     []byte
	MIMEType string
}

// Request is the fixed shape every prompt builder produces.
type Request struct {
	System string
	Prompt string
	Image  *Image
	// JSON asks the provider for a JSON object response when it supports it.
	JSON bool
}

type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}
