// Package ui is the Bubble Tea terminal dashboard for EcoSense.
package ui

import (
	"github.com/bryanwahyu/ecosense/internal/client/auth"
	"github.com/bryanwahyu/ecosense/internal/client/backend"
)

// SignedIn is sent when a sign-in attempt finishes.
type SignedIn struct {
	User *auth.User
	Err  error
}

// SignedOut is sent when sign-out finishes.
type SignedOut struct {
	Err error
}

// WorkflowChanged is sent when the mounted analysis workflow publishes a
// new snapshot. Mount identifies the widget it belongs to.
type WorkflowChanged struct {
	Mount int
}

// Pinged carries the connectivity found when a widget mounted.
type Pinged struct {
	Mount        int
	Connectivity backend.Connectivity
}

// Submitted is sent when a submission could not start or was dropped.
type Submitted struct {
	Mount int
	Err   error
}
