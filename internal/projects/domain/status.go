package domain

import "fmt"

// Status is the lifecycle state of a project.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusQueued Status = "queued" // reserved for a real render queue
	StatusReady  Status = "ready"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusQueued, StatusReady:
		return true
	}
	return false
}

// CanTransitionTo reports whether next follows s in the lifecycle graph
// draft -> queued -> ready. Skipping queued is allowed and ready may be
// re-entered by a repeated render.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusQueued || next == StatusReady
	case StatusQueued:
		return next == StatusReady
	case StatusReady:
		return next == StatusReady
	}
	return false
}

// ParseStatus converts raw input into a known status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
	}
	return s, nil
}
