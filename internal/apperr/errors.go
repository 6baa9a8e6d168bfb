package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrValidation    = errors.New("validation failed")
	ErrUpstream      = errors.New("upstream failure")
	ErrNotConfigured = errors.New("not configured")
)

// RejectedError reports reasoning-service output that failed validation. Raw
// holds the unmodified reply and Artifact the path it was preserved under, if
// any.
type RejectedError struct {
	Reason   string
	Raw      string
	Artifact string
}

func (e *RejectedError) Error() string {
	if e.Artifact != "" {
		return e.Reason + " (raw reply saved to " + e.Artifact + ")"
	}
	return e.Reason
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *RejectedError) Unwrap() error { return ErrValidation }
