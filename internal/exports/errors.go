package exports

import (
	"errors"
	"strings"
)

var (
	ErrVideoNotFound = errors.New("video not found")
	ErrVideoNotReady = errors.New("source video is not ready for export")
	ErrJobNotFound   = errors.New("export job not found")
)

// ValidationError carries every reason a create-export request was rejected,
// so the caller can fix all of them at once.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "invalid export request: " + strings.Join(e.Reasons, "; ")
}

func NewValidationError(reasons ...string) *ValidationError {
	return &ValidationError{Reasons: reasons}
}
