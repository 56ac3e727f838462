package leads

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidInput is returned when a submission fails validation
	ErrInvalidInput = errors.New("leads: invalid input")
)

// FieldIssue describes one rejected field. Loc is the path to the value,
// for example ["body", "email"] or ["query", "limit"].
type FieldIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError carries every issue found in a request.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, strings.Join(issue.Loc, ".")+": "+issue.Msg)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
