package ai

import (
	"errors"
	"fmt"
	"strings"
)

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrEmptySummary is returned when the model answers without any choice.
var ErrEmptySummary = errors.New("model returned an empty summary")

// ModelLoadError is raised when neither the primary nor the fallback model could be loaded.
type ModelLoadError struct {
	Attempts []string
	Errs     []error
}

func (e *ModelLoadError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for i, name := range e.Attempts {
		if i < len(e.Errs) && e.Errs[i] != nil {
			parts = append(parts, fmt.Sprintf("%s: %v", name, e.Errs[i]))
		}
	}
	return "model load failed (" + strings.Join(parts, "; ") + ")"
}

func (e *ModelLoadError) Unwrap() []error { return e.Errs }
