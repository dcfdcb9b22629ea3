package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAtFirstStep reports a GoBack with no previous step.
var ErrAtFirstStep = errors.New("already at the first step")

// ValidationError reports a rejected field write: the field is not part
// of the current step, or the value fails its kind check.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// FieldIssue is one missing or invalid field blocking an advance.
type FieldIssue struct {
	Field  string `json:"field"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// IncompleteStepError reports a blocked advance. It lists every field
// that is missing or invalid; the wizard state is unchanged.
type IncompleteStepError struct {
	StepID string
	Issues []FieldIssue
}

func (e *IncompleteStepError) Error() string {
	names := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		names[i] = issue.Field
	}
	return fmt.Sprintf("step %q incomplete: %s", e.StepID, strings.Join(names, ", "))
}
