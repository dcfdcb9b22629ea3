package wizard

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 \-()]{5,}$`)
)

const dateLayout = "2006-01-02"

// checkValue validates a non-empty value against the field kind.
// Empty values are a required-ness concern and are checked at advance.
func (w *Wizard) checkValue(f Field, value string) error {
	if value == "" {
		return nil
	}

	switch f.Kind {
	case KindText, KindMultiline:
		return nil
	case KindEmail:
		if !emailRe.MatchString(value) {
			return fmt.Errorf("not a valid email address")
		}
	case KindPhone:
		if !phoneRe.MatchString(value) {
			return fmt.Errorf("not a valid phone number")
		}
	case KindDate:
		if _, err := time.Parse(dateLayout, value); err != nil {
			return fmt.Errorf("not a valid date (expected %s)", dateLayout)
		}
	case KindNumber:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("not a whole number")
		}
		if n < f.Min {
			return fmt.Errorf("must be at least %d", f.Min)
		}
	case KindSelect:
		ok, err := w.source.Has(f.Options, value)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("not one of the %s options", f.Options)
		}
	}
	return nil
}

// validateStep collects every missing or invalid field of the step.
func (w *Wizard) validateStep(step Step) []FieldIssue {
	var issues []FieldIssue
	for _, f := range step.Fields {
		value := w.draft.Fields[f.Name]
		if value == "" {
			if f.Required {
				issues = append(issues, FieldIssue{Field: f.Name, Label: f.Label, Reason: "required"})
			}
			continue
		}
		if err := w.checkValue(f, value); err != nil {
			issues = append(issues, FieldIssue{Field: f.Name, Label: f.Label, Reason: err.Error()})
		}
	}
	return issues
}
