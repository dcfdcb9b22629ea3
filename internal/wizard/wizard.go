package wizard

import (
	"encoding/json"
	"fmt"

	"github.com/CHAND7/ETE-Robotics-App/internal/model"
)

// modelSpecCategory is the catalog category backing the item editor.
const modelSpecCategory = "model_spec"

// OptionSource answers option-set membership and BOM lookups. The
// catalog satisfies it; tests use a fixture.
type OptionSource interface {
	Options(category string) ([]string, error)
	Has(category, value string) (bool, error)
	UnitCost(model string) float64
	Head(model string) string
}

// Wizard drives the linear step sequence of one RFQ draft. Not safe for
// concurrent use; the owning session serializes access.
type Wizard struct {
	steps     []Step
	source    OptionSource
	draft     *model.Draft
	cursor    int
	completed []bool
}

// New creates a wizard positioned at the first step with an empty draft.
func New(steps []Step, source OptionSource) *Wizard {
	return &Wizard{
		steps:     steps,
		source:    source,
		draft:     model.NewDraft(),
		completed: make([]bool, len(steps)),
	}
}

// Steps returns the declared step sequence.
func (w *Wizard) Steps() []Step {
	return w.steps
}

// CurrentStep returns the active step.
func (w *Wizard) CurrentStep() Step {
	return w.steps[w.cursor]
}

// Draft returns a deep copy of the draft; callers cannot mutate wizard
// state through it.
func (w *Wizard) Draft() *model.Draft {
	return w.draft.Clone()
}

// Ready reports whether the draft passed final validation and may be
// composed and dispatched.
func (w *Wizard) Ready() bool {
	return w.draft.Ready
}

// UpdateField writes value into the draft. Only fields declared for the
// current step are writable; a write to a completed step's field clears
// completion for that step and every later one.
func (w *Wizard) UpdateField(name, value string) error {
	step := w.steps[w.cursor]
	f, ok := step.field(name)
	if !ok {
		return &ValidationError{Field: name, Reason: fmt.Sprintf("not part of step %q", step.ID)}
	}
	if err := w.checkValue(f, value); err != nil {
		return &ValidationError{Field: name, Reason: err.Error()}
	}

	w.draft.Fields[name] = value
	w.invalidateFrom(w.cursor)
	return nil
}

// AddItem appends a bill-of-quantity line for a catalog model. Allowed
// only on the step carrying the item editor.
func (w *Wizard) AddItem(modelSpec string, qty int) error {
	step := w.steps[w.cursor]
	if !step.Items {
		return &ValidationError{Field: "items", Reason: fmt.Sprintf("step %q has no item editor", step.ID)}
	}
	ok, err := w.source.Has(modelSpecCategory, modelSpec)
	if err != nil {
		return err
	}
	if !ok {
		return &ValidationError{Field: "items", Reason: fmt.Sprintf("%q is not a catalog model", modelSpec)}
	}
	if qty < 1 {
		return &ValidationError{Field: "items", Reason: "qty must be at least 1"}
	}

	unitCost := w.source.UnitCost(modelSpec)
	w.draft.Items = append(w.draft.Items, model.LineItem{
		SNo:       len(w.draft.Items) + 1,
		ModelSpec: modelSpec,
		Head:      w.source.Head(modelSpec),
		Qty:       qty,
		UnitCost:  unitCost,
		LineCost:  unitCost * float64(qty),
	})
	w.invalidateFrom(w.cursor)
	return nil
}

// RemoveItem deletes the line with the given serial number and
// renumbers the rest.
func (w *Wizard) RemoveItem(sno int) error {
	step := w.steps[w.cursor]
	if !step.Items {
		return &ValidationError{Field: "items", Reason: fmt.Sprintf("step %q has no item editor", step.ID)}
	}

	idx := -1
	for i, it := range w.draft.Items {
		if it.SNo == sno {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &ValidationError{Field: "items", Reason: fmt.Sprintf("no item with s.no %d", sno)}
	}

	w.draft.Items = append(w.draft.Items[:idx], w.draft.Items[idx+1:]...)
	for i := range w.draft.Items {
		w.draft.Items[i].SNo = i + 1
	}
	w.invalidateFrom(w.cursor)
	return nil
}

// Advance validates the current step and moves forward. Validation runs
// fully before any mutation: a failed advance leaves the cursor, the
// completion flags and the draft exactly as they were. Advancing from
// the last step marks the draft ready instead of moving.
func (w *Wizard) Advance() error {
	step := w.steps[w.cursor]
	if issues := w.validateStep(step); len(issues) > 0 {
		return &IncompleteStepError{StepID: step.ID, Issues: issues}
	}

	w.completed[w.cursor] = true
	if w.cursor < len(w.steps)-1 {
		w.cursor++
	} else {
		w.draft.Ready = true
	}
	return nil
}

// GoBack moves to the previous step. Regression is always allowed and
// never validates; completion flags are untouched.
func (w *Wizard) GoBack() error {
	if w.cursor == 0 {
		return ErrAtFirstStep
	}
	w.cursor--
	return nil
}

// Crumb is one breadcrumb entry.
type Crumb struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Current   bool   `json:"current"`
}

// Breadcrumb returns the live step sequence with completion flags.
// Computed from current state on every call; nothing is cached.
func (w *Wizard) Breadcrumb() []Crumb {
	crumbs := make([]Crumb, len(w.steps))
	for i, s := range w.steps {
		crumbs[i] = Crumb{
			ID:        s.ID,
			Title:     s.Title,
			Completed: w.completed[i],
			Current:   i == w.cursor,
		}
	}
	return crumbs
}

// invalidateFrom clears completion for step i and everything after it,
// and drops draft readiness. Later steps may depend on earlier fields,
// so an edit anywhere invalidates the whole tail.
func (w *Wizard) invalidateFrom(i int) {
	for j := i; j < len(w.completed); j++ {
		w.completed[j] = false
	}
	w.draft.Ready = false
}

// persistedState is the serialized wizard snapshot stored per session.
type persistedState struct {
	Cursor    int          `json:"cursor"`
	Completed []bool       `json:"completed"`
	Draft     *model.Draft `json:"draft"`
}

// MarshalState serializes the wizard for session persistence.
func (w *Wizard) MarshalState() ([]byte, error) {
	return json.Marshal(persistedState{
		Cursor:    w.cursor,
		Completed: w.completed,
		Draft:     w.draft,
	})
}

// RestoreState replaces the wizard state with a stored snapshot.
func (w *Wizard) RestoreState(data []byte) error {
	var st persistedState
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("failed to decode wizard state: %w", err)
	}
	if st.Cursor < 0 || st.Cursor >= len(w.steps) {
		return fmt.Errorf("stored cursor %d out of range", st.Cursor)
	}
	if len(st.Completed) != len(w.steps) {
		return fmt.Errorf("stored state covers %d steps, schema has %d", len(st.Completed), len(w.steps))
	}
	if st.Draft == nil || st.Draft.Fields == nil {
		return fmt.Errorf("stored state has no draft")
	}
	if st.Draft.Items == nil {
		st.Draft.Items = []model.LineItem{}
	}

	w.cursor = st.Cursor
	w.completed = st.Completed
	w.draft = st.Draft
	return nil
}
