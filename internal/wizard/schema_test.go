package wizard_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CHAND7/ETE-Robotics-App/internal/wizard"
)

func TestLoadStepsEmbeddedSchema(t *testing.T) {
	steps, err := wizard.LoadSteps()
	require.NoError(t, err)
	require.Len(t, steps, 3)

	require.Equal(t, "customer", steps[0].ID)
	require.Equal(t, "checklist", steps[1].ID)
	require.Equal(t, "review", steps[2].ID)
	require.True(t, steps[1].Items, "checklist step carries the item editor")
	require.True(t, steps[0].Declares("rfq_reference"))
	require.False(t, steps[0].Declares("proposal_no"))
}

func TestParseStepsRejectsBadSchemas(t *testing.T) {
	cases := map[string]string{
		"no steps":         `steps: []`,
		"missing id":       "steps:\n  - title: X\n    fields: [{name: a, kind: text}]",
		"duplicate id":     "steps:\n  - id: s\n    fields: [{name: a, kind: text}]\n  - id: s\n    fields: [{name: b, kind: text}]",
		"duplicate field":  "steps:\n  - id: s\n    fields: [{name: a, kind: text}, {name: a, kind: text}]",
		"unknown kind":     "steps:\n  - id: s\n    fields: [{name: a, kind: checkbox}]",
		"select no cat":    "steps:\n  - id: s\n    fields: [{name: a, kind: select}]",
		"options non-sel":  "steps:\n  - id: s\n    fields: [{name: a, kind: text, options: foo}]",
		"step sans fields": "steps:\n  - id: s\n    fields: []",
	}
	for name, doc := range cases {
		_, err := wizard.ParseSteps([]byte(doc))
		require.Error(t, err, name)
	}
}
