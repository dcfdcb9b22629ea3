// Package model holds the RFQ draft types shared by the wizard,
// composer and store layers.
package model

// Well-known draft field names referenced outside the step schema.
const (
	FieldRFQReference = "rfq_reference"
	FieldCustomerName = "customer_name"
	FieldEmail        = "email"
	FieldDate         = "date"
	FieldRecipient    = "recipient_email"
)

// LineItem is one bill-of-quantity row. SNo is kept contiguous by the
// wizard when rows are added or removed.
type LineItem struct {
	SNo       int     `json:"s_no"`
	ModelSpec string  `json:"model_spec"`
	Head      string  `json:"head"`
	Qty       int     `json:"qty"`
	UnitCost  float64 `json:"unit_cost"`
	LineCost  float64 `json:"line_cost"`
}

// Draft accumulates everything the user enters across the steps.
// Ready is set once the final step has been validated.
type Draft struct {
	Fields map[string]string `json:"fields"`
	Items  []LineItem        `json:"items"`
	Ready  bool              `json:"ready"`
}

// NewDraft returns an empty draft with initialized collections.
func NewDraft() *Draft {
	return &Draft{
		Fields: make(map[string]string),
		Items:  []LineItem{},
	}
}

// Clone returns a deep copy. Callers get snapshots, never the live
// draft, so handler code cannot bypass wizard validation.
func (d *Draft) Clone() *Draft {
	c := &Draft{
		Fields: make(map[string]string, len(d.Fields)),
		Items:  make([]LineItem, len(d.Items)),
		Ready:  d.Ready,
	}
	for k, v := range d.Fields {
		c.Fields[k] = v
	}
	copy(c.Items, d.Items)
	return c
}

// Field returns the value for name, or "" when unset.
func (d *Draft) Field(name string) string {
	return d.Fields[name]
}

// Total sums the line costs of all items.
func (d *Draft) Total() float64 {
	var t float64
	for _, it := range d.Items {
		t += it.LineCost
	}
	return t
}
