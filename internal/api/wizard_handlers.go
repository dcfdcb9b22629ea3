package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CHAND7/ETE-Robotics-App/internal/model"
	"github.com/CHAND7/ETE-Robotics-App/internal/wizard"
)

// sessionView is the full wizard state the UI renders from.
type sessionView struct {
	Step       wizard.Step      `json:"step"`
	Values     map[string]string `json:"values"`
	Items      []model.LineItem `json:"items"`
	Total      float64          `json:"total"`
	Breadcrumb []wizard.Crumb   `json:"breadcrumb"`
	Ready      bool             `json:"ready"`
}

func buildView(w *wizard.Wizard) sessionView {
	d := w.Draft()
	return sessionView{
		Step:       w.CurrentStep(),
		Values:     d.Fields,
		Items:      d.Items,
		Total:      d.Total(),
		Breadcrumb: w.Breadcrumb(),
		Ready:      w.Ready(),
	}
}

// GetSession returns the current wizard state.
func (h *Handler) GetSession(c *gin.Context) {
	var view sessionView
	err := h.sessions.View(sessionToken(c), func(w *wizard.Wizard) {
		view = buildView(w)
	})
	if err != nil {
		wizardError(c, err)
		return
	}
	success(c, view)
}

// GetOptions returns the ordered option list for a category.
func (h *Handler) GetOptions(c *gin.Context) {
	options, err := h.catalog.Options(c.Param("category"))
	if err != nil {
		wizardError(c, err)
		return
	}
	success(c, options)
}

// UpdateField writes one field of the current step.
func (h *Handler) UpdateField(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		errorResponse(c, codeBadRequest, "expected {name, value}")
		return
	}

	h.mutateAndRespond(c, func(w *wizard.Wizard) error {
		return w.UpdateField(req.Name, req.Value)
	})
}

// AddItem appends a bill-of-quantity line.
func (h *Handler) AddItem(c *gin.Context) {
	var req struct {
		Model string `json:"model"`
		Qty   int    `json:"qty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Model == "" {
		errorResponse(c, codeBadRequest, "expected {model, qty}")
		return
	}

	h.mutateAndRespond(c, func(w *wizard.Wizard) error {
		return w.AddItem(req.Model, req.Qty)
	})
}

// RemoveItem deletes a bill-of-quantity line by serial number.
func (h *Handler) RemoveItem(c *gin.Context) {
	sno, err := strconv.Atoi(c.Param("sno"))
	if err != nil {
		errorResponse(c, codeBadRequest, "invalid item number")
		return
	}

	h.mutateAndRespond(c, func(w *wizard.Wizard) error {
		return w.RemoveItem(sno)
	})
}

// Advance validates the current step and moves forward.
func (h *Handler) Advance(c *gin.Context) {
	h.mutateAndRespond(c, func(w *wizard.Wizard) error {
		return w.Advance()
	})
}

// GoBack moves to the previous step.
func (h *Handler) GoBack(c *gin.Context) {
	h.mutateAndRespond(c, func(w *wizard.Wizard) error {
		return w.GoBack()
	})
}

// mutateAndRespond applies a wizard mutation and answers with the fresh
// state so the UI never renders from stale data.
func (h *Handler) mutateAndRespond(c *gin.Context, fn func(*wizard.Wizard) error) {
	token := sessionToken(c)
	if err := h.sessions.Mutate(token, fn); err != nil {
		wizardError(c, err)
		return
	}

	var view sessionView
	if err := h.sessions.View(token, func(w *wizard.Wizard) {
		view = buildView(w)
	}); err != nil {
		wizardError(c, err)
		return
	}
	success(c, view)
}
