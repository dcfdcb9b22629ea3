package api

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/CHAND7/ETE-Robotics-App/internal/model"
	"github.com/CHAND7/ETE-Robotics-App/internal/store"
	"github.com/CHAND7/ETE-Robotics-App/internal/wizard"
)

// downloadTTL is how long generated documents stay downloadable.
const downloadTTL = 30 * time.Minute

// Submit composes the bundle for a ready draft, emails it and records
// the submission. The session survives a failed dispatch so the user
// can retry; it is discarded once the send succeeds.
func (h *Handler) Submit(c *gin.Context) {
	var req struct {
		Recipient string `json:"recipient"`
	}
	// Body is optional; the recipient defaults to the draft fields.
	_ = c.ShouldBindJSON(&req)

	token := sessionToken(c)

	var draft *model.Draft
	if err := h.sessions.View(token, func(w *wizard.Wizard) {
		draft = w.Draft()
	}); err != nil {
		wizardError(c, err)
		return
	}

	recipient := req.Recipient
	if recipient == "" {
		recipient = draft.Field(model.FieldRecipient)
	}
	if recipient == "" {
		recipient = draft.Field(model.FieldEmail)
	}
	if recipient == "" {
		errorResponse(c, codeBadRequest, "no recipient email on the draft")
		return
	}

	bundle, err := h.composer.Compose(draft)
	if err != nil {
		wizardError(c, err)
		return
	}

	pdfPath := filepath.Join(h.exportDir, bundle.PDFName)
	deckPath := filepath.Join(h.exportDir, bundle.DeckName)
	if err := os.WriteFile(pdfPath, bundle.PDF, 0644); err != nil {
		errorResponse(c, codeInternal, fmt.Sprintf("failed to write %s: %v", bundle.PDFName, err))
		return
	}
	if err := os.WriteFile(deckPath, bundle.Deck, 0644); err != nil {
		errorResponse(c, codeInternal, fmt.Sprintf("failed to write %s: %v", bundle.DeckName, err))
		return
	}

	result, sendErr := h.mailer.Send(c.Request.Context(), bundle, recipient)

	rec := store.SubmissionRecord{
		RFQRef:     bundle.RFQRef,
		Recipient:  recipient,
		PDFPath:    pdfPath,
		DeckPath:   deckPath,
		Dispatched: sendErr == nil,
	}
	if sendErr != nil {
		rec.DispatchError = sendErr.Error()
	}
	submissionID, recErr := h.store.RecordSubmission(rec)
	if recErr != nil {
		log.Error().Err(recErr).Str("rfq", bundle.RFQRef).Msg("failed to record submission")
	}

	data := gin.H{
		"rfq_ref":       bundle.RFQRef,
		"submission_id": submissionID,
		"result":        result,
		"pdf_token":     h.downloads.put(pdfPath, bundle.PDFName, downloadTTL),
		"deck_token":    h.downloads.put(deckPath, bundle.DeckName, downloadTTL),
	}

	if sendErr != nil {
		errorResponseData(c, codeTransport, sendErr.Error(), data)
		return
	}

	if err := h.sessions.Close(token); err != nil {
		log.Error().Err(err).Msg("failed to close submitted session")
	}
	success(c, data)
}

// Download streams a generated document by token.
func (h *Handler) Download(c *gin.Context) {
	dl, ok := h.downloads.get(c.Param("token"))
	if !ok {
		c.String(404, "download expired or unknown")
		return
	}
	c.FileAttachment(dl.filePath, dl.fileName)
}

// ListSubmissions returns the submission history, newest first.
func (h *Handler) ListSubmissions(c *gin.Context) {
	list, err := h.store.ListSubmissions()
	if err != nil {
		errorResponse(c, codeInternal, err.Error())
		return
	}
	success(c, list)
}
