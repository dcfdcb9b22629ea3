package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CHAND7/ETE-Robotics-App/internal/catalog"
	"github.com/CHAND7/ETE-Robotics-App/internal/compose"
	"github.com/CHAND7/ETE-Robotics-App/internal/dispatch"
	"github.com/CHAND7/ETE-Robotics-App/internal/session"
	"github.com/CHAND7/ETE-Robotics-App/internal/store"
	"github.com/CHAND7/ETE-Robotics-App/internal/wizard"
)

// Error codes surfaced in the response envelope.
const (
	codeBadRequest       = 1001
	codeUnauthorized     = 1002
	codeValidation       = 2001
	codeIncompleteStep   = 2002
	codeNavigation       = 2003
	codeCategoryNotFound = 2101
	codeDraftIncomplete  = 2201
	codeTransport        = 2301
	codeInternal         = 5001
)

// Dispatcher sends a composed bundle; satisfied by dispatch.Mailer.
type Dispatcher interface {
	Send(ctx context.Context, b *compose.Bundle, recipient string) (dispatch.Result, error)
}

// Handler wires the wizard, catalog, composer and dispatcher to HTTP.
type Handler struct {
	gate      *session.Gate
	sessions  *session.Manager
	catalog   *catalog.Catalog
	composer  *compose.Composer
	mailer    Dispatcher
	store     *store.Store
	exportDir string
	downloads *downloadStore
}

// NewHandler creates the API handler.
func NewHandler(gate *session.Gate, sessions *session.Manager, cat *catalog.Catalog,
	composer *compose.Composer, mailer Dispatcher, st *store.Store, exportDir string) *Handler {
	return &Handler{
		gate:      gate,
		sessions:  sessions,
		catalog:   cat,
		composer:  composer,
		mailer:    mailer,
		store:     st,
		exportDir: exportDir,
		downloads: newDownloadStore(),
	}
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)
	router.POST("/login", h.Login)

	// Bundle downloads are token-gated on their own.
	router.GET("/download/:token", h.Download)

	authed := router.Group("", h.requireSession)
	{
		authed.POST("/logout", h.Logout)
		authed.GET("/session", h.GetSession)
		authed.GET("/options/:category", h.GetOptions)
		authed.POST("/fields", h.UpdateField)
		authed.POST("/items", h.AddItem)
		authed.DELETE("/items/:sno", h.RemoveItem)
		authed.POST("/advance", h.Advance)
		authed.POST("/back", h.GoBack)
		authed.POST("/submit", h.Submit)
		authed.GET("/submissions", h.ListSubmissions)
	}
}

// Response generic envelope
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

func errorResponseData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// wizardError maps the typed error taxonomy onto envelope codes so the
// UI can render inline messages. Nothing here is swallowed: unknown
// errors surface as internal failures.
func wizardError(c *gin.Context, err error) {
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		errorResponseData(c, codeValidation, verr.Error(), gin.H{
			"field":  verr.Field,
			"reason": verr.Reason,
		})
		return
	}

	var ierr *wizard.IncompleteStepError
	if errors.As(err, &ierr) {
		errorResponseData(c, codeIncompleteStep, ierr.Error(), gin.H{
			"step":   ierr.StepID,
			"issues": ierr.Issues,
		})
		return
	}

	var derr *compose.DraftIncompleteError
	if errors.As(err, &derr) {
		errorResponse(c, codeDraftIncomplete, derr.Error())
		return
	}

	var cerr *catalog.CategoryNotFoundError
	if errors.As(err, &cerr) {
		errorResponse(c, codeCategoryNotFound, cerr.Error())
		return
	}

	if errors.Is(err, wizard.ErrAtFirstStep) {
		errorResponse(c, codeNavigation, err.Error())
		return
	}
	if errors.Is(err, session.ErrNotFound) {
		errorResponse(c, codeUnauthorized, "session expired, please log in again")
		return
	}

	errorResponse(c, codeInternal, err.Error())
}

// GetStatus reports service health and how many drafts are in flight.
func (h *Handler) GetStatus(c *gin.Context) {
	active, err := h.store.CountSessions()
	if err != nil {
		errorResponse(c, codeInternal, err.Error())
		return
	}
	success(c, gin.H{
		"status":          "ok",
		"categories":      h.catalog.Categories(),
		"active_sessions": active,
	})
}
