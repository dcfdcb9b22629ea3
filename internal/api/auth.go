package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/CHAND7/ETE-Robotics-App/internal/session"
)

// sessionHeader carries the wizard session token.
const sessionHeader = "X-Session-Token"

const tokenKey = "sessionToken"

// requireSession rejects requests without a known session token.
func (h *Handler) requireSession(c *gin.Context) {
	token := c.GetHeader(sessionHeader)
	if token == "" {
		errorResponse(c, codeUnauthorized, "missing session token")
		c.Abort()
		return
	}

	if _, err := h.sessions.Resume(token); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			errorResponse(c, codeUnauthorized, "session expired, please log in again")
		} else {
			errorResponse(c, codeInternal, err.Error())
		}
		c.Abort()
		return
	}

	c.Set(tokenKey, token)
	c.Next()
}

func sessionToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// Login checks credentials and opens a fresh wizard session.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, codeBadRequest, "invalid request body")
		return
	}

	if err := h.gate.Check(req.Username, req.Password); err != nil {
		log.Warn().Str("user", req.Username).Msg("login rejected")
		errorResponse(c, codeUnauthorized, err.Error())
		return
	}

	s, err := h.sessions.Open(req.Username)
	if err != nil {
		errorResponse(c, codeInternal, err.Error())
		return
	}

	success(c, gin.H{"token": s.Token, "username": s.Username})
}

// Logout discards the session and its stored draft.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.Close(sessionToken(c)); err != nil {
		errorResponse(c, codeInternal, err.Error())
		return
	}
	success(c, nil)
}
