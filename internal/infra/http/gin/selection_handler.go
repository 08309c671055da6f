package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	availabilityapp "hitchup/internal/app/handlers/availability"
	"hitchup/internal/app/services/authz"
	"hitchup/internal/app/services/editor"
	"hitchup/internal/domain/shared/civil"
	domainuser "hitchup/internal/domain/user"
)

// SelectionHandler exposes the server-side selection sessions. The calendar
// client relays raw pointer events; the session decides what they mean.
type SelectionHandler struct {
	Service *editor.Service
	Logger  *slog.Logger
}

type beginSelectionRequest struct {
	TrailerID string `json:"trailer_id"`
}

func (h SelectionHandler) Begin(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleOwner))
	if !ok {
		return
	}
	var req beginSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TrailerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	state, err := h.Service.Begin(c.Request.Context(), req.TrailerID, p.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

type toggleRequest struct {
	Date string `json:"date"`
}

func (h SelectionHandler) Toggle(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleOwner)); !ok {
		return
	}
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	state, err := h.Service.Toggle(c.Request.Context(), c.Param("id"), req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h SelectionHandler) Pointer(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleOwner)); !ok {
		return
	}
	var ev editor.PointerEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	state, err := h.Service.Pointer(c.Request.Context(), c.Param("id"), ev)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h SelectionHandler) State(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleOwner)); !ok {
		return
	}
	state, err := h.Service.State(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

type commitRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

func (h SelectionHandler) Commit(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleOwner)); !ok {
		return
	}
	var req commitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	result, err := h.Service.Commit(c.Request.Context(), c.Param("id"), req.Action, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h SelectionHandler) Cancel(c *gin.Context) {
	if _, ok := requireRole(c, string(domainuser.RoleOwner)); !ok {
		return
	}
	if err := h.Service.Cancel(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h SelectionHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, editor.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, editor.ErrUnknownPointer),
		errors.Is(err, editor.ErrUnknownAction),
		errors.Is(err, editor.ErrEmptySelection),
		errors.Is(err, civil.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, availabilityapp.ErrActionInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, availabilityapp.ErrDateInPast),
		errors.Is(err, availabilityapp.ErrDateRented),
		errors.Is(err, availabilityapp.ErrDateAlreadyBlocked):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, authz.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("selection operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ SelectionHTTP = SelectionHandler{}
