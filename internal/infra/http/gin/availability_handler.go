package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"hitchup/internal/app/commands"
	"hitchup/internal/app/dto"
	availabilityapp "hitchup/internal/app/handlers/availability"
	"hitchup/internal/app/queries"
	"hitchup/internal/app/services/authz"
	"hitchup/internal/app/uow"
	domainschedule "hitchup/internal/domain/schedule"
	"hitchup/internal/domain/shared/civil"
	domaintrailers "hitchup/internal/domain/trailers"
	domainuser "hitchup/internal/domain/user"
	"hitchup/internal/infra/export"
)

type AvailabilityHandler struct {
	Queries  queries.Bus
	Commands commands.Bus
	Logger   *slog.Logger
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	query := availabilityapp.GetCalendarQuery{
		TrailerID: c.Param("id"),
		FromMonth: c.Query("from"),
		ToMonth:   c.Query("to"),
	}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Template(c *gin.Context) {
	query := availabilityapp.GetTemplateQuery{TrailerID: c.Param("id")}
	result, err := queries.Ask[availabilityapp.GetTemplateQuery, dto.WeeklyTemplateDTO](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type updateTemplateRequest struct {
	Days map[string][]dto.TemplateSlotDTO `json:"days"`
}

func (h AvailabilityHandler) UpdateTemplate(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleOwner))
	if !ok {
		return
	}
	var req updateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := availabilityapp.UpdateTemplateCommand{
		TrailerID:       c.Param("id"),
		OwnerID:         p.ID,
		Days:            req.Days,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[availabilityapp.UpdateTemplateCommand, *dto.WeeklyTemplateDTO](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type blockRequest struct {
	Dates  []string `json:"dates"`
	Reason string   `json:"reason"`
}

func (h AvailabilityHandler) Block(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleOwner))
	if !ok {
		return
	}
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := availabilityapp.BlockRangeCommand{
		TrailerID:       c.Param("id"),
		OwnerID:         p.ID,
		Dates:           req.Dates,
		Reason:          req.Reason,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[availabilityapp.BlockRangeCommand, *dto.BlockRangeResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type unblockRequest struct {
	Dates []string `json:"dates"`
}

func (h AvailabilityHandler) Unblock(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleOwner))
	if !ok {
		return
	}
	var req unblockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := availabilityapp.UnblockRangeCommand{
		TrailerID:       c.Param("id"),
		OwnerID:         p.ID,
		Dates:           req.Dates,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[availabilityapp.UnblockRangeCommand, *dto.UnblockRangeResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, civil.ErrInvalidDate),
		errors.Is(err, availabilityapp.ErrNoDates),
		errors.Is(err, availabilityapp.ErrMonthOutsideWindow),
		errors.Is(err, domainschedule.ErrSlotOrder),
		errors.Is(err, domainschedule.ErrSlotOverlap),
		errors.Is(err, domainschedule.ErrSlotGranularity),
		errors.Is(err, domainschedule.ErrSlotOutOfDay),
		errors.Is(err, domainschedule.ErrUnknownWeekday):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, availabilityapp.ErrDateInPast),
		errors.Is(err, availabilityapp.ErrDateRented),
		errors.Is(err, availabilityapp.ErrDateAlreadyBlocked):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, availabilityapp.ErrActionInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, authz.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domaintrailers.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("availability operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// CalendarFeedHandler serves the iCal representation of one trailer's
// calendar. It reads the stores directly: feeds are pull-only and need no
// command pipeline.
type CalendarFeedHandler struct {
	Factory uow.UoWFactory
	Logger  *slog.Logger
}

func (h CalendarFeedHandler) Feed(c *gin.Context) {
	ctx := c.Request.Context()
	unit, err := h.Factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	defer unit.Rollback(ctx)

	trailerID := c.Param("id")
	trailer, err := unit.Trailers().ByID(ctx, domaintrailers.TrailerID(trailerID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trailer not found"})
		return
	}

	today := civil.Today(time.Now())
	window := domainschedule.ViewWindow(today)
	blocked, err := unit.BlockedPeriods().ListByTrailer(ctx, trailerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	rentals, err := unit.Rentals().ListByTrailer(ctx, trailerID, window.First.First(), window.Last.Last())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	body := export.Render(export.Calendar{
		TrailerID:    trailerID,
		TrailerTitle: trailer.Title,
		Blocked:      blocked,
		Rentals:      rentals,
		GeneratedAt:  time.Now(),
	})
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", body)
}

var (
	_ AvailabilityHTTP = AvailabilityHandler{}
	_ FeedHTTP         = CalendarFeedHandler{}
)
