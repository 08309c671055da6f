package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hitchup/internal/app/dto"
	rentalsapp "hitchup/internal/app/handlers/rentals"
	"hitchup/internal/app/queries"
	domainrental "hitchup/internal/domain/rental"
	"hitchup/internal/domain/shared/civil"
)

type RentalHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h RentalHandler) Get(c *gin.Context) {
	query := rentalsapp.GetRentalQuery{RentalID: c.Param("id")}
	result, err := queries.Ask[rentalsapp.GetRentalQuery, dto.RentalDetail](c.Request.Context(), h.Queries, query)
	if err != nil {
		if errors.Is(err, domainrental.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "rental not found"})
			return
		}
		if h.Logger != nil {
			h.Logger.Error("rental lookup failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RentalHandler) ListByTrailer(c *gin.Context) {
	from, err := civil.Parse(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to, err := civil.Parse(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}
	query := rentalsapp.ListTrailerRentalsQuery{TrailerID: c.Param("id"), From: from, To: to}
	result, err := queries.Ask[rentalsapp.ListTrailerRentalsQuery, dto.RentalCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("rental listing failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ RentalHTTP = RentalHandler{}
