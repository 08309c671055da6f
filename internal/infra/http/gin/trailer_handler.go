package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hitchup/internal/app/dto"
	trailersapp "hitchup/internal/app/handlers/trailers"
	"hitchup/internal/app/queries"
	domainuser "hitchup/internal/domain/user"
)

type TrailerHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// List returns the authenticated owner's trailers.
func (h TrailerHandler) List(c *gin.Context) {
	p, ok := requireRole(c, string(domainuser.RoleOwner))
	if !ok {
		return
	}
	query := trailersapp.ListOwnerTrailersQuery{OwnerID: p.ID}
	result, err := queries.Ask[trailersapp.ListOwnerTrailersQuery, dto.TrailerCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("trailer listing failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ TrailerHTTP = TrailerHandler{}
