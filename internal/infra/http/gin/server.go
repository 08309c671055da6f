package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"hitchup/internal/infra/config"
	"hitchup/internal/infra/obs"
)

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
	Template(c *gin.Context)
	UpdateTemplate(c *gin.Context)
	Block(c *gin.Context)
	Unblock(c *gin.Context)
}

type SelectionHTTP interface {
	Begin(c *gin.Context)
	Toggle(c *gin.Context)
	Pointer(c *gin.Context)
	State(c *gin.Context)
	Commit(c *gin.Context)
	Cancel(c *gin.Context)
}

type RentalHTTP interface {
	Get(c *gin.Context)
	ListByTrailer(c *gin.Context)
}

type TrailerHTTP interface {
	List(c *gin.Context)
}

type FeedHTTP interface {
	Feed(c *gin.Context)
}

type Handlers struct {
	Availability   AvailabilityHTTP
	Selection      SelectionHTTP
	Rental         RentalHTTP
	Trailer        TrailerHTTP
	Feed           FeedHTTP
	Auth           AuthHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Availability != nil {
		api.GET("/trailers/:id/calendar", h.Availability.Calendar)
		api.GET("/trailers/:id/template", h.Availability.Template)
		api.PUT("/trailers/:id/template", h.Availability.UpdateTemplate)
		api.POST("/trailers/:id/calendar/block", h.Availability.Block)
		api.POST("/trailers/:id/calendar/unblock", h.Availability.Unblock)
	}
	if h.Feed != nil {
		api.GET("/trailers/:id/calendar.ics", h.Feed.Feed)
	}
	if h.Selection != nil {
		selGroup := api.Group("/selections")
		selGroup.POST("", h.Selection.Begin)
		selGroup.GET("/:id", h.Selection.State)
		selGroup.POST("/:id/toggle", h.Selection.Toggle)
		selGroup.POST("/:id/pointer", h.Selection.Pointer)
		selGroup.POST("/:id/commit", h.Selection.Commit)
		selGroup.DELETE("/:id", h.Selection.Cancel)
	}
	if h.Rental != nil {
		api.GET("/rentals/:id", h.Rental.Get)
		api.GET("/trailers/:id/rentals", h.Rental.ListByTrailer)
	}
	if h.Trailer != nil {
		api.GET("/host/trailers", h.Trailer.List)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
