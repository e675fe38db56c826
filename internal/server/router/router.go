package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mbazira/agrostock/internal/config"
	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/server/auth"
	"github.com/mbazira/agrostock/internal/server/handlers"
)

// Handlers groups the HTTP adapters the router mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Ledger      *handlers.LedgerHandler
	Procurement *handlers.ProcurementHandler
	Sales       *handlers.SalesHandler
	Roster      *handlers.RosterHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(cfg *config.Config, h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/auth/token", h.Auth.IssueToken)

	protected := api.Group("")
	protected.Use(auth.Middleware(cfg.Auth.JWTSecret))

	protected.GET("/stock", h.Ledger.List)
	protected.GET("/stock/report", h.Ledger.Report)
	protected.GET("/stock/alerts", h.Ledger.Alerts)

	protected.POST("/procurements", h.Procurement.Create)
	protected.GET("/procurements", h.Procurement.List)
	protected.PUT("/procurements/:id", h.Procurement.Update)
	protected.DELETE("/procurements/:id", h.Procurement.Delete)

	protected.POST("/sales", h.Sales.Create)
	protected.GET("/sales", h.Sales.List)
	protected.PUT("/sales/:id", h.Sales.Update)
	protected.DELETE("/sales/:id", h.Sales.Delete)

	// Roster mutations are reserved for directors.
	roster := protected.Group("/roster")
	roster.GET("", h.Roster.List)
	roster.POST("", auth.RequireRole(models.RoleDirector), h.Roster.Hire)
	roster.PUT("/:id/assignment", auth.RequireRole(models.RoleDirector), h.Roster.Reassign)
	roster.DELETE("/:id", auth.RequireRole(models.RoleDirector), h.Roster.Remove)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
