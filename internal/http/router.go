// Package httpapi wires the admin HTTP surface (Gin) to the persistence
// layer and middleware. The surface is small and operator-facing: a health
// probe, Prometheus metrics, and explicit session invalidation. It binds to
// loopback by default and carries no public API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/yukibtc/braiinspool-matrix-bot/internal/config"
	"github.com/yukibtc/braiinspool-matrix-bot/internal/http/handlers"
	"github.com/yukibtc/braiinspool-matrix-bot/internal/http/middleware"
)

// RegisterRoutes attaches middleware and the admin endpoints to the engine.
//
// Middleware order matters:
//  1. RequestID: generate/propagate correlation id
//  2. Logger: structured access logs
//  3. Recovery: capture panics after the logger
//  4. Metrics
func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	r.HandleMethodNotAllowed = true

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())

	r.GET("/healthz", handlers.Healthz(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin")
	{
		admin.DELETE("/sessions/:user_id", handlers.DeleteSession(db))
	}
}

// NewServer builds the admin HTTP server for the configured listen address.
func NewServer(cfg config.Config, db *gorm.DB) *http.Server {
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	RegisterRoutes(r, db)

	return &http.Server{
		Addr:              cfg.AdminAddr,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
