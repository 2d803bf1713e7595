package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mykitchen/internal/handlers"
	applog "mykitchen/internal/log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", applog.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", applog.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func newRouter(cfg Config) (*gin.Engine, error) {
	corsCfg := corsConfig(cfg.AllowedOrigins)
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cors configuration: %w", err)
	}

	engine := gin.New()
	engine.Use(applog.Middleware(), gin.Recovery(), cors.New(corsCfg))
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	applog.Debug(context.Background(), "registering http routes")
	engine.GET("/healthz", handlers.Health)
	applog.Debug(context.Background(), "route registered", "path", "/healthz")

	if cfg.API != nil {
		cfg.API.RegisterRoutes(engine.Group("/api"))
		applog.Debug(context.Background(), "route group registered", "path", "/api", "routes", len(engine.Routes())-1)
	}
	return engine, nil
}
