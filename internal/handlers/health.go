package handlers

import (
	"net/http"
	"time"

	applog "mykitchen/internal/log"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// Health is a simple readiness handler suitable for infrastructure probes.
func Health(c *gin.Context) {
	applog.Debug(c.Request.Context(), "health check requested", "method", c.Request.Method)
	c.JSON(http.StatusOK, healthResponse{
		Status: "ok",
		Time:   time.Now().UTC(),
	})
}
