package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	queueDepth func() int
}

func NewHealthHandler(queueDepth func() int) *HealthHandler {
	return &HealthHandler{
		queueDepth: queueDepth,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"emailQueueDepth": h.queueDepth(),
	})
}
