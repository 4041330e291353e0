package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lenskings/sound-service/internal/services"
)

func HealthCheck(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if m := services.GetMinioService(); m != nil {
		if err := m.CheckConnection(); err != nil {
			status["status"] = "degraded"
			status["minio"] = err.Error()
		}
	}
	c.JSON(http.StatusOK, status)
}
