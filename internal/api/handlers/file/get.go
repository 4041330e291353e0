package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lenskings/sound-service/internal/models"
	"github.com/lenskings/sound-service/internal/storage"
)

func GetFileInfo(c *gin.Context) {
	id := c.Param("id")

	store := storage.GetStore()
	if store == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Catalog store not available"})
		return
	}

	rec, exists := store.Get(c.Request.Context(), id)
	if !exists || rec.Status != models.StatusConfirmed {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"file": rec})
}
