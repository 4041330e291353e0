package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lenskings/sound-service/internal/models"
	"github.com/lenskings/sound-service/internal/storage"
)

// RecentFiles backs the "Recently Added" section: the latest confirmed
// uploads across all categories.
func RecentFiles(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "6"))
	if err != nil || limit < 1 {
		limit = 6
	}
	if limit > 50 {
		limit = 50
	}

	store := storage.GetStore()
	if store == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Catalog store not available"})
		return
	}

	files, err := store.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch files"})
		return
	}
	if files == nil {
		files = []models.UploadRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}
