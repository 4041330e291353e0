package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lenskings/sound-service/internal/models"
	"github.com/lenskings/sound-service/internal/storage"
)

// MyUploads is the profile view: the caller's confirmed uploads, newest
// first, with the total count.
func MyUploads(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	store := storage.GetStore()
	if store == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Catalog store not available"})
		return
	}

	files, err := store.ListByUser(c.Request.Context(), principal.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch uploads"})
		return
	}
	if files == nil {
		files = []models.UploadRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
		"total": len(files),
	})
}
