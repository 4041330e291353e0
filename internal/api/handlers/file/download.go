package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lenskings/sound-service/internal/models"
	"github.com/lenskings/sound-service/internal/services"
	"github.com/lenskings/sound-service/internal/storage"
)

// DownloadFile redirects to a fresh presigned URL for the record's blob.
// The URL stored on the record is the catalog copy; presigning again on
// access keeps downloads working after the stored URL expires.
func DownloadFile(c *gin.Context) {
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
	if rec.ScanStatus == models.ScanInfected {
		c.JSON(http.StatusGone, gin.H{"error": "File removed after failing malware scan"})
		return
	}

	minioService := services.GetMinioService()
	if minioService == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage service not available"})
		return
	}

	url, err := minioService.RetrievalURL(c.Request.Context(), rec.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate download URL"})
		return
	}

	c.Redirect(http.StatusFound, url)
}
