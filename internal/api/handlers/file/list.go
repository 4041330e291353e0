package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lenskings/sound-service/internal/models"
	"github.com/lenskings/sound-service/internal/storage"
)

// ListCategories returns the canonical categories with confirmed record
// counts for the home page.
func ListCategories(c *gin.Context) {
	store := storage.GetStore()
	if store == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Catalog store not available"})
		return
	}

	stats, err := store.CategoryCounts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": stats})
}

// ListCategoryFiles is the category view: confirmed records in one category,
// newest first, optionally filtered by a search term matched
// case-insensitively against title and uploader email.
func ListCategoryFiles(c *gin.Context) {
	category, err := models.CanonicalCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	store := storage.GetStore()
	if store == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Catalog store not available"})
		return
	}

	files, err := store.ListCategory(c.Request.Context(), category, c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch files"})
		return
	}
	if files == nil {
		files = []models.UploadRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"files":    files,
		"total":    len(files),
	})
}
