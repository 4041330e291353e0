package handlers

import (
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lenskings/sound-service/internal/models"
	"github.com/lenskings/sound-service/internal/services"
	"github.com/lenskings/sound-service/internal/storage"
	"github.com/lenskings/sound-service/internal/upload"
)

// blobCollaborator resolves the blob store for upload submissions; tests
// swap it, production uses the MinIO singleton.
var blobCollaborator = func() upload.BlobStore {
	if m := services.GetMinioService(); m != nil {
		return m
	}
	return nil
}

// UploadFile runs the upload workflow for one multipart submission:
// title + category + file.
func UploadFile(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	title := c.PostForm("title")

	category, err := models.CanonicalCategory(c.PostForm("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reader io.Reader
	var size int64
	var fileName, fileType string

	fileHeader, err := c.FormFile("file")
	if err == nil && fileHeader != nil {
		if fileHeader.Size > (200 << 20) { // 200 MB
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large: " + fileHeader.Filename})
			return
		}
		f, openErr := fileHeader.Open()
		if openErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file: " + openErr.Error()})
			return
		}
		defer f.Close()

		reader = f
		size = fileHeader.Size
		fileName = fileHeader.Filename
		fileType = fileHeader.Header.Get("Content-Type")
		if fileType == "" {
			fileType = services.GetContentType(strings.ToLower(filepath.Ext(fileName)))
		}
	}

	blobs := blobCollaborator()
	if blobs == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage service not available"})
		return
	}
	store := storage.GetStore()
	if store == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Catalog store not available"})
		return
	}

	wf := upload.New(blobs, store)
	wf.OnProgress(func(pct int) {
		log.Printf("[UPLOAD] %s: %d%%", fileName, pct)
	})

	rec, err := wf.Run(c.Request.Context(), principal, upload.Request{
		Title:    title,
		Category: category,
		File:     reader,
		FileName: fileName,
		FileSize: size,
		FileType: fileType,
	})
	if err != nil {
		if upload.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Let downstream consumers (scanner, audit) know about the new upload.
	event := map[string]interface{}{
		"action":       "created",
		"upload_id":    rec.ID,
		"storage_path": rec.StoragePath,
		"category":     rec.Category,
		"size":         rec.FileSize,
		"user_id":      rec.UserID,
		"uploaded_at":  rec.Timestamp.UTC().Format(time.RFC3339),
	}
	if err := services.PublishEvent("uploads.created", event); err != nil {
		log.Printf("warning: failed to publish uploads.created event: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"file": rec})
}
