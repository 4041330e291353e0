package util

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	clamd "github.com/dutchcoders/go-clamd"

	"github.com/lenskings/sound-service/internal/models"
	"github.com/lenskings/sound-service/internal/services"
	"github.com/lenskings/sound-service/internal/storage"
)

// ScanUpload downloads an uploaded object, runs it through ClamAV and
// records the verdict. Infected blobs are deleted; the catalog record stays
// so the uploader can see why the file vanished.
func ScanUpload(uploadID, storagePath, clamAvUrl string) {
	minioService := services.GetMinioService()
	if minioService == nil {
		log.Println("Scan skipped: storage service not available")
		return
	}

	tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("scan-%s", uploadID))
	if err := minioService.DownloadFile(storagePath, tempPath); err != nil {
		log.Println("Failed to download for scanning:", err)
		return
	}
	defer os.Remove(tempPath)

	c := clamd.NewClamd(clamAvUrl)
	response, err := c.ScanFile(tempPath)
	if err != nil {
		log.Println("Scan failed:", err)
		return
	}

	status := models.ScanClean
	for res := range response {
		if res.Status == clamd.RES_FOUND {
			log.Printf("Virus detected in %s: %s", uploadID, res.Description)
			status = models.ScanInfected

			if err := minioService.DeleteFile(storagePath); err != nil {
				log.Println("Failed to delete infected file:", err)
				return
			}
		}
	}

	store := storage.GetStore()
	if store == nil {
		log.Println("Scan verdict dropped: catalog store not available")
		return
	}
	if err := store.UpdateScanStatus(context.Background(), uploadID, status); err != nil {
		log.Println("Failed to update scan status:", err)
	} else {
		log.Printf("Scan finished for %s: %s", uploadID, status)
	}
}
