package models

import (
	"time"
)

// Upload record status. A record is created as pending before the blob
// transfer starts and confirmed only once the transfer and the retrieval
// URL are in hand. Listings only ever return confirmed records; a pending
// row left behind marks an orphaned (or never-landed) blob.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// Scan status values, assigned by the ClamAV consumer after upload.
const (
	ScanPending  = "pending"
	ScanClean    = "clean"
	ScanInfected = "infected"
)

type UploadRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    Category  `json:"category"`
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size"`
	FileType    string    `json:"file_type"`
	DownloadURL string    `json:"download_url"`
	StoragePath string    `json:"storage_path"`
	UserID      string    `json:"user_id"`
	UserEmail   string    `json:"user_email"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	ScanStatus  string    `json:"scan_status"`
	ScannedAt   time.Time `json:"scanned_at,omitempty"`
}

// CategoryStats is returned by the categories endpoint for the home page
// counters.
type CategoryStats struct {
	Category Category `json:"category"`
	Count    int64    `json:"count"`
}
