package storage

import (
	"context"

	"github.com/lenskings/sound-service/internal/models"
)

// Store is the contract every catalog storage implementation satisfies.
// Catalog rows are create-only: after Confirm, only the scan fields are
// ever updated, and deletion happens solely through user cleanup.
type Store interface {
	// CreatePending inserts a new record in pending state and assigns its ID.
	CreatePending(ctx context.Context, rec *models.UploadRecord) error
	// Confirm marks a pending record confirmed and sets its download URL.
	Confirm(ctx context.Context, id, downloadURL string) error

	Get(ctx context.Context, id string) (models.UploadRecord, bool)
	// ListCategory returns confirmed records in a category, newest first,
	// optionally narrowed by a case-insensitive substring match over title
	// or uploader email. An empty search term returns the full set.
	ListCategory(ctx context.Context, category models.Category, search string) ([]models.UploadRecord, error)
	Recent(ctx context.Context, limit int) ([]models.UploadRecord, error)
	ListByUser(ctx context.Context, userID string) ([]models.UploadRecord, error)
	CategoryCounts(ctx context.Context) ([]models.CategoryStats, error)

	UpdateScanStatus(ctx context.Context, id, status string) error
	// DeleteAllForUser removes every record owned by a user and returns the
	// storage paths of the blobs that backed them.
	DeleteAllForUser(ctx context.Context, userID string) ([]string, error)
}

var currentStore Store

// Initialize installs the process-wide store.
func Initialize(s Store) {
	currentStore = s
}

// GetStore returns the installed store, or nil before Initialize.
func GetStore() Store {
	return currentStore
}
