package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/lenskings/sound-service/internal/models"
)

// Principal is the authenticated uploader, captured at submit time and passed
// in explicitly rather than read from ambient session state.
type Principal struct {
	ID    string
	Email string
}

// BlobStore is the binary object collaborator. Put streams the file's bytes
// under path and reports monotonically increasing byte counts to onProgress.
type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string, onProgress func(transferred, total int64)) error
	RetrievalURL(ctx context.Context, path string) (string, error)
}

// RecordStore is the catalog collaborator. A pending record is written before
// the transfer and confirmed with its download URL only after the transfer
// and URL retrieval both succeed, so a post-transfer failure leaves a
// traceable pending row instead of an invisible orphaned blob.
type RecordStore interface {
	CreatePending(ctx context.Context, rec *models.UploadRecord) error
	Confirm(ctx context.Context, id, downloadURL string) error
}

// State tracks a single submission attempt.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateTransferring
	StateAwaitingURL
	StatePersistingRecord
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateTransferring:
		return "transferring"
	case StateAwaitingURL:
		return "awaiting_url"
	case StatePersistingRecord:
		return "persisting_record"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Validation errors. These are reported before any collaborator is touched.
var (
	ErrNoFile    = errors.New("no file selected")
	ErrNoTitle   = errors.New("title is required")
	ErrNoSession = errors.New("not signed in")
)

// IsValidationError reports whether err is a precondition failure rather
// than a collaborator failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNoFile) || errors.Is(err, ErrNoTitle) || errors.Is(err, ErrNoSession)
}

// Request carries the user-chosen file and form fields for one submission.
type Request struct {
	Title    string
	Category models.Category
	File     io.Reader
	FileName string // original file name, extension preserved
	FileSize int64
	FileType string // media type reported for the file
}

// Workflow turns one file + form submission into a durable, downloadable
// catalog record. It is strictly sequential; each step starts only after
// the previous one completed.
type Workflow struct {
	blobs      BlobStore
	records    RecordStore
	state      State
	progress   int
	onProgress func(pct int)
}

func New(blobs BlobStore, records RecordStore) *Workflow {
	return &Workflow{blobs: blobs, records: records, state: StateIdle}
}

// OnProgress registers a display callback receiving a 0-100 percentage.
func (w *Workflow) OnProgress(fn func(pct int)) {
	w.onProgress = fn
}

func (w *Workflow) State() State { return w.state }

// Progress returns the last reported transfer percentage.
func (w *Workflow) Progress() int { return w.progress }

// Run executes the submission. On failure the workflow ends in StateFailed
// and the error describes which step broke; a fresh Workflow is needed for
// the next attempt.
func (w *Workflow) Run(ctx context.Context, principal Principal, req Request) (models.UploadRecord, error) {
	w.state = StateValidating
	if err := validate(principal, req); err != nil {
		w.state = StateFailed
		return models.UploadRecord{}, err
	}

	fileName := SanitizedFileName(req.Title, req.FileName)
	storagePath := StoragePath(req.Category, principal.ID, fileName)

	fileType := req.FileType
	if fileType == "" {
		fileType = "application/octet-stream"
	}

	rec := models.UploadRecord{
		Title:       strings.TrimSpace(req.Title),
		Category:    req.Category,
		FileName:    fileName,
		FileSize:    req.FileSize,
		FileType:    fileType,
		StoragePath: storagePath,
		UserID:      principal.ID,
		UserEmail:   principal.Email,
	}
	if err := w.records.CreatePending(ctx, &rec); err != nil {
		w.state = StateFailed
		return models.UploadRecord{}, fmt.Errorf("failed to save upload record: %w", err)
	}

	w.state = StateTransferring
	err := w.blobs.Put(ctx, storagePath, req.File, req.FileSize, fileType, w.report)
	if err != nil {
		w.state = StateFailed
		return models.UploadRecord{}, fmt.Errorf("upload failed: %w", err)
	}

	w.state = StateAwaitingURL
	downloadURL, err := w.blobs.RetrievalURL(ctx, storagePath)
	if err != nil {
		// The blob landed but stays unreferenced; the pending record marks it.
		w.state = StateFailed
		return models.UploadRecord{}, fmt.Errorf("failed to get download URL: %w", err)
	}

	w.state = StatePersistingRecord
	if err := w.records.Confirm(ctx, rec.ID, downloadURL); err != nil {
		w.state = StateFailed
		return models.UploadRecord{}, fmt.Errorf("failed to save upload record: %w", err)
	}

	rec.DownloadURL = downloadURL
	rec.Status = models.StatusConfirmed
	w.state = StateSucceeded
	return rec, nil
}

func validate(principal Principal, req Request) error {
	if req.File == nil {
		return ErrNoFile
	}
	if strings.TrimSpace(req.Title) == "" {
		return ErrNoTitle
	}
	if principal.ID == "" {
		return ErrNoSession
	}
	return nil
}

// report converts byte counts into the 0-100 display percentage. The value
// never decreases even if the underlying counts misbehave.
func (w *Workflow) report(transferred, total int64) {
	if total <= 0 {
		return
	}
	pct := int(transferred * 100 / total)
	if pct > 100 {
		pct = 100
	}
	if pct <= w.progress {
		return
	}
	w.progress = pct
	if w.onProgress != nil {
		w.onProgress(pct)
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizedFileName builds the stored file name from the title, collapsing
// whitespace runs to dashes and keeping the original extension.
func SanitizedFileName(title, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := whitespaceRun.ReplaceAllString(strings.TrimSpace(title), "-")
	return base + ext
}

// StoragePath derives the object path for a submission. Two uploads of the
// same title by the same user in the same category collide here; the blob
// store's last write wins.
func StoragePath(category models.Category, userID, fileName string) string {
	return fmt.Sprintf("uploads/%s/%s/%s", category, userID, fileName)
}
