package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lenskings/sound-service/internal/models"
)

// LocalStore keeps upload records in memory with a JSON file behind it.
// It is the development fallback when no database is configured.
type LocalStore struct {
	path    string
	mu      sync.RWMutex
	records map[string]models.UploadRecord
}

// NewLocalStore loads (or starts) the JSON-backed store at path. An empty
// path keeps the store purely in memory.
func NewLocalStore(path string) (*LocalStore, error) {
	l := &LocalStore{
		path:    path,
		records: make(map[string]models.UploadRecord),
	}
	if path == "" {
		return l, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to read metadata file: %v", err)
	}
	if err := json.Unmarshal(data, &l.records); err != nil {
		return nil, fmt.Errorf("failed to parse metadata file: %v", err)
	}
	return l, nil
}

// saveToFile writes the current records to disk. Callers hold the lock.
func (l *LocalStore) saveToFile() error {
	if l.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %v", err)
	}

	// Write to a temporary file first for atomicity
	tempFile := l.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %v", err)
	}
	if err := os.Rename(tempFile, l.path); err != nil {
		return fmt.Errorf("failed to rename metadata file: %v", err)
	}
	return nil
}

func (l *LocalStore) CreatePending(_ context.Context, rec *models.UploadRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Status = models.StatusPending
	rec.ScanStatus = models.ScanPending
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	l.records[rec.ID] = *rec
	if err := l.saveToFile(); err != nil {
		delete(l.records, rec.ID)
		return fmt.Errorf("failed to persist metadata: %v", err)
	}
	return nil
}

func (l *LocalStore) Confirm(_ context.Context, id, downloadURL string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, exists := l.records[id]
	if !exists || prev.Status != models.StatusPending {
		return fmt.Errorf("no pending record with id %s", id)
	}
	rec := prev
	rec.Status = models.StatusConfirmed
	rec.DownloadURL = downloadURL
	l.records[id] = rec
	if err := l.saveToFile(); err != nil {
		l.records[id] = prev
		return err
	}
	return nil
}

func (l *LocalStore) Get(_ context.Context, id string) (models.UploadRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, exists := l.records[id]
	return rec, exists
}

func (l *LocalStore) ListCategory(_ context.Context, category models.Category, search string) ([]models.UploadRecord, error) {
	term := strings.ToLower(search)
	return l.collect(func(rec models.UploadRecord) bool {
		if rec.Status != models.StatusConfirmed || rec.Category != category {
			return false
		}
		if term == "" {
			return true
		}
		return strings.Contains(strings.ToLower(rec.Title), term) ||
			strings.Contains(strings.ToLower(rec.UserEmail), term)
	}), nil
}

func (l *LocalStore) Recent(_ context.Context, limit int) ([]models.UploadRecord, error) {
	records := l.collect(func(rec models.UploadRecord) bool {
		return rec.Status == models.StatusConfirmed
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (l *LocalStore) ListByUser(_ context.Context, userID string) ([]models.UploadRecord, error) {
	return l.collect(func(rec models.UploadRecord) bool {
		return rec.Status == models.StatusConfirmed && rec.UserID == userID
	}), nil
}

// collect returns matching records sorted newest first.
func (l *LocalStore) collect(match func(models.UploadRecord) bool) []models.UploadRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var records []models.UploadRecord
	for _, rec := range l.records {
		if match(rec) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records
}

func (l *LocalStore) CategoryCounts(_ context.Context) ([]models.CategoryStats, error) {
	l.mu.RLock()
	counts := make(map[models.Category]int64)
	for _, rec := range l.records {
		if rec.Status == models.StatusConfirmed {
			counts[rec.Category]++
		}
	}
	l.mu.RUnlock()

	stats := make([]models.CategoryStats, 0, len(models.Categories()))
	for _, c := range models.Categories() {
		stats = append(stats, models.CategoryStats{Category: c, Count: counts[c]})
	}
	return stats, nil
}

func (l *LocalStore) UpdateScanStatus(_ context.Context, id, status string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, exists := l.records[id]
	if !exists {
		return fmt.Errorf("no record with id %s", id)
	}
	rec.ScanStatus = status
	rec.ScannedAt = time.Now().UTC()
	l.records[id] = rec
	return l.saveToFile()
}

func (l *LocalStore) DeleteAllForUser(_ context.Context, userID string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var paths []string
	for id, rec := range l.records {
		if rec.UserID == userID {
			paths = append(paths, rec.StoragePath)
			delete(l.records, id)
		}
	}
	return paths, l.saveToFile()
}
