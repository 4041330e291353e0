package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	sqltrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/database/sql"

	"github.com/lenskings/sound-service/internal/models"
)

// PostgresStore persists upload records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// InitializePostgres connects to PostgreSQL, ensures the schema and installs
// the store as the process-wide implementation.
func InitializePostgres(connectionString string) (*PostgresStore, error) {
	ps := &PostgresStore{}
	if err := ps.Connect(connectionString); err != nil {
		return nil, err
	}
	Initialize(ps)
	return ps, nil
}

// Connect establishes the connection through the traced database/sql driver.
func (p *PostgresStore) Connect(connectionString string) error {
	sqltrace.Register("postgres", &pq.Driver{}, sqltrace.WithServiceName("sound-service-db"))
	db, err := sqltrace.Open("postgres", connectionString)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	p.db = db

	if err := p.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %v", err)
	}

	log.Println("Connected to PostgreSQL successfully")
	return nil
}

func (p *PostgresStore) createTables() error {
	query := `
    CREATE TABLE IF NOT EXISTS uploads (
        id UUID PRIMARY KEY,
        title VARCHAR(255) NOT NULL,
        category VARCHAR(50) NOT NULL,
        file_name VARCHAR(255) NOT NULL,
        file_size BIGINT NOT NULL,
        file_type VARCHAR(100) NOT NULL,
        download_url VARCHAR(2048) DEFAULT '',
        storage_path VARCHAR(500) NOT NULL,
        user_id VARCHAR(255) NOT NULL,
        user_email VARCHAR(255) NOT NULL,
        uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        status VARCHAR(20) NOT NULL DEFAULT 'pending',
        scan_status VARCHAR(50) NOT NULL DEFAULT 'pending',
        scanned_at TIMESTAMPTZ
    );
    `
	if _, err := p.db.Exec(query); err != nil {
		return err
	}

	indexQuery := `
    CREATE INDEX IF NOT EXISTS idx_uploads_category_uploaded_at ON uploads(category, uploaded_at DESC);
    CREATE INDEX IF NOT EXISTS idx_uploads_user_id ON uploads(user_id);
    CREATE INDEX IF NOT EXISTS idx_uploads_status ON uploads(status);
    `
	_, err := p.db.Exec(indexQuery)
	return err
}

func (p *PostgresStore) CreatePending(ctx context.Context, rec *models.UploadRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Status = models.StatusPending
	rec.ScanStatus = models.ScanPending
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	query := `
    INSERT INTO uploads (id, title, category, file_name, file_size, file_type, download_url, storage_path, user_id, user_email, uploaded_at, status, scan_status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	_, err := p.db.ExecContext(ctx, query,
		rec.ID,
		rec.Title,
		rec.Category.String(),
		rec.FileName,
		rec.FileSize,
		rec.FileType,
		rec.DownloadURL,
		rec.StoragePath,
		rec.UserID,
		rec.UserEmail,
		rec.Timestamp,
		rec.Status,
		rec.ScanStatus,
	)
	return err
}

func (p *PostgresStore) Confirm(ctx context.Context, id, downloadURL string) error {
	query := `
    UPDATE uploads SET status = $1, download_url = $2
    WHERE id = $3 AND status = $4
    `
	res, err := p.db.ExecContext(ctx, query, models.StatusConfirmed, downloadURL, id, models.StatusPending)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("no pending record with id %s", id)
	}
	return nil
}

const recordColumns = `id, title, category, file_name, file_size, file_type, download_url, storage_path, user_id, user_email, uploaded_at, status, scan_status, scanned_at`

func scanRecord(row interface{ Scan(...interface{}) error }) (models.UploadRecord, error) {
	var rec models.UploadRecord
	var category string
	var scannedAt sql.NullTime
	err := row.Scan(
		&rec.ID,
		&rec.Title,
		&category,
		&rec.FileName,
		&rec.FileSize,
		&rec.FileType,
		&rec.DownloadURL,
		&rec.StoragePath,
		&rec.UserID,
		&rec.UserEmail,
		&rec.Timestamp,
		&rec.Status,
		&rec.ScanStatus,
		&scannedAt,
	)
	if err != nil {
		return models.UploadRecord{}, err
	}
	rec.Category = models.Category(category)
	if scannedAt.Valid {
		rec.ScannedAt = scannedAt.Time
	}
	return rec, nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (models.UploadRecord, bool) {
	query := `SELECT ` + recordColumns + ` FROM uploads WHERE id = $1`
	rec, err := scanRecord(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[DB] Error getting upload record: %v", err)
		}
		return models.UploadRecord{}, false
	}
	return rec, true
}

func (p *PostgresStore) ListCategory(ctx context.Context, category models.Category, search string) ([]models.UploadRecord, error) {
	query := `
    SELECT ` + recordColumns + `
    FROM uploads
    WHERE category = $1 AND status = $2
      AND (title ILIKE $3 OR user_email ILIKE $3)
    ORDER BY uploaded_at DESC
    `
	pattern := "%" + escapeLike(search) + "%"
	return p.queryRecords(ctx, query, category.String(), models.StatusConfirmed, pattern)
}

// escapeLike escapes the ILIKE metacharacters so a search term matches as a
// literal substring, the same semantics the local store implements.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func (p *PostgresStore) Recent(ctx context.Context, limit int) ([]models.UploadRecord, error) {
	query := `
    SELECT ` + recordColumns + `
    FROM uploads WHERE status = $1
    ORDER BY uploaded_at DESC LIMIT $2
    `
	return p.queryRecords(ctx, query, models.StatusConfirmed, limit)
}

func (p *PostgresStore) ListByUser(ctx context.Context, userID string) ([]models.UploadRecord, error) {
	query := `
    SELECT ` + recordColumns + `
    FROM uploads WHERE user_id = $1 AND status = $2
    ORDER BY uploaded_at DESC
    `
	return p.queryRecords(ctx, query, userID, models.StatusConfirmed)
}

func (p *PostgresStore) queryRecords(ctx context.Context, query string, args ...interface{}) ([]models.UploadRecord, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		if cerr := rows.Close(); cerr != nil {
			log.Printf("[DB] Error closing rows: %v", cerr)
		}
	}(rows)

	var records []models.UploadRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			log.Printf("[DB] Error scanning row: %v", err)
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (p *PostgresStore) CategoryCounts(ctx context.Context) ([]models.CategoryStats, error) {
	query := `
    SELECT category, COUNT(*) FROM uploads
    WHERE status = $1 GROUP BY category
    `
	rows, err := p.db.QueryContext(ctx, query, models.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.Category]int64)
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[models.Category(category)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats := make([]models.CategoryStats, 0, len(models.Categories()))
	for _, c := range models.Categories() {
		stats = append(stats, models.CategoryStats{Category: c, Count: counts[c]})
	}
	return stats, nil
}

func (p *PostgresStore) UpdateScanStatus(ctx context.Context, id, status string) error {
	query := `
    UPDATE uploads SET scan_status = $1, scanned_at = NOW() WHERE id = $2
    `
	_, err := p.db.ExecContext(ctx, query, status, id)
	return err
}

func (p *PostgresStore) DeleteAllForUser(ctx context.Context, userID string) ([]string, error) {
	query := `DELETE FROM uploads WHERE user_id = $1 RETURNING storage_path`
	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}
