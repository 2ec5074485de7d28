// Package sqlite provides SQLite-backed page persistence.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/signalpost/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/signalpost/internal/services/pages/storage"
	"github.com/louisbranch/signalpost/internal/services/pages/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for portal pages.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a page SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

// PutPage inserts or replaces one page row.
func (s *Store) PutPage(ctx context.Context, record storage.PageRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("page id is required")
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO pages (id, title, content, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    content = excluded.content,
    updated_at = excluded.updated_at`,
		record.ID, record.Title, record.Content, toMillis(createdAt), toMillis(updatedAt))
	if err != nil {
		return fmt.Errorf("put page: %w", err)
	}
	return nil
}

// GetPageByID loads one page row.
func (s *Store) GetPageByID(ctx context.Context, pageID string) (storage.PageRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.PageRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PageRecord{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, title, content, created_at, updated_at FROM pages WHERE id = ?`, pageID)
	var record storage.PageRecord
	var createdAt, updatedAt int64
	if err := row.Scan(&record.ID, &record.Title, &record.Content, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PageRecord{}, storage.ErrNotFound
		}
		return storage.PageRecord{}, fmt.Errorf("scan page: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// SetPageContent rewrites one page's content.
func (s *Store) SetPageContent(ctx context.Context, pageID string, content string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE pages SET content = ?, updated_at = ? WHERE id = ?`,
		content, toMillis(updatedAt), pageID)
	if err != nil {
		return fmt.Errorf("set page content: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read update count: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
