// Package sqlite provides SQLite-backed command persistence.
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
	"github.com/louisbranch/signalpost/internal/services/commands/storage"
	"github.com/louisbranch/signalpost/internal/services/commands/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for command lifecycle state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a command SQLite store at the provided path.
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

// CreateCommand inserts one command row and returns it with its assigned ID.
func (s *Store) CreateCommand(ctx context.Context, record storage.CommandRecord) (storage.CommandRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.CommandRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CommandRecord{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.Line) == "" {
		return storage.CommandRecord{}, storage.ErrLineRequired
	}
	if strings.TrimSpace(record.URI) == "" {
		return storage.CommandRecord{}, storage.ErrURIRequired
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO commands (uri, line, data, created_at)
VALUES (?, ?, ?, ?)`,
		record.URI, record.Line, record.Data, toMillis(createdAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.CommandRecord{}, storage.ErrConflict
		}
		return storage.CommandRecord{}, fmt.Errorf("insert command: %w", err)
	}
	commandID, err := result.LastInsertId()
	if err != nil {
		return storage.CommandRecord{}, fmt.Errorf("read command id: %w", err)
	}
	record.ID = commandID
	record.CreatedAt = createdAt.UTC()
	return record, nil
}

// GetCommandByID loads one command row by surrogate key.
func (s *Store) GetCommandByID(ctx context.Context, commandID int64) (storage.CommandRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.CommandRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CommandRecord{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, uri, line, data, created_at FROM commands WHERE id = ?`, commandID)
	return scanCommand(row)
}

// GetCommandByURI loads one command row by its URI token.
func (s *Store) GetCommandByURI(ctx context.Context, uri string) (storage.CommandRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.CommandRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CommandRecord{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, uri, line, data, created_at FROM commands WHERE uri = ?`, uri)
	return scanCommand(row)
}

// DeleteCommand removes one command row.
func (s *Store) DeleteCommand(ctx context.Context, commandID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM commands WHERE id = ?`, commandID)
	if err != nil {
		return fmt.Errorf("delete command: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read delete count: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CountExpiredCommands reports how many rows a sweep would remove.
func (s *Store) CountExpiredCommands(ctx context.Context, olderThan time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var count int64
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(*) FROM commands WHERE created_at < ?`, toMillis(olderThan))
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count expired commands: %w", err)
	}
	return count, nil
}

// SweepExpiredCommands bulk-deletes rows created before olderThan.
func (s *Store) SweepExpiredCommands(ctx context.Context, olderThan time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM commands WHERE created_at < ?`, toMillis(olderThan))
	if err != nil {
		return 0, fmt.Errorf("sweep expired commands: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read sweep count: %w", err)
	}
	return affected, nil
}

func scanCommand(row *sql.Row) (storage.CommandRecord, error) {
	var record storage.CommandRecord
	var createdAt int64
	err := row.Scan(&record.ID, &record.URI, &record.Line, &record.Data, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CommandRecord{}, storage.ErrNotFound
		}
		return storage.CommandRecord{}, fmt.Errorf("scan command: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func isUniqueConstraintError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
