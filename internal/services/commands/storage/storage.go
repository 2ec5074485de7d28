// Package storage defines the persistence boundary for durable commands.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested command record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
	// ErrLineRequired indicates a command record is missing its operation line.
	ErrLineRequired = errors.New("command line is required")
	// ErrURIRequired indicates a command record is missing its URI token.
	ErrURIRequired = errors.New("command uri is required")
)

// CommandRecord stores one durable command row. Rows are write-once: they
// are created, read, and deleted, never updated.
type CommandRecord struct {
	ID        int64
	URI       string
	Line      string
	Data      string
	CreatedAt time.Time
}

// CommandStore persists command lifecycle state.
type CommandStore interface {
	// CreateCommand inserts one command row and returns it with its
	// assigned ID. The URI must be unique across live commands.
	CreateCommand(ctx context.Context, record CommandRecord) (CommandRecord, error)
	// GetCommandByID loads one command row by surrogate key.
	GetCommandByID(ctx context.Context, commandID int64) (CommandRecord, error)
	// GetCommandByURI loads one command row by its URI token. This is the
	// hot lookup path: confirmation links address commands by URI.
	GetCommandByURI(ctx context.Context, uri string) (CommandRecord, error)
	// DeleteCommand removes one command row. A missing row is ErrNotFound.
	DeleteCommand(ctx context.Context, commandID int64) error
	// CountExpiredCommands reports how many rows a sweep would remove.
	CountExpiredCommands(ctx context.Context, olderThan time.Time) (int64, error)
	// SweepExpiredCommands bulk-deletes rows created before olderThan in
	// one statement and returns the number of removed rows.
	SweepExpiredCommands(ctx context.Context, olderThan time.Time) (int64, error)
}
