// Package storage defines the persistence boundary for portal pages.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested page record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
)

// PageRecord stores one portal page row.
type PageRecord struct {
	ID        string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PageStore persists portal page state.
type PageStore interface {
	PutPage(ctx context.Context, record PageRecord) error
	GetPageByID(ctx context.Context, pageID string) (PageRecord, error)
	// SetPageContent rewrites one page's content after a module edit.
	SetPageContent(ctx context.Context, pageID string, content string, updatedAt time.Time) error
}
