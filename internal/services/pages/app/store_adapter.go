// Package app wires the pages service persistence into its domain boundary.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/signalpost/internal/services/pages/domain"
	"github.com/louisbranch/signalpost/internal/services/pages/storage"
)

// StoreAdapter exposes a storage.PageStore through the domain.Store
// boundary, translating record shapes and error sentinels.
type StoreAdapter struct {
	store storage.PageStore
}

// NewStoreAdapter wraps a page store for domain use.
func NewStoreAdapter(store storage.PageStore) *StoreAdapter {
	return &StoreAdapter{store: store}
}

// GetPageByID loads one page.
func (a *StoreAdapter) GetPageByID(ctx context.Context, pageID string) (domain.Page, error) {
	if a == nil || a.store == nil {
		return domain.Page{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.GetPageByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Page{}, domain.ErrNotFound
		}
		return domain.Page{}, err
	}
	return domain.Page{
		ID:        record.ID,
		Title:     record.Title,
		Content:   record.Content,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

// PutPage stores one page.
func (a *StoreAdapter) PutPage(ctx context.Context, page domain.Page) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return a.store.PutPage(ctx, storage.PageRecord{
		ID:        page.ID,
		Title:     page.Title,
		Content:   page.Content,
		UpdatedAt: page.UpdatedAt,
	})
}

// SetPageContent rewrites one page's content.
func (a *StoreAdapter) SetPageContent(ctx context.Context, pageID string, content string, updatedAt time.Time) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	err := a.store.SetPageContent(ctx, pageID, content, updatedAt)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}
