package domain

import (
	"context"
	"errors"
)

// PageResolver resolves page references in command lines against the page
// store. A missing page resolves to nil, which invokers treat as NoAction.
type PageResolver struct {
	store Store
}

// NewPageResolver builds a resolver over the page store.
func NewPageResolver(store Store) *PageResolver {
	return &PageResolver{store: store}
}

// Resolve loads the referenced page, or nil when it does not exist.
func (r *PageResolver) Resolve(ctx context.Context, refType string, pageID string) (any, error) {
	if r == nil || r.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if refType != RefTypePage {
		return nil, nil
	}
	page, err := r.store.GetPageByID(ctx, pageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}
