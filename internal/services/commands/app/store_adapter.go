package app

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/signalpost/internal/services/commands/domain"
	"github.com/louisbranch/signalpost/internal/services/commands/storage"
)

// storeAdapter exposes a storage.CommandStore through the domain.Store
// boundary, translating record shapes and error sentinels.
type storeAdapter struct {
	store storage.CommandStore
}

func newStoreAdapter(store storage.CommandStore) *storeAdapter {
	return &storeAdapter{store: store}
}

func (a *storeAdapter) CreateCommand(ctx context.Context, command domain.Command) (domain.Command, error) {
	if a == nil || a.store == nil {
		return domain.Command{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.CreateCommand(ctx, toStorageCommand(command))
	if err != nil {
		return domain.Command{}, mapStorageError(err)
	}
	return toDomainCommand(record), nil
}

func (a *storeAdapter) GetCommandByURI(ctx context.Context, uri string) (domain.Command, error) {
	if a == nil || a.store == nil {
		return domain.Command{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.GetCommandByURI(ctx, uri)
	if err != nil {
		return domain.Command{}, mapStorageError(err)
	}
	return toDomainCommand(record), nil
}

func (a *storeAdapter) GetCommandByID(ctx context.Context, commandID int64) (domain.Command, error) {
	if a == nil || a.store == nil {
		return domain.Command{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.GetCommandByID(ctx, commandID)
	if err != nil {
		return domain.Command{}, mapStorageError(err)
	}
	return toDomainCommand(record), nil
}

func (a *storeAdapter) DeleteCommand(ctx context.Context, commandID int64) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.DeleteCommand(ctx, commandID))
}

func (a *storeAdapter) SweepExpiredCommands(ctx context.Context, olderThan time.Time) (int64, error) {
	if a == nil || a.store == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	swept, err := a.store.SweepExpiredCommands(ctx, olderThan)
	if err != nil {
		return 0, mapStorageError(err)
	}
	return swept, nil
}

func toStorageCommand(command domain.Command) storage.CommandRecord {
	return storage.CommandRecord{
		ID:        command.ID,
		URI:       command.URI,
		Line:      command.Line,
		Data:      command.Data,
		CreatedAt: command.CreatedAt,
	}
}

func toDomainCommand(record storage.CommandRecord) domain.Command {
	return domain.Command{
		ID:        record.ID,
		URI:       record.URI,
		Line:      record.Line,
		Data:      record.Data,
		CreatedAt: record.CreatedAt,
	}
}

func mapStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return domain.ErrNotFound
	case errors.Is(err, storage.ErrLineRequired):
		return domain.ErrLineRequired
	default:
		return err
	}
}
