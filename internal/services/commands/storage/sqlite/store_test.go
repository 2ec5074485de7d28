package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/signalpost/internal/services/commands/storage"
)

func TestCommandRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir() + "/commands.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	now := time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)
	created, err := store.CreateCommand(context.Background(), storage.CommandRecord{
		URI:       "uri-abc",
		Line:      "UPDATE ! page:1 >> module:m1",
		Data:      "<p>payload</p>",
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("create command: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned command id")
	}

	byID, err := store.GetCommandByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	byURI, err := store.GetCommandByURI(context.Background(), "uri-abc")
	if err != nil {
		t.Fatalf("get by uri: %v", err)
	}
	for _, got := range []storage.CommandRecord{byID, byURI} {
		if got.URI != created.URI || got.Line != created.Line || got.Data != created.Data {
			t.Fatalf("record = %+v, want %+v", got, created)
		}
		if !got.CreatedAt.Equal(now) {
			t.Fatalf("created at = %v, want %v", got.CreatedAt, now)
		}
	}
}

func TestCreateCommandValidation(t *testing.T) {
	store, err := Open(t.TempDir() + "/commands.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if _, err := store.CreateCommand(context.Background(), storage.CommandRecord{URI: "u"}); !errors.Is(err, storage.ErrLineRequired) {
		t.Fatalf("err = %v, want ErrLineRequired", err)
	}
	if _, err := store.CreateCommand(context.Background(), storage.CommandRecord{Line: "CLEAN"}); !errors.Is(err, storage.ErrURIRequired) {
		t.Fatalf("err = %v, want ErrURIRequired", err)
	}
}

func TestCreateCommandDuplicateURI(t *testing.T) {
	store, err := Open(t.TempDir() + "/commands.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	record := storage.CommandRecord{URI: "uri-dup", Line: "UPDATE ! module:m1"}
	if _, err := store.CreateCommand(context.Background(), record); err != nil {
		t.Fatalf("create command: %v", err)
	}
	if _, err := store.CreateCommand(context.Background(), record); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestGetCommandMissing(t *testing.T) {
	store, err := Open(t.TempDir() + "/commands.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if _, err := store.GetCommandByID(context.Background(), 99); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get by id err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetCommandByURI(context.Background(), "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get by uri err = %v, want ErrNotFound", err)
	}
}

func TestDeleteCommand(t *testing.T) {
	store, err := Open(t.TempDir() + "/commands.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	created, err := store.CreateCommand(context.Background(), storage.CommandRecord{
		URI:  "uri-del",
		Line: "DELETE ! module:m1",
	})
	if err != nil {
		t.Fatalf("create command: %v", err)
	}
	if err := store.DeleteCommand(context.Background(), created.ID); err != nil {
		t.Fatalf("delete command: %v", err)
	}
	if err := store.DeleteCommand(context.Background(), created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetCommandByURI(context.Background(), "uri-del"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
}

func TestSweepExpiredCommands(t *testing.T) {
	store, err := Open(t.TempDir() + "/commands.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	now := time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)
	records := []storage.CommandRecord{
		{URI: "old-1", Line: "UPDATE ! module:a", CreatedAt: now.Add(-48 * time.Hour)},
		{URI: "old-2", Line: "UPDATE ! module:b", CreatedAt: now.Add(-25 * time.Hour)},
		{URI: "fresh", Line: "UPDATE ! module:c", CreatedAt: now.Add(-time.Hour)},
	}
	for _, record := range records {
		if _, err := store.CreateCommand(context.Background(), record); err != nil {
			t.Fatalf("create %s: %v", record.URI, err)
		}
	}

	cutoff := now.Add(-24 * time.Hour)
	count, err := store.CountExpiredCommands(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("count expired: %v", err)
	}
	if count != 2 {
		t.Fatalf("expired count = %d, want 2", count)
	}

	swept, err := store.SweepExpiredCommands(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("sweep expired: %v", err)
	}
	if swept != 2 {
		t.Fatalf("swept = %d, want 2", swept)
	}
	if _, err := store.GetCommandByURI(context.Background(), "old-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("old-1 err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetCommandByURI(context.Background(), "fresh"); err != nil {
		t.Fatalf("fresh command must survive sweep: %v", err)
	}
}

func TestStoreContextCancelled(t *testing.T) {
	store, err := Open(t.TempDir() + "/commands.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.CreateCommand(ctx, storage.CommandRecord{URI: "u", Line: "CLEAN"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
