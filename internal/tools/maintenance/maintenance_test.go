package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/signalpost/internal/services/commands/storage"
	"github.com/louisbranch/signalpost/internal/services/commands/storage/sqlite"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("maintenance", flag.ContinueOnError)
	t.Setenv("SIGNALPOST_COMMANDS_DB_PATH", "/var/lib/signalpost/commands.db")

	cfg, err := ParseConfig(fs, []string{"-retention", "24h", "-dry-run", "-json"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "/var/lib/signalpost/commands.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.Retention != 24*time.Hour {
		t.Fatalf("retention = %v, want 24h", cfg.Retention)
	}
	if !cfg.DryRun || !cfg.JSONOutput {
		t.Fatalf("dry run = %v, json = %v, want both true", cfg.DryRun, cfg.JSONOutput)
	}
	if cfg.Timeout != 10*time.Minute {
		t.Fatalf("timeout = %v, want 10m", cfg.Timeout)
	}
}

func seedCommands(t *testing.T, path string, ages ...time.Duration) {
	t.Helper()
	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	now := time.Now().UTC()
	for i, age := range ages {
		_, err := store.CreateCommand(context.Background(), storage.CommandRecord{
			URI:       "uri-" + string(rune('a'+i)),
			Line:      "UPDATE ! module:m1",
			CreatedAt: now.Add(-age),
		})
		if err != nil {
			t.Fatalf("seed command %d: %v", i, err)
		}
	}
}

func TestRunSweepsExpiredCommands(t *testing.T) {
	path := t.TempDir() + "/commands.db"
	seedCommands(t, path, 48*time.Hour, 30*time.Hour, time.Hour)

	var stdout, stderr bytes.Buffer
	cfg := Config{DBPath: path, Retention: 24 * time.Hour}
	if err := Run(context.Background(), cfg, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "swept 2 commands") {
		t.Fatalf("stdout = %q", stdout.String())
	}

	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()
	if _, err := store.GetCommandByURI(context.Background(), "uri-c"); err != nil {
		t.Fatalf("fresh command must survive sweep: %v", err)
	}
}

func TestRunDryRunCountsWithoutDeleting(t *testing.T) {
	path := t.TempDir() + "/commands.db"
	seedCommands(t, path, 48*time.Hour)

	var stdout, stderr bytes.Buffer
	cfg := Config{DBPath: path, Retention: 24 * time.Hour, DryRun: true, JSONOutput: true}
	if err := Run(context.Background(), cfg, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	var report struct {
		Count  int64 `json:"count"`
		DryRun bool  `json:"dry_run"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Count != 1 || !report.DryRun {
		t.Fatalf("report = %+v", report)
	}

	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()
	if _, err := store.GetCommandByURI(context.Background(), "uri-a"); err != nil {
		t.Fatalf("dry run must not delete: %v", err)
	}
}

func TestRunRejectsNonPositiveRetention(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := Run(context.Background(), Config{DBPath: "x.db"}, &stdout, &stderr); err == nil {
		t.Fatal("expected retention validation error")
	}
}
