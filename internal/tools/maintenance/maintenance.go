// Package maintenance provides the expired-command sweep CLI.
package maintenance

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/louisbranch/signalpost/internal/services/commands/storage/sqlite"
)

// Config holds maintenance command configuration.
type Config struct {
	DBPath     string        `env:"SIGNALPOST_COMMANDS_DB_PATH" envDefault:"data/commands.db"`
	Retention  time.Duration `env:"SIGNALPOST_COMMAND_RETENTION" envDefault:"168h"`
	Timeout    time.Duration `env:"SIGNALPOST_MAINTENANCE_TIMEOUT" envDefault:"10m"`
	DryRun     bool
	JSONOutput bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to commands sqlite database")
	fs.DurationVar(&cfg.Retention, "retention", cfg.Retention, "retention window; commands older than this are swept")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "count sweepable commands without deleting")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output a JSON report")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type sweepReport struct {
	Cutoff time.Time `json:"cutoff"`
	Count  int64     `json:"count"`
	DryRun bool      `json:"dry_run"`
}

// Run executes one sweep (or dry-run count) against the command store.
func Run(ctx context.Context, cfg Config, stdout io.Writer, stderr io.Writer) error {
	if cfg.Retention <= 0 {
		return fmt.Errorf("retention must be positive")
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open command sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			fmt.Fprintf(stderr, "close command sqlite store: %v\n", closeErr)
		}
	}()

	cutoff := time.Now().UTC().Add(-cfg.Retention)
	report := sweepReport{Cutoff: cutoff, DryRun: cfg.DryRun}
	if cfg.DryRun {
		report.Count, err = store.CountExpiredCommands(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("count expired commands: %w", err)
		}
	} else {
		report.Count, err = store.SweepExpiredCommands(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("sweep expired commands: %w", err)
		}
	}

	if cfg.JSONOutput {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}
	verb := "swept"
	if cfg.DryRun {
		verb = "would sweep"
	}
	fmt.Fprintf(stdout, "%s %d commands created before %s\n", verb, report.Count, cutoff.Format(time.RFC3339))
	return nil
}
