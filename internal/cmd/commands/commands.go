// Package commands parses commands-service flags and launches its runtime.
package commands

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/louisbranch/signalpost/internal/platform/cmd"
	commandsserver "github.com/louisbranch/signalpost/internal/services/commands/app"
)

// Config holds commands service configuration.
type Config struct {
	Addr           string        `env:"SIGNALPOST_COMMANDS_ADDR" envDefault:":8088"`
	CommandsDBPath string        `env:"SIGNALPOST_COMMANDS_DB_PATH" envDefault:"data/commands.db"`
	PagesDBPath    string        `env:"SIGNALPOST_PAGES_DB_PATH" envDefault:"data/pages.db"`
	BaseURL        string        `env:"SIGNALPOST_COMMANDS_BASE_URL"`
	Retention      time.Duration `env:"SIGNALPOST_COMMAND_RETENTION" envDefault:"168h"`
	SweepInterval  time.Duration `env:"SIGNALPOST_COMMAND_SWEEP_INTERVAL" envDefault:"1h"`
	SMTPHost       string        `env:"SIGNALPOST_SMTP_HOST"`
	SMTPPort       int           `env:"SIGNALPOST_SMTP_PORT" envDefault:"587"`
	SMTPUsername   string        `env:"SIGNALPOST_SMTP_USERNAME"`
	SMTPPassword   string        `env:"SIGNALPOST_SMTP_PASSWORD"`
	MailFrom       string        `env:"SIGNALPOST_MAIL_FROM"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The commands HTTP server address")
	fs.StringVar(&cfg.CommandsDBPath, "commands-db-path", cfg.CommandsDBPath, "The commands SQLite database path")
	fs.StringVar(&cfg.PagesDBPath, "pages-db-path", cfg.PagesDBPath, "The pages SQLite database path")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Public base URL for confirm and rollback links")
	fs.DurationVar(&cfg.Retention, "retention", cfg.Retention, "How long commands stay invocable")
	fs.DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "Expired-command sweep interval (0 disables)")
	fs.StringVar(&cfg.SMTPHost, "smtp-host", cfg.SMTPHost, "SMTP host for confirmation mail (empty disables mail-out)")
	fs.IntVar(&cfg.SMTPPort, "smtp-port", cfg.SMTPPort, "SMTP port for confirmation mail")
	fs.StringVar(&cfg.SMTPUsername, "smtp-username", cfg.SMTPUsername, "SMTP username")
	fs.StringVar(&cfg.SMTPPassword, "smtp-password", cfg.SMTPPassword, "SMTP password")
	fs.StringVar(&cfg.MailFrom, "mail-from", cfg.MailFrom, "From address on confirmation mail")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the commands service runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCommands, func(context.Context) error {
		return commandsserver.Run(ctx, commandsserver.RuntimeConfig{
			Addr:           cfg.Addr,
			CommandsDBPath: cfg.CommandsDBPath,
			PagesDBPath:    cfg.PagesDBPath,
			BaseURL:        cfg.BaseURL,
			Retention:      cfg.Retention,
			SweepInterval:  cfg.SweepInterval,
			SMTPHost:       cfg.SMTPHost,
			SMTPPort:       cfg.SMTPPort,
			SMTPUsername:   cfg.SMTPUsername,
			SMTPPassword:   cfg.SMTPPassword,
			MailFrom:       cfg.MailFrom,
		})
	})
}
