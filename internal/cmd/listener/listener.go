// Package listener parses listener command flags and launches the mail
// ingestion runtime.
package listener

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/louisbranch/signalpost/internal/platform/cmd"
	listenerserver "github.com/louisbranch/signalpost/internal/services/listener/app"
)

// Config holds listener command configuration.
type Config struct {
	Port         int           `env:"SIGNALPOST_LISTENER_PORT" envDefault:"8091"`
	PagesDBPath  string        `env:"SIGNALPOST_PAGES_DB_PATH" envDefault:"data/pages.db"`
	PollInterval time.Duration `env:"SIGNALPOST_LISTENER_POLL_INTERVAL" envDefault:"30s"`
	MailHost     string        `env:"SIGNALPOST_MAIL_HOST"`
	MailPort     int           `env:"SIGNALPOST_MAIL_PORT" envDefault:"995"`
	MailUsername string        `env:"SIGNALPOST_MAIL_USERNAME"`
	MailPassword string        `env:"SIGNALPOST_MAIL_PASSWORD"`
	MailTLS      bool          `env:"SIGNALPOST_MAIL_TLS" envDefault:"true"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The listener health gRPC server port")
	fs.StringVar(&cfg.PagesDBPath, "pages-db-path", cfg.PagesDBPath, "The pages SQLite database path")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Mailbox poll interval")
	fs.StringVar(&cfg.MailHost, "mail-host", cfg.MailHost, "POP3 mailbox host")
	fs.IntVar(&cfg.MailPort, "mail-port", cfg.MailPort, "POP3 mailbox port")
	fs.StringVar(&cfg.MailUsername, "mail-username", cfg.MailUsername, "POP3 mailbox username")
	fs.StringVar(&cfg.MailPassword, "mail-password", cfg.MailPassword, "POP3 mailbox password")
	fs.BoolVar(&cfg.MailTLS, "mail-tls", cfg.MailTLS, "Use TLS for the POP3 connection")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the listener runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceListener, func(context.Context) error {
		return listenerserver.Run(ctx, listenerserver.RuntimeConfig{
			Port:         cfg.Port,
			PagesDBPath:  cfg.PagesDBPath,
			PollInterval: cfg.PollInterval,
			MailHost:     cfg.MailHost,
			MailPort:     cfg.MailPort,
			MailUsername: cfg.MailUsername,
			MailPassword: cfg.MailPassword,
			MailTLS:      cfg.MailTLS,
		})
	})
}
