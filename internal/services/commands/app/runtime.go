// Package app assembles and runs the commands service: SQLite stores, the
// module processors, the lifecycle manager, and the confirmation HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/signalpost/internal/platform/timeouts"
	"github.com/louisbranch/signalpost/internal/services/commands/api/httpapi"
	"github.com/louisbranch/signalpost/internal/services/commands/domain"
	"github.com/louisbranch/signalpost/internal/services/commands/mailout"
	commandsqlite "github.com/louisbranch/signalpost/internal/services/commands/storage/sqlite"
	pagesapp "github.com/louisbranch/signalpost/internal/services/pages/app"
	pagesdomain "github.com/louisbranch/signalpost/internal/services/pages/domain"
	pagesqlite "github.com/louisbranch/signalpost/internal/services/pages/storage/sqlite"
)

// RuntimeConfig controls commands service startup and lifecycle policy.
type RuntimeConfig struct {
	Addr           string
	CommandsDBPath string
	PagesDBPath    string
	// BaseURL prefixes the confirm and rollback links placed in mail.
	BaseURL   string
	Retention time.Duration
	// SweepInterval schedules the in-process expiry sweep; zero disables it
	// (the maintenance CLI covers operator-driven sweeps).
	SweepInterval time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
}

const (
	defaultAddr       = ":8088"
	defaultCommandsDB = "data/commands.db"
	defaultPagesDB    = "data/pages.db"
)

// Run starts the commands service and blocks until ctx is cancelled or the
// HTTP server fails.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = defaultAddr
	}
	if strings.TrimSpace(cfg.CommandsDBPath) == "" {
		cfg.CommandsDBPath = defaultCommandsDB
	}
	if strings.TrimSpace(cfg.PagesDBPath) == "" {
		cfg.PagesDBPath = defaultPagesDB
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("base url is required")
	}

	for _, dbPath := range []string{cfg.CommandsDBPath, cfg.PagesDBPath} {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create storage dir: %w", err)
			}
		}
	}

	commandStore, err := commandsqlite.Open(cfg.CommandsDBPath)
	if err != nil {
		return fmt.Errorf("open command sqlite store: %w", err)
	}
	defer func() {
		if closeErr := commandStore.Close(); closeErr != nil {
			log.Printf("close command sqlite store: %v", closeErr)
		}
	}()

	pageStore, err := pagesqlite.Open(cfg.PagesDBPath)
	if err != nil {
		return fmt.Errorf("open page sqlite store: %w", err)
	}
	defer func() {
		if closeErr := pageStore.Close(); closeErr != nil {
			log.Printf("close page sqlite store: %v", closeErr)
		}
	}()

	var mailer domain.Mailer
	if strings.TrimSpace(cfg.SMTPHost) != "" {
		smtpMailer, err := mailout.New(mailout.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
		if err != nil {
			return fmt.Errorf("build confirmation mailer: %w", err)
		}
		mailer = smtpMailer
	}

	manager, err := buildManager(commandStore, pagesapp.NewStoreAdapter(pageStore), mailer, cfg)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	httpapi.New(manager, log.Printf).Register(mux)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()
	log.Printf("commands server listening at %s", cfg.Addr)

	if cfg.SweepInterval > 0 {
		go sweepLoop(ctx, manager, cfg.SweepInterval)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown commands server: %w", err)
		}
		<-serveErr
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve commands api: %w", err)
	}
}

func buildManager(commandStore *commandsqlite.Store, pageStore *pagesapp.StoreAdapter, mailer domain.Mailer, cfg RuntimeConfig) (*domain.Manager, error) {
	kinds := pagesdomain.DefaultKinds()
	registry, err := domain.NewRegistry(pagesdomain.ModuleProcessors(pageStore, kinds, nil)...)
	if err != nil {
		return nil, fmt.Errorf("build processor registry: %w", err)
	}
	resolvers := domain.NewResolverRegistry()
	if err := resolvers.RegisterResolver(pagesdomain.RefTypePage, pagesdomain.NewPageResolver(pageStore)); err != nil {
		return nil, fmt.Errorf("register page resolver: %w", err)
	}

	return domain.NewManager(domain.ManagerConfig{
		Store:     newStoreAdapter(commandStore),
		Invoker:   domain.NewInvoker(registry, resolvers),
		Resolvers: resolvers,
		Mailer:    mailer,
		BaseURL:   cfg.BaseURL,
		Retention: cfg.Retention,
		Logf:      log.Printf,
	}), nil
}

func sweepLoop(ctx context.Context, manager *domain.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := manager.Clean(ctx)
			if err != nil {
				// Single attempt per tick; a failed sweep waits for the next one.
				log.Printf("sweep expired commands: %v", err)
				continue
			}
			if swept > 0 {
				log.Printf("swept %d expired commands", swept)
			}
		}
	}
}
