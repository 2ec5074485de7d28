// Package app assembles and runs the mail listener: the POP3 transport, the
// command invoker over the page module processors, and the poll loop.
package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	commands "github.com/louisbranch/signalpost/internal/services/commands/domain"
	listenerdomain "github.com/louisbranch/signalpost/internal/services/listener/domain"
	listenerpop3 "github.com/louisbranch/signalpost/internal/services/listener/pop3"
	pagesapp "github.com/louisbranch/signalpost/internal/services/pages/app"
	pagesdomain "github.com/louisbranch/signalpost/internal/services/pages/domain"
	pagesqlite "github.com/louisbranch/signalpost/internal/services/pages/storage/sqlite"
)

// RuntimeConfig controls listener startup, dependencies, and loop behavior.
type RuntimeConfig struct {
	Port         int
	PagesDBPath  string
	PollInterval time.Duration

	MailHost     string
	MailPort     int
	MailUsername string
	MailPassword string
	MailTLS      bool
}

const (
	defaultListenerPort = 8091
	defaultPagesDB      = "data/pages.db"
	defaultPollInterval = 30 * time.Second
)

// Run starts listener runtime dependencies and the mailbox poll loop.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.MailHost) == "" {
		return fmt.Errorf("mailbox host is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultListenerPort
	}
	if strings.TrimSpace(cfg.PagesDBPath) == "" {
		cfg.PagesDBPath = defaultPagesDB
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	if dir := filepath.Dir(cfg.PagesDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create listener storage dir: %w", err)
		}
	}

	pageStore, err := pagesqlite.Open(cfg.PagesDBPath)
	if err != nil {
		return fmt.Errorf("open page sqlite store: %w", err)
	}
	defer func() {
		if closeErr := pageStore.Close(); closeErr != nil {
			log.Printf("close page sqlite store: %v", closeErr)
		}
	}()

	invoker, err := buildInvoker(pagesapp.NewStoreAdapter(pageStore))
	if err != nil {
		return err
	}
	transport := listenerpop3.NewTransport(listenerpop3.Config{
		Host:       cfg.MailHost,
		Port:       cfg.MailPort,
		Username:   cfg.MailUsername,
		Password:   cfg.MailPassword,
		TLSEnabled: cfg.MailTLS,
	})
	ingestor := listenerdomain.NewIngestor(transport, invoker, log.Printf)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on listener port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("listener.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	log.Printf("listener server listening at %v", listener.Addr())
	return pollLoop(ctx, ingestor, cfg.PollInterval)
}

func buildInvoker(pageStore *pagesapp.StoreAdapter) (*commands.Invoker, error) {
	kinds := pagesdomain.DefaultKinds()
	registry, err := commands.NewRegistry(pagesdomain.ModuleProcessors(pageStore, kinds, nil)...)
	if err != nil {
		return nil, fmt.Errorf("build processor registry: %w", err)
	}
	resolvers := commands.NewResolverRegistry()
	if err := resolvers.RegisterResolver(pagesdomain.RefTypePage, pagesdomain.NewPageResolver(pageStore)); err != nil {
		return nil, fmt.Errorf("register page resolver: %w", err)
	}
	return commands.NewInvoker(registry, resolvers), nil
}

// pollLoop runs one ingestion batch per tick. A failed batch is dropped and
// the next tick proceeds independently.
func pollLoop(ctx context.Context, ingestor *listenerdomain.Ingestor, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats, err := ingestor.Poll(ctx)
			if err != nil {
				log.Printf("poll mailbox: %v", err)
				continue
			}
			if stats.Fetched > 0 {
				log.Printf("ingested %d messages (%d invoked, %d skipped, %d failed)",
					stats.Fetched, stats.Invoked, stats.Skipped, stats.Failed)
			}
		}
	}
}
