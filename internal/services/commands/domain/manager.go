package domain

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/louisbranch/signalpost/internal/platform/id"
)

// Store is the domain persistence boundary for the command lifecycle.
type Store interface {
	// CreateCommand persists a new command and returns it with its assigned ID.
	CreateCommand(ctx context.Context, command Command) (Command, error)
	// GetCommandByURI loads one live command by its URI token.
	GetCommandByURI(ctx context.Context, uri string) (Command, error)
	// GetCommandByID loads one live command by its surrogate key.
	GetCommandByID(ctx context.Context, commandID int64) (Command, error)
	// DeleteCommand removes one command. Deleting a command that is already
	// gone returns ErrNotFound, which callers treat as satisfied.
	DeleteCommand(ctx context.Context, commandID int64) error
	// SweepExpiredCommands bulk-deletes commands created before olderThan.
	SweepExpiredCommands(ctx context.Context, olderThan time.Time) (int64, error)
}

// Mailer delivers the confirmation message for a newly created command.
type Mailer interface {
	SendConfirmation(ctx context.Context, to string, confirmURL string, rollbackURL string) error
}

// ValidationResult is the outward-facing outcome shape consumed by the web
// layer: a success flag plus caller-presentable failure messages.
type ValidationResult struct {
	Succeeded bool
	Errors    []string
}

// Valid returns a succeeded validation result.
func Valid() ValidationResult {
	return ValidationResult{Succeeded: true}
}

// Invalid returns a failed validation result with the given messages.
func Invalid(messages ...string) ValidationResult {
	return ValidationResult{Errors: messages}
}

// CreateInput describes one command creation request.
type CreateInput struct {
	Line string
	Data string
	// NotifyEmail, when set, receives the confirm and rollback links.
	NotifyEmail string
}

// ManagerConfig wires the manager's collaborators and policy.
type ManagerConfig struct {
	Store     Store
	Invoker   *Invoker
	Resolvers *ResolverRegistry
	Mailer    Mailer
	// BaseURL prefixes confirm and rollback links in notification mail.
	BaseURL string
	// Retention overrides DefaultRetention when positive.
	Retention time.Duration
	Clock     func() time.Time
	NewURI    func() (string, error)
	Logf      func(format string, args ...any)
}

// Manager coordinates the create, notify, confirm-or-rollback, and sweep
// lifecycle exposed to the web layer.
type Manager struct {
	store     Store
	invoker   *Invoker
	resolvers *ResolverRegistry
	mailer    Mailer
	baseURL   string
	retention time.Duration
	clock     func() time.Time
	newURI    func() (string, error)
	logf      func(format string, args ...any)
}

// NewManager constructs the command lifecycle facade.
func NewManager(cfg ManagerConfig) *Manager {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	newURI := cfg.NewURI
	if newURI == nil {
		newURI = id.NewID
	}
	retention := cfg.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Manager{
		store:     cfg.Store,
		invoker:   cfg.Invoker,
		resolvers: cfg.Resolvers,
		mailer:    cfg.Mailer,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		retention: retention,
		clock:     clock,
		newURI:    newURI,
		logf:      logf,
	}
}

// Create validates and persists a new command, then sends the confirmation
// mail when a notify address is provided. Validation failures are reported
// in the result; a mail delivery failure is logged but does not undo the
// stored command.
func (m *Manager) Create(ctx context.Context, input CreateInput) (Command, ValidationResult, error) {
	if m == nil || m.store == nil {
		return Command{}, ValidationResult{}, ErrStoreNotConfigured
	}
	if m.newURI == nil {
		return Command{}, ValidationResult{}, ErrURIGeneratorNotConfigured
	}
	line := strings.TrimSpace(input.Line)
	if line == "" {
		return Command{}, Invalid("command line is required"), nil
	}
	_, refs, err := ParseLine(line)
	if err != nil {
		return Command{}, Invalid("command line is malformed"), nil
	}

	// Targets with a registered resolver must exist at creation time so the
	// caller learns about a dangling reference immediately instead of after
	// the confirmation round trip.
	for _, ref := range refs {
		resolver := m.resolvers.Lookup(ref.Type)
		if resolver == nil {
			continue
		}
		object, err := resolver.Resolve(ctx, ref.Type, ref.ID)
		if err != nil {
			return Command{}, ValidationResult{}, fmt.Errorf("resolve %s:%s: %w", ref.Type, ref.ID, err)
		}
		if object == nil {
			return Command{}, Invalid(fmt.Sprintf("%s %s does not exist", ref.Type, ref.ID)), nil
		}
	}

	uri, err := m.newURI()
	if err != nil {
		return Command{}, ValidationResult{}, fmt.Errorf("generate command uri: %w", err)
	}
	command := Command{
		URI:       uri,
		Line:      line,
		Data:      input.Data,
		CreatedAt: m.nowUTC(),
	}
	created, err := m.store.CreateCommand(ctx, command)
	if err != nil {
		return Command{}, ValidationResult{}, err
	}

	if notifyEmail := strings.TrimSpace(input.NotifyEmail); notifyEmail != "" && m.mailer != nil {
		confirmURL := m.linkFor("confirm", created.URI)
		rollbackURL := m.linkFor("rollback", created.URI)
		if err := m.mailer.SendConfirmation(ctx, notifyEmail, confirmURL, rollbackURL); err != nil {
			m.logf("send confirmation for command %d: %v", created.ID, err)
		}
	}
	return created, Valid(), nil
}

// Invoke looks up a command by URI, runs it through the invoker, and deletes
// it. A missing or expired command is ErrNotFound. The delete after a
// successful invocation swallows not-found so the benign race of two
// concurrent confirmations stays harmless.
func (m *Manager) Invoke(ctx context.Context, uri string) (Result, error) {
	if m == nil || m.store == nil {
		return Result{}, ErrStoreNotConfigured
	}
	if m.invoker == nil {
		return Result{}, ErrInvokerNotConfigured
	}
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Result{}, ErrNotFound
	}
	command, err := m.store.GetCommandByURI(ctx, uri)
	if err != nil {
		return Result{}, err
	}
	if command.Expired(m.nowUTC(), m.retention) {
		return Result{}, ErrNotFound
	}

	result, err := m.invoker.Invoke(ctx, command.Line, command.Data, command.Data)
	if err != nil {
		return Result{}, err
	}
	if err := m.store.DeleteCommand(ctx, command.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return Result{}, fmt.Errorf("delete invoked command %d: %w", command.ID, err)
	}
	return result, nil
}

// Rollback deletes a command by URI without invoking it. A missing command
// is already satisfied.
func (m *Manager) Rollback(ctx context.Context, uri string) error {
	if m == nil || m.store == nil {
		return ErrStoreNotConfigured
	}
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil
	}
	command, err := m.store.GetCommandByURI(ctx, uri)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if err := m.store.DeleteCommand(ctx, command.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete rolled back command %d: %w", command.ID, err)
	}
	return nil
}

// Clean sweeps commands that fell outside the retention window and returns
// how many rows were removed.
func (m *Manager) Clean(ctx context.Context) (int64, error) {
	if m == nil || m.store == nil {
		return 0, ErrStoreNotConfigured
	}
	return m.store.SweepExpiredCommands(ctx, m.nowUTC().Add(-m.retention))
}

func (m *Manager) linkFor(action string, uri string) string {
	return m.baseURL + "/" + action + "/" + url.PathEscape(uri)
}

func (m *Manager) nowUTC() time.Time {
	if m.clock == nil {
		return time.Now().UTC()
	}
	return m.clock().UTC()
}
