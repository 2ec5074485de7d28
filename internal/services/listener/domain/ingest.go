// Package domain implements mail ingestion: inbound messages are fetched
// from a mailbox in one batch, translated into command invocations, and
// deleted from the server as a single terminal step.
package domain

import (
	"context"
	"errors"
	"fmt"

	commands "github.com/louisbranch/signalpost/internal/services/commands/domain"
)

var (
	// ErrTransportNotConfigured indicates the ingestor is missing mailbox wiring.
	ErrTransportNotConfigured = errors.New("mail transport is not configured")
	// ErrInvokerNotConfigured indicates the ingestor is missing invocation wiring.
	ErrInvokerNotConfigured = errors.New("command invoker is not configured")
)

// Message is one inbound mail message reduced to what command ingestion
// needs: the subject carries the operation line, the body parts carry the
// HTML and text payloads.
type Message struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// Session is one authenticated mailbox connection. Deletions accumulate
// through DeleteAll and only commit on Quit, so a dropped connection leaves
// the mailbox untouched.
type Session interface {
	Count(ctx context.Context) (int, error)
	Fetch(ctx context.Context, seq int) (Message, error)
	DeleteAll(ctx context.Context) error
	Quit() error
}

// Transport opens mailbox sessions.
type Transport interface {
	Connect(ctx context.Context) (Session, error)
}

// Invoker is the command invocation surface ingestion feeds into.
type Invoker interface {
	Invoke(ctx context.Context, line string, htmlPayload string, textPayload string) (commands.Result, error)
}

// PollStats summarizes one ingestion batch.
type PollStats struct {
	Fetched int
	Skipped int
	Invoked int
	Failed  int
}

// Ingestor polls a mailbox and forwards each message's subject and body
// parts to the command invoker.
type Ingestor struct {
	transport Transport
	invoker   Invoker
	logf      func(format string, args ...any)
}

// NewIngestor builds an ingestor over a transport and invoker.
func NewIngestor(transport Transport, invoker Invoker, logf func(format string, args ...any)) *Ingestor {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Ingestor{transport: transport, invoker: invoker, logf: logf}
}

// Poll runs one ingestion batch: connect, fetch every message, invoke the
// non-empty subjects, then delete the whole batch and quit. An invocation
// failure is logged and dropped without stopping the batch; the message is
// still deleted (single attempt, no redelivery). Transport errors propagate
// to the caller, which owns the retry schedule.
func (i *Ingestor) Poll(ctx context.Context) (PollStats, error) {
	if i == nil || i.transport == nil {
		return PollStats{}, ErrTransportNotConfigured
	}
	if i.invoker == nil {
		return PollStats{}, ErrInvokerNotConfigured
	}

	session, err := i.transport.Connect(ctx)
	if err != nil {
		return PollStats{}, fmt.Errorf("connect mailbox: %w", err)
	}

	stats, loopErr := i.drain(ctx, session)

	// The delete-all plus quit is the batch's single terminal step: the
	// server commits every pending deletion on quit or none at all.
	finishErr := finishBatch(ctx, session)
	if loopErr != nil {
		return stats, loopErr
	}
	return stats, finishErr
}

func (i *Ingestor) drain(ctx context.Context, session Session) (PollStats, error) {
	var stats PollStats
	count, err := session.Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("count mailbox messages: %w", err)
	}
	for seq := 1; seq <= count; seq++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		message, err := session.Fetch(ctx, seq)
		if err != nil {
			return stats, fmt.Errorf("fetch message %d: %w", seq, err)
		}
		stats.Fetched++
		if message.Subject == "" {
			stats.Skipped++
			continue
		}
		if _, err := i.invoker.Invoke(ctx, message.Subject, message.HTMLBody, message.TextBody); err != nil {
			stats.Failed++
			i.logf("invoke mail command %q: %v", message.Subject, err)
			continue
		}
		stats.Invoked++
	}
	return stats, nil
}

func finishBatch(ctx context.Context, session Session) error {
	deleteErr := session.DeleteAll(ctx)
	quitErr := session.Quit()
	if deleteErr != nil {
		return fmt.Errorf("delete fetched messages: %w", deleteErr)
	}
	if quitErr != nil {
		return fmt.Errorf("quit mailbox session: %w", quitErr)
	}
	return nil
}
