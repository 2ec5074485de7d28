// Package domain implements the command lifecycle: durable commands are
// created with an opaque URI token, later invoked against their target
// objects through registered processors, and deleted or swept on expiry.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a command record was not found.
	ErrNotFound = errors.New("command not found")
	// ErrLineRequired indicates a command is missing its operation line.
	ErrLineRequired = errors.New("command line is required")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("command store is not configured")
	// ErrInvokerNotConfigured indicates the service is missing invocation wiring.
	ErrInvokerNotConfigured = errors.New("command invoker is not configured")
	// ErrURIGeneratorNotConfigured indicates a URI token generator is required.
	ErrURIGeneratorNotConfigured = errors.New("command uri generator is not configured")
)

// DefaultRetention is how long a command stays invocable after creation.
// Commands older than this are never invoked and are removed by the sweep.
const DefaultRetention = 7 * 24 * time.Hour

// Command is one durable unit of deferred, confirmable work. A command is
// write-once: after creation it is only read, invoked, and deleted.
type Command struct {
	ID        int64
	URI       string
	Line      string
	Data      string
	CreatedAt time.Time
}

// Expired reports whether the command fell outside the retention window at
// the given instant.
func (c Command) Expired(now time.Time, retention time.Duration) bool {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return c.CreatedAt.Add(retention).Before(now)
}
