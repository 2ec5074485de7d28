// Package domain models portal pages and the content-module commands that
// edit them. Page content is an HTML fragment; each module inside it is an
// element identified by id and typed by a class token.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a page record was not found.
	ErrNotFound = errors.New("page not found")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("page store is not configured")
	// ErrInsertNotSupported indicates the module insert operation, which has
	// no defined behavior yet. It is an explicit failure, never a silent
	// success.
	ErrInsertNotSupported = errors.New("module insert is not supported")
)

// Command operations understood by the module processors.
const (
	OperationUpdate = "UPDATE"
	OperationDelete = "DELETE"
	OperationInsert = "INSERT"
)

// Reference types used in command operation lines.
const (
	RefTypePage   = "page"
	RefTypeModule = "module"
)

// Page is one portal page whose content holds the rendered modules.
type Page struct {
	ID        string
	Title     string
	Content   string
	UpdatedAt time.Time
}
