// Package httpapi serves the confirmation and rollback links embedded in
// command notification mail.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/louisbranch/signalpost/internal/services/commands/domain"
	pages "github.com/louisbranch/signalpost/internal/services/pages/domain"
)

// Manager is the command lifecycle surface the handler needs.
type Manager interface {
	Invoke(ctx context.Context, uri string) (domain.Result, error)
	Rollback(ctx context.Context, uri string) error
}

// Handler serves confirm and rollback requests. Responses never leak
// internal detail: a missing, expired, or uninvocable command is a plain
// not-found.
type Handler struct {
	manager Manager
	logf    func(format string, args ...any)
}

// New builds the handler over a command manager.
func New(manager Manager, logf func(format string, args ...any)) *Handler {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Handler{manager: manager, logf: logf}
}

// Register mounts the confirm and rollback routes.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /confirm/{uri}", h.handleConfirm)
	mux.HandleFunc("GET /rollback/{uri}", h.handleRollback)
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.manager == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	uri := r.PathValue("uri")
	result, err := h.manager.Invoke(r.Context(), uri)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrMalformedLine),
			errors.Is(err, pages.ErrInsertNotSupported):
			http.NotFound(w, r)
		default:
			h.logf("confirm command: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	switch result.Status {
	case domain.StatusSuccess:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("confirmed\n"))
	case domain.StatusNoAction:
		http.NotFound(w, r)
	default:
		http.Error(w, "command failed", http.StatusInternalServerError)
	}
}

func (h *Handler) handleRollback(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.manager == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	if err := h.manager.Rollback(r.Context(), r.PathValue("uri")); err != nil {
		h.logf("rollback command: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("cancelled\n"))
}
