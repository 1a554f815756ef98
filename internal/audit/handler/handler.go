package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/audit"
	"gatehouse/internal/transport/http/shared"
)

// Service defines the audit read operations this handler exposes.
type Service interface {
	List(ctx context.Context, limit int) ([]audit.Entry, error)
}

// Handler serves the audit trail read endpoint. There is deliberately no
// write surface: entries are appended by services only.
type Handler struct {
	auditSvc Service
	logger   *slog.Logger
}

func New(auditSvc Service, logger *slog.Logger) *Handler {
	return &Handler{auditSvc: auditSvc, logger: logger}
}

// Register mounts the audit log routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/audit-logs", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.auditSvc.List(r.Context(), audit.ListCap)
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, entries)
}
