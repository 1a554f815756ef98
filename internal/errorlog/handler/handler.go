package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/errorlog"
	"gatehouse/internal/transport/http/shared"
	dErrors "gatehouse/pkg/domain-errors"
)

// Service defines the error log operations this handler exposes.
type Service interface {
	Create(ctx context.Context, errType, message, source string, metadata json.RawMessage) (int64, error)
	List(ctx context.Context) ([]errorlog.Entry, error)
	ListUnresolved(ctx context.Context) ([]errorlog.Entry, error)
	Resolve(ctx context.Context, id int64, resolvedBy string) error
}

// Handler serves the error log endpoints.
type Handler struct {
	errlog Service
	logger *slog.Logger
}

func New(errlog Service, logger *slog.Logger) *Handler {
	return &Handler{errlog: errlog, logger: logger}
}

// Register mounts the error log routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/error-logs", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/unresolved", h.handleListUnresolved)
		r.Post("/", h.handleCreate)
		r.Post("/resolve", h.handleResolve)
	})
}

type createRequest struct {
	Type     string          `json:"type"`
	Message  string          `json:"message"`
	Source   string          `json:"source"`
	Metadata json.RawMessage `json:"metadata"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	id, err := h.errlog.Create(r.Context(), req.Type, req.Message, req.Source, req.Metadata)
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, map[string]any{"id": id})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.errlog.List(r.Context())
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleListUnresolved(w http.ResponseWriter, r *http.Request) {
	entries, err := h.errlog.ListUnresolved(r.Context())
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, entries)
}

type resolveRequest struct {
	ID         int64  `json:"id"`
	ResolvedBy string `json:"resolvedBy"`
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.errlog.Resolve(r.Context(), req.ID, req.ResolvedBy); err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, nil)
}
