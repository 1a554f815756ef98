package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/transport/http/shared"
	dErrors "gatehouse/pkg/domain-errors"
)

// Service defines the settings operations this handler exposes.
type Service interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Update(ctx context.Context, values map[string]string, actorID string) error
}

// Handler serves the settings endpoints.
type Handler struct {
	settings Service
	logger   *slog.Logger
}

func New(settings Service, logger *slog.Logger) *Handler {
	return &Handler{settings: settings, logger: logger}
}

// Register mounts the settings routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/settings", h.handleGet)
	r.Post("/api/settings", h.handleUpdate)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	values, err := h.settings.GetAll(r.Context())
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, values)
}

// handleUpdate accepts a partial settings object: any subset of the known
// keys as string values. The optional actorId field names the operator and
// is not stored as a setting.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	actorID := body["actorId"]
	if actorID == "" {
		actorID = "system"
	}
	delete(body, "actorId")
	if err := h.settings.Update(r.Context(), body, actorID); err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, nil)
}
