package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/appuser"
	"gatehouse/internal/transport/http/shared"
	dErrors "gatehouse/pkg/domain-errors"
)

// Service defines the staff account operations this handler exposes.
type Service interface {
	Login(ctx context.Context, username, credential string) (appuser.User, error)
	List(ctx context.Context) ([]appuser.User, error)
	Create(ctx context.Context, user appuser.User, actorID string) (int64, error)
	Update(ctx context.Context, id int64, patch appuser.Patch, actorID string) error
	Delete(ctx context.Context, id int64, actorID string) error
}

// Handler serves the staff account endpoints.
type Handler struct {
	users  Service
	logger *slog.Logger
}

func New(users Service, logger *slog.Logger) *Handler {
	return &Handler{users: users, logger: logger}
}

// Register mounts the user routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Post("/login", h.handleLogin)
		r.Post("/update", h.handleUpdate)
		r.Post("/delete", h.handleDelete)
	})
}

type loginRequest struct {
	Username   string `json:"username"`
	Credential string `json:"credential"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	user, err := h.users.Login(r.Context(), req.Username, req.Credential)
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, map[string]any{"user": user})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, users)
}

type createRequest struct {
	Username    string       `json:"username"`
	Credential  string       `json:"credential"`
	DisplayName string       `json:"displayName"`
	Role        appuser.Role `json:"role"`
	ActorID     string       `json:"actorId"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	id, err := h.users.Create(r.Context(), appuser.User{
		Username:    req.Username,
		Credential:  req.Credential,
		DisplayName: req.DisplayName,
		Role:        req.Role,
	}, actorOrSystem(req.ActorID))
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, map[string]any{"id": id})
}

type updateRequest struct {
	ID      int64         `json:"id"`
	ActorID string        `json:"actorId"`
	Patch   appuser.Patch `json:"-"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	// Decode twice: once for the identifier/actor, once for the patch, so
	// absent fields stay nil and keep their stored values.
	var req updateRequest
	var patch appuser.Patch
	if err := decodeBoth(r, &req, &patch); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.users.Update(r.Context(), req.ID, patch, actorOrSystem(req.ActorID)); err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, nil)
}

type deleteRequest struct {
	ID      int64  `json:"id"`
	ActorID string `json:"actorId"`
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.users.Delete(r.Context(), req.ID, actorOrSystem(req.ActorID)); err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, nil)
}

func decodeBoth(r *http.Request, envelope, patch any) error {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, envelope); err != nil {
		return err
	}
	return json.Unmarshal(raw, patch)
}

func actorOrSystem(actorID string) string {
	if actorID == "" {
		return "system"
	}
	return actorID
}
