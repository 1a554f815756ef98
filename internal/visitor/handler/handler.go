package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/transport/http/shared"
	"gatehouse/internal/visitor"
	dErrors "gatehouse/pkg/domain-errors"
)

// Service defines the visitor lifecycle operations this handler exposes.
type Service interface {
	CheckIn(ctx context.Context, record visitor.Record) (visitor.Record, error)
	CheckOut(ctx context.Context, recordID, actorID string) error
	ForceCheckOut(ctx context.Context, recordID, actorID, reason string) error
	Update(ctx context.Context, recordID string, patch visitor.Patch, actorID string) error
	Delete(ctx context.Context, recordID, actorID string) error
	List(ctx context.Context) ([]visitor.Record, error)
	ListActive(ctx context.Context) ([]visitor.Record, error)
	GetByRecordID(ctx context.Context, recordID string) (visitor.Record, error)
	DailyStats(ctx context.Context, asOf time.Time) (visitor.DailyStats, error)
}

// Handler serves the staff-facing visitor endpoints.
type Handler struct {
	visitors Service
	logger   *slog.Logger
}

func New(visitors Service, logger *slog.Logger) *Handler {
	return &Handler{visitors: visitors, logger: logger}
}

// Register mounts the visitor routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/visitors", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/active", h.handleListActive)
		r.Get("/stats", h.handleStats)
		r.Post("/check-in", h.handleCheckIn)
		r.Post("/check-out", h.handleCheckOut)
		r.Post("/force-check-out", h.handleForceCheckOut)
		r.Post("/update", h.handleUpdate)
		r.Post("/delete", h.handleDelete)
		r.Get("/{recordID}", h.handleGetByID)
	})
}

// checkInRequest mirrors visitor.Record's inbound fields; lifecycle fields
// (recordId, status, times, qr token) are assigned by the service.
type checkInRequest struct {
	FullName         string              `json:"fullName"`
	VisitorType      visitor.Type        `json:"type"`
	IDNumber         string              `json:"idNumber"`
	Phone            string              `json:"phone"`
	Company          string              `json:"company"`
	Photo            string              `json:"photo"`
	VisitorCardPhoto string              `json:"visitorCardPhoto"`
	IDCardPhoto      string              `json:"idCardPhoto"`
	Purpose          string              `json:"purpose"`
	AccessArea       string              `json:"accessArea"`
	Notes            string              `json:"notes"`
	VehiclePlate     string              `json:"vehiclePlate"`
	RecordedBy       string              `json:"recordedBy"`
	ConsentType      visitor.ConsentType `json:"consentType"`
	ConsentSignature string              `json:"consentSignature"`
}

func (req checkInRequest) toRecord(now time.Time) visitor.Record {
	record := visitor.Record{
		FullName:         req.FullName,
		VisitorType:      req.VisitorType,
		IDNumber:         req.IDNumber,
		Phone:            req.Phone,
		Company:          req.Company,
		Photo:            req.Photo,
		VisitorCardPhoto: req.VisitorCardPhoto,
		IDCardPhoto:      req.IDCardPhoto,
		Purpose:          req.Purpose,
		AccessArea:       req.AccessArea,
		Notes:            req.Notes,
		VehiclePlate:     req.VehiclePlate,
		RecordedBy:       req.RecordedBy,
		ConsentType:      req.ConsentType,
		ConsentSignature: req.ConsentSignature,
	}
	if record.ConsentType != "" {
		t := now
		record.ConsentTime = &t
	}
	return record
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	record, err := h.visitors.CheckIn(r.Context(), req.toRecord(time.Now()))
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, map[string]any{
		"id":       record.ID,
		"recordId": record.RecordID,
	})
}

type checkOutRequest struct {
	RecordID string `json:"recordId"`
	ActorID  string `json:"actorId"`
	Reason   string `json:"reason"`
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	var req checkOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.visitors.CheckOut(r.Context(), req.RecordID, req.ActorID); err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, nil)
}

func (h *Handler) handleForceCheckOut(w http.ResponseWriter, r *http.Request) {
	var req checkOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.visitors.ForceCheckOut(r.Context(), req.RecordID, req.ActorID, req.Reason); err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, nil)
}

type updateRequest struct {
	RecordID string `json:"recordId"`
	ActorID  string `json:"actorId"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	// Decode twice so unspecified fields stay nil in the patch.
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	var req updateRequest
	var patch visitor.Patch
	if err := json.Unmarshal(raw, &req); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := json.Unmarshal(raw, &patch); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.visitors.Update(r.Context(), req.RecordID, patch, req.ActorID); err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, nil)
}

type deleteRequest struct {
	RecordID string `json:"recordId"`
	ActorID  string `json:"actorId"`
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.visitors.Delete(r.Context(), req.RecordID, req.ActorID); err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, nil)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.visitors.List(r.Context())
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	records, err := h.visitors.ListActive(r.Context())
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, records)
}

// handleGetByID returns the record, or a JSON null when none matches.
func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	recordID := chi.URLParam(r, "recordID")
	record, err := h.visitors.GetByRecordID(r.Context(), recordID)
	if dErrors.Is(err, dErrors.CodeNotFound) {
		shared.WriteJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.visitors.DailyStats(r.Context(), time.Now())
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, stats)
}
