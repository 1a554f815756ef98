// Package handler serves the public kiosk surface: consent text, visitor
// self check-in, and token-based self checkout. These routes are
// deliberately unauthenticated.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatehouse/internal/settings"
	"gatehouse/internal/transport/http/shared"
	"gatehouse/internal/visitor"
	dErrors "gatehouse/pkg/domain-errors"
)

// VisitorService is the slice of the visitor lifecycle the kiosk needs.
type VisitorService interface {
	CheckIn(ctx context.Context, record visitor.Record) (visitor.Record, error)
	CheckOutByToken(ctx context.Context, token string) (visitor.Record, error)
	List(ctx context.Context) ([]visitor.Record, error)
}

// SettingsService provides the operator-configured consent text.
type SettingsService interface {
	Get(ctx context.Context, key string) (string, error)
}

// Handler serves the self-service endpoints.
type Handler struct {
	visitors VisitorService
	settings SettingsService
	logger   *slog.Logger
}

func New(visitors VisitorService, settingsSvc SettingsService, logger *slog.Logger) *Handler {
	return &Handler{visitors: visitors, settings: settingsSvc, logger: logger}
}

// Register mounts the self-service routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/self-check-in", func(r chi.Router) {
		r.Get("/consent", h.handleGetConsent)
		r.Get("/records", h.handleGetAll)
		r.Post("/", h.handleSubmit)
		r.Post("/check-out", h.handleCheckOut)
	})
}

func (h *Handler) handleGetConsent(w http.ResponseWriter, r *http.Request) {
	text, err := h.settings.Get(r.Context(), settings.KeyConsentText)
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"consentText": text})
}

type submitRequest struct {
	FullName         string       `json:"fullName"`
	VisitorType      visitor.Type `json:"type"`
	IDNumber         string       `json:"idNumber"`
	Phone            string       `json:"phone"`
	Company          string       `json:"company"`
	Photo            string       `json:"photo"`
	Purpose          string       `json:"purpose"`
	AccessArea       string       `json:"accessArea"`
	VehiclePlate     string       `json:"vehiclePlate"`
	ConsentAccepted  bool         `json:"consentAccepted"`
	ConsentSignature string       `json:"consentSignature"`
}

// handleSubmit records a self check-in. Consent is mandatory here: without
// the accepted flag no record is created.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if !req.ConsentAccepted {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "consent is required to check in"))
		return
	}

	now := time.Now()
	consentType := visitor.ConsentCheckbox
	if req.ConsentSignature != "" {
		consentType = visitor.ConsentSignature
	}
	record, err := h.visitors.CheckIn(r.Context(), visitor.Record{
		FullName:         req.FullName,
		VisitorType:      req.VisitorType,
		IDNumber:         req.IDNumber,
		Phone:            req.Phone,
		Company:          req.Company,
		Photo:            req.Photo,
		Purpose:          req.Purpose,
		AccessArea:       req.AccessArea,
		VehiclePlate:     req.VehiclePlate,
		RecordedBy:       visitor.SelfCheckInActor,
		ConsentType:      consentType,
		ConsentTime:      &now,
		ConsentSignature: req.ConsentSignature,
	})
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, map[string]any{
		"recordId":    record.RecordID,
		"qrCode":      record.QRCode,
		"checkInTime": record.CheckInTime,
	})
}

func (h *Handler) handleGetAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.visitors.List(r.Context())
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, records)
}

type checkOutRequest struct {
	QRToken string `json:"qrToken"`
}

// handleCheckOut performs token-based checkout. The kiosk renders the
// failure message directly, so "already checked out" and "expired" must
// surface as distinct errors rather than silent success.
func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	var req checkOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteFailure(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	record, err := h.visitors.CheckOutByToken(r.Context(), req.QRToken)
	if err != nil {
		shared.WriteFailure(w, err)
		return
	}
	shared.WriteSuccess(w, map[string]any{
		"fullName":     record.FullName,
		"checkOutTime": record.CheckOutTime,
	})
}
