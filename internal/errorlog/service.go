package errorlog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/sentinel"
)

// Service owns the error log lifecycle: created unresolved, resolved once.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create records a new unresolved entry and returns its id.
func (s *Service) Create(ctx context.Context, errType, message, source string, metadata json.RawMessage) (int64, error) {
	if strings.TrimSpace(errType) == "" || strings.TrimSpace(message) == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, "type and message are required")
	}
	id, err := s.store.Create(ctx, Entry{
		Type:      errType,
		Message:   message,
		Source:    source,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "failed to record error log entry", err)
	}
	return id, nil
}

// List returns all entries, newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list error log entries", err)
	}
	return entries, nil
}

// ListUnresolved returns entries that still need operator attention.
func (s *Service) ListUnresolved(ctx context.Context) ([]Entry, error) {
	entries, err := s.store.ListUnresolved(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list error log entries", err)
	}
	return entries, nil
}

// Resolve marks an entry as handled. Idempotent: resolving twice rewrites the
// resolution fields with the later caller's identity.
func (s *Service) Resolve(ctx context.Context, id int64, resolvedBy string) error {
	if id <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	err := s.store.Resolve(ctx, id, resolvedBy, time.Now())
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "error log entry not found")
	}
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to resolve error log entry", err)
	}
	return nil
}

// RecordFailure satisfies audit.FailureRecorder. Best-effort: if even the
// error log write fails there is nothing left but the process log.
func (s *Service) RecordFailure(ctx context.Context, errType, message, source string) {
	if _, err := s.store.Create(ctx, Entry{
		Type:      errType,
		Message:   message,
		Source:    source,
		CreatedAt: time.Now(),
	}); err != nil {
		s.logger.ErrorContext(ctx, "error log write failed",
			"type", errType,
			"error", err.Error(),
		)
	}
}
