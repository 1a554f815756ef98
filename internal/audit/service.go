package audit

import (
	"context"
	"log/slog"
	"time"

	"gatehouse/internal/platform/metrics"
)

// FailureRecorder receives a note when an audit entry could not be persisted,
// so operators can act on the gap. Implemented by the error log service.
type FailureRecorder interface {
	RecordFailure(ctx context.Context, errType, message, source string)
}

// Service is the audit sink. Record is best-effort: a failed append is
// logged and counted but never fails the caller's primary operation.
type Service struct {
	store    Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	failures FailureRecorder
}

func NewService(store Store, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, logger: logger, metrics: m}
}

// SetFailureRecorder wires the error log in after construction; the error log
// service itself audits nothing, so there is no cycle.
func (s *Service) SetFailureRecorder(r FailureRecorder) {
	s.failures = r
}

// Record appends an audit entry. Callers invoke it after their state
// mutation has committed; by policy an append failure is swallowed here.
func (s *Service) Record(ctx context.Context, entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := s.store.Append(ctx, entry); err != nil {
		s.metrics.RecordAuditAppendFailure()
		s.logger.ErrorContext(ctx, "audit append failed",
			"action", entry.Action,
			"record_id", entry.RecordID,
			"error", err.Error(),
		)
		if s.failures != nil {
			s.failures.RecordFailure(ctx, "AUDIT_APPEND", err.Error(), "audit")
		}
	}
}

// List returns recent audit entries, newest first, capped at ListCap.
func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	return s.store.List(ctx, limit)
}
