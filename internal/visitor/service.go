package visitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gatehouse/internal/audit"
	"gatehouse/internal/platform/metrics"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/sentinel"
)

// QRExpiry is how long a self-service checkout token stays valid after
// check-in.
const QRExpiry = 24 * time.Hour

// createAttempts bounds retries when a generated record id collides. The
// suffix entropy makes more than one retry vanishingly rare.
const createAttempts = 3

// TokenIndex accelerates self-checkout token resolution. Optional: the
// durable store remains the source of truth, the index is a TTL-keyed lookup.
type TokenIndex interface {
	Register(ctx context.Context, token, recordID string, ttl time.Duration) error
	Resolve(ctx context.Context, token string) (string, error)
	Remove(ctx context.Context, token string) error
}

// Service enforces the visitor lifecycle: one-way IN to OUT, a fresh record
// id and QR token at creation, and exactly one audit entry per successful
// mutation (appended after the mutation commits, best-effort).
type Service struct {
	store    Store
	audit    *audit.Service
	logger   *slog.Logger
	metrics  *metrics.Metrics
	prefix   string
	tokens   TokenIndex
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTokenIndex wires the optional self-checkout token index.
func WithTokenIndex(index TokenIndex) Option {
	return func(s *Service) { s.tokens = index }
}

// WithClock sets the time source for testability.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, auditSvc *audit.Service, logger *slog.Logger, m *metrics.Metrics, recordIDPrefix string, opts ...Option) *Service {
	s := &Service{
		store:   store,
		audit:   auditSvc,
		logger:  logger,
		metrics: m,
		prefix:  recordIDPrefix,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIn creates a new record with status IN, a fresh record id and a QR
// token valid for 24 hours. FullName is the only required personal field.
func (s *Service) CheckIn(ctx context.Context, record Record) (Record, error) {
	record.FullName = strings.TrimSpace(record.FullName)
	if record.FullName == "" {
		return Record{}, dErrors.New(dErrors.CodeBadRequest, "fullName is required")
	}
	if record.RecordedBy == "" {
		return Record{}, dErrors.New(dErrors.CodeBadRequest, "recordedBy is required")
	}
	if record.VisitorType == "" {
		record.VisitorType = TypeVisitor
	}
	if !ValidType(record.VisitorType) {
		return Record{}, dErrors.New(dErrors.CodeBadRequest, "unknown visitor type")
	}
	if record.ConsentType == ConsentSignature && record.ConsentSignature == "" {
		return Record{}, dErrors.New(dErrors.CodeBadRequest, "signature is required for signature consent")
	}

	now := s.now()
	record.CheckInTime = now
	record.CheckOutTime = nil
	record.Status = StatusIn
	record.QRCode = uuid.NewString()
	expiry := now.Add(QRExpiry)
	record.QRExpiry = &expiry
	record.CreatedAt = now
	record.UpdatedAt = now

	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		record.RecordID = NewRecordID(s.prefix, now)
		record.ID, err = s.store.Create(ctx, record)
		if !errors.Is(err, sentinel.ErrConflict) {
			break
		}
	}
	if err != nil {
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "failed to create visitor record", err)
	}

	if s.tokens != nil {
		if err := s.tokens.Register(ctx, record.QRCode, record.RecordID, QRExpiry); err != nil {
			// Index is an accelerator only; the durable row still resolves.
			s.logger.WarnContext(ctx, "token index register failed",
				"record_id", record.RecordID, "error", err.Error())
		}
	}

	mode := "staff"
	if record.RecordedBy == SelfCheckInActor {
		mode = "self"
	}
	s.metrics.RecordCheckIn(mode)
	s.audit.Record(ctx, audit.Entry{
		RecordID: record.RecordID,
		ActorID:  record.RecordedBy,
		Action:   audit.ActionCheckIn,
		Details:  fmt.Sprintf("checked in %s", record.FullName),
	})
	return record, nil
}

// CheckOut transitions a record to OUT. Strict policy: a record that is
// already OUT yields a conflict rather than a silent no-op.
func (s *Service) CheckOut(ctx context.Context, recordID, actorID string) error {
	if err := s.completeCheckOut(ctx, recordID); err != nil {
		return err
	}
	s.metrics.RecordCheckOut("staff")
	s.audit.Record(ctx, audit.Entry{
		RecordID: recordID,
		ActorID:  actorID,
		Action:   audit.ActionCheckOut,
	})
	return nil
}

// ForceCheckOut is the operator override of the normal flow; the reason goes
// into the audit details.
func (s *Service) ForceCheckOut(ctx context.Context, recordID, actorID, reason string) error {
	if err := s.completeCheckOut(ctx, recordID); err != nil {
		return err
	}
	s.metrics.RecordCheckOut("force")
	s.audit.Record(ctx, audit.Entry{
		RecordID: recordID,
		ActorID:  actorID,
		Action:   audit.ActionForceCheckOut,
		Details:  reason,
	})
	return nil
}

// CheckOutByToken performs self-service checkout via the QR token. The kiosk
// needs the distinct failure shapes: unknown token, expired token, already
// checked out.
func (s *Service) CheckOutByToken(ctx context.Context, token string) (Record, error) {
	if token == "" {
		return Record{}, dErrors.New(dErrors.CodeBadRequest, "token is required")
	}

	recordID := ""
	if s.tokens != nil {
		id, err := s.tokens.Resolve(ctx, token)
		if err == nil {
			recordID = id
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "token index resolve failed", "error", err.Error())
		}
	}

	var record Record
	var err error
	if recordID != "" {
		record, err = s.store.FindByRecordID(ctx, recordID)
	} else {
		record, err = s.store.FindByQRCode(ctx, token)
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return Record{}, dErrors.New(dErrors.CodeNotFound, "no record matches this code")
	}
	if err != nil {
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "self-checkout failed", err)
	}

	now := s.now()
	if record.QRExpiry != nil && now.After(*record.QRExpiry) {
		return Record{}, dErrors.New(dErrors.CodeBadRequest, "this code has expired")
	}

	if err := s.completeCheckOut(ctx, record.RecordID); err != nil {
		return Record{}, err
	}
	if s.tokens != nil {
		if err := s.tokens.Remove(ctx, token); err != nil {
			s.logger.WarnContext(ctx, "token index remove failed", "error", err.Error())
		}
	}

	s.metrics.RecordCheckOut("self")
	s.audit.Record(ctx, audit.Entry{
		RecordID: record.RecordID,
		ActorID:  SelfCheckOutActor,
		Action:   audit.ActionCheckOut,
		Details:  fmt.Sprintf("self-service checkout for %s", record.FullName),
	})

	record.Status = StatusOut
	checkOut := now
	record.CheckOutTime = &checkOut
	return record, nil
}

// completeCheckOut runs the store transition and translates its sentinels.
func (s *Service) completeCheckOut(ctx context.Context, recordID string) error {
	if recordID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "recordId is required")
	}
	err := s.store.CompleteCheckOut(ctx, recordID, s.now())
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "visitor record not found")
	}
	if errors.Is(err, sentinel.ErrAlreadyCheckedOut) {
		return dErrors.New(dErrors.CodeConflict, "visitor already checked out")
	}
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to check out visitor", err)
	}
	return nil
}

// Update applies a partial field set. recordId, checkInTime and status cannot
// be changed through this path.
func (s *Service) Update(ctx context.Context, recordID string, patch Patch, actorID string) error {
	if recordID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "recordId is required")
	}
	if patch.IsEmpty() {
		return dErrors.New(dErrors.CodeBadRequest, "no fields to update")
	}
	if patch.FullName != nil && strings.TrimSpace(*patch.FullName) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "fullName cannot be empty")
	}
	if patch.VisitorType != nil && !ValidType(*patch.VisitorType) {
		return dErrors.New(dErrors.CodeBadRequest, "unknown visitor type")
	}
	err := s.store.Update(ctx, recordID, patch)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "visitor record not found")
	}
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to update visitor record", err)
	}
	s.audit.Record(ctx, audit.Entry{
		RecordID: recordID,
		ActorID:  actorID,
		Action:   audit.ActionEditRecord,
	})
	return nil
}

// Delete hard-deletes a record. The visitor's name is captured first so the
// audit entry stays readable after the row is gone.
func (s *Service) Delete(ctx context.Context, recordID, actorID string) error {
	if recordID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "recordId is required")
	}
	record, err := s.store.FindByRecordID(ctx, recordID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "visitor record not found")
	}
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to delete visitor record", err)
	}
	if err := s.store.Delete(ctx, recordID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "visitor record not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "failed to delete visitor record", err)
	}
	if s.tokens != nil && record.QRCode != "" {
		if err := s.tokens.Remove(ctx, record.QRCode); err != nil {
			s.logger.WarnContext(ctx, "token index remove failed", "error", err.Error())
		}
	}
	s.audit.Record(ctx, audit.Entry{
		RecordID: recordID,
		ActorID:  actorID,
		Action:   audit.ActionDeleteRecord,
		Details:  fmt.Sprintf("deleted record for %s", record.FullName),
	})
	return nil
}

// List returns all records, newest first.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list visitor records", err)
	}
	return records, nil
}

// ListActive returns records still checked in.
func (s *Service) ListActive(ctx context.Context) ([]Record, error) {
	records, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list visitor records", err)
	}
	return records, nil
}

// GetByRecordID returns a single record.
func (s *Service) GetByRecordID(ctx context.Context, recordID string) (Record, error) {
	record, err := s.store.FindByRecordID(ctx, recordID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Record{}, dErrors.New(dErrors.CodeNotFound, "visitor record not found")
	}
	if err != nil {
		return Record{}, dErrors.Wrap(dErrors.CodeInternal, "failed to read visitor record", err)
	}
	return record, nil
}

// DailyStats partitions records by asOf's calendar day in the process's
// local zone: check-ins today, check-outs today, and everyone still IN.
func (s *Service) DailyStats(ctx context.Context, asOf time.Time) (DailyStats, error) {
	dayStart := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	stats, err := s.store.Stats(ctx, dayStart, dayEnd)
	if err != nil {
		return DailyStats{}, dErrors.Wrap(dErrors.CodeInternal, "failed to compute stats", err)
	}
	return stats, nil
}
