package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"gatehouse/internal/audit"
	dErrors "gatehouse/pkg/domain-errors"
	"gatehouse/pkg/platform/sentinel"
)

// Service reads and writes the settings mapping, filling documented defaults
// for keys that were never written.
type Service struct {
	store  Store
	audit  *audit.Service
	logger *slog.Logger
}

func NewService(store Store, auditSvc *audit.Service, logger *slog.Logger) *Service {
	return &Service{store: store, audit: auditSvc, logger: logger}
}

// Get returns the stored value for key, or its documented default.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	value, err := s.store.Get(ctx, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Defaults[key], nil
	}
	if err != nil {
		return "", dErrors.Wrap(dErrors.CodeInternal, "failed to read settings", err)
	}
	return value, nil
}

// GetAll returns every known key, stored values overlaid on defaults.
func (s *Service) GetAll(ctx context.Context) (map[string]string, error) {
	stored, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to read settings", err)
	}
	out := make(map[string]string, len(Defaults))
	for key, def := range Defaults {
		out[key] = def
	}
	for key, value := range stored {
		out[key] = value
	}
	return out, nil
}

// Update upserts the provided keys one by one and audits the change. Keys are
// written independently: a mid-way failure leaves earlier keys applied, the
// caller re-submits idempotently.
func (s *Service) Update(ctx context.Context, values map[string]string, actorID string) error {
	if len(values) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "no settings provided")
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := s.store.Set(ctx, key, values[key]); err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, fmt.Sprintf("failed to update setting %q", key), err)
		}
	}
	s.audit.Record(ctx, audit.Entry{
		ActorID: actorID,
		Action:  audit.ActionSettingsUpdated,
		Details: "updated keys: " + strings.Join(keys, ", "),
	})
	return nil
}

// RetentionDays parses the retention policy, falling back to the default on
// malformed stored values. Never errors on bad data.
func (s *Service) RetentionDays(ctx context.Context) int {
	value, err := s.Get(ctx, KeyRetentionDays)
	if err != nil {
		value = Defaults[KeyRetentionDays]
	}
	days, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || days <= 0 {
		days, _ = strconv.Atoi(Defaults[KeyRetentionDays])
	}
	return days
}

// EmailReportConfig is the parsed view of the email-report settings keys.
type EmailReportConfig struct {
	Enabled        bool
	Recipient      string
	SendTime       string
	IncludeDetails bool
}

// EmailReport returns the email-report configuration with defaults applied.
func (s *Service) EmailReport(ctx context.Context) (EmailReportConfig, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return EmailReportConfig{}, err
	}
	return EmailReportConfig{
		Enabled:        all[KeyEmailEnabled] == "true",
		Recipient:      all[KeyEmailRecipient],
		SendTime:       all[KeyEmailSendTime],
		IncludeDetails: all[KeyEmailIncludeDetails] == "true",
	}, nil
}
