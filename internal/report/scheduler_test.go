package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatehouse/internal/settings"
	"gatehouse/internal/visitor"
)

type stubStats struct {
	stats   visitor.DailyStats
	records []visitor.Record
}

func (s stubStats) DailyStats(context.Context, time.Time) (visitor.DailyStats, error) {
	return s.stats, nil
}

func (s stubStats) List(context.Context) ([]visitor.Record, error) {
	return s.records, nil
}

type stubConfig struct {
	cfg settings.EmailReportConfig
}

func (s stubConfig) EmailReport(context.Context) (settings.EmailReportConfig, error) {
	return s.cfg, nil
}

type sentMail struct {
	to, subject, body string
}

type stubSender struct {
	sent []sentMail
	err  error
}

func (s *stubSender) Send(to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to, subject, body})
	return nil
}

type stubFailures struct {
	failures []string
}

func (s *stubFailures) RecordFailure(_ context.Context, errType, _, _ string) {
	s.failures = append(s.failures, errType)
}

func newTestScheduler(sender Sender, cfg settings.EmailReportConfig, stats stubStats) *Scheduler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewScheduler(stats, stubConfig{cfg: cfg}, sender, nil, logger)
}

func enabledConfig() settings.EmailReportConfig {
	return settings.EmailReportConfig{
		Enabled:   true,
		Recipient: "ops@example.com",
		SendTime:  "18:00",
	}
}

func TestTickSendsAtConfiguredTimeOncePerDay(t *testing.T) {
	ctx := context.Background()
	sender := &stubSender{}
	s := newTestScheduler(sender, enabledConfig(), stubStats{
		stats: visitor.DailyStats{TodayIn: 3, TodayOut: 2, Pending: 1},
	})

	now := time.Date(2025, 6, 1, 17, 59, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.tick(ctx)
	assert.Empty(t, sender.sent, "before the send time nothing goes out")

	now = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	s.tick(ctx)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ops@example.com", sender.sent[0].to)
	assert.Equal(t, "Visitor report for 2025-06-01", sender.sent[0].subject)
	assert.Contains(t, sender.sent[0].body, "Checked in today:  3")
	assert.Contains(t, sender.sent[0].body, "Still on site:     1")

	// Same minute again, and later the same day: no duplicate.
	s.tick(ctx)
	now = time.Date(2025, 6, 1, 18, 0, 30, 0, time.UTC)
	s.tick(ctx)
	assert.Len(t, sender.sent, 1)

	// The next day sends again.
	now = time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)
	s.tick(ctx)
	assert.Len(t, sender.sent, 2)
}

func TestTickSkipsWhenDisabledOrUnaddressed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	sender := &stubSender{}
	cfg := enabledConfig()
	cfg.Enabled = false
	s := newTestScheduler(sender, cfg, stubStats{})
	s.now = func() time.Time { return now }
	s.tick(ctx)
	assert.Empty(t, sender.sent)

	cfg = enabledConfig()
	cfg.Recipient = ""
	s = newTestScheduler(sender, cfg, stubStats{})
	s.now = func() time.Time { return now }
	s.tick(ctx)
	assert.Empty(t, sender.sent)
}

func TestTickIncludesDetailsWhenConfigured(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	out := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	cfg := enabledConfig()
	cfg.IncludeDetails = true
	sender := &stubSender{}
	s := newTestScheduler(sender, cfg, stubStats{
		stats: visitor.DailyStats{TodayIn: 2, TodayOut: 1, Pending: 1},
		records: []visitor.Record{
			{FullName: "Grace Hopper", VisitorType: visitor.TypeVisitor,
				CheckInTime: now.Add(-8 * time.Hour), CheckOutTime: &out},
			{FullName: "Ada Lovelace", VisitorType: visitor.TypeContractor,
				CheckInTime: now.Add(-4 * time.Hour)},
			{FullName: "Yesterday Guest", VisitorType: visitor.TypeVisitor,
				CheckInTime: now.Add(-30 * time.Hour)},
		},
	})
	s.now = func() time.Time { return now }

	s.tick(ctx)
	require.Len(t, sender.sent, 1)
	body := sender.sent[0].body
	assert.Contains(t, body, "Grace Hopper")
	assert.Contains(t, body, "out 12:30")
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "still on site")
	assert.NotContains(t, body, "Yesterday Guest")
}

func TestTickRecordsDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	sender := &stubSender{err: errors.New("smtp unreachable")}
	failures := &stubFailures{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewScheduler(stubStats{}, stubConfig{cfg: enabledConfig()}, sender, failures, logger)
	s.now = func() time.Time { return now }

	s.tick(ctx)
	require.Len(t, failures.failures, 1)
	assert.Equal(t, "REPORT_DELIVERY", failures.failures[0])

	// A failed delivery does not count as sent; the next tick retries.
	sender.err = nil
	s.tick(ctx)
	assert.Len(t, sender.sent, 1)
}
