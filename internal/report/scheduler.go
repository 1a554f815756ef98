// Package report sends the operator a daily visitor summary by email, driven
// entirely by the settings keys (emailEnabled, emailRecipient, emailSendTime,
// emailIncludeDetails). Settings are re-read every tick so changes apply
// without a restart.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gatehouse/internal/settings"
	"gatehouse/internal/visitor"
)

// StatsProvider is the slice of the visitor service the report needs.
type StatsProvider interface {
	DailyStats(ctx context.Context, asOf time.Time) (visitor.DailyStats, error)
	List(ctx context.Context) ([]visitor.Record, error)
}

// SettingsProvider supplies the parsed email-report configuration.
type SettingsProvider interface {
	EmailReport(ctx context.Context) (settings.EmailReportConfig, error)
}

// FailureRecorder receives delivery failures for operator attention.
type FailureRecorder interface {
	RecordFailure(ctx context.Context, errType, message, source string)
}

// Scheduler wakes once a minute and sends the daily report when the wall
// clock matches the configured send time. At most one report per day.
type Scheduler struct {
	visitors StatsProvider
	config   SettingsProvider
	sender   Sender
	failures FailureRecorder
	logger   *slog.Logger
	now      func() time.Time
	lastSent string // YYYY-MM-DD of the last delivered report
}

func NewScheduler(visitors StatsProvider, config SettingsProvider, sender Sender, failures FailureRecorder, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		visitors: visitors,
		config:   config,
		sender:   sender,
		failures: failures,
		logger:   logger,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()
	cfg, err := s.config.EmailReport(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "report settings read failed", "error", err.Error())
		return
	}
	if !cfg.Enabled || cfg.Recipient == "" {
		return
	}
	if now.Format("15:04") != cfg.SendTime {
		return
	}
	day := now.Format("2006-01-02")
	if s.lastSent == day {
		return
	}

	body, err := s.compose(ctx, now, cfg.IncludeDetails)
	if err != nil {
		s.logger.ErrorContext(ctx, "report compose failed", "error", err.Error())
		return
	}
	subject := "Visitor report for " + day
	if err := s.sender.Send(cfg.Recipient, subject, body); err != nil {
		s.logger.ErrorContext(ctx, "report delivery failed",
			"recipient", cfg.Recipient, "error", err.Error())
		if s.failures != nil {
			s.failures.RecordFailure(ctx, "REPORT_DELIVERY", err.Error(), "report")
		}
		return
	}
	s.lastSent = day
	s.logger.InfoContext(ctx, "daily report sent", "recipient", cfg.Recipient)
}

func (s *Scheduler) compose(ctx context.Context, asOf time.Time, includeDetails bool) (string, error) {
	stats, err := s.visitors.DailyStats(ctx, asOf)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Daily visitor summary for %s\n\n", asOf.Format("2006-01-02"))
	fmt.Fprintf(&b, "Checked in today:  %d\n", stats.TodayIn)
	fmt.Fprintf(&b, "Checked out today: %d\n", stats.TodayOut)
	fmt.Fprintf(&b, "Still on site:     %d\n", stats.Pending)

	if includeDetails {
		records, err := s.visitors.List(ctx)
		if err != nil {
			return "", err
		}
		dayStart := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
		b.WriteString("\nToday's visitors:\n")
		for _, record := range records {
			if record.CheckInTime.Before(dayStart) {
				continue
			}
			out := "still on site"
			if record.CheckOutTime != nil {
				out = "out " + record.CheckOutTime.Format("15:04")
			}
			fmt.Fprintf(&b, "- %s (%s) in %s, %s\n",
				record.FullName, record.VisitorType,
				record.CheckInTime.Format("15:04"), out)
		}
	}
	return b.String(), nil
}
