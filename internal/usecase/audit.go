package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// AuditLog appends access log entries. Recording never fails the caller:
// storage errors go to the logger and a counter.
type AuditLog struct {
	repo      ports.AccessLogRepository
	clock     ports.Clock
	log       logger.Logger
	publisher ports.AuditPublisher
}

// NewAuditLog creates the audit recorder
func NewAuditLog(repo ports.AccessLogRepository, clock ports.Clock, log logger.Logger) *AuditLog {
	return &AuditLog{repo: repo, clock: orSystemClock(clock), log: orNopLogger(log)}
}

var _ ports.AuditRecorder = (*AuditLog)(nil)

// PublishTo forwards stored entries to p
func (a *AuditLog) PublishTo(p ports.AuditPublisher) {
	a.publisher = p
}

// Record appends one entry. An empty detail defaults to the action.
func (a *AuditLog) Record(ctx context.Context, actorID int64, action, detail string) {
	if detail == "" {
		detail = action
	}
	entry := &domain.AccessLogEntry{
		UserID: actorID,
		At:     now(a.clock),
		Action: action,
		Detail: detail,
	}
	if err := a.repo.Append(ctx, entry); err != nil {
		auditFailuresTotal.Inc()
		a.log.Error(ctx, "failed to record audit entry", err, map[string]interface{}{
			"actor_id": actorID,
			"action":   action,
		})
		return
	}
	if a.publisher != nil {
		a.publisher.Publish(entry)
	}
}

// Recent lists the newest entries for display
func (a *AuditLog) Recent(ctx context.Context, limit int) ([]*domain.AccessLogEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries, err := a.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list access history: %w", err)
	}
	return entries, nil
}

func orSystemClock(clock ports.Clock) ports.Clock {
	if clock == nil {
		return time.Now
	}
	return clock
}

func orNopLogger(log logger.Logger) logger.Logger {
	if log == nil {
		return logger.NewNop()
	}
	return log
}

// now truncates to the stored precision so values round-trip unchanged.
func now(clock ports.Clock) time.Time {
	return clock().Truncate(time.Second)
}
