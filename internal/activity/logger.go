// Package activity implements the append-only structured activity log.
// Entries are written through the repository for audit retention and
// mirrored to the process logger; a failed write must never fail the
// operation being logged.
package activity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/domain"
	"github.com/spec-kit/helpdesk-core/internal/repository"
)

// Channel names used by the core pipelines.
const (
	ChannelMailbox    = "mailbox"
	ChannelIngestion  = "ingestion"
	ChannelAutomation = "automation"
)

// Logger records audit-grade activity entries.
type Logger struct {
	entries repository.ActivityLogRepository
	log     *zap.Logger
}

// NewLogger builds a Logger. A nil repository disables persistence; entries
// then go to the process logger only.
func NewLogger(entries repository.ActivityLogRepository, log *zap.Logger) *Logger {
	return &Logger{entries: entries, log: log}
}

// Record appends one entry. Severity maps to the matching zap level.
func (l *Logger) Record(ctx context.Context, entry domain.ActivityLogEntry) {
	if l == nil {
		return
	}
	fields := []zap.Field{
		zap.String("channel", entry.Channel),
		zap.String("operation", entry.Operation),
		zap.Duration("duration", entry.Duration),
	}
	if entry.AccountID != nil {
		fields = append(fields, zap.String("account_id", *entry.AccountID))
	}
	if len(entry.Detail) > 0 {
		fields = append(fields, zap.Any("detail", entry.Detail))
	}
	switch entry.Severity {
	case domain.SeverityError:
		l.log.Error(entry.Message, fields...)
	case domain.SeverityWarning:
		l.log.Warn(entry.Message, fields...)
	default:
		l.log.Info(entry.Message, fields...)
	}

	if l.entries == nil {
		return
	}
	if err := l.entries.Create(ctx, &entry); err != nil {
		l.log.Error("activity log write failed", zap.Error(err),
			zap.String("channel", entry.Channel), zap.String("operation", entry.Operation))
	}
}

// Info records an INFO entry.
func (l *Logger) Info(ctx context.Context, accountID *string, channel, operation, message string, detail map[string]any, duration time.Duration) {
	l.Record(ctx, domain.ActivityLogEntry{
		AccountID: accountID,
		Channel:   channel,
		Operation: operation,
		Severity:  domain.SeverityInfo,
		Message:   message,
		Detail:    detail,
		Duration:  duration,
	})
}

// Warn records a WARNING entry.
func (l *Logger) Warn(ctx context.Context, accountID *string, channel, operation, message string, detail map[string]any, duration time.Duration) {
	l.Record(ctx, domain.ActivityLogEntry{
		AccountID: accountID,
		Channel:   channel,
		Operation: operation,
		Severity:  domain.SeverityWarning,
		Message:   message,
		Detail:    detail,
		Duration:  duration,
	})
}

// Error records an ERROR entry.
func (l *Logger) Error(ctx context.Context, accountID *string, channel, operation, message string, detail map[string]any, duration time.Duration) {
	l.Record(ctx, domain.ActivityLogEntry{
		AccountID: accountID,
		Channel:   channel,
		Operation: operation,
		Severity:  domain.SeverityError,
		Message:   message,
		Detail:    detail,
		Duration:  duration,
	})
}
