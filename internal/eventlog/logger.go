// Package eventlog persists the append-only authentication event trail.
// Writes are fire-and-forget from the caller's point of view: a login must
// never fail because the audit trail could not be written.
package eventlog

import (
	"context"
	"encoding/json"
	"log/slog"

	"shopauth/internal/domain"
	"shopauth/internal/observability/metrics"
	"shopauth/internal/store"

	"github.com/google/uuid"
)

type ctxKey string

const ctxKeyAttemptID ctxKey = "attempt_id"

// ContextWithAttemptID stamps the context with the correlation id for one
// login attempt. Every event logged under that context shares it.
func ContextWithAttemptID(ctx context.Context, id domain.AttemptID) context.Context {
	return context.WithValue(ctx, ctxKeyAttemptID, id)
}

func AttemptIDFromContext(ctx context.Context) domain.AttemptID {
	if v, ok := ctx.Value(ctxKeyAttemptID).(domain.AttemptID); ok {
		return v
	}
	return uuid.Nil
}

type Logger struct {
	store *store.Store
	log   *slog.Logger
}

func New(st *store.Store, log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{store: st, log: log}
}

// Log appends one event. Failures are reported via slog and a metric,
// never returned.
func (l *Logger) Log(ctx context.Context, eventType string, userID *domain.UserID, attrs map[string]any, severity domain.Severity) {
	attemptID := AttemptIDFromContext(ctx)

	payload, err := json.Marshal(attrs)
	if err != nil {
		// Un-marshalable attributes still deserve an event row.
		payload = []byte(`{"marshal_error":true}`)
	}

	ev := &domain.AuthEvent{
		EventType:  eventType,
		UserID:     userID,
		AttemptID:  attemptID,
		Attributes: payload,
		Severity:   severity,
	}

	if l.store != nil {
		if err := l.store.Events().Append(ctx, ev); err != nil {
			metrics.EventLogFailuresTotal.WithLabelValues(eventType).Inc()
			l.log.Error("auth event write failed",
				"event_type", eventType,
				"attempt_id", attemptID.String(),
				"error", err,
			)
		}
	}

	l.log.LogAttrs(ctx, slogLevel(severity), "auth event",
		slog.String("event_type", eventType),
		slog.String("attempt_id", attemptID.String()),
		slog.String("severity", string(severity)),
		slog.Any("attrs", attrs),
	)
}

func slogLevel(s domain.Severity) slog.Level {
	switch s {
	case domain.SeverityWarning:
		return slog.LevelWarn
	case domain.SeverityError, domain.SeverityCritical:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
