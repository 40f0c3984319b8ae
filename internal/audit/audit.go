package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
)

// EventType defines the type of auditable event
type EventType string

const (
	EventValidationCompleted EventType = "VALIDATION_COMPLETED"
	EventDuplicateBlocked    EventType = "DUPLICATE_BLOCKED"
	EventFraudSignal         EventType = "FRAUD_SIGNAL"
	EventCapabilityDegraded  EventType = "CAPABILITY_DEGRADED"
)

// Event represents an audit event kept for compliance review
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	EventType  EventType         `json:"event_type"`
	ReportID   uuid.UUID         `json:"report_id"`
	CustomerID *int64            `json:"customer_id,omitempty"`
	Status     domain.Status     `json:"status,omitempty"`
	Score      float64           `json:"score,omitempty"`
	Codes      []string          `json:"codes,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	IPAddress  string            `json:"ip_address,omitempty"`
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a new audit logger using slog
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to marshal audit event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(event.EventType)),
		)
		return err
	}

	l.logger.InfoContext(ctx, "audit_event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.String("report_id", event.ReportID.String()),
		slog.String("status", string(event.Status)),
		slog.String("event_data", string(eventJSON)),
	)

	return nil
}

// NoOpLogger is a logger that does nothing (for testing or when audit is disabled)
type NoOpLogger struct{}

// Log does nothing and returns nil
func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}

// FromReport builds the completion event for a finished validation.
func FromReport(r *domain.ValidationReport, customerID *int64) Event {
	event := Event{
		EventType:  EventValidationCompleted,
		ReportID:   r.ID,
		CustomerID: customerID,
		Status:     r.Status,
		Score:      r.Score,
	}
	for _, res := range r.Results() {
		for _, code := range res.Codes {
			event.Codes = append(event.Codes, string(code))
		}
	}
	return event
}
