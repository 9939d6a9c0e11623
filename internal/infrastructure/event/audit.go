package event

import (
	"context"

	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/printing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler writes a structured log line for every export and invoice
// lifecycle event.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an audit handler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// EventTypes subscribes to every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.String("owner_id", event.OwnerID()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *printing.ExportCompletedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("template", e.Template),
			zap.Int("pages", e.PageCount),
			zap.Int64("size_bytes", e.SizeBytes),
		)
	case *printing.ExportFailedEvent:
		fields = append(fields,
			zap.String("invoice_id", e.InvoiceID.String()),
			zap.String("template", e.Template),
			zap.String("failed_stage", string(e.FailedStage)),
			zap.String("error", e.ErrorMessage),
		)
		h.logger.Warn("export failed", fields...)
		return nil
	case *printing.ExportStatusChangedEvent:
		fields = append(fields,
			zap.String("from", string(e.From)),
			zap.String("to", string(e.To)),
		)
		h.logger.Debug("export stage", fields...)
		return nil
	case *invoicing.InvoiceCreatedEvent:
		fields = append(fields,
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("currency", e.Currency),
			zap.String("total", e.Total),
		)
	}

	h.logger.Info("domain event", fields...)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
