package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/printing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"github.com/invoicesxpert/backend/internal/infrastructure/logger"
	infra "github.com/invoicesxpert/backend/internal/infrastructure/printing"
	"github.com/invoicesxpert/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultLockWait bounds how long an export waits behind another export of the same invoice
const DefaultLockWait = 30 * time.Second

// Locker serializes exports of the same invoice
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// ExportService runs the invoice export pipeline:
// render, mount off-screen, rasterize, paginate.
type ExportService struct {
	invoices   invoicing.InvoiceRepository
	jobs       printing.ExportJobRepository
	renderer   *infra.InvoiceRenderer
	host       infra.OffscreenHost
	rasterizer infra.Rasterizer
	paginator  *infra.Paginator
	locker     Locker
	archive    infra.ExportArchive
	events     shared.EventPublisher
	metrics    *telemetry.ExportMetrics
	lockWait   time.Duration
	logger     *zap.Logger
}

// ExportServiceOption configures optional collaborators
type ExportServiceOption func(*ExportService)

// WithLocker serializes exports per invoice
func WithLocker(l Locker) ExportServiceOption {
	return func(s *ExportService) {
		s.locker = l
	}
}

// WithLockWait sets how long an export waits for the invoice lock
func WithLockWait(d time.Duration) ExportServiceOption {
	return func(s *ExportService) {
		if d > 0 {
			s.lockWait = d
		}
	}
}

// WithArchive stores a copy of every assembled PDF
func WithArchive(a infra.ExportArchive) ExportServiceOption {
	return func(s *ExportService) {
		s.archive = a
	}
}

// WithEventPublisher publishes the job's domain events after each export
func WithEventPublisher(p shared.EventPublisher) ExportServiceOption {
	return func(s *ExportService) {
		s.events = p
	}
}

// WithMetrics records export outcomes
func WithMetrics(m *telemetry.ExportMetrics) ExportServiceOption {
	return func(s *ExportService) {
		s.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ExportServiceOption {
	return func(s *ExportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewExportService creates a new ExportService
func NewExportService(
	invoices invoicing.InvoiceRepository,
	jobs printing.ExportJobRepository,
	renderer *infra.InvoiceRenderer,
	host infra.OffscreenHost,
	rasterizer infra.Rasterizer,
	paginator *infra.Paginator,
	opts ...ExportServiceOption,
) *ExportService {
	if paginator == nil {
		paginator = infra.NewPaginator()
	}
	s := &ExportService{
		invoices:   invoices,
		jobs:       jobs,
		renderer:   renderer,
		host:       host,
		rasterizer: rasterizer,
		paginator:  paginator,
		lockWait:   DefaultLockWait,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export renders the invoice in the requested style and assembles it into an
// A4 PDF. The render host is released on every path, and a second export of
// the same invoice waits for the first to finish.
func (s *ExportService) Export(ctx context.Context, ownerID string, req ExportRequest) (*ExportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "export", "Export",
		telemetry.WithAttribute(telemetry.SpanAttrInvoiceID, req.InvoiceID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, ownerID),
	)
	defer span.End()

	inv, err := s.invoices.FindByID(ctx, ownerID, req.InvoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Invoice not found")
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	key := req.Template
	if key == "" {
		key = inv.Template
	}
	theme := s.renderer.Registry().Resolve(key)
	telemetry.SetAttributes(span, telemetry.SpanAttrTemplate, theme.Key)

	release, err := s.lock(ctx, inv.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer release()

	job, err := printing.NewExportJob(ownerID, inv.ID, inv.InvoiceNumber, theme.Key)
	if err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save export job: %w", err)
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrExportID, job.ID.String())

	start := time.Now()
	s.metrics.Started(ctx, theme.Key)
	if err := job.StartRendering(); err != nil {
		return nil, err
	}
	s.saveProgress(ctx, job)

	rendered, err := s.renderer.Render(ctx, inv, theme.Key)
	if err != nil {
		return nil, s.fail(ctx, span, job, start, err)
	}
	s.logger.Debug("invoice rendered",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("template", theme.Key),
		zap.Duration("duration", rendered.RenderDuration))

	doc, err := s.host.Acquire(ctx, job.HostTarget, rendered.HTML)
	if err != nil {
		return nil, s.fail(ctx, span, job, start, err)
	}
	defer doc.Release()
	if err := job.MarkMounted(); err != nil {
		return nil, err
	}
	s.saveProgress(ctx, job)
	telemetry.AddEvent(span, "mounted", telemetry.SpanAttrExportStage, job.Status.String())

	bitmap, err := s.rasterizer.Capture(ctx, doc)
	if err != nil {
		doc.Release()
		return nil, s.fail(ctx, span, job, start, err)
	}
	// the page is no longer needed once the pixels are out
	doc.Release()
	if err := job.MarkCaptured(); err != nil {
		return nil, err
	}
	s.saveProgress(ctx, job)
	telemetry.AddEvent(span, "captured", "width", bitmap.Width, "height", bitmap.Height)

	pdf, err := s.paginator.Assemble(bitmap, infra.DocumentMeta{
		Title:   "Invoice " + inv.InvoiceNumber,
		Author:  inv.Company.Name,
		Subject: "Invoice for " + inv.Client.Name,
	})
	if err != nil {
		return nil, s.fail(ctx, span, job, start, err)
	}
	if err := job.MarkAssembled(pdf.PageCount, pdf.Size()); err != nil {
		return nil, s.fail(ctx, span, job, start, err)
	}

	s.archiveCopy(ctx, job, pdf.Bytes)

	if err := s.jobs.Save(ctx, job); err != nil {
		s.logger.Warn("failed to save assembled export job",
			zap.String("export_id", job.ID.String()), zap.Error(err))
	}
	s.publish(ctx, job)

	elapsed := time.Since(start)
	s.metrics.Succeeded(ctx, theme.Key, pdf.PageCount, elapsed)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPageCount, pdf.PageCount,
		telemetry.SpanAttrSizeBytes, pdf.Size(),
	)
	telemetry.SetOK(span)

	logger.Enrich(ctx, s.logger).Info("invoice exported",
		zap.String("export_id", job.ID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("template", theme.Key),
		zap.Int("pages", pdf.PageCount),
		zap.Int64("size_bytes", pdf.Size()),
		zap.Duration("duration", elapsed))

	return &ExportResult{
		Job:         job,
		PDF:         pdf.Bytes,
		FileName:    job.FileName,
		PageCount:   pdf.PageCount,
		ContentType: PDFContentType,
	}, nil
}

// MarkDownloaded records that the PDF bytes were handed to the client
func (s *ExportService) MarkDownloaded(ctx context.Context, job *printing.ExportJob) error {
	if err := job.MarkDownloaded(); err != nil {
		return err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("failed to save export job: %w", err)
	}
	s.publish(ctx, job)
	return nil
}

// GetJob retrieves an export job by ID
func (s *ExportService) GetJob(ctx context.Context, ownerID string, id uuid.UUID) (*ExportJobResponse, error) {
	job, err := s.jobs.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Export not found")
		}
		return nil, fmt.Errorf("failed to get export job: %w", err)
	}
	resp := ToExportJobResponse(job)
	return &resp, nil
}

// ListJobs returns the exports of one invoice, newest first
func (s *ExportService) ListJobs(ctx context.Context, ownerID string, invoiceID uuid.UUID) ([]ExportJobResponse, error) {
	jobs, err := s.jobs.FindByInvoice(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list export jobs: %w", err)
	}
	return ToExportJobResponses(jobs), nil
}

func (s *ExportService) lock(ctx context.Context, invoiceID uuid.UUID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	lockCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	release, err := s.locker.Lock(lockCtx, "export:"+invoiceID.String())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, shared.ErrExportBusy
		}
		return nil, fmt.Errorf("failed to lock invoice for export: %w", err)
	}
	return release, nil
}

// fail moves the job to Failed and maps the stage error for the caller.
func (s *ExportService) fail(ctx context.Context, span trace.Span, job *printing.ExportJob, start time.Time, cause error) error {
	stage := job.Status.String()
	// the job must be recorded even when the request was abandoned
	bg := context.WithoutCancel(ctx)

	if err := job.Fail(cause.Error()); err != nil {
		s.logger.Warn("failed to mark export failed", zap.String("export_id", job.ID.String()), zap.Error(err))
	}
	if err := s.jobs.Save(bg, job); err != nil {
		s.logger.Warn("failed to save failed export job", zap.String("export_id", job.ID.String()), zap.Error(err))
	}
	s.publish(bg, job)
	s.metrics.Failed(bg, job.Template, stage, time.Since(start))

	telemetry.SetAttributes(span, telemetry.SpanAttrExportStage, stage)
	telemetry.RecordError(span, cause)

	logger.Enrich(ctx, s.logger).Error("invoice export failed",
		zap.String("export_id", job.ID.String()),
		zap.String("invoice_id", job.InvoiceID.String()),
		zap.String("template", job.Template),
		zap.String("stage", stage),
		zap.Duration("duration", time.Since(start)),
		zap.Error(cause))

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("export cancelled during %s: %w", stage, err)
	}
	var renderErr *infra.RenderError
	if errors.As(cause, &renderErr) {
		return fmt.Errorf("%w: %w", shared.ErrExportFailed, renderErr)
	}
	return fmt.Errorf("failed to export invoice: %w", cause)
}

func (s *ExportService) archiveCopy(ctx context.Context, job *printing.ExportJob, pdf []byte) {
	if s.archive == nil {
		return
	}
	result, err := s.archive.Store(ctx, &infra.StoreRequest{
		OwnerID:  job.OwnerID,
		JobID:    job.ID,
		FileName: job.FileName,
		PDFData:  pdf,
	})
	if err != nil {
		s.logger.Warn("failed to archive exported PDF",
			zap.String("export_id", job.ID.String()), zap.Error(err))
		return
	}
	job.SetArchiveURL(result.URL)
}

func (s *ExportService) saveProgress(ctx context.Context, job *printing.ExportJob) {
	if err := s.jobs.Save(ctx, job); err != nil {
		s.logger.Warn("failed to save export progress",
			zap.String("export_id", job.ID.String()),
			zap.String("status", job.Status.String()),
			zap.Error(err))
	}
}

func (s *ExportService) publish(ctx context.Context, job *printing.ExportJob) {
	events := job.PullDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish export events",
			zap.String("export_id", job.ID.String()), zap.Error(err))
	}
}
