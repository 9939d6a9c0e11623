package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ExportMetrics records PDF export outcomes. A nil *ExportMetrics is valid
// and records nothing.
type ExportMetrics struct {
	exportsTotal *Counter
	duration     *Histogram
	pages        *Histogram
	inFlight     *UpDownCounter
}

// NewExportMetrics registers the export instruments on meter.
func NewExportMetrics(meter metric.Meter) (*ExportMetrics, error) {
	exportsTotal, err := NewCounter(meter, "invoice_exports_total",
		"Number of PDF exports by outcome and template", "{export}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "invoice_export_duration_seconds",
		Description: "Time from render start to assembled PDF",
		Unit:        "s",
		Boundaries:  ExportDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	pages, err := NewHistogram(meter, HistogramOpts{
		Name:        "invoice_export_pages",
		Description: "Pages per exported PDF",
		Unit:        "{page}",
		Boundaries:  PageCountBuckets,
	})
	if err != nil {
		return nil, err
	}
	inFlight, err := NewUpDownCounter(meter, "invoice_exports_in_flight",
		"Exports currently holding a render host", "{export}")
	if err != nil {
		return nil, err
	}

	return &ExportMetrics{
		exportsTotal: exportsTotal,
		duration:     duration,
		pages:        pages,
		inFlight:     inFlight,
	}, nil
}

// Started marks an export as in flight.
func (m *ExportMetrics) Started(ctx context.Context, template string) {
	if m == nil {
		return
	}
	m.inFlight.Add(ctx, 1, AttrExportTemplate.String(template))
}

// Succeeded records a completed export.
func (m *ExportMetrics) Succeeded(ctx context.Context, template string, pages int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Add(ctx, -1, AttrExportTemplate.String(template))
	m.exportsTotal.Inc(ctx, AttrExportStatus.String("success"), AttrExportTemplate.String(template))
	m.duration.RecordDuration(ctx, elapsed, AttrExportTemplate.String(template))
	m.pages.Record(ctx, float64(pages), AttrExportTemplate.String(template))
}

// Failed records a failed export and the stage it failed in.
func (m *ExportMetrics) Failed(ctx context.Context, template, stage string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.Add(ctx, -1, AttrExportTemplate.String(template))
	m.exportsTotal.Inc(ctx,
		AttrExportStatus.String("failure"),
		AttrExportTemplate.String(template),
		AttrExportStage.String(stage),
	)
	m.duration.RecordDuration(ctx, elapsed, AttrExportTemplate.String(template))
}
