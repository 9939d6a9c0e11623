package printing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicesxpert/backend/internal/domain/shared"
)

func newTestJob(t *testing.T) *ExportJob {
	t.Helper()
	job, err := NewExportJob("local", uuid.New(), "INV-2025-0001", "modern")
	require.NoError(t, err)
	return job
}

func TestNewExportJob(t *testing.T) {
	invoiceID := uuid.New()
	job, err := NewExportJob("local", invoiceID, "INV-2025-0001", "modern")
	require.NoError(t, err)

	assert.Equal(t, "local", job.OwnerID)
	assert.Equal(t, invoiceID, job.InvoiceID)
	assert.Equal(t, ExportStatusIdle, job.Status)
	assert.Equal(t, PaperSizeA4, job.Paper)
	assert.Equal(t, "Invoice-INV-2025-0001.pdf", job.FileName)
	assert.Equal(t, "invoice-"+invoiceID.String()+"-pdf", job.HostTarget)

	_, err = NewExportJob("local", uuid.Nil, "INV-2025-0001", "modern")
	assert.Error(t, err)

	_, err = NewExportJob("local", invoiceID, "", "modern")
	assert.Error(t, err)
}

func TestFileNameFor(t *testing.T) {
	assert.Equal(t, "Invoice-INV-2025-0007.pdf", FileNameFor("INV-2025-0007"))
	assert.Equal(t, "Invoice-A_B_C.pdf", FileNameFor("A/B C"))
	assert.Equal(t, "Invoice-.._etc_passwd.pdf", FileNameFor("../etc/passwd"))
	assert.Equal(t, "Invoice-x_y.pdf", FileNameFor("x\"y"))
}

func TestExportJob_HappyPath(t *testing.T) {
	job := newTestJob(t)

	require.NoError(t, job.StartRendering())
	require.NoError(t, job.MarkMounted())
	require.NoError(t, job.MarkCaptured())
	require.NoError(t, job.MarkAssembled(3, 120_000))
	require.NoError(t, job.MarkDownloaded())

	assert.Equal(t, ExportStatusDownloaded, job.Status)
	assert.Equal(t, 3, job.PageCount)
	assert.Equal(t, int64(120_000), job.SizeBytes)
	assert.NotNil(t, job.FinishedAt)
	assert.True(t, job.IsTerminal())

	var completed int
	for _, e := range job.GetDomainEvents() {
		if e.EventType() == EventTypeExportCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)
}

func TestExportJob_StagesCannotBeSkipped(t *testing.T) {
	job := newTestJob(t)

	err := job.MarkCaptured()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)

	require.NoError(t, job.StartRendering())
	assert.Error(t, job.MarkAssembled(1, 10))
	assert.Equal(t, ExportStatusRendering, job.Status)
}

func TestExportJob_MarkAssembledRequiresPages(t *testing.T) {
	job := newTestJob(t)
	require.NoError(t, job.StartRendering())
	require.NoError(t, job.MarkMounted())
	require.NoError(t, job.MarkCaptured())

	assert.Error(t, job.MarkAssembled(0, 10))
	assert.Equal(t, ExportStatusCaptured, job.Status)
}

func TestExportJob_Fail(t *testing.T) {
	t.Run("records the failing stage", func(t *testing.T) {
		job := newTestJob(t)
		require.NoError(t, job.StartRendering())
		require.NoError(t, job.MarkMounted())

		require.NoError(t, job.Fail("capture timed out"))
		assert.Equal(t, ExportStatusFailed, job.Status)
		assert.Equal(t, ExportStatusMounted, job.FailedStage)
		assert.Equal(t, "capture timed out", job.ErrorMessage)
		assert.NotNil(t, job.FinishedAt)
	})

	t.Run("idle job cannot fail", func(t *testing.T) {
		job := newTestJob(t)
		assert.Error(t, job.Fail("boom"))
		assert.Equal(t, ExportStatusIdle, job.Status)
	})

	t.Run("assembled job cannot fail", func(t *testing.T) {
		job := newTestJob(t)
		require.NoError(t, job.StartRendering())
		require.NoError(t, job.MarkMounted())
		require.NoError(t, job.MarkCaptured())
		require.NoError(t, job.MarkAssembled(1, 10))

		assert.Error(t, job.Fail("late"))
		assert.Equal(t, ExportStatusAssembled, job.Status)
	})

	t.Run("publishes failure event", func(t *testing.T) {
		job := newTestJob(t)
		require.NoError(t, job.StartRendering())
		require.NoError(t, job.Fail("render failed"))

		events := job.GetDomainEvents()
		last := events[len(events)-1]
		failed, ok := last.(*ExportFailedEvent)
		require.True(t, ok)
		assert.Equal(t, ExportStatusRendering, failed.FailedStage)
		assert.Equal(t, "render failed", failed.ErrorMessage)
	})
}

func TestExportJob_SetArchiveURL(t *testing.T) {
	job := newTestJob(t)
	job.SetArchiveURL("s3://bucket/key.pdf")
	assert.Equal(t, "s3://bucket/key.pdf", job.ArchiveURL)
}
