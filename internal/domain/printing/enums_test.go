package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaperSize(t *testing.T) {
	assert.True(t, PaperSizeA4.IsValid())
	assert.False(t, PaperSize("LETTER").IsValid())
	assert.Equal(t, "A4", PaperSizeA4.String())

	w, h := PaperSizeA4.Dimensions()
	assert.Equal(t, 210, w)
	assert.Equal(t, 297, h)
}

func TestExportStatus_IsValid(t *testing.T) {
	for _, s := range []ExportStatus{
		ExportStatusIdle, ExportStatusRendering, ExportStatusMounted, ExportStatusCaptured,
		ExportStatusAssembled, ExportStatusDownloaded, ExportStatusFailed,
	} {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, ExportStatus("PRINTING").IsValid())
	assert.False(t, ExportStatus("").IsValid())
}

func TestExportStatus_IsTerminal(t *testing.T) {
	assert.True(t, ExportStatusDownloaded.IsTerminal())
	assert.True(t, ExportStatusFailed.IsTerminal())
	assert.False(t, ExportStatusIdle.IsTerminal())
	assert.False(t, ExportStatusAssembled.IsTerminal())
}

func TestExportStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from ExportStatus
		to   ExportStatus
		want bool
	}{
		{ExportStatusIdle, ExportStatusRendering, true},
		{ExportStatusIdle, ExportStatusMounted, false},
		{ExportStatusIdle, ExportStatusFailed, false},
		{ExportStatusRendering, ExportStatusMounted, true},
		{ExportStatusRendering, ExportStatusFailed, true},
		{ExportStatusRendering, ExportStatusCaptured, false},
		{ExportStatusMounted, ExportStatusCaptured, true},
		{ExportStatusMounted, ExportStatusFailed, true},
		{ExportStatusCaptured, ExportStatusAssembled, true},
		{ExportStatusCaptured, ExportStatusFailed, true},
		{ExportStatusAssembled, ExportStatusDownloaded, true},
		{ExportStatusAssembled, ExportStatusFailed, false},
		{ExportStatusDownloaded, ExportStatusIdle, false},
		{ExportStatusFailed, ExportStatusRendering, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}
