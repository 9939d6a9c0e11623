package printing

// PaperSize represents the page format of an exported document
type PaperSize string

const (
	PaperSizeA4 PaperSize = "A4" // 210mm x 297mm
)

// IsValid checks if the PaperSize is a valid value
func (p PaperSize) IsValid() bool {
	return p == PaperSizeA4
}

// String returns the string representation of PaperSize
func (p PaperSize) String() string {
	return string(p)
}

// Dimensions returns the portrait paper dimensions in millimeters (width, height)
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeA4:
		return 210, 297
	default:
		return 210, 297
	}
}

// ExportStatus is the stage an export has reached
type ExportStatus string

const (
	ExportStatusIdle       ExportStatus = "IDLE"
	ExportStatusRendering  ExportStatus = "RENDERING"
	ExportStatusMounted    ExportStatus = "MOUNTED"
	ExportStatusCaptured   ExportStatus = "CAPTURED"
	ExportStatusAssembled  ExportStatus = "ASSEMBLED"
	ExportStatusDownloaded ExportStatus = "DOWNLOADED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// IsValid checks if the ExportStatus is a valid value
func (s ExportStatus) IsValid() bool {
	switch s {
	case ExportStatusIdle, ExportStatusRendering, ExportStatusMounted, ExportStatusCaptured,
		ExportStatusAssembled, ExportStatusDownloaded, ExportStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of ExportStatus
func (s ExportStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are possible
func (s ExportStatus) IsTerminal() bool {
	return s == ExportStatusDownloaded || s == ExportStatusFailed
}

// CanTransitionTo checks if the status can transition to the target status
func (s ExportStatus) CanTransitionTo(target ExportStatus) bool {
	switch s {
	case ExportStatusIdle:
		return target == ExportStatusRendering
	case ExportStatusRendering:
		return target == ExportStatusMounted || target == ExportStatusFailed
	case ExportStatusMounted:
		return target == ExportStatusCaptured || target == ExportStatusFailed
	case ExportStatusCaptured:
		return target == ExportStatusAssembled || target == ExportStatusFailed
	case ExportStatusAssembled:
		return target == ExportStatusDownloaded
	}
	return false
}
