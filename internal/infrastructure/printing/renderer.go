package printing

import (
	"context"
	"sync"
	"time"
)

// MountedDocument is rendered markup attached to a live page in the render
// host. It stays alive until Release is called.
type MountedDocument struct {
	// Target is the id of the container element holding the invoice
	Target string
	// HTML is the markup that was mounted
	HTML string
	// MountDuration is how long mounting and settling took
	MountDuration time.Duration

	// handle is the implementation-specific page reference
	handle  any
	release func()
	once    sync.Once
}

// NewMountedDocument creates a document whose Release runs release once.
func NewMountedDocument(target, html string, handle any, release func()) *MountedDocument {
	return &MountedDocument{
		Target:  target,
		HTML:    html,
		handle:  handle,
		release: release,
	}
}

// Handle returns the implementation-specific page reference
func (d *MountedDocument) Handle() any {
	if d == nil {
		return nil
	}
	return d.handle
}

// Release detaches the document from the host. Calling it more than once is safe.
func (d *MountedDocument) Release() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		if d.release != nil {
			d.release()
		}
	})
}

// Bitmap is a captured raster of a mounted document
type Bitmap struct {
	// PNG holds the encoded image
	PNG []byte
	// Width and Height are in device pixels
	Width  int
	Height int
	// Scale is the device scale factor used for the capture
	Scale float64
}

// OffscreenHost mounts rendered markup into a page that is never shown to the user.
type OffscreenHost interface {
	// Acquire mounts html inside a container with the given id and waits for
	// layout to settle. The caller must Release the returned document.
	Acquire(ctx context.Context, target, html string) (*MountedDocument, error)
}

// Rasterizer captures a mounted document as a bitmap
type Rasterizer interface {
	Capture(ctx context.Context, doc *MountedDocument) (*Bitmap, error)
}

// RenderError represents an error in one of the export stages
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for export failures
const (
	ErrCodeRenderTimeout  = "RENDER_TIMEOUT"
	ErrCodeRenderFailed   = "RENDER_FAILED"
	ErrCodeInvalidHTML    = "INVALID_HTML"
	ErrCodeTargetNotFound = "TARGET_NOT_FOUND"
	ErrCodeCaptureFailed  = "CAPTURE_FAILED"
	ErrCodeAssemblyFailed = "ASSEMBLY_FAILED"
	ErrCodeStorageFailed  = "STORAGE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
