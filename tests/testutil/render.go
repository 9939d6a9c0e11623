package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"

	infra "github.com/invoicesxpert/backend/internal/infrastructure/printing"
)

// FakeBrowser is an off-screen host and rasterizer that needs no Chrome.
// Every capture is a white PNG of Width x Height device pixels.
type FakeBrowser struct {
	Width  int
	Height int
	// CaptureErr, when set, fails every capture
	CaptureErr error

	mu       sync.Mutex
	targets  []string
	released atomic.Int64
}

// NewFakeBrowser returns a browser capturing A4-proportioned pages of width pixels.
func NewFakeBrowser(width, height int) *FakeBrowser {
	return &FakeBrowser{Width: width, Height: height}
}

// Acquire records target and mounts html without rendering it.
func (b *FakeBrowser) Acquire(ctx context.Context, target, html string) (*infra.MountedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.targets = append(b.targets, target)
	b.mu.Unlock()
	return infra.NewMountedDocument(target, html, nil, func() { b.released.Add(1) }), nil
}

// Capture encodes a blank page.
func (b *FakeBrowser) Capture(ctx context.Context, doc *infra.MountedDocument) (*infra.Bitmap, error) {
	if b.CaptureErr != nil {
		return nil, b.CaptureErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return &infra.Bitmap{PNG: buf.Bytes(), Width: b.Width, Height: b.Height, Scale: 2}, nil
}

// Targets returns the host targets mounted so far.
func (b *FakeBrowser) Targets() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.targets...)
}

// Released returns how many mounted documents were released.
func (b *FakeBrowser) Released() int {
	return int(b.released.Load())
}
