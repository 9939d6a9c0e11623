package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"image/png"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultViewportWidth = 1024
	minScale             = 2.0
	defaultSettleDelay   = 500 * time.Millisecond
	// viewportHeight only bounds the initial layout; screenshots capture
	// beyond the viewport.
	viewportHeight = 1400
)

// ChromedpConfig contains configuration for the headless browser
type ChromedpConfig struct {
	// DefaultTimeout bounds each mount and capture
	DefaultTimeout time.Duration
	// RemoteURL is the devtools websocket of a running browser (optional).
	// If empty, chromedp launches a new browser process.
	RemoteURL string
	// ExecPath overrides the browser binary (optional)
	ExecPath string
	// Headless mode
	Headless bool
	// DisableGPU disables GPU hardware acceleration
	DisableGPU bool
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// ViewportWidth is the layout width in CSS pixels (default: 1024)
	ViewportWidth int
	// Scale is the device scale factor, never below 2
	Scale float64
	// SettleDelay is waited when the fonts-ready signal is unavailable
	SettleDelay time.Duration
	// Logger for debug output
	Logger *zap.Logger
}

// ChromedpBrowser is the off-screen render host and rasterizer backed by
// headless Chrome. The browser process is shared; every acquisition opens
// its own tab.
type ChromedpBrowser struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc

	// the first context created from the allocator owns the browser process
	mu            sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc

	open atomic.Int64
}

type chromeTab struct {
	ctx    context.Context
	target string
}

// NewChromedpBrowser creates the shared browser allocator. The browser itself
// starts lazily with the first tab.
func NewChromedpBrowser(config *ChromedpConfig) (*ChromedpBrowser, error) {
	if config == nil {
		config = &ChromedpConfig{Headless: true, DisableGPU: true}
	}

	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
	if config.ViewportWidth == 0 {
		config.ViewportWidth = defaultViewportWidth
	}
	if config.Scale < minScale {
		config.Scale = minScale
	}
	if config.SettleDelay == 0 {
		config.SettleDelay = defaultSettleDelay
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &ChromedpBrowser{
		config: config,
		logger: logger,
	}
	b.initAllocator()
	return b, nil
}

func (b *ChromedpBrowser) initAllocator() {
	if b.config.RemoteURL != "" {
		b.allocCtx, b.allocCancel = chromedp.NewRemoteAllocator(context.Background(), b.config.RemoteURL)
		return
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.config.Headless),
		chromedp.Flag("disable-gpu", b.config.DisableGPU),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("font-render-hinting", "none"),
		chromedp.WindowSize(b.config.ViewportWidth, viewportHeight),
	)
	if b.config.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if b.config.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.config.ExecPath))
	}

	b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// Acquire opens a tab, mounts html inside a host container and waits for
// layout to settle.
func (b *ChromedpBrowser) Acquire(ctx context.Context, target, markup string) (*MountedDocument, error) {
	if strings.TrimSpace(target) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "host target is empty", nil)
	}
	if strings.TrimSpace(markup) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}

	start := time.Now()
	browserCtx, err := b.browser()
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to start browser", err)
	}
	tabCtx, tabCancel := chromedp.NewContext(browserCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			b.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	b.open.Add(1)
	release := func() {
		tabCancel()
		b.open.Add(-1)
	}

	// The first Run on a context creates its target and ties the target to
	// that context, so it must not be the bounded one.
	if err := chromedp.Run(tabCtx); err != nil {
		release()
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to open tab", err)
	}

	runCtx, cancel := b.boundTo(ctx, tabCtx)
	defer cancel()

	document := hostDocument(target, markup)
	err = chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, document).Do(ctx)
		}),
		chromedp.WaitReady("#"+target, chromedp.ByID),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := awaitFonts(ctx); err != nil {
				b.logger.Debug("fonts-ready signal unavailable, waiting settle delay",
					zap.String("target", target),
					zap.Error(err))
				return chromedp.Sleep(b.config.SettleDelay).Do(ctx)
			}
			return nil
		}),
	)
	if err != nil {
		release()
		return nil, classifyBrowserError(ctx, runCtx, "mount", err, ErrCodeRenderFailed)
	}

	doc := NewMountedDocument(target, markup, &chromeTab{ctx: tabCtx, target: target}, release)
	doc.MountDuration = time.Since(start)
	return doc, nil
}

// Capture screenshots the host container at the configured device scale.
func (b *ChromedpBrowser) Capture(ctx context.Context, doc *MountedDocument) (*Bitmap, error) {
	tab, ok := doc.Handle().(*chromeTab)
	if !ok {
		return nil, NewRenderError(ErrCodeCaptureFailed, "document was not mounted by this browser", nil)
	}
	if tab.ctx.Err() != nil {
		return nil, NewRenderError(ErrCodeTargetNotFound, "document has been released", tab.ctx.Err())
	}

	runCtx, cancel := b.boundTo(ctx, tab.ctx)
	defer cancel()

	selector := "#" + tab.target
	var (
		exists bool
		buf    []byte
	)
	err := chromedp.Run(runCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDeviceMetricsOverride(int64(b.config.ViewportWidth), viewportHeight, b.config.Scale, false).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDefaultBackgroundColorOverride().
				WithColor(&cdp.RGBA{R: 255, G: 255, B: 255, A: 1}).
				Do(ctx)
		}),
		chromedp.Evaluate(fmt.Sprintf("document.getElementById(%q) !== null", tab.target), &exists),
	)
	if err != nil {
		return nil, classifyBrowserError(ctx, runCtx, "capture", err, ErrCodeCaptureFailed)
	}
	if !exists {
		return nil, NewRenderError(ErrCodeTargetNotFound, "render target not found: "+tab.target, nil)
	}

	// Device pixels already carry the scale factor.
	if err := chromedp.Run(runCtx, chromedp.ScreenshotScale(selector, 1, &buf, chromedp.ByID)); err != nil {
		return nil, classifyBrowserError(ctx, runCtx, "capture", err, ErrCodeCaptureFailed)
	}

	bitmap, err := decodeBitmap(buf, b.config.Scale)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("captured invoice bitmap",
		zap.String("target", tab.target),
		zap.Int("width", bitmap.Width),
		zap.Int("height", bitmap.Height))
	return bitmap, nil
}

// OpenTabs returns the number of tabs that have not been released
func (b *ChromedpBrowser) OpenTabs() int {
	return int(b.open.Load())
}

// Ping starts the browser if needed and asks it for its targets
func (b *ChromedpBrowser) Ping(ctx context.Context) error {
	browserCtx, err := b.browser()
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	runCtx, cancel := b.boundTo(ctx, browserCtx)
	defer cancel()
	if _, err := chromedp.Targets(runCtx); err != nil {
		return fmt.Errorf("browser not responding: %w", err)
	}
	return nil
}

// browser starts the shared browser on first use
func (b *ChromedpBrowser) browser() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browserCtx != nil && b.browserCtx.Err() == nil {
		return b.browserCtx, nil
	}

	ctx, cancel := chromedp.NewContext(b.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			b.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, err
	}
	b.browserCtx, b.browserCancel = ctx, cancel
	b.logger.Info("headless browser started", zap.Bool("remote", b.config.RemoteURL != ""))
	return ctx, nil
}

// Close shuts down the browser
func (b *ChromedpBrowser) Close() error {
	b.mu.Lock()
	if b.browserCancel != nil {
		b.browserCancel()
		b.browserCtx, b.browserCancel = nil, nil
	}
	b.mu.Unlock()
	if b.allocCancel != nil {
		b.allocCancel()
	}
	return nil
}

// boundTo derives a context for work in tab that ends when the caller's ctx
// ends or the default timeout elapses, without tearing the tab down.
func (b *ChromedpBrowser) boundTo(ctx, tab context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(tab, b.config.DefaultTimeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// hostDocument wraps markup in the white host container. Padding sits inside
// the 1024 CSS px so the capture is exactly the viewport width.
func hostDocument(target, markup string) string {
	var buf bytes.Buffer
	buf.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
	buf.WriteString(`</head><body style="margin:0;background:#ffffff">`)
	buf.WriteString(`<div id="`)
	buf.WriteString(html.EscapeString(target))
	buf.WriteString(`" style="box-sizing:border-box;width:1024px;padding:20px;background:#ffffff">`)
	buf.WriteString(markup)
	buf.WriteString(`</div></body></html>`)
	return buf.String()
}

func awaitFonts(ctx context.Context) error {
	var ready bool
	err := chromedp.Evaluate(`document.fonts.ready.then(() => true)`, &ready,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		},
	).Do(ctx)
	if err != nil {
		return err
	}
	if !ready {
		return errors.New("fonts not ready")
	}
	return nil
}

// decodeBitmap reads the PNG header for the pixel dimensions
func decodeBitmap(data []byte, scale float64) (*Bitmap, error) {
	if len(data) == 0 {
		return nil, NewRenderError(ErrCodeCaptureFailed, "screenshot is empty", nil)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, NewRenderError(ErrCodeCaptureFailed, "screenshot is not a valid PNG", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, NewRenderError(ErrCodeCaptureFailed, "screenshot has no pixels", nil)
	}
	return &Bitmap{PNG: data, Width: cfg.Width, Height: cfg.Height, Scale: scale}, nil
}

// classifyBrowserError maps chromedp failures onto render error codes. A
// cancelled caller context and an elapsed timeout both report RENDER_TIMEOUT.
func classifyBrowserError(parent, run context.Context, stage string, err error, code string) error {
	if parent.Err() != nil {
		return NewRenderError(ErrCodeRenderTimeout, stage+" was cancelled", parent.Err())
	}
	if errors.Is(run.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return NewRenderError(ErrCodeRenderTimeout, stage+" timed out", err)
	}
	return NewRenderError(code, stage+" failed", err)
}

var (
	_ OffscreenHost = (*ChromedpBrowser)(nil)
	_ Rasterizer    = (*ChromedpBrowser)(nil)
)
