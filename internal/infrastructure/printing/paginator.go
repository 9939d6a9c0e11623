package printing

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/invoicesxpert/backend/internal/domain/printing"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// DocumentMeta is written into the PDF info dictionary
type DocumentMeta struct {
	Title   string
	Author  string
	Subject string
	Creator string
}

// Document is an assembled PDF
type Document struct {
	Bytes     []byte
	PageCount int
	// Layout holds the source rows placed on each page
	Layout printing.PageLayout
}

// Size returns the PDF size in bytes
func (d *Document) Size() int64 {
	return int64(len(d.Bytes))
}

// Paginator cuts a bitmap into page-height bands and assembles them into a PDF.
type Paginator struct {
	paper   printing.PaperSize
	creator string
	logger  *zap.Logger
}

// PaginatorOption configures the paginator
type PaginatorOption func(*Paginator)

// WithCreator sets the PDF creator field
func WithCreator(creator string) PaginatorOption {
	return func(p *Paginator) {
		p.creator = creator
	}
}

// WithPaginatorLogger sets the logger
func WithPaginatorLogger(logger *zap.Logger) PaginatorOption {
	return func(p *Paginator) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPaginator creates an A4 portrait paginator
func NewPaginator(opts ...PaginatorOption) *Paginator {
	p := &Paginator{
		paper:   printing.PaperSizeA4,
		creator: "InvoicesXpert",
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Assemble scales the bitmap to the full page width and places one band of
// source rows on each page. Consecutive bands share an edge and never overlap.
func (p *Paginator) Assemble(bitmap *Bitmap, meta DocumentMeta) (*Document, error) {
	if bitmap == nil || len(bitmap.PNG) == 0 {
		return nil, NewRenderError(ErrCodeAssemblyFailed, "bitmap is empty", nil)
	}

	src, err := png.Decode(bytes.NewReader(bitmap.PNG))
	if err != nil {
		return nil, NewRenderError(ErrCodeAssemblyFailed, "failed to decode bitmap", err)
	}
	bounds := src.Bounds()

	layout, err := printing.PlanPages(p.paper, bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, NewRenderError(ErrCodeAssemblyFailed, "failed to plan pages", err)
	}

	pageW, _ := p.paper.Dimensions()
	pdf := gofpdf.New("P", "mm", p.paper.String(), "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	creator := meta.Creator
	if creator == "" {
		creator = p.creator
	}
	pdf.SetCreator(creator, true)

	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	for _, s := range layout.Slices {
		band, err := cropRows(src, s.Top, s.Bottom)
		if err != nil {
			return nil, NewRenderError(ErrCodeAssemblyFailed, fmt.Sprintf("failed to encode page %d", s.Index+1), err)
		}
		name := fmt.Sprintf("page-%d", s.Index)
		pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(band))

		heightMM := float64(s.Height()) * float64(pageW) / float64(bounds.Dx())
		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, float64(pageW), heightMM, false, imgOpts, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, NewRenderError(ErrCodeAssemblyFailed, "failed to write PDF", err)
	}

	p.logger.Debug("assembled PDF",
		zap.Int("pages", layout.PageCount()),
		zap.Int("bytes", out.Len()))

	return &Document{
		Bytes:     out.Bytes(),
		PageCount: layout.PageCount(),
		Layout:    layout,
	}, nil
}

// cropRows copies the half-open source rows [top, bottom) into a new PNG
func cropRows(src image.Image, top, bottom int) ([]byte, error) {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), bottom-top))
	draw.Draw(dst, dst.Bounds(), src, image.Point{X: b.Min.X, Y: b.Min.Y + top}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
