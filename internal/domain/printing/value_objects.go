package printing

import "github.com/invoicesxpert/backend/internal/domain/shared"

// PageSlice is the band of source pixel rows shown on one page.
// Rows are half-open: [Top, Bottom).
type PageSlice struct {
	Index  int `json:"index"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Height returns the number of pixel rows in the slice
func (s PageSlice) Height() int {
	return s.Bottom - s.Top
}

// PageLayout describes how a bitmap scaled to the page width is cut into pages.
type PageLayout struct {
	Paper       PaperSize   `json:"paper"`
	ImageWidth  int         `json:"image_width"`
	ImageHeight int         `json:"image_height"`
	Slices      []PageSlice `json:"slices"`
}

// PageCount returns the number of pages in the layout
func (l PageLayout) PageCount() int {
	return len(l.Slices)
}

// PlanPages scales an image of widthPx x heightPx to the full paper width and
// cuts it into page-height bands. The page count is
// ceil(scaledHeight / pageHeight) with at least one page. Bands are contiguous
// and never overlap.
func PlanPages(paper PaperSize, widthPx, heightPx int) (PageLayout, error) {
	if widthPx <= 0 || heightPx <= 0 {
		return PageLayout{}, shared.NewDomainError("INVALID_IMAGE", "Image dimensions must be positive")
	}
	pw, ph := paper.Dimensions()

	// One page holds widthPx*ph/pw source rows. Integer arithmetic keeps the
	// count exact: ceil(heightPx*pw / (widthPx*ph)).
	num := int64(heightPx) * int64(pw)
	den := int64(widthPx) * int64(ph)
	pages := int((num + den - 1) / den)
	if pages < 1 {
		pages = 1
	}

	boundary := func(i int) int {
		// floor keeps the last band non-empty
		return int(int64(i) * den / int64(pw))
	}

	slices := make([]PageSlice, 0, pages)
	for i := 0; i < pages; i++ {
		top := boundary(i)
		bottom := boundary(i + 1)
		if bottom > heightPx || i == pages-1 {
			bottom = heightPx
		}
		slices = append(slices, PageSlice{Index: i, Top: top, Bottom: bottom})
	}

	return PageLayout{
		Paper:       paper,
		ImageWidth:  widthPx,
		ImageHeight: heightPx,
		Slices:      slices,
	}, nil
}
