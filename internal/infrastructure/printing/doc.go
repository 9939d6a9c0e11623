// Package printing implements the invoice export pipeline.
//
// This package contains:
//   - Registry and the built-in Theme table (18 styles)
//   - InvoiceRenderer, which renders one embedded layout with a theme
//   - ChromedpBrowser, the off-screen host and rasterizer backed by headless Chrome
//   - Paginator, which slices a bitmap into A4 pages with gofpdf
//   - FileSystemStorage, a local ExportArchive for exported PDFs
//
// Example usage:
//
//	renderer, _ := NewInvoiceRenderer(NewTemplateEngine(), NewRegistry())
//	browser, _ := NewChromedpBrowser(&ChromedpConfig{Headless: true, Scale: 2})
//	defer browser.Close()
//
//	result, err := renderer.Render(ctx, invoice, "modern")
//	if err != nil {
//	    return err
//	}
//	doc, err := browser.Acquire(ctx, "invoice-"+invoice.ID.String()+"-pdf", result.HTML)
//	if err != nil {
//	    return err
//	}
//	defer doc.Release()
//
//	bitmap, err := browser.Capture(ctx, doc)
//	if err != nil {
//	    return err
//	}
//	pdf, err := NewPaginator().Assemble(bitmap, DocumentMeta{Title: "Invoice " + invoice.InvoiceNumber})
package printing
