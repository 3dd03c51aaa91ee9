package assembly

import (
	"bytes"
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
	"github.com/phpdave11/gofpdf/contrib/gofpdi"
)

// pdfAppendOptions controls how pages of a source PDF are copied into the
// destination.
type pdfAppendOptions struct {
	// label is drawn, with the footer, on the first copied page only: one
	// label per logical attachment, not per physical page.
	label string
	// titleStamp is drawn on every copied page at the given box. Used by
	// the upload overlay.
	titleStamp string
	titleX     float64
	titleY     float64
	titleW     float64
	titleH     float64
	// pages selects a 1-based subset to copy; nil copies all pages.
	pages []int
}

// importedPage is one parsed source page, ready to be placed.
type importedPage struct {
	tpl  int
	w, h float64
}

// appendPDFPages loads source PDF bytes and copies the selected pages into
// the destination, preserving their internal order and content. Returns the
// number of pages appended. Import happens in two phases: every selected
// page is parsed into a template before the first page is appended, so a
// source that fails to parse on any page yields an error with the
// destination untouched.
func (b *documentBuilder) appendPDFPages(data []byte, opts pdfAppendOptions) (added int, err error) {
	total, err := validatePDF(data)
	if err != nil {
		return 0, err
	}

	pages := opts.pages
	if pages == nil {
		pages = make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
	}
	for _, p := range pages {
		if p < 1 || p > total {
			return 0, fmt.Errorf("page %d out of range (document has %d pages)", p, total)
		}
	}

	imp, imported, err := b.importTemplates(data, pages)
	if err != nil {
		return 0, err
	}

	isFirstPageOfThisAttachment := true
	for _, pg := range imported {
		b.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: pg.w, Ht: pg.h})
		imp.UseImportedTemplate(b.pdf, pg.tpl, 0, 0, pg.w, pg.h)
		added++

		if isFirstPageOfThisAttachment && opts.label != "" {
			b.dec.drawLabel(b.pdf, opts.label, pg.w)
			b.dec.drawFooter(b.pdf, pg.w, pg.h, "")
		}
		if opts.titleStamp != "" {
			tw := opts.titleW
			if tw <= 0 {
				tw = pg.w - 2*b.styles().PageMargin
			}
			th := opts.titleH
			if th <= 0 {
				th = b.styles().TitleHeight
			}
			b.dec.drawSectionTitle(b.pdf, opts.titleStamp, opts.titleX, opts.titleY, tw, th)
		}
		isFirstPageOfThisAttachment = false
	}
	return added, nil
}

// importTemplates parses every selected page into a gofpdf template without
// appending anything. gofpdi reports parse failures by panicking, and
// pdfcpu's relaxed validation accepts some documents gofpdi still chokes
// on; converting the panic here, before any AddPageFormat, keeps a bad
// source from leaving partial pages in the destination.
func (b *documentBuilder) importTemplates(data []byte, pages []int) (imp *gofpdi.Importer, imported []importedPage, err error) {
	defer func() {
		if r := recover(); r != nil {
			imp, imported = nil, nil
			err = fmt.Errorf("importing pages: %v", r)
		}
	}()

	// A fresh importer per source document.
	imp = gofpdi.NewImporter()
	var rs io.ReadSeeker = bytes.NewReader(data)

	for _, pageNum := range pages {
		tpl := imp.ImportPageFromStream(b.pdf, &rs, pageNum, "/MediaBox")
		w, h := importedPageSize(imp, pageNum)
		imported = append(imported, importedPage{tpl: tpl, w: w, h: h})
	}
	return imp, imported, nil
}

func importedPageSize(imp *gofpdi.Importer, pageNum int) (w, h float64) {
	w, h = defaultPageWidth, defaultPageHeight
	if dims, ok := imp.GetPageSizes()[pageNum]; ok {
		if mb, ok := dims["/MediaBox"]; ok {
			if mb["w"] > 0 && mb["h"] > 0 {
				w, h = mb["w"], mb["h"]
			}
		}
	}
	return w, h
}
