package assembly

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/phpdave11/gofpdf"
)

// documentBuilder owns the in-progress destination document for one merge
// operation. Pages are appended only, never reordered or removed. One
// builder is created per entry-point call and discarded after serialization.
type documentBuilder struct {
	pdf *gofpdf.Fpdf
	dec *decorator
	log *slog.Logger
}

func newDocumentBuilder(styles *StyleSet, now func() time.Time, log *slog.Logger) *documentBuilder {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return &documentBuilder{
		pdf: pdf,
		dec: &decorator{styles: styles, now: now},
		log: log,
	}
}

func (b *documentBuilder) styles() *StyleSet { return b.dec.styles }

// pageCount returns the number of pages appended so far.
func (b *documentBuilder) pageCount() int {
	return b.pdf.PageCount()
}

// serialize writes the document out and returns its bytes. The builder must
// not be used afterwards.
func (b *documentBuilder) serialize() ([]byte, error) {
	if b.pdf.Err() {
		return nil, fmt.Errorf("document in error state: %w", b.pdf.Error())
	}
	var buf bytes.Buffer
	if err := b.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	return buf.Bytes(), nil
}

// relaxedConfig returns the pdfcpu configuration used for every read-side
// operation. Relaxed validation accepts the slightly nonconformant
// documents scanners and browser exports produce.
func relaxedConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// validatePDF checks that data parses as a PDF and returns its page count.
func validatePDF(data []byte) (int, error) {
	conf := relaxedConfig()
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return 0, fmt.Errorf("invalid PDF: %w", err)
	}
	count, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

// firstPageDims returns the dimensions of the first page of a PDF, falling
// back to A4 when they cannot be determined.
func firstPageDims(data []byte) (w, h float64) {
	dims, err := api.PageDims(bytes.NewReader(data), relaxedConfig())
	if err != nil || len(dims) == 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return dims[0].Width, dims[0].Height
}

// optimizePDF runs a pdfcpu optimize pass over serialized output. Failures
// are non-fatal: the input is already a valid document at this point.
func optimizePDF(data []byte, log *slog.Logger) []byte {
	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &buf, relaxedConfig()); err != nil {
		log.Warn("Optimize pass failed, returning unoptimized output.", "error", err)
		return data
	}
	return buf.Bytes()
}
