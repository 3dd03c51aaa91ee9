package assembly

import (
	"context"
	"fmt"

	"github.com/claimworks/reportflow/internal/models"
)

// OverlayOptions controls the optional section-title stamp applied by the
// upload overlay. Zero box values fall back to the style defaults.
type OverlayOptions struct {
	Title  string
	TitleX float64
	TitleY float64
	TitleW float64
	TitleH float64
}

// OverlayResult reports whether any upload was present and carries the
// resulting document bytes.
type OverlayResult struct {
	Merged bool
	Output []byte
}

// ApplyUploadOverlay merges ad-hoc uploaded files (bytes already resident,
// nothing fetched) into a pre-rendered report. With no uploads the original
// bytes are returned untouched, byte for byte.
//
// Failure policy: if the overlay fails at any point, the original report is
// returned with Merged still true. The flag reports that uploads were
// present, not that they made it in; the fallback is logged at Error level
// so silently-dropped uploads stay diagnosable.
func (a *Assembler) ApplyUploadOverlay(ctx context.Context, base []byte, uploads []models.BinaryFile, opts OverlayOptions) OverlayResult {
	if len(uploads) == 0 {
		return OverlayResult{Merged: false, Output: base}
	}

	out, err := a.overlayMerge(ctx, base, uploads, opts)
	if err != nil {
		names := make([]string, len(uploads))
		for i, u := range uploads {
			names[i] = u.Name
		}
		a.log.Error("Upload overlay failed, returning report without attachments.",
			"uploads", names, "error", err)
		return OverlayResult{Merged: true, Output: base}
	}
	return OverlayResult{Merged: true, Output: out}
}

func (a *Assembler) overlayMerge(ctx context.Context, base []byte, uploads []models.BinaryFile, opts OverlayOptions) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("overlay merge: %v", r)
		}
	}()

	if _, err := validatePDF(base); err != nil {
		return nil, fmt.Errorf("base report: %w", err)
	}
	pageW, pageH := firstPageDims(base)

	b := newDocumentBuilder(a.styles, a.now, a.log)
	if _, err := b.appendPDFPages(base, pdfAppendOptions{}); err != nil {
		return nil, fmt.Errorf("copying base report: %w", err)
	}

	titleX, titleY := opts.TitleX, opts.TitleY
	if opts.Title != "" && titleX == 0 && titleY == 0 {
		titleX = a.styles.PageMargin
		titleY = a.styles.LabelTopOffset * 2
	}

	for _, upload := range uploads {
		switch ClassifyFile(&upload) {
		case FormatPDF:
			_, err := b.appendPDFPages(upload.Data, pdfAppendOptions{
				titleStamp: opts.Title,
				titleX:     titleX,
				titleY:     titleY,
				titleW:     opts.TitleW,
				titleH:     opts.TitleH,
			})
			if err != nil {
				return nil, fmt.Errorf("upload %s: %w", upload.Name, err)
			}
		case FormatImage:
			_, err := b.addImagePage(upload.Data, imagePageOptions{
				sourceName: upload.Name,
				title:      opts.Title,
				pageW:      pageW,
				pageH:      pageH,
				strict:     true,
			})
			if err != nil {
				return nil, fmt.Errorf("upload %s: %w", upload.Name, err)
			}
		default:
			return nil, fmt.Errorf("upload %s: unsupported media type %q", upload.Name, upload.MimeType)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	raw, err := b.serialize()
	if err != nil {
		return nil, err
	}
	return optimizePDF(raw, a.log), nil
}
