package assembly

import (
	"context"
	"log/slog"

	"github.com/claimworks/reportflow/internal/models"
)

// processSources walks the attachment sources in order and appends their
// pages to the destination, strictly in (source order, attachment order
// within source). Individual failures are recorded and skipped; the batch
// never aborts on a single attachment.
func (a *Assembler) processSources(ctx context.Context, b *documentBuilder, sources []models.AttachmentSource, pageW, pageH float64, report *models.MergeReport, log *slog.Logger) {
	for _, src := range sources {
		if len(src.Attachments) == 0 {
			continue
		}
		srcLog := log.With("source", src.Identifier)
		for _, ref := range src.Attachments {
			result := a.processAttachment(ctx, b, src.Identifier, ref, pageW, pageH, srcLog)
			report.PagesAdded += result.PagesAdded
			report.Attachments = append(report.Attachments, result)
		}
	}
}

func (a *Assembler) processAttachment(ctx context.Context, b *documentBuilder, identifier string, ref models.AttachmentRef, pageW, pageH float64, log *slog.Logger) models.AttachmentResult {
	result := models.AttachmentResult{Source: identifier, Ref: ref.Name()}

	if ref.Empty() {
		result.Skipped = models.SkipEmptyRef
		return result
	}

	format := ClassifyRef(ref)
	if format == FormatUnsupported {
		log.Warn("Skipping attachment with unsupported format.", "ref", ref.Name())
		result.Skipped = models.SkipUnsupported
		return result
	}

	data, err := a.fetcher.Fetch(ctx, ref)
	if err != nil {
		log.Warn("Skipping unreachable attachment.", "ref", ref.Name(), "error", err)
		result.Skipped = models.SkipFetchFailed
		return result
	}

	switch format {
	case FormatPDF:
		added, err := b.appendPDFPages(data, pdfAppendOptions{label: identifier})
		// The report must agree with the document, so the appended count is
		// recorded even on the error path.
		result.PagesAdded = added
		if err != nil {
			if added > 0 {
				log.Error("Attachment appended partially.", "ref", ref.Name(), "pages", added, "error", err)
				return result
			}
			log.Warn("Skipping attachment that did not parse as PDF.", "ref", ref.Name(), "error", err)
			result.Skipped = models.SkipInvalidPDF
			return result
		}
	case FormatImage:
		fallback, err := b.addImagePage(data, imagePageOptions{
			sourceName: ref.Name(),
			label:      identifier,
			pageW:      pageW,
			pageH:      pageH,
			capUpscale: true,
		})
		if err != nil {
			// Non-strict image pages degrade to a fallback page rather than
			// erroring; an error here means that contract changed underneath.
			log.Error("Image page failed without a fallback.", "ref", ref.Name(), "error", err)
			result.Skipped = models.SkipEmbedFailed
			return result
		}
		result.PagesAdded = 1
		result.Fallback = fallback
	}
	return result
}
