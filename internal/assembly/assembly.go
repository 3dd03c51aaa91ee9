package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/claimworks/reportflow/internal/fetch"
	"github.com/claimworks/reportflow/internal/models"
)

// Assembler is the entry point for merging a rendered report with its
// attachments. It holds only immutable collaborators; every merge builds
// its own destination document, so concurrent calls do not interfere.
type Assembler struct {
	fetcher *fetch.Client
	styles  *StyleSet
	log     *slog.Logger
	now     func() time.Time
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithStyles replaces the default style sheet.
func WithStyles(s *StyleSet) Option {
	return func(a *Assembler) { a.styles = s }
}

// WithLogger sets the logger used for merge progress and skip warnings.
func WithLogger(log *slog.Logger) Option {
	return func(a *Assembler) { a.log = log }
}

// WithClock overrides the wall clock used for footer timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// NewAssembler builds an Assembler around the given fetcher. A nil fetcher
// gets a default client that resolves https URLs and in-memory files only.
func NewAssembler(fetcher *fetch.Client, opts ...Option) *Assembler {
	if fetcher == nil {
		fetcher = fetch.NewClient(nil, fetch.Config{})
	}
	a := &Assembler{
		fetcher: fetcher,
		styles:  DefaultStyles(),
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GenerateFinalPDF seeds the destination with the report's pages, appends
// every attachment source in order, and returns the serialized document
// plus a per-attachment report. Only a base report that fails to parse is
// fatal; attachment failures degrade to skips or fallback pages.
func (a *Assembler) GenerateFinalPDF(ctx context.Context, reportBlob []byte, sources []models.AttachmentSource) ([]byte, *models.MergeReport, error) {
	log := a.log.With("operation", uuid.NewString())

	basePages, err := validatePDF(reportBlob)
	if err != nil {
		return nil, nil, fmt.Errorf("base report: %w", err)
	}
	report := &models.MergeReport{BasePages: basePages}

	b := newDocumentBuilder(a.styles, a.now, log)
	if _, err := b.appendPDFPages(reportBlob, pdfAppendOptions{}); err != nil {
		return nil, nil, fmt.Errorf("copying base report: %w", err)
	}

	pageW, pageH := firstPageDims(reportBlob)
	a.processSources(ctx, b, sources, pageW, pageH, report, log)

	raw, err := b.serialize()
	if err != nil {
		return nil, nil, err
	}
	out := optimizePDF(raw, log)

	log.Info("Report assembled.",
		"basePages", report.BasePages,
		"pagesAdded", report.PagesAdded,
		"skipped", report.SkippedCount(),
	)
	return out, report, nil
}

// FileAttachmentSource groups in-memory files under one identifying label,
// for callers whose attachment bytes are already resident.
type FileAttachmentSource struct {
	Identifier string
	Files      []models.BinaryFile
}

// GenerateFinalPDFFromFiles is the file-based analogue of GenerateFinalPDF:
// the same ordering and degradation contract, with no remote fetches.
func (a *Assembler) GenerateFinalPDFFromFiles(ctx context.Context, reportBlob []byte, fileSources []FileAttachmentSource) ([]byte, *models.MergeReport, error) {
	sources := make([]models.AttachmentSource, 0, len(fileSources))
	for _, fs := range fileSources {
		src := models.AttachmentSource{Identifier: fs.Identifier}
		for i := range fs.Files {
			src.Attachments = append(src.Attachments, models.AttachmentRef{
				Kind: models.RefFile,
				File: &fs.Files[i],
			})
		}
		sources = append(sources, src)
	}
	return a.GenerateFinalPDF(ctx, reportBlob, sources)
}

// Now returns the assembler's wall-clock time, honoring WithClock.
func (a *Assembler) Now() time.Time { return a.now() }

// WrapFile packages merged bytes as the named artifact handed to callers.
func (a *Assembler) WrapFile(name string, data []byte) *models.GeneratedFile {
	return &models.GeneratedFile{
		Name:         name,
		MimeType:     "application/pdf",
		Data:         data,
		LastModified: a.now(),
	}
}
