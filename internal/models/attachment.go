package models

import "time"

// RefKind discriminates how an attachment reference carries its bytes.
type RefKind string

const (
	RefURL  RefKind = "url"
	RefFile RefKind = "file"
)

// AttachmentRef points at one attachment: either a remote URL (https or
// gs://bucket/object) or an in-memory file whose bytes are already resident.
type AttachmentRef struct {
	Kind RefKind
	URL  string
	File *BinaryFile
}

// Empty reports whether the reference carries nothing to merge.
func (r AttachmentRef) Empty() bool {
	switch r.Kind {
	case RefURL:
		return r.URL == ""
	case RefFile:
		return r.File == nil || len(r.File.Data) == 0
	}
	return true
}

// Name returns a human-readable identifier for logging and fallback pages.
func (r AttachmentRef) Name() string {
	switch r.Kind {
	case RefURL:
		return r.URL
	case RefFile:
		if r.File != nil {
			return r.File.Name
		}
	}
	return "<empty>"
}

// AttachmentSource is one logical group of attachments tied to an
// identifying context, e.g. all uploads for one site. Order of Attachments
// is significant and preserved in the merged output.
type AttachmentSource struct {
	Identifier  string
	Attachments []AttachmentRef
}

// BinaryFile is an opaque byte buffer plus its declared media type and
// original name. The merge pipeline treats it as read-only.
type BinaryFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// GeneratedFile is the final artifact handed back to callers.
type GeneratedFile struct {
	Name         string
	MimeType     string
	Data         []byte
	LastModified time.Time
}

// SkipReason explains why an attachment contributed no pages.
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipEmptyRef    SkipReason = "empty_reference"
	SkipUnsupported SkipReason = "unsupported_format"
	SkipFetchFailed SkipReason = "fetch_failed"
	SkipInvalidPDF  SkipReason = "invalid_pdf"
	SkipEmbedFailed SkipReason = "embed_failed"
)

// AttachmentResult records the outcome for a single attachment reference,
// so callers and tests can see why something was skipped rather than only
// observing its absence.
type AttachmentResult struct {
	Source     string
	Ref        string
	PagesAdded int
	Skipped    SkipReason
	// Fallback marks an image that could not be embedded; a placeholder
	// page was appended in its place.
	Fallback bool
}

// MergeReport aggregates per-attachment outcomes for one merge operation.
type MergeReport struct {
	BasePages   int
	PagesAdded  int
	Attachments []AttachmentResult
}

// SkippedCount returns the number of attachments that contributed no pages.
func (r *MergeReport) SkippedCount() int {
	n := 0
	for _, a := range r.Attachments {
		if a.Skipped != SkipNone {
			n++
		}
	}
	return n
}
