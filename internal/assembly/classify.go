// Package assembly merges rendered report fragments and user attachments
// into a single paginated, labeled, footer-stamped PDF. The destination
// document is built with gofpdf; pages of source PDFs are imported as
// templates via gofpdi; pdfcpu handles validation, page counts and the
// final optimize pass.
package assembly

import (
	"path"
	"strings"

	"github.com/claimworks/reportflow/internal/models"
)

// Format is the result of classifying an attachment reference.
type Format int

const (
	FormatUnsupported Format = iota
	FormatPDF
	FormatImage
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatImage:
		return "image"
	}
	return "unsupported"
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
}

// ClassifyPath decides PDF vs image from the lowercased path suffix of a
// URL or file path. Query strings and fragments are ignored. The decision
// is made from the name alone, never from content.
func ClassifyPath(p string) Format {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := strings.ToLower(path.Ext(p))
	switch {
	case ext == ".pdf":
		return FormatPDF
	case imageExtensions[ext]:
		return FormatImage
	}
	return FormatUnsupported
}

// ClassifyFile decides PDF vs image from a file's declared media type.
func ClassifyFile(f *models.BinaryFile) Format {
	if f == nil {
		return FormatUnsupported
	}
	mime := strings.ToLower(f.MimeType)
	switch {
	case mime == "application/pdf":
		return FormatPDF
	case strings.HasPrefix(mime, "image/"):
		return FormatImage
	}
	return FormatUnsupported
}

// ClassifyRef dispatches on the reference kind.
func ClassifyRef(ref models.AttachmentRef) Format {
	switch ref.Kind {
	case models.RefURL:
		return ClassifyPath(ref.URL)
	case models.RefFile:
		return ClassifyFile(ref.File)
	}
	return FormatUnsupported
}
