package assembly

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// imagePageOptions controls how a raster attachment becomes a page.
type imagePageOptions struct {
	sourceName string
	label      string
	title      string
	// pageW/pageH size the new page; zero means A4.
	pageW float64
	pageH float64
	// capUpscale keeps the image at native size instead of scaling up to
	// fill the available area.
	capUpscale bool
	// strict returns an error on undecodable bytes instead of appending a
	// fallback page. The upload overlay uses this so its failure policy can
	// take over.
	strict bool
}

// addImagePage appends one page containing the image, scaled to fit the
// area left below the label/title reservations while preserving aspect
// ratio, and centered. Undecodable bytes produce a visible fallback page
// (never a batch failure) unless strict mode is on.
func (b *documentBuilder) addImagePage(data []byte, opts imagePageOptions) (fallback bool, err error) {
	s := b.styles()
	pageW, pageH := opts.pageW, opts.pageH
	if pageW <= 0 || pageH <= 0 {
		pageW, pageH = defaultPageWidth, defaultPageHeight
	}

	data, format, imgW, imgH, decErr := normalizeImage(data)
	if decErr != nil {
		if opts.strict {
			return false, decErr
		}
		b.log.Warn("Image could not be decoded, appending fallback page.",
			"source", opts.sourceName, "error", decErr)
		b.appendFallbackPage(opts, pageW, pageH)
		return true, nil
	}

	topReserve := s.PageMargin
	if opts.label != "" {
		topReserve = s.ImageTopReserve
	}
	titleY := s.LabelTopOffset * 2
	if opts.title != "" {
		reserve := titleY + s.TitleHeight + s.TitlePadding
		if reserve > topReserve {
			topReserve = reserve
		}
	}

	availW := pageW - 2*s.PageMargin
	availH := pageH - topReserve - s.ImageFootReserve
	drawW, drawH := scaleToFit(imgW, imgH, availW, availH, opts.capUpscale)
	x := s.PageMargin + (availW-drawW)/2
	y := topReserve + (availH-drawH)/2

	b.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: pageW, Ht: pageH})
	b.decorateImagePage(opts, pageW, pageH, titleY)

	name := uuid.NewString()
	imgOpts := gofpdf.ImageOptions{ImageType: format, ReadDpi: false}
	b.pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(data))
	if b.pdf.Err() {
		// The decode above makes this unlikely, but a registration failure
		// would otherwise poison the whole document.
		embedErr := b.pdf.Error()
		b.pdf.ClearError()
		if opts.strict {
			return false, fmt.Errorf("embedding image: %w", embedErr)
		}
		b.log.Warn("Image embed failed, falling back to placeholder.",
			"source", opts.sourceName, "error", embedErr)
		b.dec.drawFallback(b.pdf, opts.sourceName, pageW, pageH)
		return true, nil
	}
	b.pdf.ImageOptions(name, x, y, drawW, drawH, false, imgOpts, 0, "")
	return false, nil
}

func (b *documentBuilder) appendFallbackPage(opts imagePageOptions, pageW, pageH float64) {
	b.pdf.AddPageFormat("P", gofpdf.SizeType{Wd: pageW, Ht: pageH})
	b.decorateImagePage(opts, pageW, pageH, b.styles().LabelTopOffset*2)
	b.dec.drawFallback(b.pdf, opts.sourceName, pageW, pageH)
}

func (b *documentBuilder) decorateImagePage(opts imagePageOptions, pageW, pageH, titleY float64) {
	s := b.styles()
	if opts.label != "" {
		b.dec.drawLabel(b.pdf, opts.label, pageW)
		b.dec.drawFooter(b.pdf, pageW, pageH, "")
	}
	if opts.title != "" {
		b.dec.drawSectionTitle(b.pdf, opts.title, s.PageMargin, titleY, pageW-2*s.PageMargin, s.TitleHeight)
	}
}

// normalizeImage validates image bytes and returns data ready for
// embedding. PNG and JPEG pass through untouched; other decodable formats
// (gif, webp, bmp, tiff) are transcoded to PNG, since the document writer
// only parses PNG and JPEG reliably.
func normalizeImage(data []byte) (out []byte, imageType string, w, h float64, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", 0, 0, fmt.Errorf("decoding image: %w", err)
	}
	w, h = float64(cfg.Width), float64(cfg.Height)

	switch format {
	case "png":
		return data, "PNG", w, h, nil
	case "jpeg":
		return data, "JPG", w, h, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", 0, 0, fmt.Errorf("decoding %s image: %w", format, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", 0, 0, fmt.Errorf("transcoding %s image: %w", format, err)
	}
	return buf.Bytes(), "PNG", w, h, nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// scaleToFit computes the drawn size of an image inside an available area,
// preserving aspect ratio.
func scaleToFit(imgW, imgH, availW, availH float64, capUpscale bool) (w, h float64) {
	scale := minFloat(availW/imgW, availH/imgH)
	if capUpscale && scale > 1.0 {
		scale = 1.0
	}
	return imgW * scale, imgH * scale
}
