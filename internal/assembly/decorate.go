package assembly

import (
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

// decorator draws traceability marks onto the current page of the
// destination document. Every operation mutates the page in place and is
// not deduplicated: callers draw each mark exactly once per page.
type decorator struct {
	styles *StyleSet
	now    func() time.Time
}

// drawLabel places an identifying tag near the top-right corner of the
// current page.
func (d *decorator) drawLabel(pdf *gofpdf.Fpdf, text string, pageW float64) {
	if text == "" {
		return
	}
	s := d.styles
	pdf.SetFont(s.FontFamily, "", s.LabelFontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(pageW-s.LabelRightOffset, s.LabelTopOffset+s.LabelFontSize, text)
}

// drawFooter draws the divider line and the two footer runs: the system
// notice on the left and the generation timestamp on the right. The right
// run is positioned by estimating its width from the character count; the
// low-level drawing path has no proportional-font metrics, and a few pixels
// of drift are acceptable.
func (d *decorator) drawFooter(pdf *gofpdf.Fpdf, pageW, pageH float64, customNotice string) {
	s := d.styles
	baseline := pageH - s.FooterBaselineRise

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.5)
	pdf.Line(s.FooterSideMargin, baseline-s.FooterDividerRise, pageW-s.FooterSideMargin, baseline-s.FooterDividerRise)

	notice := s.FooterNotice
	if customNotice != "" {
		notice = customNotice
	}
	pdf.SetFont(s.FontFamily, "", s.FooterFontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(s.FooterSideMargin, baseline, notice)

	stamp := fmt.Sprintf("Generated on: %s", d.now().Format("02/01/2006, 15:04:05"))
	estWidth := float64(len(stamp)) * s.FooterFontSize * s.FooterCharWidthRate
	pdf.Text(pageW-s.FooterSideMargin-estWidth, baseline, stamp)
}

// drawSectionTitle draws a solid black box with padded, uppercased white
// text. Bold is simulated by double-stroking the text with a small offset.
func (d *decorator) drawSectionTitle(pdf *gofpdf.Fpdf, text string, x, y, w, h float64) {
	if text == "" {
		return
	}
	s := d.styles
	pdf.SetFillColor(0, 0, 0)
	pdf.Rect(x, y, w, h, "F")

	pdf.SetFont(s.FontFamily, "", s.TitleFontSize)
	pdf.SetTextColor(255, 255, 255)
	baseline := y + h/2 + s.TitleFontSize*0.35
	upper := strings.ToUpper(text)
	pdf.Text(x+s.TitlePadding, baseline, upper)
	pdf.Text(x+s.TitlePadding+0.3, baseline, upper)
}

// drawFallback writes a visible red notice on the current page, used when
// an attachment's bytes could not be rendered.
func (d *decorator) drawFallback(pdf *gofpdf.Fpdf, source string, pageW, pageH float64) {
	s := d.styles
	pdf.SetFont(s.FontFamily, "", s.FallbackFontSize)
	pdf.SetTextColor(200, 0, 0)
	msg := fmt.Sprintf("Attachment not available: %s", source)
	pdf.Text(s.PageMargin, pageH/2, msg)
}
