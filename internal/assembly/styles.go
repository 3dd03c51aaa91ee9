package assembly

// StyleSet carries every drawing constant used by the page decorator and
// the image page builder. It is built once and passed by reference; values
// never change at runtime.
type StyleSet struct {
	FontFamily string

	LabelFontSize    float64
	LabelRightOffset float64
	LabelTopOffset   float64

	FooterFontSize      float64
	FooterBaselineRise  float64 // baseline distance from the bottom edge
	FooterDividerRise   float64 // divider line distance above the baseline
	FooterSideMargin    float64
	FooterNotice        string
	FooterCharWidthRate float64 // estimated glyph width as a fraction of font size

	TitleFontSize float64
	TitleHeight   float64
	TitlePadding  float64

	PageMargin       float64
	ImageTopReserve  float64 // vertical space kept above an image for the label
	ImageFootReserve float64 // vertical space kept below an image for the footer

	FallbackFontSize float64
}

// DefaultStyles returns the standard claim-report style sheet.
func DefaultStyles() *StyleSet {
	return &StyleSet{
		FontFamily: "Helvetica",

		LabelFontSize:    7,
		LabelRightOffset: 80,
		LabelTopOffset:   15,

		FooterFontSize:      7,
		FooterBaselineRise:  30,
		FooterDividerRise:   18,
		FooterSideMargin:    40,
		FooterNotice:        "This document is system-generated and requires no signature.",
		FooterCharWidthRate: 0.5,

		TitleFontSize: 9,
		TitleHeight:   24,
		TitlePadding:  6,

		PageMargin:       40,
		ImageTopReserve:  50,
		ImageFootReserve: 60,

		FallbackFontSize: 10,
	}
}

// A4 page dimensions in points, used when no target size is available.
const (
	defaultPageWidth  = 595.28
	defaultPageHeight = 841.89
)
