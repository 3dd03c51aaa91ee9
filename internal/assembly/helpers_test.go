package assembly

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/phpdave11/gofpdf"
	"github.com/stretchr/testify/require"
)

// makePDF builds a synthetic PDF with one page per given width (heights
// fixed), so merged output pages stay distinguishable by their dimensions.
func makePDF(t *testing.T, widths ...float64) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	for _, w := range widths {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: 400})
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(20, 40, "synthetic page")
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

// makePNG renders a solid image of the given pixel dimensions.
func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 40, G: 90, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	n, err := api.PageCount(bytes.NewReader(data), relaxedConfig())
	require.NoError(t, err)
	return n
}

func pageWidths(t *testing.T, data []byte) []float64 {
	t.Helper()
	dims, err := api.PageDims(bytes.NewReader(data), relaxedConfig())
	require.NoError(t, err)
	widths := make([]float64, len(dims))
	for i, d := range dims {
		widths[i] = d.Width
	}
	return widths
}

func fixedClock(t *testing.T) func() time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2024-06-01T10:30:00Z")
	require.NoError(t, err)
	return func() time.Time { return ts }
}
