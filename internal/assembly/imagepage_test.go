package assembly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleToFitPreservesAspectRatio(t *testing.T) {
	w, h := scaleToFit(400, 200, 800, 600, false)
	assert.InDelta(t, 2.0, w/h, 1e-9)
	assert.LessOrEqual(t, w, 800.0)
	assert.LessOrEqual(t, h, 600.0)
	// Width is the binding dimension here, so it fills the available width.
	assert.InDelta(t, 800.0, w, 1e-9)
}

func TestScaleToFitCapsUpscale(t *testing.T) {
	w, h := scaleToFit(400, 200, 800, 600, true)
	assert.InDelta(t, 400.0, w, 1e-9)
	assert.InDelta(t, 200.0, h, 1e-9)
}

func TestScaleToFitShrinksOversizedImages(t *testing.T) {
	w, h := scaleToFit(4000, 1000, 500, 500, true)
	assert.InDelta(t, 4.0, w/h, 1e-9)
	assert.LessOrEqual(t, w, 500.0)
	assert.LessOrEqual(t, h, 500.0)
}

func TestNormalizeImagePassesThroughPNGAndJPEG(t *testing.T) {
	data := makePNG(t, 40, 20)
	out, imageType, w, h, err := normalizeImage(data)
	require.NoError(t, err)
	assert.Equal(t, "PNG", imageType)
	assert.Equal(t, data, out, "png bytes must not be re-encoded")
	assert.Equal(t, 40.0, w)
	assert.Equal(t, 20.0, h)
}

func TestNormalizeImageRejectsGarbage(t *testing.T) {
	_, _, _, _, err := normalizeImage([]byte("definitely not an image"))
	require.Error(t, err)
}

func TestAddImagePageStrictFailureAppendsNothing(t *testing.T) {
	b := testBuilder(t)

	fallback, err := b.addImagePage([]byte("not an image"), imagePageOptions{
		sourceName: "photo.png",
		strict:     true,
	})
	require.Error(t, err)
	assert.False(t, fallback)
	assert.Equal(t, 0, b.pageCount())
}
