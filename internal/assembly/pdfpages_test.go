package assembly

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder(t *testing.T) *documentBuilder {
	t.Helper()
	return newDocumentBuilder(DefaultStyles(), fixedClock(t), slog.Default())
}

func TestImportTemplatesParseFailureLeavesDestinationUntouched(t *testing.T) {
	b := testBuilder(t)

	// The page importer reports parse failures by panicking; the panic must
	// surface as an error before anything is appended.
	_, _, err := b.importTemplates([]byte("%PDF-1.4 truncated nonsense"), []int{1, 2})
	require.Error(t, err)
	assert.Equal(t, 0, b.pageCount())
}

func TestAppendPDFPagesInvalidSourceAppendsNothing(t *testing.T) {
	b := testBuilder(t)

	added, err := b.appendPDFPages([]byte("not a pdf"), pdfAppendOptions{label: "SITE-1"})
	require.Error(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 0, b.pageCount())
}

func TestAppendPDFPagesRejectsOutOfRangeSubset(t *testing.T) {
	b := testBuilder(t)

	added, err := b.appendPDFPages(makePDF(t, 300, 300), pdfAppendOptions{pages: []int{1, 5}})
	require.Error(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 0, b.pageCount())
}

func TestAppendPDFPagesCopiesSubsetInOrder(t *testing.T) {
	b := testBuilder(t)

	added, err := b.appendPDFPages(makePDF(t, 101, 202, 303), pdfAppendOptions{pages: []int{3, 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	out, err := b.serialize()
	require.NoError(t, err)
	widths := pageWidths(t, out)
	require.Len(t, widths, 2)
	assert.InDelta(t, 303, widths[0], 0.5)
	assert.InDelta(t, 101, widths[1], 0.5)
}
