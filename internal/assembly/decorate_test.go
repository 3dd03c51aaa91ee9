package assembly

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimworks/reportflow/internal/models"
)

// extractPageText returns the decoded content stream of one page. Imported
// pages carry their original content inside a form XObject, so only text drawn
// directly on the destination page, such as labels and footers, shows up here.
func extractPageText(t *testing.T, data []byte, pageNr int) string {
	t.Helper()
	ctx, err := api.ReadContext(bytes.NewReader(data), relaxedConfig())
	require.NoError(t, err)
	require.NoError(t, api.ValidateContext(ctx))

	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	require.NoError(t, err)
	content, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(content)
}

func TestGenerateFinalPDFLabelsFirstCopiedPageOnly(t *testing.T) {
	base := makePDF(t, 500)
	attachment := makePDF(t, 300, 300, 300)

	asm := testAssembler(t)
	out, report, err := asm.GenerateFinalPDF(context.Background(), base, []models.AttachmentSource{
		{Identifier: "SITE-7", Attachments: []models.AttachmentRef{
			fileRef("inspection.pdf", "application/pdf", attachment),
		}},
	})
	require.NoError(t, err)
	require.Equal(t, 4, pageCount(t, out))
	require.Equal(t, 3, report.PagesAdded)

	basePage := extractPageText(t, out, 1)
	assert.NotContains(t, basePage, "SITE-7")
	assert.NotContains(t, basePage, "Generated on:")

	firstCopied := extractPageText(t, out, 2)
	assert.Contains(t, firstCopied, "SITE-7")
	assert.Contains(t, firstCopied, "Generated on:")

	for pageNr := 3; pageNr <= 4; pageNr++ {
		rest := extractPageText(t, out, pageNr)
		assert.NotContains(t, rest, "SITE-7")
		assert.NotContains(t, rest, "Generated on:")
	}
}
