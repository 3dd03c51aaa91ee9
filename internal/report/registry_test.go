package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimworks/reportflow/internal/assembly"
	"github.com/claimworks/reportflow/internal/models"
)

func TestParseKind(t *testing.T) {
	for name := range kindNames {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, k.String())
	}
	_, err := ParseKind("weekly-horoscope")
	require.Error(t, err)
}

func TestGenerateProducesNamedPDF(t *testing.T) {
	clock := func() time.Time {
		return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	}
	asm := assembly.NewAssembler(nil, assembly.WithClock(clock))

	out, err := Generate(context.Background(), asm, KindSalaryQuarterly, Request{
		Prefix:    "salary-report",
		ClaimType: "Quarterly",
		Phase:     "Phase 1",
	})
	require.NoError(t, err)
	assert.Equal(t, "salary-report-Quarterly-Phase-1-2024-06-01.pdf", out.Name)
	assert.Equal(t, "application/pdf", out.MimeType)
	assert.Equal(t, clock(), out.LastModified)

	pages, err := api.PageCount(bytes.NewReader(out.Data), nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pages, 1)
}

func TestGenerateMergesRequestSources(t *testing.T) {
	asm := assembly.NewAssembler(nil)

	sources := []models.AttachmentSource{{
		Identifier: "SITE-3",
		Attachments: []models.AttachmentRef{{
			Kind: models.RefFile,
			File: &models.BinaryFile{Name: "n.txt", MimeType: "text/plain", Data: []byte("x")},
		}},
	}}

	out, err := Generate(context.Background(), asm, KindClaimSummary, Request{
		Prefix:  "claims-pack",
		Sources: sources,
	})
	require.NoError(t, err)

	// The unsupported attachment is skipped, never fatal.
	pages, err := api.PageCount(bytes.NewReader(out.Data), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}
