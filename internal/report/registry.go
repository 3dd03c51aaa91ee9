// Package report maps report kinds to their generator functions. The
// mapping is a closed lookup table, so an unknown kind fails at parse time
// instead of falling through a runtime default case.
package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"github.com/claimworks/reportflow/internal/assembly"
	"github.com/claimworks/reportflow/internal/models"
)

// Kind identifies one report template.
type Kind int

const (
	KindClaimSummary Kind = iota
	KindSalaryQuarterly
	KindSiteInspection
)

var kindNames = map[string]Kind{
	"claim-summary":    KindClaimSummary,
	"salary-quarterly": KindSalaryQuarterly,
	"site-inspection":  KindSiteInspection,
}

// ParseKind resolves a manifest kind string.
func ParseKind(s string) (Kind, error) {
	k, ok := kindNames[s]
	if !ok {
		return 0, fmt.Errorf("unknown report kind %q", s)
	}
	return k, nil
}

func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Request carries everything a generator needs for one report.
type Request struct {
	Prefix    string
	ClaimType string
	Phase     string
	Sources   []models.AttachmentSource
}

// generator renders the primary document for a kind and hands it to the
// assembler together with the request's attachment sources.
type generator func(ctx context.Context, asm *assembly.Assembler, req Request) (*models.GeneratedFile, error)

var generators = map[Kind]generator{
	KindClaimSummary:    coverGenerator("Claim Summary Report"),
	KindSalaryQuarterly: coverGenerator("Salary Report - Quarterly"),
	KindSiteInspection:  coverGenerator("Site Inspection Report"),
}

// Generate produces the final merged report for a kind.
func Generate(ctx context.Context, asm *assembly.Assembler, kind Kind, req Request) (*models.GeneratedFile, error) {
	gen, ok := generators[kind]
	if !ok {
		return nil, fmt.Errorf("no generator registered for %s", kind)
	}
	return gen(ctx, asm, req)
}

// coverGenerator builds the common generator shape: a minimal primary
// document with the given title, merged with the request's sources. The
// full page layouts live with the upstream template renderers; this module
// only needs a seed document to assemble onto.
func coverGenerator(title string) generator {
	return func(ctx context.Context, asm *assembly.Assembler, req Request) (*models.GeneratedFile, error) {
		primary, err := renderCover(title, req)
		if err != nil {
			return nil, fmt.Errorf("rendering primary document: %w", err)
		}
		merged, _, err := asm.GenerateFinalPDF(ctx, primary, req.Sources)
		if err != nil {
			return nil, err
		}
		name := assembly.BuildReportFilename(req.Prefix, req.ClaimType, req.Phase, asm.Now())
		return asm.WrapFile(name, merged), nil
	}
}

func renderCover(title string, req Request) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(48, 64, 48)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 24, title)
	pdf.Ln(32)
	pdf.SetFont("Helvetica", "", 11)
	if req.ClaimType != "" {
		pdf.Cell(0, 16, fmt.Sprintf("Claim type: %s", req.ClaimType))
		pdf.Ln(18)
	}
	if req.Phase != "" {
		pdf.Cell(0, 16, fmt.Sprintf("Phase: %s", req.Phase))
		pdf.Ln(18)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
