package assembly

import (
	"strings"
	"time"
)

// BuildReportFilename derives the output filename from a prefix, an
// optional claim-type tag and an optional phase name (spaces replaced by
// hyphens), joined by hyphens and suffixed with the date, e.g.
// "salary-report-Quarterly-Phase-1-2024-06-01.pdf".
func BuildReportFilename(prefix, claimType, phase string, now time.Time) string {
	parts := []string{prefix}
	if claimType != "" {
		parts = append(parts, claimType)
	}
	if phase != "" {
		parts = append(parts, strings.ReplaceAll(phase, " ", "-"))
	}
	parts = append(parts, now.Format("2006-01-02"))
	return strings.Join(parts, "-") + ".pdf"
}
