package assembly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildReportFilename(t *testing.T) {
	day := time.Date(2024, 6, 1, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "x-report-Quarterly-Phase-1-2024-06-01.pdf",
		BuildReportFilename("x-report", "Quarterly", "Phase 1", day))
	assert.Equal(t, "salary-report-2024-06-01.pdf",
		BuildReportFilename("salary-report", "", "", day))
	assert.Equal(t, "claims-pack-Phase-2-Final-2024-06-01.pdf",
		BuildReportFilename("claims-pack", "", "Phase 2 Final", day))
}
