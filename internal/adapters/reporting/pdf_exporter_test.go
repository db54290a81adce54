package reporting

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/navify/internal/core/domain"
)

func TestPDFExporterExportTrafficReport(t *testing.T) {
	exporter := NewPDFExporter()

	snap := domain.TrafficSnapshot{
		Timestamp: time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC),
		Areas: []domain.Area{
			{ID: "A1", Name: "Downtown Core", Congestion: 88},
			{ID: "A2", Name: "Harbor Bridge", Congestion: 64},
			{ID: "A3", Name: "Ring Road North", Congestion: 40},
			{ID: "A4", Name: "University District", Congestion: 5},
		},
	}

	pdfData, err := exporter.ExportTrafficReport(snap)
	require.NoError(t, err)

	// Verify PDF header (PDF files start with %PDF-)
	assert.True(t, bytes.HasPrefix(pdfData, []byte("%PDF-")))
	assert.Greater(t, len(pdfData), 1000)
}

func TestPDFExporterWithNoAreas(t *testing.T) {
	pdfData, err := NewPDFExporter().ExportTrafficReport(domain.TrafficSnapshot{Timestamp: time.Now()})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfData, []byte("%PDF-")))
}

func TestCongestionColor(t *testing.T) {
	tests := []struct {
		congestion int
		r, g, b    int
	}{
		{95, 220, 53, 69},
		{61, 255, 149, 0},
		{60, 255, 204, 0},
		{20, 52, 199, 89},
	}
	for _, tt := range tests {
		r, g, b := congestionColor(tt.congestion)
		assert.Equal(t, []int{tt.r, tt.g, tt.b}, []int{r, g, b}, "congestion %d", tt.congestion)
	}
}
