package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/lcalzada-xor/navify/internal/core/domain"
)

const reportTitle = "City Traffic Report"

// PDFExporter exports traffic snapshots to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportTrafficReport renders the snapshot as a one-page PDF: summary box
// followed by a per-area congestion table.
func (e *PDFExporter) ExportTrafficReport(snap domain.TrafficSnapshot) ([]byte, error) {
	summary := domain.Summarize(snap)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(reportTitle, false)
	pdf.AddPage()

	e.addHeader(pdf, snap)
	e.addSummary(pdf, summary)
	e.addAreaTable(pdf, snap.Areas)
	e.addFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, snap domain.TrafficSnapshot) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, reportTitle, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	captured := fmt.Sprintf("Snapshot: %s", snap.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"))
	pdf.CellFormat(0, 6, captured, "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func (e *PDFExporter) addSummary(pdf *gofpdf.Fpdf, summary domain.TrafficSummary) {
	r, g, b := congestionColor(summary.AvgCongestion)
	pdf.SetFillColor(r, g, b)
	y := pdf.GetY()
	pdf.Rect(20, y, 170, 26, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 28)
	pdf.SetXY(25, y+4)
	pdf.CellFormat(70, 18, fmt.Sprintf("%d%%", summary.AvgCongestion), "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.SetXY(100, y+5)
	pdf.CellFormat(85, 7, fmt.Sprintf("Hotspots: %d", len(summary.Hotspots)), "", 2, "L", false, 0, "")
	pdf.CellFormat(85, 7, fmt.Sprintf("Average ETA: %d min", summary.AvgEtaMin), "", 0, "L", false, 0, "")

	pdf.SetY(y + 32)
}

func (e *PDFExporter) addAreaTable(pdf *gofpdf.Fpdf, areas []domain.Area) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Areas", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(25, 8, "ID", "1", 0, "L", true, 0, "")
	pdf.CellFormat(75, 8, "Name", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Congestion", "1", 0, "R", true, 0, "")
	pdf.CellFormat(45, 8, "", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, a := range areas {
		y := pdf.GetY()
		pdf.CellFormat(25, 8, a.ID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(75, 8, a.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d%%", a.Congestion), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 8, "", "1", 1, "L", false, 0, "")

		// Bar scaled to the 45mm column.
		r, g, b := congestionColor(a.Congestion)
		pdf.SetFillColor(r, g, b)
		pdf.Rect(147, y+2, 41*float64(a.Congestion)/100, 4, "F")
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf) {
	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 5, fmt.Sprintf("Areas above %d%% are reported as hotspots.", domain.HotspotThreshold), "", 1, "L", false, 0, "")
}

// congestionColor returns RGB color based on congestion level
func congestionColor(congestion int) (r, g, b int) {
	switch {
	case congestion > 80:
		return 220, 53, 69 // Red
	case congestion > domain.HotspotThreshold:
		return 255, 149, 0 // Orange
	case congestion > 35:
		return 255, 204, 0 // Yellow
	default:
		return 52, 199, 89 // Green
	}
}
