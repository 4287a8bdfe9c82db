// Package export renders training results to files: packing layout PDFs,
// QR-coded piece labels and metrics workbooks.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/CutLearn/internal/env"
	"github.com/piwi3910/CutLearn/internal/model"
)

// pieceColor represents an RGB fill for a placed piece.
type pieceColor struct {
	R, G, B int
}

var pieceColors = []pieceColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF renders the packing result as a PDF: one page per used stock
// with a scaled layout diagram, then a summary page. Untouched stocks are
// skipped.
func ExportPDF(path string, stocks []model.Stock, placed [][]env.PlacedPiece) error {
	if len(stocks) == 0 {
		return fmt.Errorf("no stocks to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pageNum := 0
	for i, stock := range stocks {
		if stock.IsEmpty() {
			continue
		}
		pageNum++
		pdf.AddPage()
		renderStockPage(pdf, stock, pieces(placed, i), i, pageNum)
	}
	if pageNum == 0 {
		return fmt.Errorf("no pieces placed to export")
	}

	pdf.AddPage()
	renderSummaryPage(pdf, stocks, placed)

	return pdf.OutputFileAndClose(path)
}

func pieces(placed [][]env.PlacedPiece, stockIdx int) []env.PlacedPiece {
	if stockIdx < len(placed) {
		return placed[stockIdx]
	}
	return nil
}

// renderStockPage draws one stock's layout on the current page.
func renderStockPage(pdf *fpdf.Fpdf, stock model.Stock, placed []env.PlacedPiece, stockIdx, pageNum int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Stock %d (%d x %d cells)", stockIdx+1, stock.Width(), stock.Height())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Pieces: %d | Used cells: %d / %d | Fill: %.1f%%",
		len(placed), stock.UsedCells(), stock.Area(), stock.FilledRatio()*100)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - 10

	scale := math.Min(drawWidth/float64(stock.Width()), drawHeight/float64(stock.Height()))
	canvasW := float64(stock.Width()) * scale
	canvasH := float64(stock.Height()) * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Stock background.
	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for _, pp := range placed {
		p := pp.Placement
		col := pieceColors[pp.Piece%len(pieceColors)]
		px := offsetX + float64(p.X)*scale
		py := offsetY + float64(p.Y)*scale
		pw := float64(p.Width) * scale
		ph := float64(p.Height) * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 12 && ph > 6 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)
			label := fmt.Sprintf("#%d %dx%d", pp.Piece, p.Width, p.Height)
			if p.Rotated {
				label += " R"
			}
			labelW := pdf.GetStringWidth(label)
			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-2)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}
}

// renderSummaryPage draws the final page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, stocks []model.Stock, placed [][]env.PlacedPiece) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Packing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	usedStocks := 0
	totalPieces := 0
	usedCells := 0
	totalCells := 0
	for i, s := range stocks {
		if s.IsEmpty() {
			continue
		}
		usedStocks++
		totalPieces += len(pieces(placed, i))
		usedCells += s.UsedCells()
		totalCells += s.Area()
	}
	fill := 0.0
	if totalCells > 0 {
		fill = float64(usedCells) / float64(totalCells) * 100
	}

	y := marginTop + 18
	summaryItems := []struct {
		label string
		value string
	}{
		{"Stocks Used", fmt.Sprintf("%d of %d", usedStocks, len(stocks))},
		{"Pieces Placed", fmt.Sprintf("%d", totalPieces)},
		{"Fill (used stocks)", fmt.Sprintf("%.1f%%", fill)},
		{"Waste (used stocks)", fmt.Sprintf("%.1f%%", 100-fill)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Stock Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 50, 35, 40, 50}
	headers := []string{"Stock", "Dimensions", "Pieces", "Fill", "Used / Total Cells"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	row := 0
	for i, s := range stocks {
		if s.IsEmpty() {
			continue
		}
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d x %d", s.Width(), s.Height()),
			fmt.Sprintf("%d", len(pieces(placed, i))),
			fmt.Sprintf("%.1f%%", s.FilledRatio()*100),
			fmt.Sprintf("%d / %d", s.UsedCells(), s.Area()),
		}
		if row%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
		row++
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by CutLearn", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// labelFontSize returns an appropriate font size for a piece rectangle.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
