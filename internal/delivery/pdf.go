package delivery

import (
	"bytes"
	"fmt"
	"strconv"

	"mykitchen/internal/shopping"

	"github.com/go-pdf/fpdf"
)

const (
	checkedGlyph   = "[x]"
	uncheckedGlyph = "[ ]"
)

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func checkbox(checked bool) string {
	if checked {
		return checkedGlyph
	}
	return uncheckedGlyph
}

// RenderShoppingListPDF lays the list out on A4 pages: a heading, the
// source recipes and one table row per item.
func RenderShoppingListPDF(list shopping.ListResponse) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(list.Name, true)
	pdf.SetCreator("mykitchen", true)
	if !list.UpdatedAt.IsZero() {
		pdf.SetCreationDate(list.UpdatedAt)
	}
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(list.Name), "", 1, "L", false, 0, "")

	if list.GeneratedFrom != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, tr("Generated from: "+list.GeneratedFrom), "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(12, 8, "", "1", 0, "C", true, 0, "")
	pdf.CellFormat(110, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 0, "R", true, 0, "")
	pdf.CellFormat(0, 8, "Unit", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, item := range list.Items {
		pdf.CellFormat(12, 8, checkbox(item.Checked), "1", 0, "C", false, 0, "")
		pdf.CellFormat(110, 8, tr(item.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, formatAmount(item.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(0, 8, tr(item.Unit), "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render shopping list pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// PDFFilename derives a download name for list.
func PDFFilename(list shopping.ListResponse) string {
	return fmt.Sprintf("shopping-list-%d.pdf", list.ID)
}
