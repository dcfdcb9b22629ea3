package compose

import (
	"bytes"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/CHAND7/ETE-Robotics-App/internal/model"
	"github.com/CHAND7/ETE-Robotics-App/internal/util"
)

const (
	labelColWidth = 60.0
	valueColWidth = 130.0
	rowHeight     = 6.0
)

// renderPDF builds the portrait A4 RFQ summary.
func (c *Composer) renderPDF(d *model.Draft, created time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetTitle("RFQ Summary", false)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if c.hasLogo() {
		pdf.ImageOptions(c.logoPath, 10, 10, 50, 0, false,
			fpdf.ImageOptions{ReadDpi: true}, 0, "")
		pdf.SetY(32)
	}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, c.company+" - RFQ Summary", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	c.pdfSection(pdf, "Customer", c.sectionRows(d, "customer"))
	c.pdfSection(pdf, "RFQ Checklist", c.sectionRows(d, "checklist"))
	c.pdfSection(pdf, "Dispatch", c.sectionRows(d, "review"))
	c.pdfItems(pdf, d)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Composer) pdfSection(pdf *fpdf.Fpdf, title string, rows []row) {
	if len(rows) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")

	for _, r := range rows {
		lines := pdf.SplitText(r.value, valueColWidth-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		for i, line := range lines {
			label := ""
			if i == 0 {
				label = r.label
			}
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(labelColWidth, rowHeight, label, "1", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(valueColWidth, rowHeight, line, "1", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)
}

func (c *Composer) pdfItems(pdf *fpdf.Fpdf, d *model.Draft) {
	if len(d.Items) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Selected Items", "", 1, "L", false, 0, "")

	widths := []float64{12, 45, 55, 14, 30, 34}
	headers := []string{"S.no", "Head", "Model/Spec", "Qty", "Unit Cost", "Line Cost (INR)"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(245, 245, 245)
	for i, h := range headers {
		pdf.CellFormat(widths[i], rowHeight+1, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, it := range d.Items {
		cells := []string{
			strconv.Itoa(it.SNo),
			c.sanitize(it.Head),
			c.sanitize(it.ModelSpec),
			strconv.Itoa(it.Qty),
			util.FormatCurrency(it.UnitCost),
			util.FormatCurrency(it.LineCost),
		}
		aligns := []string{"C", "L", "L", "C", "R", "R"}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], rowHeight, cell, "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], rowHeight, "", "", 0, "", false, 0, "")
	pdf.CellFormat(widths[4], rowHeight, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[5], rowHeight, util.FormatCurrency(d.Total()), "1", 1, "R", false, 0, "")
}
