package compose

import (
	"bytes"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/CHAND7/ETE-Robotics-App/internal/model"
	"github.com/CHAND7/ETE-Robotics-App/internal/util"
)

// renderDeck builds the landscape slide deck: title slide, customer &
// requirements, selected items, checklist.
func (c *Composer) renderDeck(d *model.Draft, created time.Time) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetTitle("RFQ Summary Deck", false)
	pdf.SetAutoPageBreak(false, 0)

	c.deckTitleSlide(pdf, d)
	c.deckListSlide(pdf, "Customer & Requirements", c.sectionRows(d, "customer"))
	c.deckItemsSlide(pdf, d)
	c.deckListSlide(pdf, "RFQ Checklist", c.sectionRows(d, "checklist"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Composer) deckTitleSlide(pdf *fpdf.Fpdf, d *model.Draft) {
	pdf.AddPage()

	if c.hasLogo() {
		pdf.ImageOptions(c.logoPath, 230, 12, 50, 0, false,
			fpdf.ImageOptions{ReadDpi: true}, 0, "")
	}

	pdf.SetY(80)
	pdf.SetFont("Helvetica", "B", 32)
	pdf.CellFormat(0, 16, "RFQ Summary", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 16)
	subtitle := c.company
	if name := c.sanitize(d.Field(model.FieldCustomerName)); name != "" {
		subtitle += " - " + name
	}
	pdf.CellFormat(0, 10, subtitle, "", 1, "C", false, 0, "")
}

func (c *Composer) deckListSlide(pdf *fpdf.Fpdf, title string, rows []row) {
	if len(rows) == 0 {
		return
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(12, 14)
	pdf.CellFormat(0, 12, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 13)
	for _, r := range rows {
		pdf.SetX(16)
		pdf.CellFormat(0, 8, r.label+": "+r.value, "", 1, "L", false, 0, "")
	}
}

func (c *Composer) deckItemsSlide(pdf *fpdf.Fpdf, d *model.Draft) {
	if len(d.Items) == 0 {
		return
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(12, 14)
	pdf.CellFormat(0, 12, "Selected Items & Costs", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	widths := []float64{16, 80, 70, 20, 40, 44}
	headers := []string{"S.no", "Model/Spec", "Head", "Qty", "Unit Cost", "Line Cost (INR)"}

	pdf.SetX(12)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(245, 245, 245)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, it := range d.Items {
		cells := []string{
			strconv.Itoa(it.SNo),
			c.sanitize(it.ModelSpec),
			c.sanitize(it.Head),
			strconv.Itoa(it.Qty),
			util.FormatCurrency(it.UnitCost),
			util.FormatCurrency(it.LineCost),
		}
		aligns := []string{"C", "L", "L", "C", "R", "R"}
		pdf.SetX(12)
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 8, cell, "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetX(12)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], 8, "", "", 0, "", false, 0, "")
	pdf.CellFormat(widths[4], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[5], 8, util.FormatCurrency(d.Total()), "1", 1, "R", false, 0, "")
}
