package salesorders

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
)

// RenderInvoice lays out o as an A4 PDF. Draft orders render as a proforma
// invoice.
func RenderInvoice(o *Order, issuedAt time.Time) ([]byte, error) {
	title := "INVOICE"
	if o.Status == StatusDraft {
		title = "PROFORMA INVOICE"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title+" "+o.OrderNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Order No    : "+o.OrderNumber)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Order Date  : "+o.OrderDate.Format(dateLayout))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Issued      : "+issuedAt.Format("2006-01-02 15:04"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Status      : "+strings.ToUpper(string(o.Status)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Bill to:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("%s (%s)", safe(o.CustomerName, "-"), safe(o.CustomerCode, "-"))))
	pdf.Ln(6)
	if addr := strings.TrimSpace(strings.Join(nonEmpty(o.CustomerAddress, o.CustomerCity), ", ")); addr != "" {
		pdf.MultiCell(0, 6, tr(addr), "", "", false)
	}
	pdf.Ln(6)

	widths := []float64{12, 28, 70, 20, 30, 30}
	headers := []string{"#", "Code", "Item", "Qty", "Unit Price", "Amount"}
	aligns := []string{"C", "L", "L", "R", "R", "R"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, aligns[i], true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, l := range o.Lines {
		cells := []string{
			strconv.Itoa(l.LineNo),
			l.ItemCode,
			tr(truncate(l.ItemName, 40)),
			strconv.Itoa(l.Quantity),
			FormatMoney(l.UnitPriceCents),
			FormatMoney(l.LineTotalCents),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}

	var tableWidth float64
	for _, w := range widths[:5] {
		tableWidth += w
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(tableWidth, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[5], 8, FormatMoney(o.TotalCents), "1", 0, "R", false, 0, "")
	pdf.Ln(12)

	if notes := strings.TrimSpace(o.Notes); notes != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, tr("Notes: "+notes), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func InvoiceFilename(o *Order) string {
	return "invoice-" + strings.ToLower(o.OrderNumber) + ".pdf"
}

// FormatMoney renders cents with thousands separators, e.g. 123456 as
// "1,234.56".
func FormatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s%s.%02d", sign, b.String(), cents%100)
}

func safe(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
