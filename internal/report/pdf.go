// Package report renders projected ledger rows into a printable PDF.
package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"caixa/internal/core"
	"caixa/internal/ledger"

	"github.com/go-pdf/fpdf"
)

// PDFRenderer produces the exported cash-flow report. It consumes rows
// exactly as projected; ordering and formatting are the projector's job.
type PDFRenderer struct {
	now func() time.Time
}

var _ ledger.ReportRenderer = (*PDFRenderer)(nil)

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{now: time.Now}
}

var columns = []struct {
	title string
	width float64
}{
	{"Data", 24},
	{"Estabelecimento", 42},
	{"Pagamento", 28},
	{"Descrição", 66},
	{"Valor", 30},
}

// Render implements ledger.ReportRenderer. Any generation failure is
// returned to the caller instead of producing a broken file.
func (r *PDFRenderer) Render(_ context.Context, title string, rows []core.ReportRow, totals core.Summary) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(title), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Gerado em %s", r.now().Format("02/01/2006 15:04"))), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// Header row
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for _, col := range columns {
		pdf.CellFormat(col.width, 8, tr(col.title), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		cells := []string{row.Date, row.Unit, row.Method, row.Description, row.Amount}
		for i, col := range columns {
			align := "L"
			if i == len(columns)-1 {
				align = "R"
			}
			pdf.CellFormat(col.width, 7, tr(cells[i]), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(rows) == 0 {
		pdf.CellFormat(190, 7, tr("Nenhuma movimentação no período"), "1", 1, "C", false, 0, "")
	}

	// Totals footer
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	writeTotal := func(label string, m core.Money) {
		pdf.CellFormat(160, 7, tr(label), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, tr(core.FormatReportAmount(m)), "", 1, "R", false, 0, "")
	}
	writeTotal("Entradas:", totals.TotalInflow)
	writeTotal("Saídas:", totals.TotalOutflow)
	writeTotal("Saldo:", totals.NetBalance)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}
