package core

import (
	"fmt"
	"strconv"
)

// ReportRow is one line of the printable report, already formatted for the
// document renderer. Field order matches the rendered columns.
type ReportRow struct {
	Date        string
	Unit        string
	Method      string
	Description string
	Amount      string
}

// reportDateLayout is the fixed calendar date form used on reports.
const reportDateLayout = "02/01/2006"

// FormatReportAmount renders an amount with the fixed currency prefix and
// exactly two decimal places, e.g. 123450 cents -> "R$ 1234.50".
func FormatReportAmount(m Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + fmt.Sprintf(".%02d", cents%100)
	if neg {
		return "-R$ " + s
	}
	return "R$ " + s
}

// ProjectRows maps records to report rows in input order. Callers pre-sort
// and pre-filter; this never re-sorts.
func ProjectRows(records []Transaction) []ReportRow {
	rows := make([]ReportRow, 0, len(records))
	for _, t := range records {
		rows = append(rows, ReportRow{
			Date:        t.CreatedAt.Format(reportDateLayout),
			Unit:        t.Unit,
			Method:      t.Method.Label(),
			Description: t.Description,
			Amount:      FormatReportAmount(t.Amount),
		})
	}
	return rows
}
