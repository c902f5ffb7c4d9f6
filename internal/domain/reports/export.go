package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"fieldpay/internal/domain/reconcile"
)

const dateLayout = "2006-01-02"

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// WriteStatementPDF renders the weekly pay statement.
func WriteStatementPDF(w io.Writer, st WeekStatement) error {
	sum := st.Summary
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Weekly Pay Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	if st.Technician != "" {
		pdf.Cell(0, 7, fmt.Sprintf("Technician: %s", st.Technician))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Week: %s to %s", sum.Start.Format(dateLayout), sum.End.Format(dateLayout)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	for _, h := range []struct {
		label string
		width float64
	}{{"Date", 28}, {"Ticket", 32}, {"Code", 28}, {"Description", 52}, {"Qty", 14}, {"Amount", 28}} {
		pdf.CellFormat(h.width, 7, h.label, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, day := range sum.Days {
		for _, ticket := range day.Tickets {
			for _, item := range ticket.Items {
				pdf.CellFormat(28, 6, day.Date.Format(dateLayout), "", 0, "L", false, 0, "")
				pdf.CellFormat(32, 6, ticket.TicketNumber, "", 0, "L", false, 0, "")
				pdf.CellFormat(28, 6, item.Code, "", 0, "L", false, 0, "")
				pdf.CellFormat(52, 6, item.Description, "", 0, "L", false, 0, "")
				pdf.CellFormat(14, 6, strconv.Itoa(item.Quantity), "", 0, "R", false, 0, "")
				pdf.CellFormat(28, 6, money(item.Total), "", 0, "R", false, 0, "")
				pdf.Ln(-1)
			}
		}
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Job pay", sum.JobPay},
		{"Per diem", sum.PerDiem},
		{"Extra per diem", sum.ExtraPerDiem},
		{"Lead pay", sum.LeadPay},
	} {
		pdf.CellFormat(60, 7, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, money(line.amount), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(60, 8, "Week total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, money(sum.Total), "T", 0, "R", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Miles: %d  Fuel: %s gal / %s", st.Mileage.Miles, st.Mileage.Gallons.StringFixed(2), money(st.Mileage.FuelCost)))

	return pdf.Output(w)
}

// WriteWeekXLSX writes one sheet of line items and one of daily totals.
func WriteWeekXLSX(w io.Writer, st WeekStatement) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const itemsSheet = "Line Items"
	const daysSheet = "Days"
	if err := f.SetSheetName(f.GetSheetName(0), itemsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(daysSheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(itemsSheet, "A1", &[]any{"Date", "Ticket", "Install Type", "Code", "Description", "Qty", "Rate", "Amount"}); err != nil {
		return err
	}
	row := 2
	for _, day := range st.Summary.Days {
		for _, ticket := range day.Tickets {
			for _, item := range ticket.Items {
				cell, _ := excelize.CoordinatesToCellName(1, row)
				values := []any{day.Date.Format(dateLayout), ticket.TicketNumber, ticket.InstallType, item.Code, item.Description,
					item.Quantity, item.UnitRate.InexactFloat64(), item.Total.InexactFloat64()}
				if err := f.SetSheetRow(itemsSheet, cell, &values); err != nil {
					return err
				}
				row++
			}
		}
	}

	if err := f.SetSheetRow(daysSheet, "A1", &[]any{"Date", "Weekday", "Job Pay", "Per Diem", "Extra Per Diem", "Total"}); err != nil {
		return err
	}
	for i, day := range st.Summary.Days {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{day.Date.Format(dateLayout), day.Weekday, day.JobPay.InexactFloat64(), day.PerDiem.InexactFloat64(),
			day.ExtraPerDiem.InexactFloat64(), day.Total.InexactFloat64()}
		if err := f.SetSheetRow(daysSheet, cell, &values); err != nil {
			return err
		}
	}
	last := len(st.Summary.Days) + 3
	for _, line := range []struct {
		label  string
		amount decimal.Decimal
	}{{"Lead Pay", st.Summary.LeadPay}, {"Week Total", st.Summary.Total}} {
		if err := f.SetCellValue(daysSheet, fmt.Sprintf("A%d", last), line.label); err != nil {
			return err
		}
		if err := f.SetCellValue(daysSheet, fmt.Sprintf("F%d", last), line.amount.InexactFloat64()); err != nil {
			return err
		}
		last++
	}

	_, err := f.WriteTo(w)
	return err
}

func WriteReconciliationCSV(w io.Writer, rep reconcile.WeekReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"ticket", "date", "local_pay", "external_pay", "diff", "status"}); err != nil {
		return err
	}
	for _, row := range rep.Rows {
		date := ""
		if row.Date != nil {
			date = row.Date.Format(dateLayout)
		}
		if err := writer.Write([]string{row.Ticket, date, money(row.LocalPay), money(row.ExternalPay), money(row.Diff), string(row.Status)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
