package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"Loan ID", "Customer", "Staff ID", "Expected", "Paid", "Outstanding"}

// ExportMonthlyXLSX renders the monthly report as a spreadsheet.
func (s *Service) ExportMonthlyXLSX(ctx context.Context, organizationID int64, year, month int) ([]byte, error) {
	rep, err := s.Monthly(ctx, organizationID, year, month)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("Monthly Remittance Report %04d-%02d", year, month)); err != nil {
		return nil, err
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 3)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, row := range rep.Loans {
		values := []any{
			row.LoanID,
			row.CustomerName,
			row.StaffID,
			row.Expected.InexactFloat64(),
			row.Paid.InexactFloat64(),
			row.Outstanding.InexactFloat64(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+4)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	totalRow := len(rep.Loans) + 5
	totals := []any{
		"TOTAL", "", "",
		rep.TotalExpected.InexactFloat64(),
		rep.TotalPaid.InexactFloat64(),
		rep.TotalOutstanding.InexactFloat64(),
	}
	for col, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(col+1, totalRow)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
