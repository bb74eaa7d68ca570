package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installments fall due every 30 days from the start date.
const installmentInterval = 30 * 24 * time.Hour

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// TotalPayable computes flat interest at 2 dp:
// principal * (1 + rate/100 * tenor/12).
func TotalPayable(principal, annualRate decimal.Decimal, tenorMonths int32) decimal.Decimal {
	tenor := decimal.NewFromInt32(tenorMonths)
	factor := decimal.NewFromInt(1).Add(annualRate.Div(hundred).Mul(tenor).Div(monthsInYear))
	return principal.Mul(factor).Round(2)
}

// BuildSchedule splits totalPayable into tenor equal installments at
// 2 dp. The final installment absorbs the rounding remainder so the
// lines sum exactly to totalPayable.
func BuildSchedule(totalPayable decimal.Decimal, tenorMonths int32, start time.Time) []ScheduleLine {
	if tenorMonths < 1 {
		return nil
	}

	per := totalPayable.Div(decimal.NewFromInt32(tenorMonths)).Round(2)
	lines := make([]ScheduleLine, 0, tenorMonths)
	allocated := decimal.Zero
	for i := int32(1); i <= tenorMonths; i++ {
		amount := per
		if i == tenorMonths {
			amount = totalPayable.Sub(allocated)
		}
		lines = append(lines, ScheduleLine{
			InstallmentNumber: i,
			DueDate:           start.Add(time.Duration(i) * installmentInterval),
			AmountDue:         amount,
		})
		allocated = allocated.Add(amount)
	}
	return lines
}
