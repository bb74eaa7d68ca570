package postgres

import (
	"github.com/shopspring/decimal"
)

// NUMERIC columns are selected with ::text casts and parsed here;
// amounts are bound back with ::numeric casts.

var decimalHundred = decimal.NewFromInt(100)

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

func parseDecimalPtr(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func bindDecimalPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}
