package service

import (
	"github.com/shopspring/decimal"
	"github.com/vendopos/api/internal/enum"
	"github.com/vendopos/api/internal/store"
)

// ComputeTax returns the tax for a taxable base under the given tax config.
// A nil or inactive tax yields zero. Percentage taxes scale with the base; a
// fixed tax applies its configured amount once per line, never per unit,
// regardless of the quantity on the line.
func ComputeTax(base decimal.Decimal, tax *store.Tax) decimal.Decimal {
	if tax == nil || !tax.Active {
		return decimal.Zero
	}

	switch tax.Type {
	case enum.TaxTypePercentage:
		rate := numericToDecimal(tax.Rate)
		return base.Mul(rate).Div(decimal.NewFromInt(100))
	case enum.TaxTypeFixed:
		return numericToDecimal(tax.Amount)
	}
	return decimal.Zero
}
