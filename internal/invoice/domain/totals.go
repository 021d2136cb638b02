package domain

import "github.com/shopspring/decimal"

// Totals are the three published aggregates of an invoice, in minor units.
type Totals struct {
	Subtotal int64
	Tax      int64
	Total    int64
}

var oneHundred = decimal.NewFromInt(100)

// CalculateTotals sums the line items and rounds only the three aggregates,
// never the per-line products. Per-line rounding drifts by whole cents on
// fractional tax rates, so intermediate sums stay exact decimals and get
// rounded half-away-from-zero to two places at the end.
func CalculateTotals(items []LineItem) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero

	for _, item := range items {
		line := decimal.NewFromFloat(item.Quantity).
			Mul(decimal.New(item.UnitPrice, -2))
		subtotal = subtotal.Add(line)
		tax = tax.Add(line.Mul(decimal.NewFromFloat(item.TaxRate)).Div(oneHundred))
	}

	subtotalRounded := subtotal.Round(2)
	taxRounded := tax.Round(2)
	total := subtotalRounded.Add(taxRounded).Round(2)

	return Totals{
		Subtotal: toMinorUnits(subtotalRounded),
		Tax:      toMinorUnits(taxRounded),
		Total:    toMinorUnits(total),
	}
}

func toMinorUnits(value decimal.Decimal) int64 {
	return value.Mul(oneHundred).IntPart()
}
