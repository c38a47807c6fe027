package order

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/order-entry/internal/domain/tax"
)

// NetTotal is the pre-tax sum of price×quantity over all items, computed
// with exact decimal arithmetic so cent-level results reproduce exactly.
func NetTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Product.Price.Mul(it.Quantity))
	}
	return total
}

// Total computes the grand total as netTotal × Σrates: the combined tax
// burden is the sum of all returned rates applied once to the net total.
// Rates are not compounded and the net total is not added back on top, so
// the grand total can be smaller or much larger than the net total
// depending on whether the combined rates exceed 1.0.
func Total(entries []tax.Entry, netTotal decimal.Decimal) decimal.Decimal {
	rates := decimal.Zero
	for _, e := range entries {
		rates = rates.Add(e.Rate)
	}
	return netTotal.Mul(rates)
}
