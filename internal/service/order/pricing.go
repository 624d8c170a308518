package order

import (
	"github.com/shopspring/decimal"

	"shopping-matrix/internal/domain"
)

// DefaultTaxRate is the 18% GST applied at checkout.
var DefaultTaxRate = decimal.RequireFromString("0.18")

type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// NewQuote prices the lines; tax is rounded to two places and included in Total.
func NewQuote(lines []domain.CartLine, taxRate decimal.Decimal) Quote {
	q := Quote{Subtotal: decimal.Zero}
	for _, l := range lines {
		q.Subtotal = q.Subtotal.Add(l.LineTotal())
		q.Count += l.Quantity
	}
	q.Tax = q.Subtotal.Mul(taxRate).Round(2)
	q.Total = q.Subtotal.Add(q.Tax)
	return q
}
