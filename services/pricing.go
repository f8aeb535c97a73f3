package services

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// NetPrice returns unitPrice * quantity * (1 - discountPercent/100), rounded
// half away from zero to two places and floored at zero.
func NetPrice(unitPrice decimal.Decimal, quantity int, discountPercent decimal.Decimal) decimal.Decimal {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	net := gross.Mul(factor).Round(2)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// InvoiceTotal returns subtotal - subtotal*discountPercent/100 rounded to two places.
func InvoiceTotal(subtotal, discountPercent decimal.Decimal) decimal.Decimal {
	return subtotal.Sub(subtotal.Mul(discountPercent).Div(hundred)).Round(2)
}

// LineInput carries the optional pricing fields of an item write.
type LineInput struct {
	UnitPrice       decimal.Decimal
	Quantity        *int
	DiscountPercent *decimal.Decimal
}

// Price fills in the defaults (quantity 1, discount 0) and returns the
// effective quantity, discount and net price.
func (in LineInput) Price() (int, decimal.Decimal, decimal.Decimal) {
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	discount := decimal.Zero
	if in.DiscountPercent != nil {
		discount = *in.DiscountPercent
	}
	return qty, discount, NetPrice(in.UnitPrice, qty, discount)
}
