package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNetPrice(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		qty      int
		discount string
		want     string
	}{
		{"discounted pair", "100", 2, "10", "180.00"},
		{"no discount", "19.99", 3, "0", "59.97"},
		{"full discount", "10", 1, "100", "0.00"},
		{"rounds to cents", "33.333", 1, "0", "33.33"},
		{"half cent rounds up", "0.005", 1, "0", "0.01"},
		{"fractional discount", "10", 3, "33.33", "20.00"},
		{"zero price", "0", 5, "25", "0.00"},
		{"never negative", "10", 1, "150", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NetPrice(decimal.RequireFromString(tt.unit), tt.qty, decimal.RequireFromString(tt.discount))
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestInvoiceTotal(t *testing.T) {
	tests := []struct {
		subtotal, discount, want string
	}{
		{"180", "5", "171.00"},
		{"0", "5", "0.00"},
		{"99.99", "12.5", "87.49"},
		{"250", "0", "250.00"},
		{"250", "100", "0.00"},
	}
	for _, tt := range tests {
		got := InvoiceTotal(decimal.RequireFromString(tt.subtotal), decimal.RequireFromString(tt.discount))
		assert.Equal(t, tt.want, got.StringFixed(2), "subtotal=%s discount=%s", tt.subtotal, tt.discount)
	}
}

func TestLineInputDefaults(t *testing.T) {
	qty, discount, net := LineInput{UnitPrice: decimal.RequireFromString("42.50")}.Price()

	assert.Equal(t, 1, qty)
	assert.True(t, discount.IsZero())
	assert.Equal(t, "42.50", net.StringFixed(2))

	q := 4
	d := decimal.NewFromInt(25)
	qty, discount, net = LineInput{UnitPrice: decimal.NewFromInt(10), Quantity: &q, DiscountPercent: &d}.Price()
	assert.Equal(t, 4, qty)
	assert.Equal(t, "25", discount.String())
	assert.Equal(t, "30.00", net.StringFixed(2))
}
