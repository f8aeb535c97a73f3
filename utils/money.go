package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

var decimalType = reflectTypeOf[decimal.Decimal]()

// Round2 rounds x to 2 decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// RoundMoney rounds d to cents, half away from zero.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
