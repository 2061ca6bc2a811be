package money

import "github.com/shopspring/decimal"

// DriftTolerance is the cent-level slack allowed before a stored balance is
// considered drifted from its recomputed value.
const DriftTolerance = 0.01

// Round2 rounds a monetary amount to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// EqualWithin reports whether two amounts agree within the given tolerance.
func EqualWithin(a, b, tolerance float64) bool {
	diff := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(tolerance))
}

// Sub returns a-b rounded to two decimal places, keeping float drift from
// compounding across repeated ledger arithmetic.
func Sub(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// Add returns a+b rounded to two decimal places.
func Add(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}
