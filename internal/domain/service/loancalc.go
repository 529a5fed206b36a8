package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Loan calculation engine – pure, deterministic, no I/O
// ---------------------------------------------------------------------------

// FallbackInterestRatePct applies while the financial policy has not resolved.
var FallbackInterestRatePct = decimal.NewFromInt(15)

// LoanTermMonths is the fixed pawn term.
const LoanTermMonths = 3

var hundred = decimal.NewFromInt(100)

// DefaultInterest computes the policy-suggested monthly interest in whole
// dollars: round(loanAmount * ratePct / 100). Rounding is half-up (half away
// from zero; amounts are always positive here), so 333 at 15% yields 50.
func DefaultInterest(loanAmount int64, ratePct decimal.Decimal) int64 {
	return decimal.NewFromInt(loanAmount).
		Mul(ratePct).
		Div(hundred).
		Round(0).
		IntPart()
}

// MaturityDate returns today plus three calendar months. The month wraps
// modulo twelve with a year carry (November 2024 matures February 2025) and
// the day of month is preserved without clamping: if the source day does not
// exist in the target month the date normalizes forward, so Jan 31 matures
// May 1.
func MaturityDate(today time.Time) time.Time {
	month := int(today.Month()) - 1 + LoanTermMonths
	year := today.Year() + month/12
	month = month % 12
	return time.Date(year, time.Month(month+1), today.Day(),
		today.Hour(), today.Minute(), today.Second(), today.Nanosecond(), today.Location())
}

// TotalDue is the full redemption amount after one interest period.
func TotalDue(loanAmount, monthlyInterest int64) int64 {
	return loanAmount + monthlyInterest
}

// RatePct computes the effective monthly rate implied by an interest amount,
// as a percentage of the loan amount. The caller guarantees loanAmount > 0.
func RatePct(loanAmount, monthlyInterest int64) decimal.Decimal {
	return decimal.NewFromInt(monthlyInterest).
		Div(decimal.NewFromInt(loanAmount)).
		Mul(hundred)
}
