package valueobject

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// FinancialPolicy – immutable value object
// ---------------------------------------------------------------------------

// FinancialPolicy carries the store-configured interest rate policy. Loaded
// once per wizard session and read-only thereafter.
type FinancialPolicy struct {
	DefaultMonthlyInterestRatePct decimal.Decimal
	MinInterestRatePct            decimal.Decimal
	MaxInterestRatePct            decimal.Decimal

	loaded bool
}

// NewFinancialPolicy validates and constructs a policy.
func NewFinancialPolicy(defaultRate, minRate, maxRate decimal.Decimal) (FinancialPolicy, error) {
	if defaultRate.IsNegative() || minRate.IsNegative() || maxRate.IsNegative() {
		return FinancialPolicy{}, errors.New("policy rates must not be negative")
	}
	if minRate.GreaterThan(maxRate) {
		return FinancialPolicy{}, errors.New("policy min rate exceeds max rate")
	}
	return FinancialPolicy{
		DefaultMonthlyInterestRatePct: defaultRate,
		MinInterestRatePct:            minRate,
		MaxInterestRatePct:            maxRate,
		loaded:                        true,
	}, nil
}

// IsZero returns true while the policy has not been loaded. Consumers fall
// back to the default rate during this window.
func (p FinancialPolicy) IsZero() bool { return !p.loaded }
