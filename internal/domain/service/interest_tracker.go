package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pawnworks/origination/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// InterestTracker – auto-calculated vs. manually overridden interest
// ---------------------------------------------------------------------------

// InterestTracker remembers the most recent interest value the system itself
// wrote, so a staff member's manual override is never clobbered when the
// loan amount changes afterwards.
type InterestTracker struct {
	lastAutoCalculated *int64
}

// NewInterestTracker returns a tracker with no auto-calculated history.
func NewInterestTracker() *InterestTracker {
	return &InterestTracker{}
}

// OnLoanAmountChange runs the interest policy on every loan amount edit.
// It returns the suggested interest and whether the interest field should be
// overwritten with it.
//
// The interest is only written when the current value is either zero or
// exactly the tracker's own last suggestion; anything else is a manual
// override and is left alone. Tracking is kept current even when no write
// happens, so a later amount change still recognises the auto value.
func (t *InterestTracker) OnLoanAmountChange(
	loanAmount, currentInterest int64,
	policy valueobject.FinancialPolicy,
) (int64, bool) {
	if loanAmount <= 0 {
		t.lastAutoCalculated = nil
		return 0, false
	}

	rate := FallbackInterestRatePct
	if !policy.IsZero() {
		rate = policy.DefaultMonthlyInterestRatePct
	}
	calculated := DefaultInterest(loanAmount, rate)

	manuallyEdited := currentInterest != 0 &&
		(t.lastAutoCalculated == nil || currentInterest != *t.lastAutoCalculated)
	if manuallyEdited {
		return 0, false
	}

	t.lastAutoCalculated = &calculated
	if calculated != currentInterest {
		return calculated, true
	}
	return calculated, false
}

// Reset clears the auto-calculation history (new session, customer cleared).
func (t *InterestTracker) Reset() {
	t.lastAutoCalculated = nil
}

// LastAutoCalculated exposes the tracked value for inspection; nil when the
// tracker has not written anything for the current amount.
func (t *InterestTracker) LastAutoCalculated() *int64 {
	return t.lastAutoCalculated
}

// ---------------------------------------------------------------------------
// Rate bound check
// ---------------------------------------------------------------------------

// RateBoundError reports an effective interest rate outside the policy's
// allowed percentage band. It is distinct from field validation errors and
// independently blocks forward navigation and submission.
type RateBoundError struct {
	Pct decimal.Decimal
	Min decimal.Decimal
	Max decimal.Decimal
}

func (e *RateBoundError) Error() string {
	return fmt.Sprintf("interest rate %s%% is outside the allowed %s%%-%s%% range",
		e.Pct.StringFixed(1), e.Min.String(), e.Max.String())
}

// CheckRateBounds validates the effective monthly rate implied by the
// current amounts against the policy band. It returns nil while the loan
// amount is missing or the policy has not loaded. A zero interest amount is
// a real value and fails a policy whose minimum rate is positive.
func CheckRateBounds(loanAmount, monthlyInterest int64, policy valueobject.FinancialPolicy) *RateBoundError {
	if policy.IsZero() || loanAmount <= 0 || monthlyInterest < 0 {
		return nil
	}
	pct := RatePct(loanAmount, monthlyInterest)
	if pct.LessThan(policy.MinInterestRatePct) || pct.GreaterThan(policy.MaxInterestRatePct) {
		return &RateBoundError{
			Pct: pct,
			Min: policy.MinInterestRatePct,
			Max: policy.MaxInterestRatePct,
		}
	}
	return nil
}
