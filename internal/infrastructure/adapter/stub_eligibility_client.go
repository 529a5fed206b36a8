package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/pawnworks/origination/internal/domain/model"
)

// StubEligibilityClient is a development/test adapter that derives
// deterministic credit figures from a hash of the customer ID, so scenarios
// are repeatable. It implements port.EligibilityClient and applies the same
// decision rules as the production service: available credit must cover the
// requested amount and at least one loan slot must be free.
type StubEligibilityClient struct{}

// NewStubEligibilityClient creates a new stub adapter.
func NewStubEligibilityClient() *StubEligibilityClient {
	return &StubEligibilityClient{}
}

// CheckLoanEligibility computes an eligibility snapshot for the customer.
// A loanAmount of zero or less means no amount has been requested yet, in
// which case only the slot constraint applies.
func (c *StubEligibilityClient) CheckLoanEligibility(_ context.Context, customerID string, loanAmount int64) (model.EligibilitySnapshot, error) {
	if customerID == "" {
		return model.EligibilitySnapshot{}, fmt.Errorf("customer ID is required")
	}

	h := sha256.Sum256([]byte(customerID))
	num := binary.BigEndian.Uint32(h[:4])

	creditLimit := int64(1_000 + num%10_000) // [1000, 10999]
	creditUsed := int64(num % uint32(creditLimit))
	maxLoans := 3 + int(num%5) // [3, 7]
	activeLoans := int(num) % (maxLoans + 1)

	return Decide(creditLimit, creditUsed, maxLoans, activeLoans, loanAmount), nil
}

// Decide applies the upstream eligibility rules to known figures. Exposed so
// tests can build exact scenarios.
func Decide(creditLimit, creditUsed int64, maxLoans, activeLoans int, requestedAmount int64) model.EligibilitySnapshot {
	available := creditLimit - creditUsed
	slots := maxLoans - activeLoans

	var reasons []string
	if requestedAmount > 0 && available < requestedAmount {
		reasons = append(reasons, fmt.Sprintf(
			"available credit $%d is less than the requested $%d", available, requestedAmount))
	}
	if slots <= 0 {
		reasons = append(reasons, fmt.Sprintf(
			"all %d loan slots are in use", maxLoans))
	}

	return model.EligibilitySnapshot{
		Eligible:        len(reasons) == 0,
		Reasons:         reasons,
		CreditLimit:     creditLimit,
		CreditUsed:      creditUsed,
		AvailableCredit: available,
		MaxLoans:        maxLoans,
		ActiveLoans:     activeLoans,
		SlotsAvailable:  slots,
	}
}
