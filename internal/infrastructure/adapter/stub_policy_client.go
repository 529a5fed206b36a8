package adapter

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pawnworks/origination/internal/domain/valueobject"
)

// StubPolicyClient is a development/test adapter serving a fixed interest
// policy. It implements port.PolicyClient.
type StubPolicyClient struct {
	policy valueobject.FinancialPolicy
}

// NewStubPolicyClient creates a stub with the standard 15% default rate and
// a 10%-20% allowed band.
func NewStubPolicyClient() *StubPolicyClient {
	policy, _ := valueobject.NewFinancialPolicy(
		decimal.NewFromInt(15),
		decimal.NewFromInt(10),
		decimal.NewFromInt(20),
	)
	return &StubPolicyClient{policy: policy}
}

// GetFinancialPolicyConfig returns the fixed policy.
func (c *StubPolicyClient) GetFinancialPolicyConfig(_ context.Context) (valueobject.FinancialPolicy, error) {
	return c.policy, nil
}
