package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	t.Run("eligible when credit and slots suffice", func(t *testing.T) {
		snap := Decide(1000, 200, 3, 1, 500)
		assert.True(t, snap.Eligible)
		assert.Empty(t, snap.Reasons)
		assert.Equal(t, int64(800), snap.AvailableCredit)
		assert.Equal(t, 2, snap.SlotsAvailable)
	})

	t.Run("insufficient available credit", func(t *testing.T) {
		snap := Decide(1000, 800, 3, 1, 300)
		assert.False(t, snap.Eligible)
		require.Len(t, snap.Reasons, 1)
		assert.Equal(t, "available credit $200 is less than the requested $300", snap.Reasons[0])
	})

	t.Run("all loan slots in use", func(t *testing.T) {
		snap := Decide(5000, 0, 3, 3, 100)
		assert.False(t, snap.Eligible)
		require.Len(t, snap.Reasons, 1)
		assert.Equal(t, "all 3 loan slots are in use", snap.Reasons[0])
	})

	t.Run("both constraints reported together", func(t *testing.T) {
		snap := Decide(1000, 900, 2, 2, 500)
		assert.False(t, snap.Eligible)
		assert.Len(t, snap.Reasons, 2)
	})

	t.Run("no requested amount checks slots only", func(t *testing.T) {
		snap := Decide(1000, 1000, 3, 1, 0)
		assert.True(t, snap.Eligible, "zero amount means nothing has been requested yet")
	})
}

func TestStubEligibilityClient(t *testing.T) {
	client := NewStubEligibilityClient()

	t.Run("deterministic per customer", func(t *testing.T) {
		a, err := client.CheckLoanEligibility(context.Background(), "5551234567", 100)
		require.NoError(t, err)
		b, err := client.CheckLoanEligibility(context.Background(), "5551234567", 100)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("requires a customer ID", func(t *testing.T) {
		_, err := client.CheckLoanEligibility(context.Background(), "", 100)
		assert.Error(t, err)
	})

	t.Run("figures stay in their documented ranges", func(t *testing.T) {
		snap, err := client.CheckLoanEligibility(context.Background(), "9998887777", 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, snap.CreditLimit, int64(1000))
		assert.Less(t, snap.CreditLimit, int64(11000))
		assert.GreaterOrEqual(t, snap.MaxLoans, 3)
		assert.LessOrEqual(t, snap.MaxLoans, 7)
		assert.GreaterOrEqual(t, snap.ActiveLoans, 0)
		assert.LessOrEqual(t, snap.ActiveLoans, snap.MaxLoans)
	})
}
