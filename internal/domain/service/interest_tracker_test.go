package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawnworks/origination/internal/domain/valueobject"
)

func testPolicy(t *testing.T) valueobject.FinancialPolicy {
	t.Helper()
	p, err := valueobject.NewFinancialPolicy(
		decimal.NewFromInt(15), decimal.NewFromInt(10), decimal.NewFromInt(20))
	require.NoError(t, err)
	return p
}

func TestInterestTracker_OnLoanAmountChange(t *testing.T) {
	policy := testPolicy(t)

	t.Run("writes suggestion into an empty interest field", func(t *testing.T) {
		tr := NewInterestTracker()
		suggested, write := tr.OnLoanAmountChange(500, 0, policy)
		assert.True(t, write)
		assert.Equal(t, int64(75), suggested)
		require.NotNil(t, tr.LastAutoCalculated())
		assert.Equal(t, int64(75), *tr.LastAutoCalculated())
	})

	t.Run("follows amount edits while value stays the auto one", func(t *testing.T) {
		tr := NewInterestTracker()
		_, write := tr.OnLoanAmountChange(500, 0, policy)
		require.True(t, write)

		// Amount changes, interest field still holds the previous suggestion.
		suggested, write := tr.OnLoanAmountChange(1000, 75, policy)
		assert.True(t, write)
		assert.Equal(t, int64(150), suggested)
	})

	t.Run("never clobbers a manual override", func(t *testing.T) {
		tr := NewInterestTracker()
		_, write := tr.OnLoanAmountChange(500, 0, policy)
		require.True(t, write)

		// Staff typed 90 over the suggested 75; later amount edits leave it.
		_, write = tr.OnLoanAmountChange(1000, 90, policy)
		assert.False(t, write)
		_, write = tr.OnLoanAmountChange(2000, 90, policy)
		assert.False(t, write)
	})

	t.Run("treats nonzero interest with no history as manual", func(t *testing.T) {
		tr := NewInterestTracker()
		_, write := tr.OnLoanAmountChange(500, 42, policy)
		assert.False(t, write)
		assert.Nil(t, tr.LastAutoCalculated())
	})

	t.Run("no write when calculation matches current value", func(t *testing.T) {
		tr := NewInterestTracker()
		_, write := tr.OnLoanAmountChange(500, 0, policy)
		require.True(t, write)

		suggested, write := tr.OnLoanAmountChange(500, 75, policy)
		assert.False(t, write)
		assert.Equal(t, int64(75), suggested)
	})

	t.Run("resets history when the amount is cleared", func(t *testing.T) {
		tr := NewInterestTracker()
		_, write := tr.OnLoanAmountChange(500, 0, policy)
		require.True(t, write)

		_, write = tr.OnLoanAmountChange(0, 75, policy)
		assert.False(t, write)
		assert.Nil(t, tr.LastAutoCalculated())

		// After the reset the stale 75 counts as manual for a new amount.
		_, write = tr.OnLoanAmountChange(300, 75, policy)
		assert.False(t, write)
	})

	t.Run("falls back to the default rate without a policy", func(t *testing.T) {
		tr := NewInterestTracker()
		suggested, write := tr.OnLoanAmountChange(500, 0, valueobject.FinancialPolicy{})
		assert.True(t, write)
		assert.Equal(t, int64(75), suggested)
	})
}

func TestCheckRateBounds(t *testing.T) {
	policy := testPolicy(t)

	t.Run("rate inside the band passes", func(t *testing.T) {
		assert.Nil(t, CheckRateBounds(500, 75, policy))
		assert.Nil(t, CheckRateBounds(500, 50, policy))  // exactly 10%
		assert.Nil(t, CheckRateBounds(500, 100, policy)) // exactly 20%
	})

	t.Run("rate below the minimum fails", func(t *testing.T) {
		err := CheckRateBounds(500, 40, policy)
		require.NotNil(t, err)
		assert.True(t, err.Pct.Equal(decimal.NewFromInt(8)))
		assert.Contains(t, err.Error(), "8.0%")
		assert.Contains(t, err.Error(), "10%-20%")
	})

	t.Run("rate above the maximum fails", func(t *testing.T) {
		err := CheckRateBounds(500, 150, policy)
		require.NotNil(t, err)
		assert.True(t, err.Pct.Equal(decimal.NewFromInt(30)))
	})

	t.Run("zero interest is a real value", func(t *testing.T) {
		err := CheckRateBounds(500, 0, policy)
		require.NotNil(t, err)
		assert.True(t, err.Pct.IsZero())
	})

	t.Run("skipped while policy or amount is missing", func(t *testing.T) {
		assert.Nil(t, CheckRateBounds(500, 40, valueobject.FinancialPolicy{}))
		assert.Nil(t, CheckRateBounds(0, 40, policy))
		assert.Nil(t, CheckRateBounds(500, -1, policy))
	})
}
