package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage(t *testing.T) {
	t.Run("wizard order", func(t *testing.T) {
		stages := Stages()
		require.Len(t, stages, 4)
		assert.True(t, stages[0].Equal(StageCustomer))
		assert.True(t, stages[3].Equal(StageReview))
		assert.True(t, StageCustomer.Before(StageReview))
		assert.False(t, StageReview.Before(StageCustomer))
	})

	t.Run("next walks forward and stops at the end", func(t *testing.T) {
		next, err := StageLoan.Next()
		require.NoError(t, err)
		assert.True(t, next.Equal(StageReview))

		_, err = StageReview.Next()
		assert.Error(t, err)
	})

	t.Run("parsing", func(t *testing.T) {
		s, err := NewStage("ITEMS")
		require.NoError(t, err)
		assert.Equal(t, "ITEMS", s.String())

		_, err = NewStage("items")
		assert.Error(t, err)

		var zero Stage
		assert.True(t, zero.IsZero())
		assert.Equal(t, -1, zero.Index())
	})
}

func TestTransactionType(t *testing.T) {
	tt, err := NewTransactionType("NEW_ENTRY")
	require.NoError(t, err)
	assert.True(t, tt.Equal(TransactionTypeNewEntry))

	_, err = NewTransactionType("BOGUS")
	assert.Error(t, err)

	var zero TransactionType
	assert.True(t, zero.IsZero())
}

func TestNewFinancialPolicy(t *testing.T) {
	t.Run("valid band", func(t *testing.T) {
		p, err := NewFinancialPolicy(decimal.NewFromInt(15), decimal.NewFromInt(10), decimal.NewFromInt(20))
		require.NoError(t, err)
		assert.False(t, p.IsZero())
	})

	t.Run("negative rates rejected", func(t *testing.T) {
		_, err := NewFinancialPolicy(decimal.NewFromInt(-1), decimal.NewFromInt(10), decimal.NewFromInt(20))
		assert.Error(t, err)
	})

	t.Run("inverted band rejected", func(t *testing.T) {
		_, err := NewFinancialPolicy(decimal.NewFromInt(15), decimal.NewFromInt(20), decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("zero value reads as not loaded", func(t *testing.T) {
		var p FinancialPolicy
		assert.True(t, p.IsZero())
	})
}
