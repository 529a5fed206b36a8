package model

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawnworks/origination/internal/domain/event"
	"github.com/pawnworks/origination/internal/domain/valueobject"
)

func testCustomer() Customer {
	return Customer{
		PhoneNumber: "5551234567",
		FirstName:   "Maria",
		LastName:    "Santos",
		Status:      "ACTIVE",
	}
}

func sessionPolicy(t *testing.T) valueobject.FinancialPolicy {
	t.Helper()
	p, err := valueobject.NewFinancialPolicy(
		decimal.NewFromInt(15), decimal.NewFromInt(10), decimal.NewFromInt(20))
	require.NoError(t, err)
	return p
}

// readySession builds a session that passes every gate up to Review.
func readySession(t *testing.T) *WizardSession {
	t.Helper()
	s := NewWizardSession(Hooks{})
	s.ApplyPolicy(sessionPolicy(t))
	require.NoError(t, s.SelectCustomer(testCustomer()))
	require.NoError(t, s.UpdateItem(0, "Gold Ring", "SN-100"))
	s.SetTransactionType(valueobject.TransactionTypeNewEntry)
	s.SetLoanAmount("500")
	s.ApplyEligibility(EligibilitySnapshot{Eligible: true})
	return s
}

func TestWizardSession_InitialState(t *testing.T) {
	s := NewWizardSession(Hooks{})
	assert.True(t, s.Stage().Equal(valueobject.StageCustomer))
	assert.Len(t, s.Items(), 1, "starts with one blank collateral entry")
	assert.Nil(t, s.Customer())
	assert.Nil(t, s.Eligibility())
	assert.NotEmpty(t, s.ID())
}

func TestWizardSession_CustomerGate(t *testing.T) {
	s := NewWizardSession(Hooks{})

	err := s.Next()
	var gateErr *GateError
	require.ErrorAs(t, err, &gateErr)
	assert.True(t, gateErr.Stage.Equal(valueobject.StageCustomer))
	assert.True(t, s.Stage().Equal(valueobject.StageCustomer), "stage unchanged on gate failure")

	require.NoError(t, s.SelectCustomer(testCustomer()))
	require.NoError(t, s.Next())
	assert.True(t, s.Stage().Equal(valueobject.StageItems))
	assert.True(t, s.Completed(valueobject.StageCustomer))
}

func TestWizardSession_ItemsGate(t *testing.T) {
	s := NewWizardSession(Hooks{})
	require.NoError(t, s.SelectCustomer(testCustomer()))
	require.NoError(t, s.Next())

	t.Run("blank placeholder items do not count", func(t *testing.T) {
		err := s.Next()
		var gateErr *GateError
		require.ErrorAs(t, err, &gateErr)
		assert.Contains(t, gateErr.Reason, "at least one collateral item")
	})

	t.Run("a described item opens the gate", func(t *testing.T) {
		require.NoError(t, s.UpdateItem(0, "Gold Ring", ""))
		require.NoError(t, s.Next())
		assert.True(t, s.Stage().Equal(valueobject.StageLoan))
	})

	t.Run("whitespace-only description stays blank", func(t *testing.T) {
		s2 := NewWizardSession(Hooks{})
		require.NoError(t, s2.SelectCustomer(testCustomer()))
		require.NoError(t, s2.Next())
		require.NoError(t, s2.UpdateItem(0, "   ", ""))
		assert.Error(t, s2.Next())
	})
}

func TestWizardSession_ItemListBounds(t *testing.T) {
	s := NewWizardSession(Hooks{})

	t.Run("grows to eight entries at most", func(t *testing.T) {
		for i := 1; i < MaxItems; i++ {
			require.NoError(t, s.AddItem())
		}
		assert.Len(t, s.Items(), MaxItems)
		assert.Error(t, s.AddItem())
	})

	t.Run("shrinks to one entry at least", func(t *testing.T) {
		for len(s.Items()) > MinItems {
			require.NoError(t, s.RemoveItem(0))
		}
		assert.Error(t, s.RemoveItem(0))
	})

	t.Run("index bounds", func(t *testing.T) {
		assert.Error(t, s.RemoveItem(-1))
		assert.Error(t, s.RemoveItem(99))
		assert.Error(t, s.UpdateItem(99, "x", ""))
	})
}

func TestWizardSession_LoanGate(t *testing.T) {
	setup := func(t *testing.T) *WizardSession {
		t.Helper()
		s := NewWizardSession(Hooks{})
		s.ApplyPolicy(sessionPolicy(t))
		require.NoError(t, s.SelectCustomer(testCustomer()))
		require.NoError(t, s.UpdateItem(0, "Gold Ring", ""))
		require.NoError(t, s.GoTo(valueobject.StageLoan))
		return s
	}

	t.Run("requires a loan amount", func(t *testing.T) {
		s := setup(t)
		err := s.Next()
		var gateErr *GateError
		require.ErrorAs(t, err, &gateErr)
		assert.Contains(t, gateErr.Reason, "loan amount")
	})

	t.Run("requires a transaction type", func(t *testing.T) {
		s := setup(t)
		s.SetLoanAmount("500")
		err := s.Next()
		var gateErr *GateError
		require.ErrorAs(t, err, &gateErr)
		assert.Contains(t, gateErr.Reason, "transaction type")
	})

	t.Run("rate outside the policy band blocks", func(t *testing.T) {
		s := setup(t)
		s.SetTransactionType(valueobject.TransactionTypeNewEntry)
		s.SetLoanAmount("500")
		s.SetMonthlyInterest("40") // 8%, below the 10% minimum
		require.NotNil(t, s.RateBoundError())
		err := s.Next()
		var gateErr *GateError
		require.ErrorAs(t, err, &gateErr)
		assert.Contains(t, gateErr.Reason, "8.0%")
	})

	t.Run("unresolved eligibility does not block navigation", func(t *testing.T) {
		s := setup(t)
		s.SetTransactionType(valueobject.TransactionTypeNewEntry)
		s.SetLoanAmount("500")
		require.Nil(t, s.Eligibility())
		require.NoError(t, s.Next())
		assert.True(t, s.Stage().Equal(valueobject.StageReview))
	})

	t.Run("a resolved denial blocks", func(t *testing.T) {
		s := setup(t)
		s.SetTransactionType(valueobject.TransactionTypeNewEntry)
		s.SetLoanAmount("500")
		s.ApplyEligibility(EligibilitySnapshot{Eligible: false, Reasons: []string{"all 3 loan slots are in use"}})
		err := s.Next()
		var gateErr *GateError
		require.ErrorAs(t, err, &gateErr)
		assert.Contains(t, gateErr.Reason, "not eligible")
		assert.Contains(t, gateErr.Reason, "loan slots")
	})
}

func TestWizardSession_AutoInterest(t *testing.T) {
	t.Run("loan amount edit fills the suggested interest", func(t *testing.T) {
		s := NewWizardSession(Hooks{})
		s.ApplyPolicy(sessionPolicy(t))
		s.SetLoanAmount("500")
		interest, ok := s.MonthlyInterest()
		require.True(t, ok)
		assert.Equal(t, int64(75), interest)
	})

	t.Run("manual override survives later amount edits", func(t *testing.T) {
		s := NewWizardSession(Hooks{})
		s.ApplyPolicy(sessionPolicy(t))
		s.SetLoanAmount("500")
		s.SetMonthlyInterest("90")
		s.SetLoanAmount("1000")
		interest, ok := s.MonthlyInterest()
		require.True(t, ok)
		assert.Equal(t, int64(90), interest)
	})

	t.Run("fallback rate applies before the policy loads", func(t *testing.T) {
		s := NewWizardSession(Hooks{})
		s.SetLoanAmount("500")
		interest, ok := s.MonthlyInterest()
		require.True(t, ok)
		assert.Equal(t, int64(75), interest)
	})

	t.Run("late policy load recomputes an untouched suggestion", func(t *testing.T) {
		s := NewWizardSession(Hooks{})
		s.SetLoanAmount("500")
		p, err := valueobject.NewFinancialPolicy(
			decimal.NewFromInt(20), decimal.NewFromInt(10), decimal.NewFromInt(25))
		require.NoError(t, err)
		s.ApplyPolicy(p)
		interest, ok := s.MonthlyInterest()
		require.True(t, ok)
		assert.Equal(t, int64(100), interest)
	})
}

func TestWizardSession_BarcodeRules(t *testing.T) {
	s := NewWizardSession(Hooks{})

	t.Run("barcode allowed on imported pawns", func(t *testing.T) {
		s.SetTransactionType(valueobject.TransactionTypeImported)
		s.SetReferenceBarcode("PAWN-001_A")
		_, found := s.FieldError(FieldReferenceBarcode)
		assert.False(t, found)
	})

	t.Run("invalid characters rejected", func(t *testing.T) {
		s.SetReferenceBarcode("PAWN 001")
		msg, found := s.FieldError(FieldReferenceBarcode)
		require.True(t, found)
		assert.Contains(t, msg, "letters, digits")
	})

	t.Run("switching to new entry clears the barcode in one step", func(t *testing.T) {
		s.SetReferenceBarcode("PAWN-001")
		s.SetTransactionType(valueobject.TransactionTypeNewEntry)
		assert.Equal(t, "", s.engine.Value(FieldReferenceBarcode))
		_, found := s.FieldError(FieldReferenceBarcode)
		assert.False(t, found, "cross-field rule never sees a half-applied form")
	})
}

func TestWizardSession_ReviewReentryRechecksGates(t *testing.T) {
	s := readySession(t)
	require.NoError(t, s.GoTo(valueobject.StageReview))

	// Walk back and invalidate the items stage.
	require.NoError(t, s.GoTo(valueobject.StageItems))
	require.NoError(t, s.UpdateItem(0, "", ""))

	err := s.GoTo(valueobject.StageReview)
	var gateErr *GateError
	require.ErrorAs(t, err, &gateErr)
	assert.True(t, gateErr.Stage.Equal(valueobject.StageItems))
}

func TestWizardSession_BackwardMovesAreNeverGated(t *testing.T) {
	s := readySession(t)
	require.NoError(t, s.GoTo(valueobject.StageReview))

	require.NoError(t, s.Back())
	assert.True(t, s.Stage().Equal(valueobject.StageLoan))
	require.NoError(t, s.GoTo(valueobject.StageCustomer))

	err := s.Back()
	assert.Error(t, err, "no stage before the first")
}

func TestWizardSession_ForwardJumpGatesEveryStage(t *testing.T) {
	s := NewWizardSession(Hooks{})
	require.NoError(t, s.SelectCustomer(testCustomer()))

	// Customer gate passes but the items gate must still hold.
	err := s.GoTo(valueobject.StageLoan)
	var gateErr *GateError
	require.ErrorAs(t, err, &gateErr)
	assert.True(t, gateErr.Stage.Equal(valueobject.StageItems))
}

func TestWizardSession_StageChangeHookAndEvents(t *testing.T) {
	var seen []valueobject.Stage
	s := NewWizardSession(Hooks{
		OnStageChange: func(st valueobject.Stage) { seen = append(seen, st) },
	})
	require.NoError(t, s.SelectCustomer(testCustomer()))
	require.NoError(t, s.UpdateItem(0, "Gold Ring", ""))
	require.NoError(t, s.Next())
	require.NoError(t, s.Next())

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Equal(valueobject.StageItems))
	assert.True(t, seen[1].Equal(valueobject.StageLoan))

	evts := s.Events()
	require.Len(t, evts, 2)
	changed, ok := evts[0].(event.WizardStageChanged)
	require.True(t, ok)
	assert.Equal(t, "CUSTOMER", changed.From)
	assert.Equal(t, "ITEMS", changed.To)
}

func TestWizardSession_EligibilityTrigger(t *testing.T) {
	type check struct {
		customerID string
		amount     int64
	}
	var checks []check
	s := NewWizardSession(Hooks{})
	s.BindEligibilityTrigger(func(customerID string, amount int64) {
		checks = append(checks, check{customerID, amount})
	})

	require.NoError(t, s.SelectCustomer(testCustomer()))
	require.Len(t, checks, 1)
	assert.Equal(t, "5551234567", checks[0].customerID)
	assert.Equal(t, int64(0), checks[0].amount, "no amount entered yet")

	s.SetLoanAmount("500")
	require.Len(t, checks, 2)
	assert.Equal(t, int64(500), checks[1].amount)

	// Amount edits before a customer is selected trigger nothing.
	s2 := NewWizardSession(Hooks{})
	var fired bool
	s2.BindEligibilityTrigger(func(string, int64) { fired = true })
	s2.SetLoanAmount("500")
	assert.False(t, fired)
}

func TestWizardSession_ApplyEligibility(t *testing.T) {
	var notified []EligibilitySnapshot
	s := NewWizardSession(Hooks{
		OnEligibilityChange: func(snap EligibilitySnapshot) { notified = append(notified, snap) },
	})
	require.NoError(t, s.SelectCustomer(testCustomer()))

	s.ApplyEligibility(EligibilitySnapshot{Eligible: true, AvailableCredit: 2000})
	require.NotNil(t, s.Eligibility())
	assert.True(t, s.Eligibility().Eligible)
	require.Len(t, notified, 1)

	// A newer snapshot supersedes the old one wholesale.
	s.ApplyEligibility(EligibilitySnapshot{Eligible: false, Reasons: []string{"over limit"}})
	assert.False(t, s.Eligibility().Eligible)
	require.Len(t, notified, 2)
}

func TestWizardSession_ApplyEligibilityWhileEditing(t *testing.T) {
	s := readySession(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 300; i++ {
			s.ApplyEligibility(EligibilitySnapshot{Eligible: true, AvailableCredit: int64(i)})
			s.Notice("still checking")
		}
	}()
	for i := 0; i < 300; i++ {
		s.SetMonthlyInterest(strconv.Itoa(70 + i%5))
		s.SetLoanAmount(strconv.Itoa(500 + i%3))
	}
	<-done

	require.NotNil(t, s.Eligibility())
	assert.True(t, s.Eligibility().Eligible)
	assert.Equal(t, int64(299), s.Eligibility().AvailableCredit)
}
