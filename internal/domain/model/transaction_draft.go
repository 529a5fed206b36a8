package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pawnworks/origination/internal/domain/service"
	"github.com/pawnworks/origination/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// TransactionDraft – the normalized commit payload
// ---------------------------------------------------------------------------

// TransactionDraft is the payload handed to the transaction store. It is
// assembled fresh on every submission attempt and never mutated in place.
type TransactionDraft struct {
	CustomerID            string      `json:"customer_id"`
	TransactionType       string      `json:"transaction_type"`
	LoanAmount            int64       `json:"loan_amount"`
	MonthlyInterestAmount int64       `json:"monthly_interest_amount"`
	TotalDue              int64       `json:"total_due"`
	MaturityDate          time.Time   `json:"maturity_date"`
	StorageLocation       string      `json:"storage_location"`
	ReferenceBarcode      *string     `json:"reference_barcode,omitempty"`
	Items                 []ItemDraft `json:"items"`
	CreatedAt             time.Time   `json:"created_at"`
}

// PawnTransaction is the committed transaction as confirmed by the store.
type PawnTransaction struct {
	TransactionID         string      `json:"transaction_id"`
	CustomerID            string      `json:"customer_id"`
	TransactionType       string      `json:"transaction_type"`
	LoanAmount            int64       `json:"loan_amount"`
	MonthlyInterestAmount int64       `json:"monthly_interest_amount"`
	TotalDue              int64       `json:"total_due"`
	MaturityDate          time.Time   `json:"maturity_date"`
	StorageLocation       string      `json:"storage_location"`
	ReferenceBarcode      *string     `json:"reference_barcode,omitempty"`
	Items                 []ItemDraft `json:"items"`
	CreatedAt             time.Time   `json:"created_at"`
}

// ---------------------------------------------------------------------------
// Submission lifecycle on the session
// ---------------------------------------------------------------------------

// ErrSubmitInFlight rejects a second submit while one is already running.
var ErrSubmitInFlight = errors.New("a submission is already in flight")

// ErrEligibilityUnresolved blocks submission until a snapshot has resolved.
// Navigation tolerates an unresolved check; committing money does not.
var ErrEligibilityUnresolved = errors.New("eligibility has not been confirmed yet")

// BeginSubmit verifies every submission precondition, flips the in-flight
// guard and assembles a fresh normalized payload. The caller must finish the
// attempt with CompleteSubmit or FailSubmit.
func (s *WizardSession) BeginSubmit(now time.Time) (TransactionDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return TransactionDraft{}, ErrSubmitInFlight
	}
	if sum := s.engine.ValidateAll(); !sum.IsValid {
		return TransactionDraft{}, fmt.Errorf("form has %d validation error(s)", len(sum.Errors))
	}
	if gateErr := s.reviewGate(); gateErr != nil {
		return TransactionDraft{}, gateErr
	}
	if s.rateErr != nil {
		return TransactionDraft{}, s.rateErr
	}
	if s.snapshot == nil {
		return TransactionDraft{}, ErrEligibilityUnresolved
	}
	if !s.snapshot.Eligible {
		return TransactionDraft{}, fmt.Errorf("customer is not eligible: %s", strings.Join(s.snapshot.Reasons, "; "))
	}

	draft, err := s.assembleDraft(now)
	if err != nil {
		return TransactionDraft{}, err
	}
	s.submitting = true
	return draft, nil
}

// FailSubmit records a failed attempt. The session stays at Review with the
// draft intact so the same data can be retried.
func (s *WizardSession) FailSubmit(err error) {
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
	if s.hooks.OnSubmitError != nil {
		s.hooks.OnSubmitError(err)
	}
}

// CompleteSubmit records the committed transaction and signals completion.
// Callers invoke it only after the post-commit step (receipt preparation)
// has run, so downstream listeners observe consistent state.
func (s *WizardSession) CompleteSubmit(txn PawnTransaction) {
	s.mu.Lock()
	s.submitting = false
	s.committed = &txn
	s.mu.Unlock()
	if s.hooks.OnSubmitSuccess != nil {
		s.hooks.OnSubmitSuccess(txn)
	}
}

// Submitting reports whether a submission is in flight.
func (s *WizardSession) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// CommittedTransaction returns the committed transaction after success.
func (s *WizardSession) CommittedTransaction() *PawnTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committed == nil {
		return nil
	}
	txn := *s.committed
	return &txn
}

// assembleDraft builds the normalized payload: amounts as whole dollars,
// blank placeholder items dropped, optional strings trimmed and nulled,
// storage location defaulted, barcode kept only on imported pawns. Called
// with the session lock held.
func (s *WizardSession) assembleDraft(now time.Time) (TransactionDraft, error) {
	if s.customer == nil {
		return TransactionDraft{}, errors.New("no customer selected")
	}
	amount, ok := s.loanAmountLocked()
	if !ok {
		return TransactionDraft{}, errors.New("loan amount missing")
	}
	interest, ok := s.monthlyInterestLocked()
	if !ok {
		return TransactionDraft{}, errors.New("monthly interest missing")
	}
	items := s.describedItems()
	if len(items) == 0 {
		return TransactionDraft{}, errors.New("no described collateral items")
	}

	storage := strings.TrimSpace(s.engine.Value(FieldStorageLocation))
	if storage == "" {
		storage = StorageLocationTBD
	}

	var barcode *string
	if s.transactionTypeLocked().Equal(valueobject.TransactionTypeImported) {
		if b := strings.TrimSpace(s.engine.Value(FieldReferenceBarcode)); b != "" {
			barcode = &b
		}
	}

	return TransactionDraft{
		CustomerID:            s.customer.PhoneNumber,
		TransactionType:       s.transactionTypeLocked().String(),
		LoanAmount:            amount,
		MonthlyInterestAmount: interest,
		TotalDue:              service.TotalDue(amount, interest),
		MaturityDate:          service.MaturityDate(now),
		StorageLocation:       storage,
		ReferenceBarcode:      barcode,
		Items:                 items,
		CreatedAt:             now,
	}, nil
}
