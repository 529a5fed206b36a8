package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Stage – immutable value object
// ---------------------------------------------------------------------------

// Stage represents one step of the linear origination wizard.
type Stage struct {
	value string
}

const (
	stageCustomer = "CUSTOMER"
	stageItems    = "ITEMS"
	stageLoan     = "LOAN"
	stageReview   = "REVIEW"
)

var (
	StageCustomer = Stage{value: stageCustomer}
	StageItems    = Stage{value: stageItems}
	StageLoan     = Stage{value: stageLoan}
	StageReview   = Stage{value: stageReview}
)

// stageOrder defines the forward traversal order of the wizard.
var stageOrder = []Stage{StageCustomer, StageItems, StageLoan, StageReview}

var validStages = map[string]Stage{
	stageCustomer: StageCustomer,
	stageItems:    StageItems,
	stageLoan:     StageLoan,
	stageReview:   StageReview,
}

// NewStage creates a Stage from a raw string.
func NewStage(s string) (Stage, error) {
	v, ok := validStages[s]
	if !ok {
		return Stage{}, fmt.Errorf("invalid wizard stage: %q", s)
	}
	return v, nil
}

// String returns the string representation of the stage.
func (s Stage) String() string { return s.value }

// IsZero returns true if the stage has not been initialised.
func (s Stage) IsZero() bool { return s.value == "" }

// Equal returns true when both stages carry the same value.
func (s Stage) Equal(other Stage) bool { return s.value == other.value }

// Index returns the position of the stage in the wizard order, or -1 for the
// zero value.
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st.Equal(s) {
			return i
		}
	}
	return -1
}

// Before returns true when s is traversed earlier than other.
func (s Stage) Before(other Stage) bool { return s.Index() < other.Index() }

// Next returns the stage that follows s, or an error at the end of the wizard.
func (s Stage) Next() (Stage, error) {
	i := s.Index()
	if i < 0 || i+1 >= len(stageOrder) {
		return Stage{}, errors.New("no stage after current")
	}
	return stageOrder[i+1], nil
}

// Stages returns the wizard stages in traversal order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// ---------------------------------------------------------------------------
// TransactionType – immutable value object
// ---------------------------------------------------------------------------

// TransactionType distinguishes freshly entered pawns from imported ones.
type TransactionType struct {
	value string
}

const (
	txnTypeNewEntry = "NEW_ENTRY"
	txnTypeImported = "IMPORTED"
)

var (
	TransactionTypeNewEntry = TransactionType{value: txnTypeNewEntry}
	TransactionTypeImported = TransactionType{value: txnTypeImported}
)

var validTransactionTypes = map[string]TransactionType{
	txnTypeNewEntry: TransactionTypeNewEntry,
	txnTypeImported: TransactionTypeImported,
}

// NewTransactionType creates a TransactionType from a raw string.
func NewTransactionType(s string) (TransactionType, error) {
	v, ok := validTransactionTypes[s]
	if !ok {
		return TransactionType{}, fmt.Errorf("invalid transaction type: %q", s)
	}
	return v, nil
}

// String returns the string representation of the type.
func (t TransactionType) String() string { return t.value }

// IsZero returns true if the type has not been selected yet.
func (t TransactionType) IsZero() bool { return t.value == "" }

// Equal returns true when both types carry the same value.
func (t TransactionType) Equal(other TransactionType) bool { return t.value == other.value }

// ErrInvalidStageTransition is returned when a gate rejects a forward move.
var ErrInvalidStageTransition = errors.New("invalid stage transition")
