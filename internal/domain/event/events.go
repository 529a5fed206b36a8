package event

import (
	"time"

	"github.com/pawnworks/origination/internal/platform/events"
)

// DomainEvent is an alias for the shared platform events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// ---------------------------------------------------------------------------
// Wizard session events
// ---------------------------------------------------------------------------

// WizardStageChanged is raised when a stage transition passes its gate.
type WizardStageChanged struct {
	events.BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

func NewWizardStageChanged(sessionID, from, to string) WizardStageChanged {
	return WizardStageChanged{
		BaseEvent: events.NewBaseEvent("origination.wizard.stage_changed", sessionID, "WizardSession"),
		From:      from,
		To:        to,
	}
}

// EligibilityEvaluated is raised when a fresh eligibility snapshot lands.
type EligibilityEvaluated struct {
	events.BaseEvent
	CustomerID      string   `json:"customer_id"`
	RequestedAmount int64    `json:"requested_amount"`
	Eligible        bool     `json:"eligible"`
	Reasons         []string `json:"reasons,omitempty"`
}

func NewEligibilityEvaluated(sessionID, customerID string, requestedAmount int64, eligible bool, reasons []string) EligibilityEvaluated {
	return EligibilityEvaluated{
		BaseEvent:       events.NewBaseEvent("origination.eligibility.evaluated", sessionID, "WizardSession"),
		CustomerID:      customerID,
		RequestedAmount: requestedAmount,
		Eligible:        eligible,
		Reasons:         reasons,
	}
}

// ---------------------------------------------------------------------------
// Transaction events
// ---------------------------------------------------------------------------

// TransactionCreated is raised after a pawn transaction commits.
type TransactionCreated struct {
	events.BaseEvent
	CustomerID      string    `json:"customer_id"`
	LoanAmount      int64     `json:"loan_amount"`
	MonthlyInterest int64     `json:"monthly_interest"`
	TotalDue        int64     `json:"total_due"`
	MaturityDate    time.Time `json:"maturity_date"`
	ItemCount       int       `json:"item_count"`
}

func NewTransactionCreated(
	transactionID, customerID string,
	loanAmount, monthlyInterest, totalDue int64,
	maturityDate time.Time, itemCount int,
) TransactionCreated {
	return TransactionCreated{
		BaseEvent:       events.NewBaseEvent("origination.transaction.created", transactionID, "PawnTransaction"),
		CustomerID:      customerID,
		LoanAmount:      loanAmount,
		MonthlyInterest: monthlyInterest,
		TotalDue:        totalDue,
		MaturityDate:    maturityDate,
		ItemCount:       itemCount,
	}
}
