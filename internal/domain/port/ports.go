package port

import (
	"context"

	"github.com/pawnworks/origination/internal/domain/event"
	"github.com/pawnworks/origination/internal/domain/model"
	"github.com/pawnworks/origination/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// External service ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// PolicyClient loads the store's interest rate policy, once per session.
type PolicyClient interface {
	GetFinancialPolicyConfig(ctx context.Context) (valueobject.FinancialPolicy, error)
}

// EligibilityClient asks the upstream service whether a customer may receive
// a new loan. loanAmount <= 0 means no amount has been entered yet.
type EligibilityClient interface {
	CheckLoanEligibility(ctx context.Context, customerID string, loanAmount int64) (model.EligibilitySnapshot, error)
}

// CustomerSearcher looks up customers for the selection step.
type CustomerSearcher interface {
	SearchCustomers(ctx context.Context, query string) ([]model.Customer, error)
}

// ---------------------------------------------------------------------------
// Transaction commit ports
// ---------------------------------------------------------------------------

// TransactionRepository commits an assembled draft. The create either
// returns a fully committed transaction or nothing was written.
type TransactionRepository interface {
	Create(ctx context.Context, draft model.TransactionDraft) (model.PawnTransaction, error)
}

// OptimisticCommitter is the optional fast-path collaborator. When one is
// registered, the submission pipeline uses it instead of the repository —
// never both.
type OptimisticCommitter interface {
	Commit(ctx context.Context, draft model.TransactionDraft) (model.PawnTransaction, error)
}

// ReceiptService prepares the post-commit receipt. Completion is not
// signalled to the workflow until this step has run.
type ReceiptService interface {
	PrepareReceipt(ctx context.Context, txn model.PawnTransaction) error
}

// ---------------------------------------------------------------------------
// Event ports
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// CustomerUpdate is an out-of-band notification that customer data changed.
type CustomerUpdate struct {
	CustomerID    string   `json:"customer_id"`
	ChangedFields []string `json:"changed_fields,omitempty"`
}

// CustomerUpdateSource delivers customer-data-updated notifications. The
// returned func unsubscribes; after it returns no further deliveries happen.
type CustomerUpdateSource interface {
	Subscribe(fn func(CustomerUpdate)) (unsubscribe func())
}
