package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pawnworks/origination/internal/domain/model"
	"github.com/pawnworks/origination/internal/domain/port"
)

// ---------------------------------------------------------------------------
// EligibilityEvaluator – recency-ordered async eligibility checks
// ---------------------------------------------------------------------------

// EligibilityEvaluator runs eligibility checks asynchronously and guarantees
// that a response to an older check never overwrites the state set by a
// response to a newer one. Each check carries a monotonic sequence tag; a
// result is applied only while its tag is still the latest issued.
//
// Failures preserve the previous snapshot and are reported as a notice;
// `eligible` is never flipped to a default.
//
// Deliveries are serialized under applyMu, separate from the bookkeeping
// mutex, so the session is never touched while mu is held. After Close,
// late completions are dropped silently.
type EligibilityEvaluator struct {
	client port.EligibilityClient
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	seq         uint64
	closed      bool
	session     *model.WizardSession
	unsubscribe func()
	wg          sync.WaitGroup

	applyMu sync.Mutex
}

// NewEligibilityEvaluator creates an evaluator whose in-flight checks are
// bounded by the given parent context.
func NewEligibilityEvaluator(ctx context.Context, client port.EligibilityClient, logger *slog.Logger) *EligibilityEvaluator {
	cctx, cancel := context.WithCancel(ctx)
	return &EligibilityEvaluator{
		client: client,
		logger: logger,
		ctx:    cctx,
		cancel: cancel,
	}
}

// Bind attaches the evaluator to a session: customer and loan-amount edits
// re-trigger checks, and resolved snapshots are applied back to the session.
func (e *EligibilityEvaluator) Bind(session *model.WizardSession) {
	e.mu.Lock()
	e.session = session
	e.mu.Unlock()
	session.BindEligibilityTrigger(e.Check)
}

// FollowCustomerUpdates re-checks eligibility when an out-of-band customer
// data notification arrives for the currently selected customer.
func (e *EligibilityEvaluator) FollowCustomerUpdates(src port.CustomerUpdateSource) {
	unsub := src.Subscribe(func(update port.CustomerUpdate) {
		e.mu.Lock()
		session := e.session
		closed := e.closed
		e.mu.Unlock()
		if closed || session == nil {
			return
		}
		customer := session.Customer()
		if customer == nil || customer.PhoneNumber != update.CustomerID {
			return
		}
		amount, _ := session.LoanAmount()
		e.logger.Info("customer data updated, re-checking eligibility",
			"customer_id", update.CustomerID,
			"changed_fields", update.ChangedFields,
		)
		e.Check(update.CustomerID, amount)
	})

	e.mu.Lock()
	e.unsubscribe = unsub
	e.mu.Unlock()
}

// Check issues an eligibility check for the customer and requested amount.
// It returns immediately; the result lands through the bound session.
func (e *EligibilityEvaluator) Check(customerID string, loanAmount int64) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.seq++
	tag := e.seq
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		snap, err := e.client.CheckLoanEligibility(e.ctx, customerID, loanAmount)

		// applyMu keeps the recency decision and the apply atomic relative
		// to other completions without holding mu into session calls.
		e.applyMu.Lock()
		defer e.applyMu.Unlock()

		e.mu.Lock()
		session := e.session
		if e.closed || tag != e.seq {
			// Superseded by a newer check, or the evaluator is closed.
			session = nil
		}
		e.mu.Unlock()
		if session == nil {
			return
		}

		if err != nil {
			e.logger.Warn("eligibility check failed, keeping previous snapshot",
				"customer_id", customerID,
				"error", err,
			)
			session.Notice("eligibility service unavailable; showing last known result")
			return
		}
		session.ApplyEligibility(snap)
	}()
}

// Wait blocks until every issued check has settled. Used on teardown and in
// tests; late results are still subject to the recency guard.
func (e *EligibilityEvaluator) Wait() {
	e.wg.Wait()
}

// Close detaches the evaluator: in-flight checks are cancelled and any late
// completion is dropped without touching the session.
func (e *EligibilityEvaluator) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	unsub := e.unsubscribe
	e.unsubscribe = nil
	e.mu.Unlock()

	e.cancel()
	if unsub != nil {
		unsub()
	}
}
