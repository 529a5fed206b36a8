package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pawnworks/origination/internal/application/dto"
	"github.com/pawnworks/origination/internal/domain/event"
	"github.com/pawnworks/origination/internal/domain/model"
	"github.com/pawnworks/origination/internal/domain/port"
)

// SubmitTransactionUseCase is the submission pipeline: it assembles the
// normalized payload from the session, performs a single commit attempt and
// runs the post-commit receipt step before signalling completion.
type SubmitTransactionUseCase struct {
	repo       port.TransactionRepository
	optimistic port.OptimisticCommitter
	receipts   port.ReceiptService
	publisher  port.EventPublisher
	logger     *slog.Logger
}

// NewSubmitTransactionUseCase wires dependencies. optimistic and receipts
// are optional collaborators and may be nil.
func NewSubmitTransactionUseCase(
	repo port.TransactionRepository,
	optimistic port.OptimisticCommitter,
	receipts port.ReceiptService,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *SubmitTransactionUseCase {
	return &SubmitTransactionUseCase{
		repo:       repo,
		optimistic: optimistic,
		receipts:   receipts,
		publisher:  publisher,
		logger:     logger,
	}
}

// Execute performs one submission attempt for the session's current draft.
//
// Exactly one commit path runs per attempt: the optimistic committer when
// registered, otherwise the direct repository create — never both, and never
// a retry without an explicit new call. While an attempt is in flight the
// session rejects further submits.
//
// On failure the session stays at Review with the draft intact so the same
// data can be retried.
func (uc *SubmitTransactionUseCase) Execute(ctx context.Context, session *model.WizardSession) (dto.TransactionResponse, error) {
	draft, err := session.BeginSubmit(time.Now().UTC())
	if err != nil {
		return dto.TransactionResponse{}, fmt.Errorf("begin submit: %w", err)
	}

	// 1. Single commit attempt.
	var txn model.PawnTransaction
	var commitErr error
	if uc.optimistic != nil {
		txn, commitErr = uc.optimistic.Commit(ctx, draft)
	} else {
		txn, commitErr = uc.repo.Create(ctx, draft)
	}
	if commitErr != nil {
		uc.logger.Error("transaction commit failed",
			"session_id", session.ID(),
			"customer_id", draft.CustomerID,
			"error", commitErr,
		)
		wrapped := fmt.Errorf("commit transaction: %w", commitErr)
		session.FailSubmit(wrapped)
		return dto.TransactionResponse{}, wrapped
	}

	// 2. Post-commit step. The transaction is already committed, so a
	// receipt failure degrades but does not fail the submission.
	if uc.receipts != nil {
		if err := uc.receipts.PrepareReceipt(ctx, txn); err != nil {
			uc.logger.Warn("receipt preparation failed",
				"transaction_id", txn.TransactionID,
				"error", err,
			)
			session.Notice("transaction saved, but the receipt could not be prepared")
		}
	}

	// 3. Signal completion only after the post-commit step.
	session.CompleteSubmit(txn)

	// 4. Publish collected workflow events plus TransactionCreated. The
	// commit already succeeded; publish failures are logged, not returned.
	evts := append(session.ClearEvents(), event.NewTransactionCreated(
		txn.TransactionID, txn.CustomerID,
		txn.LoanAmount, txn.MonthlyInterestAmount, txn.TotalDue,
		txn.MaturityDate, len(txn.Items),
	))
	if err := uc.publisher.Publish(ctx, evts...); err != nil {
		uc.logger.Warn("publishing origination events failed",
			"transaction_id", txn.TransactionID,
			"error", err,
		)
	}

	uc.logger.Info("pawn transaction committed",
		"transaction_id", txn.TransactionID,
		"customer_id", txn.CustomerID,
		"loan_amount", txn.LoanAmount,
		"total_due", txn.TotalDue,
	)
	return dto.FromTransaction(txn), nil
}
