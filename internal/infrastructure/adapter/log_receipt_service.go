package adapter

import (
	"context"
	"log/slog"

	"github.com/pawnworks/origination/internal/domain/model"
)

// LogReceiptService is a development adapter for the post-commit receipt
// step: it records the receipt data instead of driving a printer. It
// implements port.ReceiptService.
type LogReceiptService struct {
	logger *slog.Logger
}

// NewLogReceiptService creates the adapter.
func NewLogReceiptService(logger *slog.Logger) *LogReceiptService {
	return &LogReceiptService{logger: logger}
}

// PrepareReceipt logs the committed transaction's receipt summary.
func (s *LogReceiptService) PrepareReceipt(_ context.Context, txn model.PawnTransaction) error {
	s.logger.Info("receipt prepared",
		"transaction_id", txn.TransactionID,
		"customer_id", txn.CustomerID,
		"loan_amount", txn.LoanAmount,
		"total_due", txn.TotalDue,
		"maturity_date", txn.MaturityDate.Format("2006-01-02"),
		"items", len(txn.Items),
	)
	return nil
}
