package dto

import (
	"time"

	"github.com/pawnworks/origination/internal/domain/model"
)

// TransactionResponse is the external representation of a committed pawn.
type TransactionResponse struct {
	TransactionID         string            `json:"transaction_id"`
	CustomerID            string            `json:"customer_id"`
	TransactionType       string            `json:"transaction_type"`
	LoanAmount            int64             `json:"loan_amount"`
	MonthlyInterestAmount int64             `json:"monthly_interest_amount"`
	TotalDue              int64             `json:"total_due"`
	MaturityDate          time.Time         `json:"maturity_date"`
	StorageLocation       string            `json:"storage_location"`
	ReferenceBarcode      *string           `json:"reference_barcode,omitempty"`
	Items                 []model.ItemDraft `json:"items"`
	CreatedAt             time.Time         `json:"created_at"`
}

// FromTransaction maps a committed transaction to its response shape.
func FromTransaction(txn model.PawnTransaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:         txn.TransactionID,
		CustomerID:            txn.CustomerID,
		TransactionType:       txn.TransactionType,
		LoanAmount:            txn.LoanAmount,
		MonthlyInterestAmount: txn.MonthlyInterestAmount,
		TotalDue:              txn.TotalDue,
		MaturityDate:          txn.MaturityDate,
		StorageLocation:       txn.StorageLocation,
		ReferenceBarcode:      txn.ReferenceBarcode,
		Items:                 txn.Items,
		CreatedAt:             txn.CreatedAt,
	}
}
