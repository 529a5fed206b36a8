package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawnworks/origination/internal/domain/model"
	platformpg "github.com/pawnworks/origination/internal/platform/postgres"
)

// TransactionRepo implements port.TransactionRepository against PostgreSQL.
type TransactionRepo struct {
	pool *pgxpool.Pool
}

// NewTransactionRepo creates a new repository backed by PostgreSQL.
func NewTransactionRepo(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create commits a pawn transaction and its items atomically. Either the
// whole transaction lands or nothing is written.
func (r *TransactionRepo) Create(ctx context.Context, draft model.TransactionDraft) (model.PawnTransaction, error) {
	id := uuid.New().String()

	err := platformpg.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO pawn_transactions (
				id, customer_id, transaction_type, loan_amount,
				monthly_interest_amount, total_due, maturity_date,
				storage_location, reference_barcode, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			id, draft.CustomerID, draft.TransactionType, draft.LoanAmount,
			draft.MonthlyInterestAmount, draft.TotalDue, draft.MaturityDate,
			draft.StorageLocation, draft.ReferenceBarcode, draft.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert pawn transaction: %w", err)
		}

		for i, item := range draft.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO pawn_items (
					id, transaction_id, position, description, serial_number
				) VALUES ($1,$2,$3,$4,$5)
			`,
				uuid.New().String(), id, i, item.Description, nullIfEmpty(item.SerialNumber),
			)
			if err != nil {
				return fmt.Errorf("insert pawn item %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return model.PawnTransaction{}, err
	}

	return model.PawnTransaction{
		TransactionID:         id,
		CustomerID:            draft.CustomerID,
		TransactionType:       draft.TransactionType,
		LoanAmount:            draft.LoanAmount,
		MonthlyInterestAmount: draft.MonthlyInterestAmount,
		TotalDue:              draft.TotalDue,
		MaturityDate:          draft.MaturityDate,
		StorageLocation:       draft.StorageLocation,
		ReferenceBarcode:      draft.ReferenceBarcode,
		Items:                 draft.Items,
		CreatedAt:             draft.CreatedAt,
	}, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
