package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pawnworks/origination/internal/application/usecase"
	"github.com/pawnworks/origination/internal/domain/event"
	"github.com/pawnworks/origination/internal/domain/model"
	"github.com/pawnworks/origination/internal/domain/valueobject"
)

type mockPolicyClient struct{}

func (mockPolicyClient) GetFinancialPolicyConfig(context.Context) (valueobject.FinancialPolicy, error) {
	return valueobject.NewFinancialPolicy(
		decimal.NewFromInt(15), decimal.NewFromInt(10), decimal.NewFromInt(20))
}

type mockSearcher struct {
	searchFn func(ctx context.Context, query string) ([]model.Customer, error)
}

func (m *mockSearcher) SearchCustomers(ctx context.Context, query string) ([]model.Customer, error) {
	return m.searchFn(ctx, query)
}

type mockEligibility struct {
	snap model.EligibilitySnapshot
	err  error
}

func (m *mockEligibility) CheckLoanEligibility(context.Context, string, int64) (model.EligibilitySnapshot, error) {
	return m.snap, m.err
}

type mockRepo struct {
	calls int
}

func (m *mockRepo) Create(_ context.Context, draft model.TransactionDraft) (model.PawnTransaction, error) {
	m.calls++
	return model.PawnTransaction{
		TransactionID:         "txn-777",
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

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, ...event.DomainEvent) error { return nil }

func newTestHandler(t *testing.T, eligibility *mockEligibility, searcher *mockSearcher) (*OriginationHandler, *mockRepo) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := &mockRepo{}
	begin := usecase.NewBeginSessionUseCase(mockPolicyClient{}, logger)
	submit := usecase.NewSubmitTransactionUseCase(repo, nil, nil, noopPublisher{}, logger)
	return NewOriginationHandler(begin, submit, searcher, eligibility), repo
}

func TestSearchCustomers(t *testing.T) {
	t.Run("maps directory matches", func(t *testing.T) {
		searcher := &mockSearcher{
			searchFn: func(_ context.Context, query string) ([]model.Customer, error) {
				assert.Equal(t, "555", query)
				return []model.Customer{
					{PhoneNumber: "5551234567", FirstName: "Maria", LastName: "Santos", Status: "ACTIVE"},
				}, nil
			},
		}
		h, _ := newTestHandler(t, &mockEligibility{}, searcher)

		resp, err := h.SearchCustomers(context.Background(), &SearchCustomersRequest{Query: "555"})
		require.NoError(t, err)
		require.Len(t, resp.Customers, 1)
		assert.Equal(t, "5551234567", resp.Customers[0].PhoneNumber)
	})

	t.Run("directory failure maps to Unavailable", func(t *testing.T) {
		searcher := &mockSearcher{
			searchFn: func(context.Context, string) ([]model.Customer, error) {
				return nil, errors.New("directory down")
			},
		}
		h, _ := newTestHandler(t, &mockEligibility{}, searcher)

		_, err := h.SearchCustomers(context.Background(), &SearchCustomersRequest{Query: "555"})
		assert.Equal(t, codes.Unavailable, status.Code(err))
	})
}

func TestCreateTransaction(t *testing.T) {
	okRequest := func() *CreateTransactionRequest {
		return &CreateTransactionRequest{
			CustomerPhone:     "5551234567",
			CustomerFirstName: "Maria",
			CustomerLastName:  "Santos",
			Items:             []ItemInput{{Description: "Gold Ring", SerialNumber: "SN-100"}},
			LoanAmount:        500,
			TransactionType:   "NEW_ENTRY",
		}
	}

	t.Run("happy path with auto-calculated interest", func(t *testing.T) {
		h, repo := newTestHandler(t, &mockEligibility{snap: model.EligibilitySnapshot{Eligible: true}}, &mockSearcher{})

		resp, err := h.CreateTransaction(context.Background(), okRequest())
		require.NoError(t, err)
		assert.Equal(t, "txn-777", resp.Transaction.TransactionID)
		assert.Equal(t, int64(500), resp.Transaction.LoanAmount)
		assert.Equal(t, int64(75), resp.Transaction.MonthlyInterestAmount)
		assert.Equal(t, int64(575), resp.Transaction.TotalDue)
		assert.Equal(t, "TBD", resp.Transaction.StorageLocation)
		assert.Equal(t, 1, repo.calls)
	})

	t.Run("explicit interest is honored", func(t *testing.T) {
		h, _ := newTestHandler(t, &mockEligibility{snap: model.EligibilitySnapshot{Eligible: true}}, &mockSearcher{})

		req := okRequest()
		interest := int64(90)
		req.MonthlyInterestAmount = &interest
		resp, err := h.CreateTransaction(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, int64(90), resp.Transaction.MonthlyInterestAmount)
		assert.Equal(t, int64(590), resp.Transaction.TotalDue)
	})

	t.Run("ineligible customer fails the gate", func(t *testing.T) {
		h, repo := newTestHandler(t, &mockEligibility{snap: model.EligibilitySnapshot{
			Eligible: false, Reasons: []string{"all 3 loan slots are in use"},
		}}, &mockSearcher{})

		_, err := h.CreateTransaction(context.Background(), okRequest())
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), "loan slots")
		assert.Equal(t, 0, repo.calls)
	})

	t.Run("eligibility outage blocks the RPC", func(t *testing.T) {
		h, repo := newTestHandler(t, &mockEligibility{err: errors.New("service down")}, &mockSearcher{})

		_, err := h.CreateTransaction(context.Background(), okRequest())
		assert.Equal(t, codes.Unavailable, status.Code(err))
		assert.Equal(t, 0, repo.calls)
	})

	t.Run("invalid customer phone rejected", func(t *testing.T) {
		h, _ := newTestHandler(t, &mockEligibility{snap: model.EligibilitySnapshot{Eligible: true}}, &mockSearcher{})

		req := okRequest()
		req.CustomerPhone = "555"
		_, err := h.CreateTransaction(context.Background(), req)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("unknown transaction type rejected", func(t *testing.T) {
		h, _ := newTestHandler(t, &mockEligibility{snap: model.EligibilitySnapshot{Eligible: true}}, &mockSearcher{})

		req := okRequest()
		req.TransactionType = "BOGUS"
		_, err := h.CreateTransaction(context.Background(), req)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("barcode on a new entry fails validation", func(t *testing.T) {
		h, repo := newTestHandler(t, &mockEligibility{snap: model.EligibilitySnapshot{Eligible: true}}, &mockSearcher{})

		req := okRequest()
		req.ReferenceBarcode = "LEGACY-42"
		_, err := h.CreateTransaction(context.Background(), req)
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
		assert.Equal(t, 0, repo.calls)
	})
}
