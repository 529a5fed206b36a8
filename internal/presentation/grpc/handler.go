package grpc

import (
	"context"
	"errors"
	"strconv"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pawnworks/origination/internal/application/usecase"
	"github.com/pawnworks/origination/internal/domain/model"
	"github.com/pawnworks/origination/internal/domain/port"
	"github.com/pawnworks/origination/internal/domain/valueobject"
)

// OriginationHandler exposes origination operations over gRPC. The
// CreateTransaction RPC drives a one-shot wizard session through every stage
// server-side, so RPC clients get exactly the same gating, validation and
// eligibility rules as interactive ones.
type OriginationHandler struct {
	UnimplementedOriginationServiceServer

	begin       *usecase.BeginSessionUseCase
	submit      *usecase.SubmitTransactionUseCase
	searcher    port.CustomerSearcher
	eligibility port.EligibilityClient
}

// NewOriginationHandler creates a new handler with all dependencies.
func NewOriginationHandler(
	begin *usecase.BeginSessionUseCase,
	submit *usecase.SubmitTransactionUseCase,
	searcher port.CustomerSearcher,
	eligibility port.EligibilityClient,
) *OriginationHandler {
	return &OriginationHandler{
		begin:       begin,
		submit:      submit,
		searcher:    searcher,
		eligibility: eligibility,
	}
}

// SearchCustomers looks up directory customers.
func (h *OriginationHandler) SearchCustomers(ctx context.Context, req *SearchCustomersRequest) (*SearchCustomersResponse, error) {
	customers, err := h.searcher.SearchCustomers(ctx, req.Query)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "customer search: %v", err)
	}
	resp := &SearchCustomersResponse{}
	for _, c := range customers {
		resp.Customers = append(resp.Customers, CustomerRecord{
			PhoneNumber: c.PhoneNumber,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			Status:      c.Status,
		})
	}
	return resp, nil
}

// CreateTransaction originates a pawn transaction in one call.
func (h *OriginationHandler) CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*CreateTransactionResponse, error) {
	session := h.begin.Execute(ctx, model.Hooks{})

	if err := session.SelectCustomer(model.Customer{
		PhoneNumber: req.CustomerPhone,
		FirstName:   req.CustomerFirstName,
		LastName:    req.CustomerLastName,
		Status:      "ACTIVE",
	}); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	for i, item := range req.Items {
		if i > 0 {
			if err := session.AddItem(); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "%v", err)
			}
		}
		if err := session.UpdateItem(i, item.Description, item.SerialNumber); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "%v", err)
		}
	}

	txnType, err := valueobject.NewTransactionType(req.TransactionType)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}
	session.SetTransactionType(txnType)
	session.SetLoanAmount(strconv.FormatInt(req.LoanAmount, 10))
	if req.MonthlyInterestAmount != nil {
		session.SetMonthlyInterest(strconv.FormatInt(*req.MonthlyInterestAmount, 10))
	}
	if req.ReferenceBarcode != "" {
		session.SetReferenceBarcode(req.ReferenceBarcode)
	}
	if req.StorageLocation != "" {
		session.SetStorageLocation(req.StorageLocation)
	}

	// The RPC path resolves eligibility synchronously; a submission never
	// proceeds without a successful eligibility read.
	snap, err := h.eligibility.CheckLoanEligibility(ctx, req.CustomerPhone, req.LoanAmount)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "eligibility check: %v", err)
	}
	session.ApplyEligibility(snap)

	if err := session.GoTo(valueobject.StageReview); err != nil {
		var gateErr *model.GateError
		if errors.As(err, &gateErr) {
			return nil, status.Errorf(codes.FailedPrecondition, "%s", gateErr.Reason)
		}
		return nil, status.Errorf(codes.FailedPrecondition, "%v", err)
	}

	resp, err := h.submit.Execute(ctx, session)
	if err != nil {
		return nil, status.Errorf(codes.FailedPrecondition, "%v", err)
	}

	out := CreatedTransaction{
		TransactionID:         resp.TransactionID,
		CustomerID:            resp.CustomerID,
		TransactionType:       resp.TransactionType,
		LoanAmount:            resp.LoanAmount,
		MonthlyInterestAmount: resp.MonthlyInterestAmount,
		TotalDue:              resp.TotalDue,
		MaturityDate:          resp.MaturityDate.Format(time.RFC3339),
		StorageLocation:       resp.StorageLocation,
		ReferenceBarcode:      resp.ReferenceBarcode,
	}
	for _, item := range resp.Items {
		out.Items = append(out.Items, ItemInput{
			Description:  item.Description,
			SerialNumber: item.SerialNumber,
		})
	}
	return &CreateTransactionResponse{Transaction: out}, nil
}
