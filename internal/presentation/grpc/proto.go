package grpc

// proto.go defines the gRPC server interface derived from
// pawnworks/origination/v1/origination.proto. This file serves as a stand-in
// for buf-generated code; once `buf generate` is run, replace it with the
// generated package.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SearchCustomersRequest queries the customer directory.
type SearchCustomersRequest struct {
	Query string `json:"query"`
}

// CustomerRecord is one directory match.
type CustomerRecord struct {
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Status      string `json:"status"`
}

// SearchCustomersResponse lists directory matches.
type SearchCustomersResponse struct {
	Customers []CustomerRecord `json:"customers"`
}

// ItemInput describes one collateral item.
type ItemInput struct {
	Description  string `json:"description"`
	SerialNumber string `json:"serial_number,omitempty"`
}

// CreateTransactionRequest originates a pawn transaction in one call.
type CreateTransactionRequest struct {
	CustomerPhone         string      `json:"customer_phone"`
	CustomerFirstName     string      `json:"customer_first_name"`
	CustomerLastName      string      `json:"customer_last_name"`
	Items                 []ItemInput `json:"items"`
	LoanAmount            int64       `json:"loan_amount"`
	MonthlyInterestAmount *int64      `json:"monthly_interest_amount,omitempty"`
	TransactionType       string      `json:"transaction_type"`
	ReferenceBarcode      string      `json:"reference_barcode,omitempty"`
	StorageLocation       string      `json:"storage_location,omitempty"`
}

// CreatedTransaction is the committed transaction.
type CreatedTransaction struct {
	TransactionID         string      `json:"transaction_id"`
	CustomerID            string      `json:"customer_id"`
	TransactionType       string      `json:"transaction_type"`
	LoanAmount            int64       `json:"loan_amount"`
	MonthlyInterestAmount int64       `json:"monthly_interest_amount"`
	TotalDue              int64       `json:"total_due"`
	MaturityDate          string      `json:"maturity_date"`
	StorageLocation       string      `json:"storage_location"`
	ReferenceBarcode      *string     `json:"reference_barcode,omitempty"`
	Items                 []ItemInput `json:"items"`
}

// CreateTransactionResponse wraps the committed transaction.
type CreateTransactionResponse struct {
	Transaction CreatedTransaction `json:"transaction"`
}

// OriginationServiceServer is the server API for OriginationService.
type OriginationServiceServer interface {
	SearchCustomers(context.Context, *SearchCustomersRequest) (*SearchCustomersResponse, error)
	CreateTransaction(context.Context, *CreateTransactionRequest) (*CreateTransactionResponse, error)
	mustEmbedUnimplementedOriginationServiceServer()
}

// UnimplementedOriginationServiceServer provides forward-compatible default implementations.
type UnimplementedOriginationServiceServer struct{}

func (UnimplementedOriginationServiceServer) SearchCustomers(context.Context, *SearchCustomersRequest) (*SearchCustomersResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SearchCustomers not implemented")
}
func (UnimplementedOriginationServiceServer) CreateTransaction(context.Context, *CreateTransactionRequest) (*CreateTransactionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreateTransaction not implemented")
}
func (UnimplementedOriginationServiceServer) mustEmbedUnimplementedOriginationServiceServer() {}

// RegisterOriginationServiceServer registers the OriginationServiceServer with the gRPC server.
func RegisterOriginationServiceServer(s *grpclib.Server, srv OriginationServiceServer) {
	s.RegisterService(&_OriginationService_serviceDesc, srv) //nolint:revive // gRPC handler registration
}

//nolint:revive // gRPC handler registration
var _OriginationService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: "pawnworks.origination.v1.OriginationService",
	HandlerType: (*OriginationServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "SearchCustomers", Handler: _OriginationService_SearchCustomers_Handler},     //nolint:revive // gRPC handler registration
		{MethodName: "CreateTransaction", Handler: _OriginationService_CreateTransaction_Handler}, //nolint:revive // gRPC handler registration
	},
	Streams: []grpclib.StreamDesc{},
}

//nolint:revive,errcheck // gRPC handler registration
func _OriginationService_SearchCustomers_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(SearchCustomersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OriginationServiceServer).SearchCustomers(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/pawnworks.origination.v1.OriginationService/SearchCustomers",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OriginationServiceServer).SearchCustomers(ctx, req.(*SearchCustomersRequest))
	}
	return interceptor(ctx, in, info, handler)
}

//nolint:revive,errcheck // gRPC handler registration
func _OriginationService_CreateTransaction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateTransactionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OriginationServiceServer).CreateTransaction(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/pawnworks.origination.v1.OriginationService/CreateTransaction",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OriginationServiceServer).CreateTransaction(ctx, req.(*CreateTransactionRequest))
	}
	return interceptor(ctx, in, info, handler)
}
