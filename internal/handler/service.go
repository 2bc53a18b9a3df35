package handler

import (
	"context"

	"github.com/lendinglab/lending-service/internal/model"
	"github.com/lendinglab/lending-service/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LendingService interface {
	GetBooks(ctx context.Context) ([]model.Book, error)
	Subscribe(ctx context.Context, username, bookID string) (model.NotificationPreference, error)

	CreateBorrowRequest(ctx context.Context, req model.CreateBorrowRequestRequest) (model.BorrowRequest, error)
	GetBorrowRequests(ctx context.Context, username string) ([]model.BorrowRequest, error)
	GetPendingBorrowRequests(ctx context.Context) ([]model.BorrowRequest, error)
	ApproveBorrowRequest(ctx context.Context, requestID string, p model.ProcessRequestRequest) (model.BorrowRequest, error)
	RejectBorrowRequest(ctx context.Context, requestID string, p model.ProcessRequestRequest) error

	CreateReturnRequest(ctx context.Context, req model.CreateReturnRequestRequest) (model.ReturnRequest, error)
	GetPendingReturnRequests(ctx context.Context) ([]model.ReturnRequest, error)
	ApproveReturnRequest(ctx context.Context, requestID string, p model.ProcessRequestRequest) error
	RejectReturnRequest(ctx context.Context, requestID string, p model.ProcessRequestRequest) error

	GetLoans(ctx context.Context, username string) ([]model.BorrowRecord, error)
	GetFines(ctx context.Context, username string) ([]model.Fine, error)

	HandlePaymentWebhook(ctx context.Context, wh model.PaymentWebhook) (service.PaymentResult, error)
	SweepFines(ctx context.Context) (int, error)
	SweepRestrictions(ctx context.Context) (int, error)
}

var _ LendingService = (*service.Service)(nil)
