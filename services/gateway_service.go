package services

import (
	"context"

	"kgpay/entity"
)

// Gateway is the KG Mobilians client surface used by the HTTP handlers.
// Operations report failures through the returned result, never through a
// Go error, so handlers only inspect the result shape.
type Gateway interface {
	Register(ctx context.Context, request *entity.RegistrationRequest) entity.RegistrationResult
	Approve(ctx context.Context, request *entity.ApprovalRequest) entity.Result
	Cancel(ctx context.Context, request *entity.CancellationRequest) entity.Result
	Status(ctx context.Context, tradeID string) entity.Result
	BillingPay(ctx context.Context, request *entity.BillingPaymentRequest) entity.Result
}
