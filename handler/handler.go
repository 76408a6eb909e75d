package handler

import (
	"context"

	"payment-epayco/dto/http"
	"payment-epayco/service"
)

type CallbackProcessor interface {
	Process(ctx context.Context, payload http.CallbackPayload) (*service.ReconcileResult, error)
}

type PaymentProvider interface {
	Initiate(ctx context.Context, req http.CreateCheckoutRequest) (*http.CreateCheckoutResponse, error)
	Status(ctx context.Context, reference string) (*http.TransactionStatus, error)
	StatusByAcquirerReference(ctx context.Context, refPayco string) (*http.TransactionStatus, error)
}
