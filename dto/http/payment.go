package http

import "github.com/shopspring/decimal"

// CreateCheckoutRequest is the merchant-facing request that opens an ePayco checkout.
type CreateCheckoutRequest struct {
	AcquirerID      string          `json:"acquirer_id" validate:"required"`
	Reference       string          `json:"reference" validate:"required,max=255"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency" validate:"required,alpha,len=3"`
	PartnerName     string          `json:"partner_name" validate:"max=255"`
	PartnerEmail    string          `json:"partner_email" validate:"omitempty,email"`
	PartnerPhone    string          `json:"partner_phone" validate:"max=50"`
	PartnerCountry  string          `json:"partner_country" validate:"omitempty,alpha,len=2"`
	NotificationURL string          `json:"notification_url" validate:"omitempty,url"`
}

type CreateCheckoutResponse struct {
	TransactionID string         `json:"transaction_id"`
	Reference     string         `json:"reference"`
	ActionURL     string         `json:"action_url"`
	Fields        CheckoutFields `json:"fields"`
}
