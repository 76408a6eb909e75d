package http

import "github.com/shopspring/decimal"

// OrderContext is what the checkout builder needs to know about an order.
type OrderContext struct {
	Reference          string
	Amount             decimal.Decimal
	CurrencyCode       string
	PartnerName        string
	PartnerEmail       string
	PartnerPhone       string
	PartnerCountryCode string
}

// CheckoutFields are the values posted to the checkout page and handed to the
// ePayco checkout script.
type CheckoutFields struct {
	PublicKey        string `json:"public_key" form:"public_key" query:"public_key"`
	TxnID            string `json:"txnid" form:"txnid" query:"txnid"`
	Amount           string `json:"amount" form:"amount" query:"amount"`
	ProductInfo      string `json:"productinfo" form:"productinfo" query:"productinfo"`
	FirstName        string `json:"firstname" form:"firstname" query:"firstname"`
	Email            string `json:"email" form:"email" query:"email"`
	Phone            string `json:"phone" form:"phone" query:"phone"`
	CurrencyCode     string `json:"currency_code" form:"currency_code" query:"currency_code"`
	CountryCode      string `json:"country_code" form:"country_code" query:"country_code"`
	CheckoutExternal string `json:"epayco_checkout_external" form:"epayco_checkout_external" query:"epayco_checkout_external"`
	EnvTest          string `json:"epayco_env_test" form:"epayco_env_test" query:"epayco_env_test"`
	Lang             string `json:"epayco_lang" form:"epayco_lang" query:"epayco_lang"`
	ResponseURL      string `json:"response_url" form:"response_url" query:"response_url"`
	ConfirmationURL  string `json:"confirmation_url" form:"confirmation_url" query:"confirmation_url"`
	Extra1           string `json:"extra1" form:"extra1" query:"extra1"`
}

// CallbackPayload is the confirmation ePayco sends, as form, query string or JSON.
type CallbackPayload struct {
	Extra1             string `json:"x_extra1" form:"x_extra1" query:"x_extra1" validate:"required"`
	Signature          string `json:"x_signature" form:"x_signature" query:"x_signature" validate:"required"`
	RefPayco           string `json:"x_ref_payco" form:"x_ref_payco" query:"x_ref_payco"`
	TransactionID      string `json:"x_transaction_id" form:"x_transaction_id" query:"x_transaction_id"`
	Amount             string `json:"x_amount" form:"x_amount" query:"x_amount"`
	CurrencyCode       string `json:"x_currency_code" form:"x_currency_code" query:"x_currency_code"`
	CustIDCliente      string `json:"x_cust_id_cliente" form:"x_cust_id_cliente" query:"x_cust_id_cliente"`
	TransactionState   string `json:"x_transaction_state" form:"x_transaction_state" query:"x_transaction_state"`
	Response           string `json:"x_response" form:"x_response" query:"x_response"`
	ResponseReasonText string `json:"x_response_reason_text" form:"x_response_reason_text" query:"x_response_reason_text"`
	ApprovalCode       string `json:"x_approval_code" form:"x_approval_code" query:"x_approval_code"`
}

// ToMap flattens the payload for audit logging.
func (p CallbackPayload) ToMap() map[string]string {
	return map[string]string{
		"x_extra1":               p.Extra1,
		"x_signature":            p.Signature,
		"x_ref_payco":            p.RefPayco,
		"x_transaction_id":       p.TransactionID,
		"x_amount":               p.Amount,
		"x_currency_code":        p.CurrencyCode,
		"x_cust_id_cliente":      p.CustIDCliente,
		"x_transaction_state":    p.TransactionState,
		"x_response":             p.Response,
		"x_response_reason_text": p.ResponseReasonText,
		"x_approval_code":        p.ApprovalCode,
	}
}
