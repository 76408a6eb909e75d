package http

type CreateAcquirerRequest struct {
	Name             string `json:"name" validate:"required,max=255"`
	State            string `json:"state" validate:"required,oneof=enabled test disabled"`
	EpaycoMerchantID string `json:"epayco_merchant_id" validate:"required,numeric"`
	EpaycoPublicKey  string `json:"epayco_public_key" validate:"required,max=255"`
	EpaycoPKey       string `json:"epayco_p_key" validate:"required,max=255"`
}
