package lib

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"payment-epayco/config"
	"payment-epayco/dto/http"
	"payment-epayco/dto/model"
	"payment-epayco/helper"
	"payment-epayco/pkg/apperror"
)

// GenerateCheckoutFields builds the values the browser posts to the checkout
// page for one order. It performs no I/O.
func GenerateCheckoutFields(acquirer *model.Acquirer, order http.OrderContext, baseURL string) (http.CheckoutFields, error) {
	if strings.TrimSpace(order.Reference) == "" {
		return http.CheckoutFields{}, apperror.InvalidInput("epayco: order reference is required", nil)
	}
	currency := helper.NormalizeCode(order.CurrencyCode)
	if currency == "" {
		return http.CheckoutFields{}, apperror.InvalidInput("epayco: order currency has no code", nil)
	}

	gw, err := config.GetGatewayConfig(config.ProviderEpayco)
	if err != nil {
		return http.CheckoutFields{}, err
	}

	responseURL, err := joinURL(baseURL, config.EpaycoResponsePath)
	if err != nil {
		return http.CheckoutFields{}, err
	}
	confirmationURL, err := joinURL(baseURL, config.EpaycoConfirmationPath)
	if err != nil {
		return http.CheckoutFields{}, err
	}

	environment := "false"
	if acquirer.IsTestMode() {
		environment = "true"
	}

	return http.CheckoutFields{
		PublicKey:        acquirer.EpaycoPublicKey,
		TxnID:            order.Reference,
		Amount:           helper.FormatAmount(order.Amount),
		ProductInfo:      order.Reference,
		FirstName:        order.PartnerName,
		Email:            order.PartnerEmail,
		Phone:            order.PartnerPhone,
		CurrencyCode:     currency,
		CountryCode:      helper.NormalizeCode(order.PartnerCountryCode),
		CheckoutExternal: "true",
		EnvTest:          environment,
		Lang:             gw.Lang,
		ResponseURL:      responseURL,
		ConfirmationURL:  confirmationURL,
		Extra1:           order.Reference,
	}, nil
}

// CheckoutEndpoint is where the checkout fields must be posted.
func CheckoutEndpoint() string {
	return config.EpaycoCheckoutPath
}

// GenerateSign computes the confirmation signature:
// sha256(p_cust_id^p_key^x_ref_payco^x_transaction_id^x_amount^x_currency_code), hex encoded.
func GenerateSign(acquirer *model.Acquirer, payload http.CallbackPayload) (string, error) {
	inputs := []struct {
		name  string
		value string
	}{
		{"epayco_merchant_id", acquirer.EpaycoMerchantID},
		{"epayco_p_key", acquirer.EpaycoPKey},
		{"x_ref_payco", payload.RefPayco},
		{"x_transaction_id", payload.TransactionID},
		{"x_amount", payload.Amount},
		{"x_currency_code", payload.CurrencyCode},
	}

	values := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if in.value == "" {
			return "", apperror.MissingSignatureInput(in.name)
		}
		values = append(values, in.value)
	}

	hash := sha256.Sum256([]byte(strings.Join(values, "^")))
	return hex.EncodeToString(hash[:]), nil
}

// VerifySign recomputes the signature and compares it with the one ePayco sent.
func VerifySign(acquirer *model.Acquirer, payload http.CallbackPayload) error {
	computed, err := GenerateSign(acquirer, payload)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(computed), []byte(payload.Signature)) {
		return apperror.InvalidSignature(payload.Signature, computed)
	}
	return nil
}

func joinURL(baseURL, path string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if !base.IsAbs() {
		return "", fmt.Errorf("base url %q is not absolute", baseURL)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	return base.ResolveReference(ref).String(), nil
}
