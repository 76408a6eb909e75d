package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"payment-epayco/dto/http"
	"payment-epayco/dto/model"
	"payment-epayco/lib"
	"payment-epayco/pkg/apperror"
	"payment-epayco/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Mocks ---

type MockCallbackProcessor struct {
	mock.Mock
}

func (m *MockCallbackProcessor) Process(ctx context.Context, payload http.CallbackPayload) (*service.ReconcileResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReconcileResult), args.Error(1)
}

type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) Initiate(ctx context.Context, req http.CreateCheckoutRequest) (*http.CreateCheckoutResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.CreateCheckoutResponse), args.Error(1)
}

func (m *MockPaymentProvider) Status(ctx context.Context, reference string) (*http.TransactionStatus, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.TransactionStatus), args.Error(1)
}

func (m *MockPaymentProvider) StatusByAcquirerReference(ctx context.Context, refPayco string) (*http.TransactionStatus, error) {
	args := m.Called(ctx, refPayco)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.TransactionStatus), args.Error(1)
}

// --- Helpers ---

func newEpaycoApp(callbacks CallbackProcessor, payments PaymentProvider) *fiber.App {
	app := fiber.New(fiber.Config{Views: html.New("../views", ".html")})
	h := NewEpaycoHandler(callbacks, payments, zap.NewNop())
	app.Get("/payment/epayco/checkout/", h.CheckoutPage)
	app.Post("/payment/epayco/checkout/", h.CheckoutPage)
	app.Get("/payment/epayco/confirmation/", h.Confirmation)
	app.Post("/payment/epayco/confirmation/", h.Confirmation)
	app.Get("/payment/epayco/response/", h.ResponsePage)
	return app
}

func confirmationForm() url.Values {
	return url.Values{
		"x_extra1":            {"ORD-1"},
		"x_signature":         {"sig"},
		"x_ref_payco":         {"ref-payco-1"},
		"x_transaction_id":    {"txn-9"},
		"x_amount":            {"100"},
		"x_currency_code":     {"COP"},
		"x_cust_id_cliente":   {"12345"},
		"x_transaction_state": {"Aceptada"},
	}
}

func decodeBody(t *testing.T, resp *nethttp.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// --- Tests ---

func TestConfirmation_Success(t *testing.T) {
	callbacks := new(MockCallbackProcessor)
	callbacks.On("Process", mock.Anything, mock.MatchedBy(func(p http.CallbackPayload) bool {
		return p.Extra1 == "ORD-1" && p.RefPayco == "ref-payco-1" && p.TransactionState == "Aceptada"
	})).Return(&service.ReconcileResult{
		Transaction: &model.PaymentTransaction{Reference: "ORD-1", State: model.StateDone},
		Changed:     true,
	}, nil).Once()
	app := newEpaycoApp(callbacks, new(MockPaymentProvider))

	req := httptest.NewRequest(nethttp.MethodPost, "/payment/epayco/confirmation/", strings.NewReader(confirmationForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "done", data["state"])
	assert.Equal(t, true, data["changed"])
	callbacks.AssertExpectations(t)
}

func TestConfirmation_QueryAndJSON(t *testing.T) {
	callbacks := new(MockCallbackProcessor)
	callbacks.On("Process", mock.Anything, mock.MatchedBy(func(p http.CallbackPayload) bool {
		return p.Extra1 == "ORD-1" && p.Signature == "sig"
	})).Return(&service.ReconcileResult{
		Transaction: &model.PaymentTransaction{Reference: "ORD-1", State: model.StatePending},
	}, nil).Twice()
	app := newEpaycoApp(callbacks, new(MockPaymentProvider))

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/payment/epayco/confirmation/?"+confirmationForm().Encode(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(nethttp.MethodPost, "/payment/epayco/confirmation/",
		strings.NewReader(`{"x_extra1":"ORD-1","x_signature":"sig","x_transaction_state":"Pendiente"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	callbacks.AssertExpectations(t)
}

func TestConfirmation_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"Missing field", apperror.MissingCallbackField("x_signature"), fiber.StatusBadRequest, "MissingCallbackField"},
		{"Unknown reference", apperror.TransactionNotFound("ORD-1"), fiber.StatusNotFound, "TransactionNotFound"},
		{"Ambiguous reference", apperror.AmbiguousTransaction("ORD-1", 2), fiber.StatusConflict, "AmbiguousTransaction"},
		{"Bad signature", apperror.InvalidSignature("sig", "other"), fiber.StatusUnauthorized, "InvalidSignature"},
		{"Missing signature input", apperror.MissingSignatureInput("x_amount"), fiber.StatusBadRequest, "MissingSignatureInput"},
		{"Malformed number", apperror.MalformedNumericField("x_cust_id_cliente", "12a", nil), fiber.StatusBadRequest, "MalformedNumericField"},
		{"Inconsistent", apperror.InconsistentCallback("ORD-1", 1), fiber.StatusUnprocessableEntity, "InconsistentCallback"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			callbacks := new(MockCallbackProcessor)
			callbacks.On("Process", mock.Anything, mock.Anything).Return(nil, tc.err).Once()
			app := newEpaycoApp(callbacks, new(MockPaymentProvider))

			req := httptest.NewRequest(nethttp.MethodPost, "/payment/epayco/confirmation/", strings.NewReader(confirmationForm().Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			resp, err := app.Test(req)

			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.Equal(t, tc.kind, body["kind"])
		})
	}
}

func TestConfirmation_InvalidSignatureHidesComputedDigest(t *testing.T) {
	acquirer := sampleAcquirer()
	transactions := new(MockTransactionRepo)
	transactions.On("FindByReference", mock.Anything, "ORD-1").Return([]model.PaymentTransaction{{
		ID:         "tx-1",
		Reference:  "ORD-1",
		AcquirerID: "acq-1",
		Amount:     decimal.NewFromInt(100),
		Currency:   "COP",
		State:      model.StateDraft,
	}}, nil)
	acquirers := new(MockAcquirerRepo)
	acquirers.On("FindByID", mock.Anything, "acq-1").Return(acquirer, nil)
	reconciler := service.NewReconciler(service.ReconcilerConfig{
		Transactions: transactions,
		Acquirers:    acquirers,
		Logger:       zap.NewNop(),
		Strict:       true,
	})
	app := newEpaycoApp(reconciler, new(MockPaymentProvider))

	form := confirmationForm()
	computed, err := lib.GenerateSign(acquirer, http.CallbackPayload{
		Extra1:        form.Get("x_extra1"),
		RefPayco:      form.Get("x_ref_payco"),
		TransactionID: form.Get("x_transaction_id"),
		Amount:        form.Get("x_amount"),
		CurrencyCode:  form.Get("x_currency_code"),
	})
	require.NoError(t, err)
	require.NotEqual(t, computed, form.Get("x_signature"))

	req := httptest.NewRequest(nethttp.MethodPost, "/payment/epayco/confirmation/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), computed)
	assert.Contains(t, string(raw), "InvalidSignature")
	transactions.AssertNotCalled(t, "UpdateLocked", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmation_StorageFailureHidesCause(t *testing.T) {
	callbacks := new(MockCallbackProcessor)
	callbacks.On("Process", mock.Anything, mock.Anything).Return(nil, errors.New("pq: connection refused")).Once()
	app := newEpaycoApp(callbacks, new(MockPaymentProvider))

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/payment/epayco/confirmation/?"+confirmationForm().Encode(), nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "connection refused")
}

func TestCheckoutPage(t *testing.T) {
	app := newEpaycoApp(new(MockCallbackProcessor), new(MockPaymentProvider))

	t.Run("Renders checkout script", func(t *testing.T) {
		form := url.Values{
			"public_key":      {"pub-key"},
			"txnid":           {"ORD-1"},
			"amount":          {"100"},
			"productinfo":     {"ORD-1"},
			"currency_code":   {"cop"},
			"epayco_env_test": {"true"},
			"epayco_lang":     {"es"},
			"extra1":          {"ORD-1"},
		}
		req := httptest.NewRequest(nethttp.MethodPost, "/payment/epayco/checkout/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		raw, _ := io.ReadAll(resp.Body)
		page := string(raw)
		assert.Contains(t, page, "https://checkout.epayco.co/checkout.js")
		assert.Contains(t, page, `data-epayco-key="pub-key"`)
		assert.Contains(t, page, `data-epayco-test="true"`)
		assert.Contains(t, page, `data-epayco-extra1="ORD-1"`)
	})

	t.Run("Missing fields", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/payment/epayco/checkout/", nil))

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestResponsePage(t *testing.T) {
	payments := new(MockPaymentProvider)
	payments.On("Status", mock.Anything, "ORD-1").Return(&http.TransactionStatus{
		Reference: "ORD-1",
		State:     "done",
		Message:   "Your payment has been processed",
		Amount:    "100",
		Currency:  "COP",
	}, nil)
	payments.On("Status", mock.Anything, "ORD-404").Return(nil, apperror.TransactionNotFound("ORD-404"))
	payments.On("StatusByAcquirerReference", mock.Anything, "123").Return(&http.TransactionStatus{
		Reference:         "ORD-1",
		State:             "done",
		Message:           "Your payment has been processed",
		AcquirerReference: "123",
	}, nil)
	payments.On("StatusByAcquirerReference", mock.Anything, "456").Return(nil, apperror.TransactionNotFound("456"))
	callbacks := new(MockCallbackProcessor)
	app := newEpaycoApp(callbacks, payments)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/payment/epayco/response/?x_extra1=ORD-1&x_transaction_state=Aceptada", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "Your payment has been processed")

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/payment/epayco/response/?x_extra1=ORD-404", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/payment/epayco/response/?ref_payco=123", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "ORD-1")

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/payment/epayco/response/?ref_payco=456", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "being confirmed")

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/payment/epayco/response/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	callbacks.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}
