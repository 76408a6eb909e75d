package handler

import (
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"payment-epayco/dto/http"
	"payment-epayco/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTransactionApp(payments PaymentProvider) *fiber.App {
	app := fiber.New()
	h := NewTransactionHandler(payments, zap.NewNop())
	app.Post("/api/checkout", h.CreateCheckout)
	app.Get("/api/transaction/:reference", h.GetTransactionStatus)
	return app
}

func TestCreateCheckout(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		payments := new(MockPaymentProvider)
		payments.On("Initiate", mock.Anything, mock.MatchedBy(func(r http.CreateCheckoutRequest) bool {
			return r.Reference == "ORD-1" && r.Amount.String() == "100.5"
		})).Return(&http.CreateCheckoutResponse{
			TransactionID: "tx-1",
			Reference:     "ORD-1",
			ActionURL:     "/payment/epayco/checkout/",
		}, nil).Once()
		app := newTransactionApp(payments)

		req := httptest.NewRequest(nethttp.MethodPost, "/api/checkout",
			strings.NewReader(`{"acquirer_id":"acq-1","reference":"ORD-1","amount":"100.50","currency":"COP"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		payments.AssertExpectations(t)
	})

	t.Run("Duplicate reference", func(t *testing.T) {
		payments := new(MockPaymentProvider)
		payments.On("Initiate", mock.Anything, mock.Anything).Return(nil, apperror.DuplicateReference("ORD-1")).Once()
		app := newTransactionApp(payments)

		req := httptest.NewRequest(nethttp.MethodPost, "/api/checkout", strings.NewReader(`{"reference":"ORD-1"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})

	t.Run("Malformed body", func(t *testing.T) {
		app := newTransactionApp(new(MockPaymentProvider))

		req := httptest.NewRequest(nethttp.MethodPost, "/api/checkout", strings.NewReader(`{`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetTransactionStatus(t *testing.T) {
	payments := new(MockPaymentProvider)
	payments.On("Status", mock.Anything, "ORD-1").Return(&http.TransactionStatus{Reference: "ORD-1", State: "pending"}, nil)
	payments.On("Status", mock.Anything, "ORD-2").Return(nil, apperror.AmbiguousTransaction("ORD-2", 2))
	app := newTransactionApp(payments)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/api/transaction/ORD-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "pending", body["data"].(map[string]interface{})["state"])

	resp, err = app.Test(httptest.NewRequest(nethttp.MethodGet, "/api/transaction/ORD-2", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
