package handler

import (
	"payment-epayco/dto/http"
	"payment-epayco/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	payments PaymentProvider
	logger   *zap.Logger
}

func NewTransactionHandler(payments PaymentProvider, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{payments: payments, logger: logger}
}

func (h *TransactionHandler) CreateCheckout(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "CreateCheckout", "handler")
	defer span.End()

	var req http.CreateCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.payments.Initiate(spanCtx, req)
	if err != nil {
		h.logger.Warn("Create checkout failed", zap.String("reference", req.Reference), zap.Error(err))
		return response.ResponseError(c, err)
	}

	return response.ResponseSuccess(c, fiber.StatusCreated, resp)
}

func (h *TransactionHandler) GetTransactionStatus(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "GetTransactionStatus", "handler")
	defer span.End()

	reference := c.Params("reference")
	if reference == "" {
		return response.Response(c, fiber.StatusBadRequest, "Missing required parameters")
	}

	status, err := h.payments.Status(spanCtx, reference)
	if err != nil {
		return response.ResponseError(c, err)
	}

	return response.ResponseSuccess(c, fiber.StatusOK, status)
}
