package handler

import (
	"payment-epayco/config"
	"payment-epayco/dto/http"
	"payment-epayco/middleware"
	"payment-epayco/pkg/apperror"
	"payment-epayco/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

type EpaycoHandler struct {
	callbacks CallbackProcessor
	payments  PaymentProvider
	logger    *zap.Logger
}

func NewEpaycoHandler(callbacks CallbackProcessor, payments PaymentProvider, logger *zap.Logger) *EpaycoHandler {
	return &EpaycoHandler{callbacks: callbacks, payments: payments, logger: logger}
}

// CheckoutPage renders the page that opens the ePayco checkout with the posted fields.
func (h *EpaycoHandler) CheckoutPage(c *fiber.Ctx) error {
	var fields http.CheckoutFields
	if err := parseRequest(c, &fields); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "Invalid checkout data")
	}
	if fields.TxnID == "" || fields.PublicKey == "" {
		return response.Response(c, fiber.StatusBadRequest, "Missing checkout fields")
	}

	gw, err := config.GetGatewayConfig(config.ProviderEpayco)
	if err != nil {
		return response.ResponseError(c, err)
	}

	return c.Render(gw.DirView+"/checkout", fiber.Map{
		"ScriptURL": gw.ScriptURL,
		"Fields":    fields,
	})
}

// Confirmation is the server-to-server callback ePayco sends when a payment settles.
func (h *EpaycoHandler) Confirmation(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "EpaycoConfirmation", "handler")
	defer span.End()

	var payload http.CallbackPayload
	if err := parseRequest(c, &payload); err != nil {
		middleware.CallbackCount.WithLabelValues(string(apperror.KindInvalidInput)).Inc()
		return response.Response(c, fiber.StatusBadRequest, "Invalid callback body")
	}

	h.logger.Info("Epayco confirmation received",
		zap.String("reference", payload.Extra1),
		zap.String("ref_payco", payload.RefPayco),
		zap.String("transaction_state", payload.TransactionState),
	)

	result, err := h.callbacks.Process(spanCtx, payload)
	if err != nil {
		kind := apperror.KindOf(err)
		middleware.CallbackCount.WithLabelValues(string(kind)).Inc()
		if kind == apperror.KindAmbiguousTransaction {
			middleware.AmbiguousReferenceCount.Inc()
		}
		if kind == apperror.KindInternal {
			h.logger.Error("Epayco confirmation failed", zap.String("reference", payload.Extra1), zap.Error(err))
		} else {
			h.logger.Warn("Epayco confirmation rejected", zap.String("reference", payload.Extra1), zap.Error(err))
		}
		return response.ResponseError(c, err)
	}

	middleware.CallbackCount.WithLabelValues("processed").Inc()
	return response.ResponseSuccess(c, fiber.StatusOK, fiber.Map{
		"reference": result.Transaction.Reference,
		"state":     result.Transaction.State,
		"changed":   result.Changed,
	})
}

// ResponsePage is where ePayco sends the buyer back. It only shows stored state.
// ePayco appends ref_payco; x_extra1 or reference name our own reference.
func (h *EpaycoHandler) ResponsePage(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "EpaycoResponsePage", "handler")
	defer span.End()

	reference := c.Query("x_extra1")
	if reference == "" {
		reference = c.Query("reference")
	}
	refPayco := c.Query("ref_payco")

	var (
		status *http.TransactionStatus
		err    error
	)
	switch {
	case reference != "":
		status, err = h.payments.Status(spanCtx, reference)
	case refPayco != "":
		status, err = h.payments.StatusByAcquirerReference(spanCtx, refPayco)
		if apperror.KindOf(err) == apperror.KindTransactionNotFound {
			// The confirmation has not recorded ref_payco yet.
			return c.Render("epayco/response", fiber.Map{
				"Found":   false,
				"Message": "Your payment is being confirmed by ePayco",
			})
		}
	default:
		return c.Status(fiber.StatusBadRequest).Render("epayco/response", fiber.Map{
			"Found":   false,
			"Message": "Missing payment reference",
		})
	}
	if err != nil {
		h.logger.Warn("Epayco response page lookup failed",
			zap.String("reference", reference),
			zap.String("ref_payco", refPayco),
			zap.Error(err),
		)
		return c.Status(apperror.StatusCode(err)).Render("epayco/response", fiber.Map{
			"Found":   false,
			"Message": "We could not find your payment",
		})
	}

	return c.Render("epayco/response", fiber.Map{
		"Found":  true,
		"Status": status,
	})
}

// parseRequest fills out from the query string, then from the body when one is sent.
func parseRequest(c *fiber.Ctx, out interface{}) error {
	if err := c.QueryParser(out); err != nil {
		return err
	}
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}
