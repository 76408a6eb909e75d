package handler

import (
	"errors"
	"fmt"
	"strings"

	"payment-epayco/config"
	"payment-epayco/dto/http"
	"payment-epayco/dto/model"
	"payment-epayco/pkg/apperror"
	"payment-epayco/pkg/response"
	"payment-epayco/repository"
	"payment-epayco/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

type AcquirerHandler struct {
	acquirers    repository.AcquirerRepository
	callbackLogs repository.CallbackLogRepository
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewAcquirerHandler(acquirers repository.AcquirerRepository, callbackLogs repository.CallbackLogRepository, logger *zap.Logger) *AcquirerHandler {
	return &AcquirerHandler{
		acquirers:    acquirers,
		callbackLogs: callbackLogs,
		validate:     service.NewValidator(),
		logger:       logger,
	}
}

func (h *AcquirerHandler) GetAllAcquirers(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "GetAllAcquirers", "handler")
	defer span.End()

	acquirers, err := h.acquirers.List(spanCtx)
	if err != nil {
		h.logger.Error("List acquirers failed", zap.Error(err))
		return response.ResponseError(c, err)
	}
	return response.ResponseSuccess(c, fiber.StatusOK, acquirers)
}

func (h *AcquirerHandler) GetAcquirer(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "GetAcquirer", "handler")
	defer span.End()

	acquirer, err := h.acquirers.FindByID(spanCtx, c.Params("id"))
	if err != nil {
		return response.ResponseError(c, err)
	}
	return response.ResponseSuccess(c, fiber.StatusOK, acquirer)
}

func (h *AcquirerHandler) AddAcquirer(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "AddAcquirer", "handler")
	defer span.End()

	var req http.CreateAcquirerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return response.ResponseError(c, validationError(err))
	}

	acquirer := &model.Acquirer{
		Name:             req.Name,
		Provider:         config.ProviderEpayco,
		State:            model.AcquirerState(req.State),
		EpaycoMerchantID: req.EpaycoMerchantID,
		EpaycoPublicKey:  req.EpaycoPublicKey,
		EpaycoPKey:       req.EpaycoPKey,
	}
	if err := h.acquirers.Create(spanCtx, acquirer); err != nil {
		h.logger.Error("Create acquirer failed", zap.Error(err))
		return response.ResponseError(c, err)
	}

	h.logger.Info("Acquirer created", zap.String("id", acquirer.ID), zap.String("state", string(acquirer.State)))
	return response.ResponseSuccess(c, fiber.StatusCreated, acquirer)
}

func (h *AcquirerHandler) UpdateAcquirer(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "UpdateAcquirer", "handler")
	defer span.End()

	var req model.InputAcquirerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return response.ResponseError(c, validationError(err))
	}

	acquirer, err := h.acquirers.Update(spanCtx, c.Params("id"), &req)
	if err != nil {
		return response.ResponseError(c, err)
	}

	h.logger.Info("Acquirer updated", zap.String("id", acquirer.ID))
	return response.ResponseSuccess(c, fiber.StatusOK, acquirer)
}

// DisableAcquirer archives an acquirer. Its transactions keep referencing it.
func (h *AcquirerHandler) DisableAcquirer(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "DisableAcquirer", "handler")
	defer span.End()

	state := string(model.AcquirerDisabled)
	acquirer, err := h.acquirers.Update(spanCtx, c.Params("id"), &model.InputAcquirerRequest{State: &state})
	if err != nil {
		return response.ResponseError(c, err)
	}

	h.logger.Info("Acquirer disabled", zap.String("id", acquirer.ID))
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCallbackLogs lists every confirmation received for a reference.
func (h *AcquirerHandler) GetCallbackLogs(c *fiber.Ctx) error {
	span, spanCtx := apm.StartSpan(c.UserContext(), "GetCallbackLogs", "handler")
	defer span.End()

	logs, err := h.callbackLogs.FindByReference(spanCtx, c.Params("reference"))
	if err != nil {
		h.logger.Error("Find callback logs failed", zap.Error(err))
		return response.ResponseError(c, err)
	}
	return response.ResponseSuccess(c, fiber.StatusOK, logs)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.InvalidInput("invalid request", err)
	}
	return apperror.InvalidInput(fmt.Sprintf("invalid fields: %s", strings.Join(service.FieldNames(verrs), ", ")), err)
}
