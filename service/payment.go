package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"payment-epayco/config"
	"payment-epayco/dto/http"
	"payment-epayco/dto/model"
	"payment-epayco/helper"
	"payment-epayco/lib"
	"payment-epayco/pkg/apperror"
	"payment-epayco/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// PaymentService opens ePayco checkouts and reports transaction state to merchants.
type PaymentService struct {
	transactions repository.TransactionRepository
	acquirers    repository.AcquirerRepository
	logger       *zap.Logger
	baseURL      string
	validate     *validator.Validate
}

func NewPaymentService(transactions repository.TransactionRepository, acquirers repository.AcquirerRepository, logger *zap.Logger, baseURL string) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		transactions: transactions,
		acquirers:    acquirers,
		logger:       logger,
		baseURL:      baseURL,
		validate:     NewValidator(),
	}
}

// Initiate stores a draft transaction for the order and returns the form the
// browser must post to open the ePayco checkout.
func (s *PaymentService) Initiate(ctx context.Context, req http.CreateCheckoutRequest) (*http.CreateCheckoutResponse, error) {
	span, ctx := apm.StartSpan(ctx, "InitiateCheckout", "service")
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperror.InvalidInput(fmt.Sprintf("invalid fields: %s", strings.Join(FieldNames(verrs), ", ")), err)
		}
		return nil, apperror.InvalidInput("invalid checkout request", err)
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.InvalidInput("amount must be greater than zero", nil)
	}

	acquirer, err := s.acquirers.FindByID(ctx, req.AcquirerID)
	if err != nil {
		return nil, err
	}
	if acquirer.Provider != config.ProviderEpayco {
		return nil, apperror.InvalidInput(fmt.Sprintf("acquirer %s is not an ePayco acquirer", acquirer.ID), nil)
	}
	if acquirer.State == model.AcquirerDisabled {
		return nil, apperror.InvalidInput(fmt.Sprintf("acquirer %s is disabled", acquirer.ID), nil)
	}

	fields, err := lib.GenerateCheckoutFields(acquirer, http.OrderContext{
		Reference:          req.Reference,
		Amount:             req.Amount,
		CurrencyCode:       req.Currency,
		PartnerName:        req.PartnerName,
		PartnerEmail:       req.PartnerEmail,
		PartnerPhone:       req.PartnerPhone,
		PartnerCountryCode: req.PartnerCountry,
	}, s.baseURL)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate transaction id: %w", err)
	}

	transaction := &model.PaymentTransaction{
		ID:              id.String(),
		Reference:       req.Reference,
		AcquirerID:      acquirer.ID,
		Amount:          req.Amount,
		Currency:        strings.ToUpper(req.Currency),
		PartnerName:     req.PartnerName,
		PartnerEmail:    req.PartnerEmail,
		PartnerPhone:    req.PartnerPhone,
		PartnerCountry:  strings.ToUpper(req.PartnerCountry),
		State:           model.StateDraft,
		NotificationURL: req.NotificationURL,
	}
	if err := s.transactions.Create(ctx, transaction); err != nil {
		return nil, err
	}

	s.logger.Info("Checkout created",
		zap.String("reference", transaction.Reference),
		zap.String("acquirer_id", acquirer.ID),
		zap.String("amount", transaction.Amount.String()),
		zap.Bool("test_mode", acquirer.IsTestMode()),
	)

	return &http.CreateCheckoutResponse{
		TransactionID: transaction.ID,
		Reference:     transaction.Reference,
		ActionURL:     lib.CheckoutEndpoint(),
		Fields:        fields,
	}, nil
}

// Status returns the stored state of a transaction. It never contacts ePayco.
func (s *PaymentService) Status(ctx context.Context, reference string) (*http.TransactionStatus, error) {
	span, ctx := apm.StartSpan(ctx, "TransactionStatus", "service")
	defer span.End()

	transactions, err := s.transactions.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return transactionStatus(transactions, reference)
}

// StatusByAcquirerReference looks the transaction up by the x_ref_payco a
// confirmation recorded. Before the confirmation arrives it reports not found.
func (s *PaymentService) StatusByAcquirerReference(ctx context.Context, refPayco string) (*http.TransactionStatus, error) {
	span, ctx := apm.StartSpan(ctx, "TransactionStatusByRefPayco", "service")
	defer span.End()

	transactions, err := s.transactions.FindByAcquirerReference(ctx, refPayco)
	if err != nil {
		return nil, err
	}
	return transactionStatus(transactions, refPayco)
}

func transactionStatus(transactions []model.PaymentTransaction, key string) (*http.TransactionStatus, error) {
	switch {
	case len(transactions) == 0:
		return nil, apperror.TransactionNotFound(key)
	case len(transactions) > 1:
		return nil, apperror.AmbiguousTransaction(key, len(transactions))
	}
	t := transactions[0]

	message := t.StateMessage
	if message == "" {
		message = helper.GetStatusMessage(string(t.State))
	}

	return &http.TransactionStatus{
		Reference:         t.Reference,
		State:             string(t.State),
		Message:           message,
		Amount:            helper.FormatAmount(t.Amount),
		Currency:          t.Currency,
		AcquirerReference: t.AcquirerReference,
		Date:              t.Date,
		CreatedDate:       t.CreatedAt,
	}, nil
}
