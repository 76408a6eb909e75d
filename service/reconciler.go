package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"payment-epayco/dto/http"
	"payment-epayco/dto/model"
	"payment-epayco/helper"
	"payment-epayco/lib"
	"payment-epayco/pkg/apperror"
	"payment-epayco/repository"

	"github.com/go-playground/validator/v10"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

const (
	StatusAccepted = "Aceptada"
	StatusPending  = "Pendiente"
)

// Discrepancy is one field where the callback disagrees with what we stored.
type Discrepancy struct {
	Field    string `json:"field"`
	Received string `json:"received"`
	Expected string `json:"expected"`
}

// StateNotifier is told about every transaction whose state a callback changed.
type StateNotifier interface {
	Notify(transaction model.PaymentTransaction)
}

type ReconcilerConfig struct {
	Transactions repository.TransactionRepository
	Acquirers    repository.AcquirerRepository
	CallbackLogs repository.CallbackLogRepository
	Locker       repository.Locker
	Notifier     StateNotifier
	Logger       *zap.Logger
	// Strict rejects callbacks with discrepancies instead of only logging them.
	Strict bool
}

type Reconciler struct {
	transactions repository.TransactionRepository
	acquirers    repository.AcquirerRepository
	callbackLogs repository.CallbackLogRepository
	locker       repository.Locker
	notifier     StateNotifier
	logger       *zap.Logger
	strict       bool
	validate     *validator.Validate
	now          func() time.Time
}

func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	r := &Reconciler{
		transactions: cfg.Transactions,
		acquirers:    cfg.Acquirers,
		callbackLogs: cfg.CallbackLogs,
		locker:       cfg.Locker,
		notifier:     cfg.Notifier,
		logger:       cfg.Logger,
		strict:       cfg.Strict,
		validate:     NewValidator(),
		now:          time.Now,
	}
	if r.callbackLogs == nil {
		r.callbackLogs = repository.NewNopCallbackLogRepo()
	}
	if r.locker == nil {
		r.locker = repository.NewNopLocker()
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

type ReconcileResult struct {
	Transaction   *model.PaymentTransaction `json:"transaction"`
	Discrepancies []Discrepancy             `json:"discrepancies,omitempty"`
	Changed       bool                      `json:"changed"`
}

// Process handles one confirmation end to end: resolve, verify, check, apply.
// Re-delivered confirmations succeed without changing the outcome.
func (r *Reconciler) Process(ctx context.Context, payload http.CallbackPayload) (result *ReconcileResult, err error) {
	span, ctx := apm.StartSpan(ctx, "ProcessEpaycoCallback", "service")
	defer span.End()

	defer func() {
		r.record(ctx, payload, result, err)
	}()

	if err := r.checkRequired(payload); err != nil {
		return nil, err
	}

	unlock, err := r.locker.Lock(ctx, "epayco:reference:"+payload.Extra1)
	if err != nil {
		return nil, err
	}
	defer unlock()

	transaction, acquirer, err := r.ResolveTransaction(ctx, payload)
	if err != nil {
		return nil, err
	}

	discrepancies, err := r.CheckConsistency(transaction, acquirer, payload)
	if err != nil {
		return nil, err
	}
	if len(discrepancies) > 0 {
		r.logger.Warn("Epayco callback has invalid parameters",
			zap.String("reference", transaction.Reference),
			zap.Any("discrepancies", discrepancies),
		)
		if r.strict && !isRedelivery(transaction, payload) {
			return &ReconcileResult{Transaction: transaction, Discrepancies: discrepancies},
				apperror.InconsistentCallback(transaction.Reference, len(discrepancies))
		}
	}

	updated, changed, err := r.ApplyStatus(ctx, transaction, payload)
	if err != nil {
		return nil, err
	}

	if changed && r.notifier != nil {
		r.notifier.Notify(*updated)
	}

	r.logger.Info("Epayco callback processed",
		zap.String("reference", updated.Reference),
		zap.String("ref_payco", payload.RefPayco),
		zap.String("transaction_state", payload.TransactionState),
		zap.String("state", string(updated.State)),
		zap.Bool("changed", changed),
	)

	return &ReconcileResult{Transaction: updated, Discrepancies: discrepancies, Changed: changed}, nil
}

// ResolveTransaction finds the transaction a callback refers to and verifies
// the callback signature with that transaction's acquirer.
func (r *Reconciler) ResolveTransaction(ctx context.Context, payload http.CallbackPayload) (*model.PaymentTransaction, *model.Acquirer, error) {
	if err := r.checkRequired(payload); err != nil {
		return nil, nil, err
	}

	transactions, err := r.transactions.FindByReference(ctx, payload.Extra1)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case len(transactions) == 0:
		return nil, nil, apperror.TransactionNotFound(payload.Extra1)
	case len(transactions) > 1:
		r.logger.Error("Duplicate transaction reference",
			zap.Bool("alarm", true),
			zap.String("reference", payload.Extra1),
			zap.Int("matches", len(transactions)),
		)
		return nil, nil, apperror.AmbiguousTransaction(payload.Extra1, len(transactions))
	}
	transaction := transactions[0]

	acquirer, err := r.acquirers.FindByID(ctx, transaction.AcquirerID)
	if err != nil {
		return nil, nil, err
	}

	if err := lib.VerifySign(acquirer, payload); err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) && appErr.Kind == apperror.KindInvalidSignature {
			r.logger.Warn("Epayco invalid signature",
				zap.String("reference", transaction.Reference),
				zap.String("received", appErr.Received),
				zap.String("computed", appErr.Expected),
			)
		}
		return nil, nil, err
	}

	return &transaction, acquirer, nil
}

// CheckConsistency compares the callback against the stored transaction and
// acquirer. Every check runs; a parse failure fails the whole check.
func (r *Reconciler) CheckConsistency(transaction *model.PaymentTransaction, acquirer *model.Acquirer, payload http.CallbackPayload) ([]Discrepancy, error) {
	var discrepancies []Discrepancy

	if transaction.AcquirerReference != "" && payload.TransactionID != transaction.AcquirerReference {
		discrepancies = append(discrepancies, Discrepancy{
			Field:    "Transaction Id",
			Received: payload.TransactionID,
			Expected: transaction.AcquirerReference,
		})
	}

	received, err := strconv.ParseInt(strings.TrimSpace(payload.CustIDCliente), 10, 64)
	if err != nil {
		return nil, apperror.MalformedNumericField("x_cust_id_cliente", payload.CustIDCliente, err)
	}
	expected, err := strconv.ParseInt(strings.TrimSpace(acquirer.EpaycoMerchantID), 10, 64)
	if err != nil {
		return nil, apperror.MalformedNumericField("epayco_merchant_id", acquirer.EpaycoMerchantID, err)
	}
	if received != expected {
		discrepancies = append(discrepancies, Discrepancy{
			Field:    "Customer ID",
			Received: payload.CustIDCliente,
			Expected: acquirer.EpaycoMerchantID,
		})
	}

	amount, err := helper.ParseAmount(payload.Amount)
	if err != nil {
		return nil, apperror.MalformedNumericField("x_amount", payload.Amount, err)
	}
	if !amount.Equal(transaction.Amount) {
		discrepancies = append(discrepancies, Discrepancy{
			Field:    "Amount",
			Received: payload.Amount,
			Expected: transaction.Amount.String(),
		})
	}

	if !strings.EqualFold(strings.TrimSpace(payload.CurrencyCode), transaction.Currency) {
		discrepancies = append(discrepancies, Discrepancy{
			Field:    "Currency",
			Received: payload.CurrencyCode,
			Expected: transaction.Currency,
		})
	}

	return discrepancies, nil
}

// ApplyStatus records the gateway reference and date, then maps the ePayco
// state onto a transition. Unknown states cancel. The bool reports whether
// the transaction state changed.
func (r *Reconciler) ApplyStatus(ctx context.Context, transaction *model.PaymentTransaction, payload http.CallbackPayload) (*model.PaymentTransaction, bool, error) {
	var changed bool
	updated, err := r.transactions.UpdateLocked(ctx, transaction.ID, func(t *model.PaymentTransaction) error {
		now := r.now()
		t.AcquirerReference = payload.RefPayco
		t.Date = &now

		switch payload.TransactionState {
		case StatusAccepted:
			changed = t.SetDone()
		case StatusPending:
			changed = t.SetPending()
		default:
			changed = t.SetCancel()
		}

		if changed && payload.ResponseReasonText != "" {
			t.StateMessage = payload.ResponseReasonText
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return updated, changed, nil
}

func (r *Reconciler) checkRequired(payload http.CallbackPayload) error {
	if err := r.validate.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperror.MissingCallbackField(verrs[0].Field())
		}
		return apperror.InvalidInput("invalid callback payload", err)
	}
	return nil
}

// isRedelivery reports whether this callback was already applied: ePayco
// retries carry the same x_ref_payco that the first delivery recorded.
func isRedelivery(transaction *model.PaymentTransaction, payload http.CallbackPayload) bool {
	return transaction.AcquirerReference != "" && transaction.AcquirerReference == payload.RefPayco
}

func (r *Reconciler) record(ctx context.Context, payload http.CallbackPayload, result *ReconcileResult, err error) {
	entry := model.CallbackLog{
		Reference:  payload.Extra1,
		RefPayco:   payload.RefPayco,
		State:      payload.TransactionState,
		Payload:    payload.ToMap(),
		Outcome:    "processed",
		ReceivedAt: r.now(),
	}
	if err != nil {
		entry.Outcome = string(apperror.KindOf(err))
		entry.Error = err.Error()
	}
	if result != nil && result.Transaction != nil {
		entry.ResultState = string(result.Transaction.State)
	}

	if logErr := r.callbackLogs.Insert(ctx, entry); logErr != nil {
		r.logger.Warn("Failed to store callback log", zap.String("reference", payload.Extra1), zap.Error(logErr))
	}
}
