package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-epayco/dto/model"
	"payment-epayco/pkg/apperror"

	"go.elastic.co/apm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository interface {
	Create(ctx context.Context, transaction *model.PaymentTransaction) error
	FindByReference(ctx context.Context, reference string) ([]model.PaymentTransaction, error)
	FindByAcquirerReference(ctx context.Context, refPayco string) ([]model.PaymentTransaction, error)
	// UpdateLocked loads the transaction with a row lock, applies fn and saves
	// the result in the same database transaction.
	UpdateLocked(ctx context.Context, id string, fn func(t *model.PaymentTransaction) error) (*model.PaymentTransaction, error)
	CancelStaleDrafts(ctx context.Context, createdBefore time.Time) (int64, error)
	DailySummary(ctx context.Context, from, to time.Time, state string) ([]model.TransactionDailySummary, error)
}

type gormTransactionRepo struct {
	db *gorm.DB
}

func NewGormTransactionRepo(db *gorm.DB) TransactionRepository {
	return &gormTransactionRepo{db: db}
}

func (r *gormTransactionRepo) Create(ctx context.Context, transaction *model.PaymentTransaction) error {
	span, ctx := apm.StartSpan(ctx, "CreateTransaction", "repository")
	defer span.End()

	var existing int64
	if err := r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).
		Where("reference = ?", transaction.Reference).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check reference: %w", err)
	}
	if existing > 0 {
		return apperror.DuplicateReference(transaction.Reference)
	}

	if err := r.db.WithContext(ctx).Create(transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.DuplicateReference(transaction.Reference)
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *gormTransactionRepo) FindByReference(ctx context.Context, reference string) ([]model.PaymentTransaction, error) {
	span, ctx := apm.StartSpan(ctx, "FindTransactionByReference", "repository")
	defer span.End()

	var transactions []model.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("error fetching transactions: %w", err)
	}
	return transactions, nil
}

func (r *gormTransactionRepo) FindByAcquirerReference(ctx context.Context, refPayco string) ([]model.PaymentTransaction, error) {
	span, ctx := apm.StartSpan(ctx, "FindTransactionByAcquirerReference", "repository")
	defer span.End()

	var transactions []model.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("acquirer_reference = ?", refPayco).Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("error fetching transactions: %w", err)
	}
	return transactions, nil
}

func (r *gormTransactionRepo) UpdateLocked(ctx context.Context, id string, fn func(t *model.PaymentTransaction) error) (*model.PaymentTransaction, error) {
	span, ctx := apm.StartSpan(ctx, "UpdateTransactionLocked", "repository")
	defer span.End()

	var transaction model.PaymentTransaction
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(&transaction).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.TransactionNotFound(id)
			}
			return fmt.Errorf("error locking transaction: %w", err)
		}

		if err := fn(&transaction); err != nil {
			return err
		}

		if err := db.Save(&transaction).Error; err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *gormTransactionRepo) CancelStaleDrafts(ctx context.Context, createdBefore time.Time) (int64, error) {
	span, ctx := apm.StartSpan(ctx, "CancelStaleDrafts", "repository")
	defer span.End()

	result := r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).
		Where("state = ? AND created_at < ?", model.StateDraft, createdBefore).
		Updates(map[string]interface{}{
			"state":         model.StateCancel,
			"state_message": "Checkout abandoned",
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cancel stale drafts: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DailySummary groups transactions created in [from, to) by Bogota calendar
// day, state and currency. An empty state matches every state.
func (r *gormTransactionRepo) DailySummary(ctx context.Context, from, to time.Time, state string) ([]model.TransactionDailySummary, error) {
	span, ctx := apm.StartSpan(ctx, "TransactionDailySummary", "repository")
	defer span.End()

	query := r.db.WithContext(ctx).Model(&model.PaymentTransaction{}).Select(`
		TO_CHAR(DATE_TRUNC('day', created_at AT TIME ZONE 'America/Bogota'), 'YYYY-MM-DD') AS date,
		state,
		currency,
		COUNT(*) AS total,
		SUM(amount) AS amount`).
		Where("created_at >= ? AND created_at < ?", from, to)
	if state != "" {
		query = query.Where("state = ?", state)
	}

	summaries := []model.TransactionDailySummary{}
	if err := query.Group("date, state, currency").Order("date DESC, state, currency").Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize transactions: %w", err)
	}
	return summaries, nil
}
