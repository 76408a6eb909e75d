package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-epayco/dto/model"
	"payment-epayco/pkg/apperror"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.elastic.co/apm"
	"gorm.io/gorm"
)

type AcquirerRepository interface {
	FindByID(ctx context.Context, id string) (*model.Acquirer, error)
	List(ctx context.Context) ([]model.Acquirer, error)
	Create(ctx context.Context, acquirer *model.Acquirer) error
	Update(ctx context.Context, id string, input *model.InputAcquirerRequest) (*model.Acquirer, error)
}

type gormAcquirerRepo struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewGormAcquirerRepo(db *gorm.DB) AcquirerRepository {
	return &gormAcquirerRepo{
		db:    db,
		cache: cache.New(30*time.Minute, 35*time.Minute),
	}
}

func acquirerCacheKey(id string) string {
	return fmt.Sprintf("acquirer:%s", id)
}

func (r *gormAcquirerRepo) FindByID(ctx context.Context, id string) (*model.Acquirer, error) {
	span, ctx := apm.StartSpan(ctx, "FindAcquirer", "repository")
	defer span.End()

	if cached, found := r.cache.Get(acquirerCacheKey(id)); found {
		acquirer := cached.(model.Acquirer)
		return &acquirer, nil
	}

	var acquirer model.Acquirer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&acquirer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.AcquirerNotFound(id)
		}
		return nil, fmt.Errorf("error fetching acquirer: %w", err)
	}

	r.cache.Set(acquirerCacheKey(id), acquirer, cache.DefaultExpiration)
	return &acquirer, nil
}

func (r *gormAcquirerRepo) List(ctx context.Context) ([]model.Acquirer, error) {
	var acquirers []model.Acquirer
	if err := r.db.WithContext(ctx).Order("created_at").Find(&acquirers).Error; err != nil {
		return nil, fmt.Errorf("unable to fetch acquirers: %w", err)
	}
	return acquirers, nil
}

func (r *gormAcquirerRepo) Create(ctx context.Context, acquirer *model.Acquirer) error {
	if acquirer.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate acquirer id: %w", err)
		}
		acquirer.ID = id.String()
	}
	if err := r.db.WithContext(ctx).Create(acquirer).Error; err != nil {
		return fmt.Errorf("unable to create acquirer: %w", err)
	}
	return nil
}

func (r *gormAcquirerRepo) Update(ctx context.Context, id string, input *model.InputAcquirerRequest) (*model.Acquirer, error) {
	var existing model.Acquirer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.AcquirerNotFound(id)
		}
		return nil, fmt.Errorf("error fetching acquirer: %w", err)
	}

	r.cache.Delete(acquirerCacheKey(id))

	updateData := map[string]interface{}{}
	if input.Name != nil {
		updateData["name"] = *input.Name
	}
	if input.State != nil {
		updateData["state"] = *input.State
	}
	if input.EpaycoMerchantID != nil {
		updateData["epayco_merchant_id"] = *input.EpaycoMerchantID
	}
	if input.EpaycoPublicKey != nil {
		updateData["epayco_public_key"] = *input.EpaycoPublicKey
	}
	if input.EpaycoPKey != nil {
		updateData["epayco_p_key"] = *input.EpaycoPKey
	}

	if len(updateData) > 0 {
		if err := r.db.WithContext(ctx).Model(&existing).Updates(updateData).Error; err != nil {
			return nil, fmt.Errorf("unable to update acquirer: %w", err)
		}
		if err := r.db.WithContext(ctx).Where("id = ?", id).First(&existing).Error; err != nil {
			return nil, fmt.Errorf("error reloading acquirer: %w", err)
		}
	}

	return &existing, nil
}
