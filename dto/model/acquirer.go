package model

import (
	"time"
)

type AcquirerState string

const (
	AcquirerEnabled  AcquirerState = "enabled"
	AcquirerTest     AcquirerState = "test"
	AcquirerDisabled AcquirerState = "disabled"
)

// Acquirer holds the ePayco merchant credentials for one configured acquirer.
type Acquirer struct {
	ID               string        `gorm:"size:50;primaryKey" json:"id"`
	Name             string        `gorm:"size:255;not null" json:"name"`
	Provider         string        `gorm:"size:50;not null;index" json:"provider"`
	State            AcquirerState `gorm:"size:20;not null" json:"state"`
	EpaycoMerchantID string        `gorm:"size:50;not null" json:"epayco_merchant_id"`
	EpaycoPublicKey  string        `gorm:"size:255;not null" json:"epayco_public_key"`
	EpaycoPKey       string        `gorm:"size:255;not null" json:"-"`
	UpdatedAt        time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedAt        time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// IsTestMode reports whether checkouts run against the ePayco sandbox.
// Anything other than enabled is test mode.
func (a *Acquirer) IsTestMode() bool {
	return a.State != AcquirerEnabled
}

type InputAcquirerRequest struct {
	Name             *string `json:"name" validate:"omitempty,max=255"`
	State            *string `json:"state" validate:"omitempty,oneof=enabled test disabled"`
	EpaycoMerchantID *string `json:"epayco_merchant_id" validate:"omitempty,numeric"`
	EpaycoPublicKey  *string `json:"epayco_public_key" validate:"omitempty,max=255"`
	EpaycoPKey       *string `json:"epayco_p_key" validate:"omitempty,max=255"`
}
