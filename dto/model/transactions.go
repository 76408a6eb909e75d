package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionState string

const (
	StateDraft   TransactionState = "draft"
	StatePending TransactionState = "pending"
	StateDone    TransactionState = "done"
	StateCancel  TransactionState = "cancel"
	StateError   TransactionState = "error"
)

type PaymentTransaction struct {
	ID                string           `gorm:"size:50;primaryKey" json:"id"`
	Reference         string           `gorm:"type:VARCHAR(255);not null;uniqueIndex" json:"reference"`
	AcquirerID        string           `gorm:"size:50;not null;index" json:"acquirer_id"`
	Amount            decimal.Decimal  `gorm:"type:NUMERIC(16,2);not null" json:"amount"`
	Currency          string           `gorm:"type:VARCHAR(10);not null" json:"currency"`
	PartnerName       string           `gorm:"type:VARCHAR(255)" json:"partner_name"`
	PartnerEmail      string           `gorm:"type:VARCHAR(255)" json:"partner_email"`
	PartnerPhone      string           `gorm:"type:VARCHAR(50)" json:"partner_phone"`
	PartnerCountry    string           `gorm:"type:VARCHAR(10)" json:"partner_country"`
	State             TransactionState `gorm:"type:VARCHAR(20);not null;index" json:"state"`
	StateMessage      string           `gorm:"type:TEXT" json:"state_message"`
	AcquirerReference string           `gorm:"type:VARCHAR(255)" json:"acquirer_reference"`
	Date              *time.Time       `json:"date"`
	NotificationURL   string           `gorm:"type:TEXT" json:"notification_url,omitempty"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// TransactionDailySummary is one row of the daily transaction report.
type TransactionDailySummary struct {
	Date     string          `json:"date"`
	State    string          `json:"state"`
	Currency string          `json:"currency"`
	Total    int64           `json:"total"`
	Amount   decimal.Decimal `json:"amount"`
}

// IsTerminal reports whether no further gateway feedback may move the transaction.
func (t *PaymentTransaction) IsTerminal() bool {
	return t.State == StateDone || t.State == StateCancel
}

// SetDone moves the transaction to done. Returns false when nothing changed.
func (t *PaymentTransaction) SetDone() bool {
	return t.transition(StateDone, StateDraft, StatePending, StateError)
}

// SetPending moves a draft transaction to pending.
func (t *PaymentTransaction) SetPending() bool {
	return t.transition(StatePending, StateDraft)
}

// SetCancel cancels a transaction that has not completed yet.
func (t *PaymentTransaction) SetCancel() bool {
	return t.transition(StateCancel, StateDraft, StatePending)
}

func (t *PaymentTransaction) transition(to TransactionState, from ...TransactionState) bool {
	for _, s := range from {
		if t.State == s {
			t.State = to
			return true
		}
	}
	return false
}
