package model_test

import (
	"testing"

	"payment-epayco/dto/model"

	"github.com/stretchr/testify/assert"
)

func TestSetDone_Idempotent(t *testing.T) {
	tx := &model.PaymentTransaction{State: model.StateDraft}

	assert.True(t, tx.SetDone())
	assert.False(t, tx.SetDone())
	assert.Equal(t, model.StateDone, tx.State)
}

func TestSetPending_OnlyFromDraft(t *testing.T) {
	tx := &model.PaymentTransaction{State: model.StateDraft}
	assert.True(t, tx.SetPending())
	assert.False(t, tx.SetPending())
	assert.Equal(t, model.StatePending, tx.State)

	done := &model.PaymentTransaction{State: model.StateDone}
	assert.False(t, done.SetPending())
	assert.Equal(t, model.StateDone, done.State)
}

func TestSetCancel_DoesNotLeaveTerminalState(t *testing.T) {
	tests := []struct {
		name    string
		from    model.TransactionState
		changed bool
		want    model.TransactionState
	}{
		{"draft", model.StateDraft, true, model.StateCancel},
		{"pending", model.StatePending, true, model.StateCancel},
		{"done", model.StateDone, false, model.StateDone},
		{"cancel", model.StateCancel, false, model.StateCancel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &model.PaymentTransaction{State: tt.from}
			assert.Equal(t, tt.changed, tx.SetCancel())
			assert.Equal(t, tt.want, tx.State)
		})
	}
}

func TestPendingToDone(t *testing.T) {
	tx := &model.PaymentTransaction{State: model.StatePending}
	assert.True(t, tx.SetDone())
	assert.True(t, tx.IsTerminal())
}

func TestAcquirer_IsTestMode(t *testing.T) {
	assert.False(t, (&model.Acquirer{State: model.AcquirerEnabled}).IsTestMode())
	assert.True(t, (&model.Acquirer{State: model.AcquirerTest}).IsTestMode())
	assert.True(t, (&model.Acquirer{State: model.AcquirerDisabled}).IsTestMode())
}
