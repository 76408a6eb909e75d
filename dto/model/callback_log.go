package model

import "time"

// CallbackLog is the audit record of one confirmation received from ePayco.
type CallbackLog struct {
	Reference   string            `bson:"reference" json:"reference"`
	RefPayco    string            `bson:"ref_payco" json:"ref_payco"`
	State       string            `bson:"transaction_state" json:"transaction_state"`
	Payload     map[string]string `bson:"payload" json:"payload"`
	Outcome     string            `bson:"outcome" json:"outcome"`
	Error       string            `bson:"error,omitempty" json:"error,omitempty"`
	ResultState string            `bson:"result_state,omitempty" json:"result_state,omitempty"`
	ReceivedAt  time.Time         `bson:"received_at" json:"received_at"`
}
