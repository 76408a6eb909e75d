package http

import "time"

type TransactionStatus struct {
	Reference         string     `json:"reference"`
	State             string     `json:"state"`
	Message           string     `json:"message"`
	Amount            string     `json:"amount"`
	Currency          string     `json:"currency"`
	AcquirerReference string     `json:"acquirer_reference,omitempty"`
	Date              *time.Time `json:"date,omitempty"`
	CreatedDate       time.Time  `json:"created_date"`
}
