package service

import "github.com/dikabo/taxi-money-driver/internal/model"

type InitiateWithdrawalCommand struct {
	AccountID   string
	Amount      int64
	Method      string
	PhoneNumber string
}

type InitiateWithdrawalResult struct {
	TransactionID  string
	Reference      string
	ProviderTxID   string
	Status         model.TransactionStatus
	CurrentBalance int64
}

// SweepTransactionCommand rides the wallet.sweep queue from the publisher to
// the worker.
type SweepTransactionCommand struct {
	Reference string `json:"reference"`
	AccountID string `json:"account_id"`
}
