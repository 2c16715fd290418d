package v1

type InitiateWithdrawalResponse struct {
	TransactionID  string `json:"transactionId"`
	ProviderTxID   string `json:"providerTransactionId,omitempty"`
	Status         string `json:"status"`
	CurrentBalance int64  `json:"currentBalance"`
}

type WebhookAckResponse struct {
	Code string `json:"code"`
}
