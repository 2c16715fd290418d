package momo

// DisburseRequest is the payout order sent to the mobile-money provider.
// PhoneNumber carries the subscriber number without the country prefix,
// which is the format the provider expects on both rails.
type DisburseRequest struct {
	Amount      int64  `json:"amount"`
	PhoneNumber string `json:"phone_number"`
	Method      string `json:"method"`
	Reference   string `json:"external_reference"`
	PayeeName   string `json:"payee_name"`
	Description string `json:"description"`
}
