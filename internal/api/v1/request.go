package v1

type InitiateWithdrawalRequest struct {
	Amount      int64  `json:"amount" validate:"required,min=1"`
	Method      string `json:"method" validate:"required,payout_rail"`
	PhoneNumber string `json:"destinationPhoneNumber" validate:"required,subscriber"`
}
