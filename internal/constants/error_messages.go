package constants

const MessageErrorFormat = "The '%s' format is invalid"

const (
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeInvalidRequestBody  = "INVALID_REQUEST_BODY"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeAccountNotFound     = "ACCOUNT_NOT_FOUND"
	ErrCodeAccountExisted      = "ACCOUNT_ALREADY_EXISTS"
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrCodeGatewayRejected     = "GATEWAY_REJECTED"
	ErrCodeGatewayUnavailable  = "GATEWAY_UNAVAILABLE"
	ErrCodeOperationFailed     = "OPERATION_FAILED"
)

const (
	ErrMsgValidationFailed    = "request validation failed"
	ErrMsgInvalidRequestBody  = "request body could not be parsed"
	ErrMsgUnauthorized        = "missing or invalid credentials"
	ErrMsgAccountNotFound     = "account not found"
	ErrMsgAccountExisted      = "account already exists"
	ErrMsgInsufficientBalance = "insufficient balance"
	ErrMsgGatewayRejected     = "payout was rejected by the provider"
	ErrMsgGatewayUnavailable  = "payout provider unavailable, withdrawal is still processing"
	ErrMsgOperationFailed     = "operation failed"
)

var errorMessages = map[string]string{
	ErrCodeValidationFailed:    ErrMsgValidationFailed,
	ErrCodeInvalidRequestBody:  ErrMsgInvalidRequestBody,
	ErrCodeUnauthorized:        ErrMsgUnauthorized,
	ErrCodeAccountNotFound:     ErrMsgAccountNotFound,
	ErrCodeAccountExisted:      ErrMsgAccountExisted,
	ErrCodeInsufficientBalance: ErrMsgInsufficientBalance,
	ErrCodeGatewayRejected:     ErrMsgGatewayRejected,
	ErrCodeGatewayUnavailable:  ErrMsgGatewayUnavailable,
	ErrCodeOperationFailed:     ErrMsgOperationFailed,
}

func GetErrorMessage(code string) string {
	msg, exists := errorMessages[code]
	if !exists {
		return ""
	}
	return msg
}
