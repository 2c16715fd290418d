package model

// Supported payout rails.
const (
	MethodMTNMoMo     = "MTN_MOMO"
	MethodOrangeMoney = "ORANGE_MONEY"
)

func SupportedMethod(method string) bool {
	switch method {
	case MethodMTNMoMo, MethodOrangeMoney:
		return true
	default:
		return false
	}
}
