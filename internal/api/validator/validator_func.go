package validator

import (
	"regexp"

	"github.com/dikabo/taxi-money-driver/internal/model"
	"github.com/go-playground/validator/v10"
)

// Local subscriber number without the country prefix, as the payout rails
// expect it.
var subscriberPattern = regexp.MustCompile(`^6[2356789]\d{7}$`)

const (
	SubscriberTag = "subscriber"
	PayoutRailTag = "payout_rail"
)

var valid = map[string]func(fl validator.FieldLevel) bool{
	SubscriberTag: ValidateSubscriber,
	PayoutRailTag: ValidatePayoutRail,
}

func ValidateSubscriber(fl validator.FieldLevel) bool {
	return subscriberPattern.MatchString(fl.Field().String())
}

func ValidatePayoutRail(fl validator.FieldLevel) bool {
	return model.SupportedMethod(fl.Field().String())
}
