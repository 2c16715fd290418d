package errors

import (
	"errors"

	"github.com/dikabo/taxi-money-driver/internal/constants"
	"github.com/dikabo/taxi-money-driver/internal/service"
	"github.com/gofiber/fiber/v2"
)

func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var serviceErr service.Error
		if errors.As(err, &serviceErr) {
			return handleServiceError(c, serviceErr)
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"code":    constants.ErrCodeOperationFailed,
			"message": "Could not process the request",
		})
	}
}

var statusMap = map[string]int{
	constants.ErrCodeValidationFailed:    fiber.StatusBadRequest,
	constants.ErrCodeAccountNotFound:     fiber.StatusNotFound,
	constants.ErrCodeAccountExisted:      fiber.StatusConflict,
	constants.ErrCodeInsufficientBalance: fiber.StatusConflict,
	constants.ErrCodeGatewayRejected:     fiber.StatusBadGateway,
	constants.ErrCodeGatewayUnavailable:  fiber.StatusInternalServerError,
	constants.ErrCodeOperationFailed:     fiber.StatusInternalServerError,
	service.ErrCodeDatabase:              fiber.StatusInternalServerError,
}

func handleServiceError(c *fiber.Ctx, err service.Error) error {
	status, ok := statusMap[err.Code]
	if !ok {
		status = fiber.StatusInternalServerError
	}

	body := fiber.Map{
		"code":    err.Code,
		"message": constants.GetErrorMessage(err.Code),
	}

	// Insufficient-funds rejections carry the figures the driver needs to
	// self-correct.
	var balanceErr service.BalanceError
	if errors.As(err.Cause, &balanceErr) {
		body["currentBalance"] = balanceErr.CurrentBalance
		body["required"] = balanceErr.Required
	}

	return c.Status(status).JSON(body)
}
