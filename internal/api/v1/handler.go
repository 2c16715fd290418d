package v1

import (
	"strings"

	"github.com/dikabo/taxi-money-driver/internal/api/contract"
	"github.com/dikabo/taxi-money-driver/internal/api/middleware"
	"github.com/dikabo/taxi-money-driver/internal/api/validator"
	"github.com/dikabo/taxi-money-driver/internal/constants"
	"github.com/dikabo/taxi-money-driver/internal/metrics"
	"github.com/dikabo/taxi-money-driver/internal/service"
	"github.com/dikabo/taxi-money-driver/pkg/momo"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	logger     *zap.Logger
	withdrawal service.WithdrawalService
	reconcile  service.ReconcileService
	XValidator validator.IXValidator
	metrics    *metrics.Metrics
}

func NewHandler(logger *zap.Logger, withdrawal service.WithdrawalService, reconcile service.ReconcileService,
	XValidator validator.IXValidator, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:     logger,
		withdrawal: withdrawal,
		reconcile:  reconcile,
		XValidator: XValidator,
		metrics:    metrics,
	}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) InitiateWithdrawal(c *fiber.Ctx) error {
	var request InitiateWithdrawalRequest

	responseError := h.XValidator.Validator(&request, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Warn("Withdrawal request failed validation", zap.Any("request", request))
		return c.JSON(responseError)
	}

	driverID := middleware.DriverID(c)

	cmd := service.InitiateWithdrawalCommand{
		AccountID:   driverID,
		Amount:      request.Amount,
		Method:      request.Method,
		PhoneNumber: request.PhoneNumber,
	}

	result, err := h.withdrawal.Initiate(c.UserContext(), cmd)
	if err != nil {
		h.logger.Error("Withdrawal initiation failed",
			zap.String("accountID", driverID),
			zap.Int64("amount", request.Amount),
			zap.Error(err))
		return err
	}

	h.logger.Info("Withdrawal initiated",
		zap.String("accountID", driverID),
		zap.String("transactionID", result.TransactionID),
		zap.Int64("amount", request.Amount))

	return c.JSON(contract.Response{
		Code: "success",
		Result: InitiateWithdrawalResponse{
			TransactionID:  result.TransactionID,
			ProviderTxID:   result.ProviderTxID,
			Status:         strings.ToLower(string(result.Status)),
			CurrentBalance: result.CurrentBalance,
		},
	})
}

// DisbursementWebhook receives delivery-status callbacks from the provider.
// Once the payload is intelligible the response is always 200, whatever the
// business outcome: the provider's retry policy only backs off on success,
// and none of the non-retryable conditions here get better by retrying.
func (h *Handler) DisbursementWebhook(c *fiber.Ctx) error {
	notification, err := momo.DecodeNotification(c.Body())
	if err != nil {
		h.logger.Warn("Unparseable disbursement notification",
			zap.Error(err),
			zap.String("body", string(c.Body())))
		h.metrics.RecordWebhook("malformed")

		return c.Status(fiber.StatusBadRequest).JSON(contract.Response{
			Code:    constants.ErrCodeInvalidRequestBody,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidRequestBody),
		})
	}

	if err := h.reconcile.Apply(c.UserContext(), notification); err != nil {
		// Database failures are the one retryable condition; surfacing a
		// 5xx lets the provider redeliver later.
		return err
	}

	return c.JSON(WebhookAckResponse{Code: "received"})
}
