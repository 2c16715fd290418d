package api

import (
	"github.com/dikabo/taxi-money-driver/internal/api/middleware"
	v1 "github.com/dikabo/taxi-money-driver/internal/api/v1"
	"github.com/dikabo/taxi-money-driver/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const prefixV1 = "/api/v1"

func SetupRoutes(app *fiber.App, handler *v1.Handler, cfg *config.Config, logger *zap.Logger) {
	app.Get("/ping", handler.Pong)
	app.Get("/health", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// The provider authenticates its callbacks by knowing the reference,
	// not by a driver session.
	app.Post("/webhooks/disbursement", handler.DisbursementWebhook)

	auth := middleware.Auth(cfg.Auth.Secret, logger)
	app.Post(prefixV1+"/withdrawals", auth, handler.InitiateWithdrawal)
}
