package middleware

import (
	"strings"

	"github.com/dikabo/taxi-money-driver/internal/api/contract"
	"github.com/dikabo/taxi-money-driver/internal/constants"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const driverIDKey = "driverID"

// Auth verifies the session token minted by the external identity provider
// and exposes the verified driver id to handlers. Token issuance, OTP
// delivery and session lifecycle all live with the provider; this side only
// checks the signature and reads the subject.
func Auth(secret string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return unauthorized(c)
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.Warn("Rejected session token", zap.Error(err))
			return unauthorized(c)
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			return unauthorized(c)
		}

		c.Locals(driverIDKey, subject)
		return c.Next()
	}
}

// DriverID returns the verified driver id placed by Auth.
func DriverID(c *fiber.Ctx) string {
	id, _ := c.Locals(driverIDKey).(string)
	return id
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(contract.Response{
		Code:    constants.ErrCodeUnauthorized,
		Message: constants.GetErrorMessage(constants.ErrCodeUnauthorized),
	})
}
