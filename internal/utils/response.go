package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/localnerve/bootmgr/internal/logger"
	"github.com/localnerve/bootmgr/internal/types"
)

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Error string `json:"error"`
}

// SuccessResponse sends a JSON body with status 200
func SuccessResponse(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// NoContentResponse sends an empty 204
func NoContentResponse(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// TextResponse sends a text/plain body with status 200
func TextResponse(c *fiber.Ctx, body string) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(fiber.StatusOK).SendString(body)
}

// ErrorResponse sends {"error": message}
func ErrorResponse(c *fiber.Ctx, message string, status int) error {
	return c.Status(status).JSON(ErrorResponseStruct{Error: message})
}

// NotFoundResponse sends a 404 error body
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound)
}

// ErrorHandler renders every error a handler returns. Typed errors keep
// their status and message, anything else is logged and reported as a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		if ce.Err != nil {
			logger.L().Debug("request failed",
				zap.String("type", ce.Type),
				zap.String("path", c.Path()),
				zap.Error(ce.Err))
		}
		return ErrorResponse(c, ce.Message, ce.Code)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return ErrorResponse(c, fe.Message, fe.Code)
	}

	logger.L().Error("unhandled error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Any("request_id", c.Locals("requestid")),
		zap.Error(err))
	return ErrorResponse(c, "Internal server error", fiber.StatusInternalServerError)
}
