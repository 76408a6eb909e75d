package response

import (
	"errors"
	"strings"

	"payment-epayco/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

func Response(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func ResponseSuccess(c *fiber.Ctx, status int, data interface{}) error {

	if data != nil {
		return c.Status(status).JSON(fiber.Map{
			"success": true,
			"data":    data,
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"success": true,
	})
}

// ResponseError writes err with the status its kind maps to. Internal errors
// are not echoed to the caller, and neither is an expected value the error carries.
func ResponseError(c *fiber.Ctx, err error) error {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		return Response(c, fiber.StatusInternalServerError, "internal server error")
	}

	message := appErr.Message
	if appErr.Expected != "" && strings.Contains(message, appErr.Expected) {
		message = string(appErr.Kind)
	}

	body := fiber.Map{
		"success": false,
		"error":   message,
		"kind":    appErr.Kind,
	}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	return c.Status(appErr.Code).JSON(body)
}
