package handler

import (
	"payment-epayco/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SchedulerStatus reports the background jobs and their next run.
type SchedulerStatus interface {
	GetStatus() map[string]interface{}
}

// Hello handle api status
func Hello(c *fiber.Ctx) error {
	return c.SendString("Hello, from ePayco payment API!")
}

func GetSchedulerStatus(scheduler SchedulerStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return response.ResponseSuccess(c, fiber.StatusOK, scheduler.GetStatus())
	}
}
