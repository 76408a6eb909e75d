package router

import (
	"payment-epayco/handler"
	"payment-epayco/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.elastic.co/apm/module/apmfiber"
)

type Handlers struct {
	Epayco       *handler.EpaycoHandler
	Transactions *handler.TransactionHandler
	Acquirers    *handler.AcquirerHandler
	Auth         *handler.AuthHandler
	Summary      *handler.SummaryHandler
	Scheduler    handler.SchedulerStatus
	JWTSecret    string
}

// SetupRoutes setup router api
func SetupRoutes(app *fiber.App, h Handlers) {
	app.Use(middleware.TrackMetrics())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	payment := app.Group("/payment/epayco", logger.New())
	payment.Use(apmfiber.Middleware())
	payment.Get("/checkout/", h.Epayco.CheckoutPage)
	payment.Post("/checkout/", h.Epayco.CheckoutPage)
	payment.Get("/confirmation/", h.Epayco.Confirmation)
	payment.Post("/confirmation/", h.Epayco.Confirmation)
	payment.Get("/response/", h.Epayco.ResponsePage)

	api := app.Group("/api", logger.New())
	api.Use(apmfiber.Middleware())
	api.Get("/", handler.Hello)
	api.Post("/checkout", h.Transactions.CreateCheckout)
	api.Get("/transaction/:reference", h.Transactions.GetTransactionStatus)
	api.Post("/user/login", h.Auth.Login)

	admin := api.Group("/admin", middleware.Protected(h.JWTSecret), middleware.AdminOnly(false))
	admin.Get("/acquirers", middleware.RBACMiddleware("read"), h.Acquirers.GetAllAcquirers)
	admin.Post("/acquirers", middleware.RBACMiddleware("create"), h.Acquirers.AddAcquirer)
	admin.Get("/acquirers/:id", middleware.RBACMiddleware("read"), h.Acquirers.GetAcquirer)
	admin.Put("/acquirers/:id", middleware.RBACMiddleware("update"), h.Acquirers.UpdateAcquirer)
	admin.Delete("/acquirers/:id", middleware.RBACMiddleware("delete"), h.Acquirers.DisableAcquirer)
	admin.Get("/transactions/:reference/callbacks", middleware.RBACMiddleware("read"), h.Acquirers.GetCallbackLogs)
	admin.Get("/summary", middleware.RBACMiddleware("read"), h.Summary.GetTransactionSummary)
	admin.Get("/scheduler", middleware.RBACMiddleware("read"), handler.GetSchedulerStatus(h.Scheduler))
	admin.Post("/users", middleware.AdminOnly(true), h.Auth.CreateUser)
}
