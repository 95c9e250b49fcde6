package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dompet-pay/dompet_pay/internal/account"
)

// RegisterAccountRoutes wires account lifecycle endpoints.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler) {
	r.Post("/accounts", h.Create)
	r.Get("/accounts/:accountId", h.Get)
	r.Put("/accounts/:accountId", h.Edit)
	r.Delete("/accounts/:accountId", h.Delete)
}
