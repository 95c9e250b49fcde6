package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dompet-pay/dompet_pay/internal/ledger"
)

// RegisterTransactionRoutes wires balance-mutating endpoints.
func RegisterTransactionRoutes(r fiber.Router, h *ledger.Handler, rateLimiter fiber.Handler) {
	txns := r.Group("/transactions", rateLimiter)
	txns.Post("/topup/:accountId", h.TopUp)
	txns.Post("/refund/:accountId", h.Refund)
	txns.Post("/bill/:accountId", h.BillPayment)
}
