package ledger

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/dompet-pay/dompet_pay/internal/account"
)

// Handler exposes transaction endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a transaction HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type applyRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type transactionResponse struct {
	ID          string          `json:"id"`
	Category    Category        `json:"transaction_category"`
	Amount      decimal.Decimal `json:"amount"`
	LastBalance decimal.Decimal `json:"last_balance"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TopUp credits an account balance.
func (h *Handler) TopUp(c *fiber.Ctx) error {
	return h.apply(c, CategoryTopUp)
}

// Refund returns money to an account balance.
func (h *Handler) Refund(c *fiber.Ctx) error {
	return h.apply(c, CategoryRefund)
}

// BillPayment debits an account balance, guarded by the non-negative invariant.
func (h *Handler) BillPayment(c *fiber.Ctx) error {
	return h.apply(c, CategoryBillPayment)
}

func (h *Handler) apply(c *fiber.Ctx, category Category) error {
	var req applyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Apply(c.UserContext(), c.Params("accountId"), category, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "account not found")
		case errors.Is(err, ErrInsufficientBalance):
			return fiber.NewError(http.StatusUnprocessableEntity, "insufficient balance")
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidCategory):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(transactionResponse{
		ID:          res.TransactionID,
		Category:    res.Category,
		Amount:      res.Amount,
		LastBalance: res.Balance,
		CreatedAt:   res.CreatedAt,
		UpdatedAt:   res.UpdatedAt,
	})
}
