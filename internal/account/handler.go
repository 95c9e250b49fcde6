package account

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Handler exposes account HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type profileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type accountResponse struct {
	ID        string          `json:"id"`
	FullName  string          `json:"full_name"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Balance   decimal.Decimal `json:"last_balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Create registers a new account.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	acc, err := h.service.Create(c.UserContext(), Profile{FullName: req.FullName, Email: req.Email, Phone: req.Phone})
	if err != nil {
		return statusError(err)
	}
	return c.Status(http.StatusCreated).JSON(toResponse(acc))
}

// Get returns a single account.
func (h *Handler) Get(c *fiber.Ctx) error {
	acc, err := h.service.Get(c.UserContext(), c.Params("accountId"))
	if err != nil {
		return statusError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(acc))
}

// Edit updates the identity fields of an account.
func (h *Handler) Edit(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	acc, err := h.service.Edit(c.UserContext(), c.Params("accountId"), Profile{FullName: req.FullName, Email: req.Email, Phone: req.Phone})
	if err != nil {
		return statusError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(acc))
}

// Delete removes an account together with its transactions.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("accountId")); err != nil {
		return statusError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "deleted"})
}

func toResponse(acc Account) accountResponse {
	return accountResponse{
		ID:        acc.ID,
		FullName:  acc.FullName,
		Email:     acc.Email,
		Phone:     acc.Phone,
		Balance:   acc.Balance,
		CreatedAt: acc.CreatedAt,
		UpdatedAt: acc.UpdatedAt,
	}
}

func statusError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "account not found")
	case errors.Is(err, ErrDuplicateIdentity):
		return fiber.NewError(http.StatusConflict, "email or phone number already in use")
	case errors.Is(err, ErrInvalidProfile):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
