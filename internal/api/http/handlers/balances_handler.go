package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contract-ledger/internal/api/dto"
	"github.com/spec-kit/contract-ledger/internal/service"
	apperrors "github.com/spec-kit/contract-ledger/pkg/util/errorutil"
)

// BalancesHandler serves client deposits.
type BalancesHandler struct {
	service *service.BalanceService
}

// NewBalancesHandler constructs handler.
func NewBalancesHandler(balanceService *service.BalanceService) *BalancesHandler {
	return &BalancesHandler{service: balanceService}
}

// Deposit POST /balances/deposit/:userId.
func (h *BalancesHandler) Deposit(c *fiber.Ctx) error {
	profile, err := requester(c)
	if err != nil {
		return err
	}
	clientID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	var req dto.DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Amount == nil {
		return apperrors.NewValidationError("amount required", nil)
	}
	receipt, err := h.service.Deposit(c.UserContext(), *profile, clientID, *req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewDepositResponse(receipt))
}
