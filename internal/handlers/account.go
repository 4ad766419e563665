package handlers

import (
	"errors"

	"habitstake/internal/models"
	"habitstake/internal/services/deposit"
	"habitstake/internal/services/escrow"
	"habitstake/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AccountHandler exposes the caller's ledger account and the top-up on-ramp.
type AccountHandler struct {
	escrowService  escrow.Service
	depositService deposit.Service
}

func NewAccountHandler(escrowService escrow.Service, depositService deposit.Service) *AccountHandler {
	return &AccountHandler{
		escrowService:  escrowService,
		depositService: depositService,
	}
}

// GetAccount returns the caller's ledger account.
func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	account, err := h.escrowService.GetUserAccount(c.Context(), claims.UserID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"account": account,
	})
}

// TopUpAccount credits the caller's account from a tokenized card.
func (h *AccountHandler) TopUpAccount(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input struct {
		Amount int64             `json:"amount"`
		Card   deposit.CardInput `json:"card"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	account, err := h.depositService.TopUp(c.Context(), claims.UserID, input.Card, input.Amount)
	if err != nil {
		if errors.Is(err, deposit.ErrTokenizationFailed) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"account": account,
	})
}
