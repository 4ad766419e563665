package handlers

import (
	"strconv"

	"habitstake/internal/models"
	"habitstake/internal/services/escrow"
	"habitstake/internal/utils"
	"habitstake/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// EscrowHandler exposes the bet lifecycle and the escrow config over HTTP.
type EscrowHandler struct {
	escrowService escrow.Service
}

func NewEscrowHandler(escrowService escrow.Service) *EscrowHandler {
	return &EscrowHandler{
		escrowService: escrowService,
	}
}

// InitializeEscrow creates the config singleton. Admin only.
func (h *EscrowHandler) InitializeEscrow(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input struct {
		Treasury string `json:"treasury"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.Treasury == "" {
		return utils.BadRequest(c, "Treasury address is required")
	}

	cfg, err := h.escrowService.Initialize(c.Context(), claims.UserID, input.Treasury)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{
		"config": cfg,
	})
}

// UpdateEscrowConfig applies a partial update to the authority record.
func (h *EscrowHandler) UpdateEscrowConfig(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var update escrow.ConfigUpdate
	if err := c.BodyParser(&update); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if update.NewAdminID == nil && update.NewTreasury == nil {
		return utils.BadRequest(c, "Nothing to update")
	}

	cfg, err := h.escrowService.UpdateConfig(c.Context(), claims.UserID, update)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"config": cfg,
	})
}

// GetEscrowConfig returns the config singleton.
func (h *EscrowHandler) GetEscrowConfig(c *fiber.Ctx) error {
	cfg, err := h.escrowService.GetConfig(c.Context())
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"config": cfg,
	})
}

// CreateBet locks part of the caller's balance into a new bet.
func (h *EscrowHandler) CreateBet(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input escrow.CreateBetInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	// A client that doesn't track its own bet ids gets a fresh one.
	if input.BetID == "" {
		betID, err := utils.GenerateBetID()
		if err != nil {
			return utils.InternalError(c, "Failed to generate bet id")
		}
		input.BetID = betID
	}

	v := validation.New()
	v.CreateBet(&input)
	if !v.Valid() {
		return utils.Respond(c, fiber.StatusBadRequest, fiber.Map{
			"error":  "Validation failed",
			"fields": v.Errors,
		})
	}

	bet, err := h.escrowService.CreateBet(c.Context(), claims.UserID, input)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Respond(c, fiber.StatusCreated, fiber.Map{
		"bet": bet,
	})
}

// GetBet returns a single bet by its address.
func (h *EscrowHandler) GetBet(c *fiber.Ctx) error {
	address := c.Params("address")

	bet, err := h.escrowService.GetBet(c.Context(), address)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"bet": bet,
	})
}

// ListBets returns the caller's active bets, newest first.
func (h *EscrowHandler) ListBets(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	bets, err := h.escrowService.ListBets(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"bets":   bets,
		"limit":  limit,
		"offset": offset,
	})
}

// CompleteBet resolves a bet as won and returns the escrow to the user.
// Admin only.
func (h *EscrowHandler) CompleteBet(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input struct {
		UserAddress string `json:"user_address"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.UserAddress == "" {
		return utils.BadRequest(c, "User address is required")
	}

	resolution, err := h.escrowService.CompleteBet(c.Context(), claims.UserID, c.Params("address"), input.UserAddress)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"resolution": resolution,
	})
}

// ForfeitBet resolves a bet as lost and moves the escrow to the treasury.
// Admin only.
func (h *EscrowHandler) ForfeitBet(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "Invalid claims")
	}

	var input struct {
		TreasuryAddress string `json:"treasury_address"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.TreasuryAddress == "" {
		return utils.BadRequest(c, "Treasury address is required")
	}

	resolution, err := h.escrowService.ForfeitBet(c.Context(), claims.UserID, c.Params("address"), input.TreasuryAddress)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"resolution": resolution,
	})
}
