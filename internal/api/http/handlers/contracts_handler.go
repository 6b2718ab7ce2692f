package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contract-ledger/internal/api/dto"
	"github.com/spec-kit/contract-ledger/internal/service"
)

// ContractsHandler serves contract reads for the requesting profile.
type ContractsHandler struct {
	service *service.ContractService
}

// NewContractsHandler constructs handler.
func NewContractsHandler(contractService *service.ContractService) *ContractsHandler {
	return &ContractsHandler{service: contractService}
}

// GetContract GET /contracts/:id.
func (h *ContractsHandler) GetContract(c *fiber.Ctx) error {
	profile, err := requester(c)
	if err != nil {
		return err
	}
	contractID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	contract, err := h.service.GetContract(c.UserContext(), contractID, profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewContractResponse(contract))
}

// ListContracts GET /contracts.
func (h *ContractsHandler) ListContracts(c *fiber.Ctx) error {
	profile, err := requester(c)
	if err != nil {
		return err
	}
	contracts, err := h.service.ListContracts(c.UserContext(), profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewContractList(contracts))
}
