package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contract-ledger/internal/api/dto"
	"github.com/spec-kit/contract-ledger/internal/service"
)

// AdminHandler serves the aggregate reports.
type AdminHandler struct {
	service *service.ReportService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(reportService *service.ReportService) *AdminHandler {
	return &AdminHandler{service: reportService}
}

// BestProfession GET /admin/best-profession?start=&end=.
func (h *AdminHandler) BestProfession(c *fiber.Ctx) error {
	period, err := parsePeriod(c)
	if err != nil {
		return err
	}
	earnings, err := h.service.BestProfession(c.UserContext(), period)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBestProfessionResponse(earnings))
}

// BestClients GET /admin/best-clients?start=&end=&limit=.
func (h *AdminHandler) BestClients(c *fiber.Ctx) error {
	period, err := parsePeriod(c)
	if err != nil {
		return err
	}
	limit, err := parseLimit(c)
	if err != nil {
		return err
	}
	clients, err := h.service.BestClients(c.UserContext(), period, limit)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBestClientsResponse(clients))
}
