package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contract-ledger/internal/api/dto"
	"github.com/spec-kit/contract-ledger/internal/service"
)

// JobsHandler serves job listing and payment.
type JobsHandler struct {
	service *service.JobService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobService *service.JobService) *JobsHandler {
	return &JobsHandler{service: jobService}
}

// ListUnpaid GET /jobs/unpaid.
func (h *JobsHandler) ListUnpaid(c *fiber.Ctx) error {
	profile, err := requester(c)
	if err != nil {
		return err
	}
	jobs, err := h.service.ListUnpaidJobs(c.UserContext(), profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewJobList(jobs))
}

// Pay POST /jobs/:job_id/pay.
func (h *JobsHandler) Pay(c *fiber.Ctx) error {
	profile, err := requester(c)
	if err != nil {
		return err
	}
	jobID, err := idParam(c, "job_id")
	if err != nil {
		return err
	}
	receipt, err := h.service.PayJob(c.UserContext(), jobID, profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPayJobResponse(receipt))
}
