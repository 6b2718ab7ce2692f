package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/contract-ledger/internal/domain"
)

// PaymentSuccessful is the confirmation message of a job payment.
const PaymentSuccessful = "Payment successful"

// JobResponse is a job as listed to its parties.
type JobResponse struct {
	ID          int64       `json:"id"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Paid        bool        `json:"paid"`
	PaymentDate *time.Time  `json:"paymentDate"`
	ContractID  int64       `json:"ContractId"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// PayJobResponse confirms a payment.
type PayJobResponse struct {
	Message      string      `json:"message"`
	JobID        int64       `json:"jobId"`
	ContractID   int64       `json:"contractId"`
	ClientID     int64       `json:"clientId"`
	ContractorID int64       `json:"contractorId"`
	Amount       json.Number `json:"amount"`
	PaidAt       time.Time   `json:"paidAt"`
}

// NewJobList maps jobs, never returning nil.
func NewJobList(jobs []domain.Job) []JobResponse {
	items := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		items = append(items, JobResponse{
			ID:          j.ID,
			Description: j.Description,
			Price:       Money(j.Price),
			Paid:        j.Paid,
			PaymentDate: j.PaymentDate,
			ContractID:  j.ContractID,
			CreatedAt:   j.CreatedAt,
			UpdatedAt:   j.UpdatedAt,
		})
	}
	return items
}

// NewPayJobResponse maps a payment receipt.
func NewPayJobResponse(r *domain.PaymentReceipt) PayJobResponse {
	return PayJobResponse{
		Message:      PaymentSuccessful,
		JobID:        r.JobID,
		ContractID:   r.ContractID,
		ClientID:     r.ClientID,
		ContractorID: r.ContractorID,
		Amount:       Money(r.Amount),
		PaidAt:       r.PaidAt,
	}
}
