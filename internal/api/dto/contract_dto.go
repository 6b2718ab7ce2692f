package dto

import (
	"time"

	"github.com/spec-kit/contract-ledger/internal/domain"
)

// ContractResponse keeps the field casing existing API clients read.
type ContractResponse struct {
	ID           int64                 `json:"id"`
	Terms        string                `json:"terms"`
	Status       domain.ContractStatus `json:"status"`
	ClientID     int64                 `json:"ClientId"`
	ContractorID int64                 `json:"ContractorId"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// NewContractResponse maps a domain contract.
func NewContractResponse(c *domain.Contract) ContractResponse {
	return ContractResponse{
		ID:           c.ID,
		Terms:        c.Terms,
		Status:       c.Status,
		ClientID:     c.ClientID,
		ContractorID: c.ContractorID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// NewContractList maps contracts, never returning nil.
func NewContractList(contracts []domain.Contract) []ContractResponse {
	items := make([]ContractResponse, 0, len(contracts))
	for i := range contracts {
		items = append(items, NewContractResponse(&contracts[i]))
	}
	return items
}
