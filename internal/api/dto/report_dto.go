package dto

import (
	"encoding/json"

	"github.com/spec-kit/contract-ledger/internal/domain"
)

// BestProfessionResponse is the top-earning profession.
type BestProfessionResponse struct {
	Profession  string      `json:"profession"`
	TotalEarned json.Number `json:"total_earned"`
}

// BestClientResponse is one entry of the best-clients report.
type BestClientResponse struct {
	ID       int64       `json:"id"`
	FullName string      `json:"fullName"`
	Paid     json.Number `json:"paid"`
}

// NewBestProfessionResponse maps profession earnings.
func NewBestProfessionResponse(e *domain.ProfessionEarnings) BestProfessionResponse {
	return BestProfessionResponse{Profession: e.Profession, TotalEarned: Money(e.TotalEarned)}
}

// NewBestClientsResponse maps client totals, never returning nil.
func NewBestClientsResponse(clients []domain.ClientPayments) []BestClientResponse {
	items := make([]BestClientResponse, 0, len(clients))
	for _, c := range clients {
		items = append(items, BestClientResponse{ID: c.ClientID, FullName: c.FullName, Paid: Money(c.Paid)})
	}
	return items
}
