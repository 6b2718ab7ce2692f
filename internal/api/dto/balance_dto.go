package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/contract-ledger/internal/domain"
)

// DepositSuccessful is the confirmation message of a deposit.
const DepositSuccessful = "Deposit successful"

// DepositRequest payload. Amount accepts a JSON number or a numeric string.
type DepositRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// DepositResponse confirms a deposit.
type DepositResponse struct {
	Message  string      `json:"message"`
	ClientID int64       `json:"clientId"`
	Amount   json.Number `json:"amount"`
	Balance  json.Number `json:"balance"`
}

// NewDepositResponse maps a deposit receipt.
func NewDepositResponse(r *domain.DepositReceipt) DepositResponse {
	return DepositResponse{
		Message:  DepositSuccessful,
		ClientID: r.ClientID,
		Amount:   Money(r.Amount),
		Balance:  Money(r.Balance),
	}
}
