package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventJobPaid          EventType = "job_paid"
	EventBalanceDeposited EventType = "balance_deposited"
)

// Event represents a domain event emitted by services after their transaction commits.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// JobPaidPayload payload.
type JobPaidPayload struct {
	JobID        int64           `json:"job_id"`
	ContractID   int64           `json:"contract_id"`
	ClientID     int64           `json:"client_id"`
	ContractorID int64           `json:"contractor_id"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAt       time.Time       `json:"paid_at"`
}

// BalanceDepositedPayload payload.
type BalanceDepositedPayload struct {
	ClientID int64           `json:"client_id"`
	Amount   decimal.Decimal `json:"amount"`
	Balance  decimal.Decimal `json:"balance"`
}
