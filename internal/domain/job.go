package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Job is a unit of billable work under a contract.
type Job struct {
	ID          int64
	Description string
	Price       decimal.Decimal
	Paid        bool
	PaymentDate *time.Time
	ContractID  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JobPayment is a job joined with its contract and both parties, as loaded for payment.
type JobPayment struct {
	Job        Job
	Contract   Contract
	Client     Profile
	Contractor Profile
}

// PaymentReceipt confirms a completed transfer.
type PaymentReceipt struct {
	JobID        int64
	ContractID   int64
	ClientID     int64
	ContractorID int64
	Amount       decimal.Decimal
	PaidAt       time.Time
}

// DepositReceipt confirms a balance top-up.
type DepositReceipt struct {
	ClientID    int64
	RequesterID int64
	Amount      decimal.Decimal
	Balance     decimal.Decimal
}
