package domain

import "time"

// ContractStatus enumerates contract lifecycle states.
type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

// Contract links one client profile to one contractor profile.
type Contract struct {
	ID           int64
	Terms        string
	Status       ContractStatus
	ClientID     int64
	ContractorID int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasParty reports whether the profile is the client or the contractor.
func (c Contract) HasParty(profileID int64) bool {
	return c.ClientID == profileID || c.ContractorID == profileID
}

// IsActive reports whether jobs under the contract are payable work in flight.
func (c Contract) IsActive() bool {
	return c.Status == ContractStatusInProgress
}
