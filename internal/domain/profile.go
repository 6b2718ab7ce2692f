package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfileType distinguishes the two sides of a contract.
type ProfileType string

const (
	ProfileTypeClient     ProfileType = "client"
	ProfileTypeContractor ProfileType = "contractor"
)

// Profile is a marketplace account holding a cash balance.
type Profile struct {
	ID         int64
	FirstName  string
	LastName   string
	Profession string
	Balance    decimal.Decimal
	Type       ProfileType
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName joins first and last name.
func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// IsClient reports whether the profile may fund jobs.
func (p Profile) IsClient() bool {
	return p.Type == ProfileTypeClient
}
