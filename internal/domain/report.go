package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange bounds payment dates for reports. Nil bounds are open.
// Start is inclusive. End is inclusive unless EndExclusive is set.
type DateRange struct {
	Start        *time.Time
	End          *time.Time
	EndExclusive bool
}

// Contains reports whether t falls within the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil {
		if r.EndExclusive && !t.Before(*r.End) {
			return false
		}
		if t.After(*r.End) {
			return false
		}
	}
	return true
}

// ProfessionEarnings is the total earned by contractors of one profession.
type ProfessionEarnings struct {
	Profession  string
	TotalEarned decimal.Decimal
}

// ClientPayments is the total paid by a single client.
type ClientPayments struct {
	ClientID int64
	FullName string
	Paid     decimal.Decimal
}
