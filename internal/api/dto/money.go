package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money renders a decimal as a bare JSON number without float rounding.
func Money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
