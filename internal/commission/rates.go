package commission

import "github.com/shopspring/decimal"

// MaxDepth is how far up the referral tree a sale pays out.
const MaxDepth = 3

// Rate is the payout for one depth of the referral chain. Percentage is what
// gets stored and shown; Multiplier is what the sale amount is multiplied by.
type Rate struct {
	Percentage decimal.Decimal
	Multiplier decimal.Decimal
}

// RateTable maps chain depth (1-based) to its rate. The zero value has no rates.
type RateTable struct {
	rates map[int]Rate
}

// NewRateTable builds a table from percentages keyed by depth. Multipliers are
// derived as percentage / 100 so the two can never disagree.
func NewRateTable(percentages map[int]decimal.Decimal) RateTable {
	hundred := decimal.NewFromInt(100)
	rates := make(map[int]Rate, len(percentages))
	for depth, pct := range percentages {
		rates[depth] = Rate{Percentage: pct, Multiplier: pct.Div(hundred)}
	}
	return RateTable{rates: rates}
}

// DefaultRates is the plan's tier table: 10% to the seller, 5% to the manager
// above, 2.5% to the director above that.
func DefaultRates() RateTable {
	return NewRateTable(map[int]decimal.Decimal{
		1: decimal.RequireFromString("10.0"),
		2: decimal.RequireFromString("5.0"),
		3: decimal.RequireFromString("2.5"),
	})
}

// RateFor returns the rate for depth. ok is false when the depth pays nothing.
func (t RateTable) RateFor(depth int) (Rate, bool) {
	r, ok := t.rates[depth]
	return r, ok
}

// Depths returns the number of consecutive depths starting at 1 that have a rate.
func (t RateTable) Depths() int {
	n := 0
	for {
		if _, ok := t.rates[n+1]; !ok {
			return n
		}
		n++
	}
}
