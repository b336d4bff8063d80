// Package commission turns a seller's referral chain and a sale amount into
// the list of commission payouts owed for that sale.
package commission

import (
	"sort"

	"sales_dashboard/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Places is the currency precision commissions are rounded to.
const Places = 2

// Entry is one planned payout.
type Entry struct {
	BeneficiaryID   uuid.UUID
	BeneficiaryName string
	Amount          decimal.Decimal
	Percentage      decimal.Decimal
	Depth           int
}

// Engine computes commission plans. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	rates    RateTable
	maxDepth int
}

func NewEngine(rates RateTable) *Engine {
	return &Engine{rates: rates, maxDepth: MaxDepth}
}

// MaxDepth is the deepest chain position the engine will ever pay.
func (e *Engine) MaxDepth() int { return e.maxDepth }

// Compute returns one entry per chain node that has a rate, ordered by depth.
// Amounts are amount*multiplier rounded half away from zero to two places.
// Nodes deeper than MaxDepth or without a rate are skipped.
func (e *Engine) Compute(chain []domain.ChainNode, amount decimal.Decimal) []Entry {
	nodes := make([]domain.ChainNode, len(chain))
	copy(nodes, chain)
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Depth < nodes[j].Depth })

	entries := make([]Entry, 0, len(nodes))
	seen := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		if n.Depth < 1 || n.Depth > e.maxDepth || seen[n.Depth] {
			continue
		}
		rate, ok := e.rates.RateFor(n.Depth)
		if !ok {
			continue
		}
		seen[n.Depth] = true
		entries = append(entries, Entry{
			BeneficiaryID:   n.ID,
			BeneficiaryName: n.Name,
			Amount:          amount.Mul(rate.Multiplier).Round(Places),
			Percentage:      rate.Percentage,
			Depth:           n.Depth,
		})
	}
	return entries
}

// Total sums the amounts of entries.
func Total(entries []Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}
