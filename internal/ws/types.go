package ws

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady       = "ready"
	MsgPong        = "pong"
	MsgSaleCreated = "sale_created"
	MsgSaleDeleted = "sale_deleted"
)

// Event is the envelope for every message pushed to dashboard clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type SaleCreatedPayload struct {
	SaleID           uuid.UUID       `json:"sale_id"`
	SellerID         uuid.UUID       `json:"seller_id"`
	Amount           decimal.Decimal `json:"amount"`
	TotalCommissions decimal.Decimal `json:"total_commissions"`
	CommissionsCount int             `json:"commissions_count"`
}

type SaleDeletedPayload struct {
	SaleID uuid.UUID `json:"sale_id"`
}
