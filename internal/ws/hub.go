package ws

import (
	"context"
	"encoding/json"
	"sync"

	"sales_dashboard/internal/domain"
	"sales_dashboard/internal/logger"

	"github.com/google/uuid"
)

// Hub fans sale events out to every connected dashboard.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run owns client registration and delivery until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				c.stop()
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			logger.Debug("ws client registered", "user_id", c.UserID)
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.stop()
			}
			h.mu.Unlock()
			logger.Debug("ws client unregistered", "user_id", c.UserID)
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.Send <- msg:
				default:
					// slow consumer
					delete(h.clients, c)
					c.stop()
					logger.Warn("ws client dropped, send buffer full", "user_id", c.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds c to the hub. Once the hub has stopped, c is stopped instead.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.stop()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues ev for broadcast. It never blocks; events are dropped when the queue is full.
func (h *Hub) Publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws marshal event", "type", ev.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		logger.Warn("ws broadcast queue full, event dropped", "type", ev.Type)
	}
}

func (h *Hub) OnSaleCreated(_ context.Context, res *domain.SaleResult) {
	if res == nil || res.Sale == nil {
		return
	}
	h.Publish(Event{Type: MsgSaleCreated, Data: SaleCreatedPayload{
		SaleID:           res.Sale.ID,
		SellerID:         res.Sale.SellerID,
		Amount:           res.Sale.Amount,
		TotalCommissions: res.Summary.TotalCommissions,
		CommissionsCount: res.Summary.CommissionsCount,
	}})
}

func (h *Hub) OnSaleDeleted(_ context.Context, saleID uuid.UUID) {
	h.Publish(Event{Type: MsgSaleDeleted, Data: SaleDeletedPayload{SaleID: saleID}})
}
