package ws

import (
	"context"
	"sync"

	"github.com/mehrbod2002/coinboard/internal/metrics"
	"github.com/rs/zerolog/log"
)

type Hub struct {
	clients map[string]*Client

	register chan *Client

	unregister chan *Client

	done chan struct{}

	metrics *metrics.Prometheus
	mu      sync.RWMutex
}

func NewHub(m *metrics.Prometheus) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		metrics:    m,
	}
}

// Run serves registrations until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.metrics.SessionOpened()
			log.Debug().Str("client", client.ID).Msg("live session opened")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				client.Close()
				h.metrics.SessionClosed()
				log.Debug().Str("client", client.ID).Msg("live session closed")
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				client.Close()
				delete(h.clients, id)
				h.metrics.SessionClosed()
			}
			h.mu.Unlock()
			return
		}
	}
}

// RegisterClient reports false when the hub is no longer running.
func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
