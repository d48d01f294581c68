// Package stream pushes tracking state changes to websocket clients.
package stream

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/morozkin/Point2Image/internal/core/domain"
)

const clientBufferSize = 16

// Hub fans state changes out to connected clients. It implements
// ports.StateObserver. A slow client loses its oldest queued states; the
// newest state is always delivered.
type Hub struct {
	log zerolog.Logger

	mu      sync.Mutex
	clients map[*Client]struct{}
	last    []byte
}

type Client struct {
	Send chan []byte
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: map[*Client]struct{}{},
	}
}

// Register adds a client. The most recent state, if any, is queued first.
func (h *Hub) Register() *Client {
	client := &Client{Send: make(chan []byte, clientBufferSize)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last != nil {
		client.Send <- h.last
	}
	h.clients[client] = struct{}{}
	return client
}

// Unregister removes the client and closes its Send channel. Extra calls are
// no-ops.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
}

// Publish encodes the state and broadcasts it.
func (h *Hub) Publish(state domain.TrackingState) {
	payload, err := json.Marshal(NewStateView(state))
	if err != nil {
		h.log.Error().Err(err).Msg("encode tracking state")
		return
	}
	h.Broadcast(payload)
}

// Broadcast sends payload to every client without blocking.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = payload
	for client := range h.clients {
		select {
		case client.Send <- payload:
			continue
		default:
		}
		select {
		case <-client.Send:
		default:
		}
		select {
		case client.Send <- payload:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.Send)
	}
}
