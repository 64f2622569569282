// Package hub fans out daemon push messages to connected IPC clients.
//
// A Hub is constructed once at startup and handed to every component that
// publishes (the history store) or subscribes (the IPC server). Peers are
// only ever removed when a send to them fails; there is no Unregister.
package hub

import (
	"log/slog"
	"sync"

	"go.klb.dev/cursorclip/internal/message"
)

// Peer is anything that can receive push messages from the hub.
type Peer interface {
	ID() string
	// Send delivers msg to the peer. Must be non-blocking. A non-nil error
	// means the peer is gone and will be dropped.
	Send(msg message.Response) error
}

// Hub routes push messages to all registered peers.
type Hub struct {
	mu    sync.Mutex
	peers []Peer
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{}
}

// Register adds a peer.
func (h *Hub) Register(p Peer) {
	h.mu.Lock()
	h.peers = append(h.peers, p)
	total := len(h.peers)
	h.mu.Unlock()

	slog.Debug("peer registered", "peer", p.ID(), "total", total)
}

// Publish delivers a copy of msg to every peer and drops those whose Send
// fails.
func (h *Hub) Publish(msg message.Response) {
	h.mu.Lock()
	defer h.mu.Unlock()

	kept := h.peers[:0]
	for _, p := range h.peers {
		if err := p.Send(msg); err != nil {
			slog.Debug("peer dropped", "peer", p.ID(), "err", err)
			continue
		}
		kept = append(kept, p)
	}
	clear(h.peers[len(kept):])
	h.peers = kept
}

// Len returns the number of registered peers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}
