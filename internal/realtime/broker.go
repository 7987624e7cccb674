// Package realtime fans tracker events out to connected SSE clients.
package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Event types published by the API layer.
const (
	EventSessionCreated   = "session.created"
	EventAttendanceMarked = "attendance.marked"
)

// Event is the shape of one real-time notification.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Broker is the hub for SSE client connections, keyed by user id. One
// channel per user; a reconnect replaces the previous channel and the old
// connection drains out on its own.
type Broker struct {
	clients map[int64]chan []byte
	mu      sync.RWMutex
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{clients: make(map[int64]chan []byte)}
}

// Subscribe registers a user's connection and returns its event channel.
// A reconnect closes the previous channel so the stale handler unwinds.
func (b *Broker) Subscribe(userID int64) chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.clients[userID]; ok {
		close(old)
	}
	ch := make(chan []byte, 10)
	b.clients[userID] = ch
	log.Printf("INFO: SSE client connected for user %d", userID)
	return ch
}

// Unsubscribe removes a user's connection and closes its channel. The
// channel identifies the caller's own subscription; a handler unwinding
// after a reconnect must not tear down the replacement stream.
func (b *Broker) Unsubscribe(userID int64, ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cur, ok := b.clients[userID]; ok && cur == ch {
		delete(b.clients, userID)
		close(cur)
		log.Printf("INFO: SSE client disconnected for user %d", userID)
	}
}

// NotifyUser sends an event to one user if they are connected. The send is
// non-blocking; a full channel drops the event rather than stalling the
// request handler.
func (b *Broker) NotifyUser(userID int64, event Event) {
	b.mu.RLock()
	ch, ok := b.clients[userID]
	b.mu.RUnlock()
	if !ok {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("ERROR: could not marshal SSE event for user %d: %v", userID, err)
		return
	}

	select {
	case ch <- msg:
	default:
		log.Printf("INFO: SSE channel for user %d is full, dropping event", userID)
	}
}

// Broadcast sends an event to every connected user.
func (b *Broker) Broadcast(event Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("ERROR: could not marshal SSE broadcast: %v", err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for userID, ch := range b.clients {
		select {
		case ch <- msg:
		default:
			log.Printf("INFO: SSE channel for user %d is full, dropping event", userID)
		}
	}
}
