// Package ws tracks one authenticated live connection per user and carries
// the real-time notification protocol over it.
package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Server-emitted event names.
const (
	EventUnreadCount         = "unread_count"
	EventNewNotification     = "new_notification"
	EventNotificationsLoaded = "notifications_loaded"
	EventError               = "error"
)

// frame is the wire envelope for every server-to-client message.
type frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type emitRequest struct {
	userID  uuid.UUID
	message []byte
	reply   chan bool
}

type registerRequest struct {
	client *Client
	done   chan struct{}
}

type lookupRequest struct {
	userID uuid.UUID
	reply  chan bool
}

// Hub owns the session map. At most one client is registered per user:
// a new registration for a connected user replaces (and closes) the old
// session, and an unregister only takes effect while its client is still
// the registered one, so a slow disconnect of a replaced session cannot
// evict its successor. All access goes through the run loop.
type Hub struct {
	sessions map[uuid.UUID]*Client

	register   chan registerRequest
	unregister chan *Client
	emit       chan emitRequest
	lookup     chan lookupRequest

	stop     chan struct{}
	stopOnce sync.Once
}

func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[uuid.UUID]*Client),
		register:   make(chan registerRequest),
		unregister: make(chan *Client),
		emit:       make(chan emitRequest),
		lookup:     make(chan lookupRequest),
		stop:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case req := <-h.register:
			client := req.client
			if old, ok := h.sessions[client.userID]; ok && old != client {
				// Last connect wins.
				close(old.send)
			}
			h.sessions[client.userID] = client
			liveSessions.Set(float64(len(h.sessions)))
			log.Printf("[Live Hub] Session registered (User: %s)", client.userID)
			close(req.done)

		case client := <-h.unregister:
			if h.sessions[client.userID] == client {
				delete(h.sessions, client.userID)
				close(client.send)
				liveSessions.Set(float64(len(h.sessions)))
				log.Printf("[Live Hub] Session unregistered (User: %s)", client.userID)
			}

		case req := <-h.emit:
			client, ok := h.sessions[req.userID]
			if !ok {
				req.reply <- false
				continue
			}
			select {
			case client.send <- req.message:
			default:
				// Writer is wedged; drop the session.
				delete(h.sessions, req.userID)
				close(client.send)
				liveSessions.Set(float64(len(h.sessions)))
			}
			req.reply <- true

		case req := <-h.lookup:
			_, ok := h.sessions[req.userID]
			req.reply <- ok

		case <-h.stop:
			log.Printf("[Live Hub] Stopping, closing %d sessions", len(h.sessions))
			for userID, client := range h.sessions {
				close(client.send)
				delete(h.sessions, userID)
			}
			liveSessions.Set(0)
			return
		}
	}
}

// Register installs client as the user's current session, replacing any
// previous one, and returns once the hub has done so.
func (h *Hub) Register(client *Client) {
	req := registerRequest{client: client, done: make(chan struct{})}
	select {
	case h.register <- req:
		<-req.done
	case <-h.stop:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// Emit sends an event frame to the user's current session. It reports
// whether a session was present and the emit was attempted.
func (h *Hub) Emit(userID uuid.UUID, event string, data any) bool {
	message, err := json.Marshal(frame{Event: event, Data: data})
	if err != nil {
		log.Printf("[Live Hub] Dropping unencodable %s event: %v", event, err)
		return false
	}
	req := emitRequest{userID: userID, message: message, reply: make(chan bool, 1)}
	select {
	case h.emit <- req:
		return <-req.reply
	case <-h.stop:
		return false
	}
}

// Connected reports whether the user currently has a live session.
func (h *Hub) Connected(userID uuid.UUID) bool {
	req := lookupRequest{userID: userID, reply: make(chan bool, 1)}
	select {
	case h.lookup <- req:
		return <-req.reply
	case <-h.stop:
		return false
	}
}

// Stop tears the hub down: every session is closed and further operations
// become no-ops.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}
