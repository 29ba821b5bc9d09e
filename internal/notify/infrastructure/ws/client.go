package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/studypulse/notify-engine/internal/notify/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionOps is the slice of the notification service a live session may
// drive. Mutations re-emit the fresh unread count through the hub, so the
// client only has to forward them.
type SessionOps interface {
	List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

// Client is one live session. The hub owns its lifetime between Register
// and Unregister; send is closed by the hub, never by the client.
type Client struct {
	hub    *Hub
	ops    SessionOps
	conn   *websocket.Conn
	send   chan []byte
	userID uuid.UUID
}

// clientRequest is the envelope for client-initiated operations.
type clientRequest struct {
	Action   string `json:"action"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	ID       string `json:"id"`
}

const defaultPageSize = 20

// ServeWS upgrades an already-authenticated request, registers the session
// and starts its pumps. The caller must have verified the credential first;
// nothing is registered on verification failure.
func ServeWS(hub *Hub, ops SessionOps, w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Live Hub] Upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:    hub,
		ops:    ops,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: userID,
	}
	hub.Register(client)

	go client.writePump()
	go client.readPump()

	// Initial sync: the new session immediately learns its unread count.
	if count, err := ops.UnreadCount(context.Background(), userID); err == nil {
		hub.Emit(userID, EventUnreadCount, map[string]int{"count": count})
	} else {
		log.Printf("[Live Hub] Initial unread count failed (User: %s): %v", userID, err)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Live Hub] Read error (User: %s): %v", c.userID, err)
			}
			return
		}
		c.handle(message)
	}
}

func (c *Client) handle(message []byte) {
	var req clientRequest
	if err := json.Unmarshal(message, &req); err != nil {
		c.sendError("malformed request")
		return
	}

	ctx := context.Background()
	switch req.Action {
	case "load_notifications":
		pageSize := req.PageSize
		if pageSize <= 0 {
			pageSize = defaultPageSize
		}
		notifications, err := c.ops.List(ctx, c.userID, req.Page, pageSize)
		if err != nil {
			c.sendError("failed to load notifications")
			return
		}
		c.sendEvent(EventNotificationsLoaded, map[string]any{"notifications": notifications})

	case "mark_as_read":
		id, err := uuid.Parse(req.ID)
		if err != nil {
			c.sendError("invalid notification id")
			return
		}
		if err := c.ops.MarkAsRead(ctx, c.userID, id); err != nil {
			if errors.Is(err, domain.ErrNotificationNotFound) {
				c.sendError("notification not found")
				return
			}
			c.sendError("failed to mark notification as read")
		}

	case "mark_all_as_read":
		if err := c.ops.MarkAllAsRead(ctx, c.userID); err != nil {
			c.sendError("failed to mark notifications as read")
		}

	default:
		c.sendError("unknown action")
	}
}

// sendEvent routes the response through the hub so only the user's current
// session receives it. A session that was replaced mid-request simply loses
// the late response.
func (c *Client) sendEvent(event string, data any) {
	c.hub.Emit(c.userID, event, data)
}

func (c *Client) sendError(message string) {
	c.sendEvent(EventError, map[string]string{"message": message})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
