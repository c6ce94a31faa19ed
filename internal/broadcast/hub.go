package broadcast

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zaikaman/kaspaclash/internal/logging"
)

// Event is one match-scoped notification pushed to subscribers. Delivery is
// best-effort, at-most-once: clients that care re-fetch match state.
type Event struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"`
	MatchID uint                   `json:"match_id"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Ts      time.Time              `json:"ts"`
}

// Event types published by the resolver and lifecycle operations.
const (
	EventPlayerJoined      = "player_joined"
	EventCharacterSelected = "character_selected"
	EventCharacterLocked   = "character_locked"
	EventCountdownStarted  = "countdown_started"
	EventMoveSubmitted     = "move_submitted"
	EventMoveRejected      = "move_rejected"
	EventRoundResolved     = "round_resolved"
	EventMatchEnded        = "match_ended"
	EventMatchCancelled    = "match_cancelled"
)

// NewEvent stamps an event with a unique ID and timestamp.
func NewEvent(eventType string, matchID uint, payload map[string]interface{}) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    eventType,
		MatchID: matchID,
		Payload: payload,
		Ts:      time.Now().UTC(),
	}
}

// Publisher is the publish-only boundary the resolver depends on.
type Publisher interface {
	Publish(matchID uint, e Event)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Spectating is public; subscriptions carry no authority.
		return true
	},
}

const (
	writeTimeout = 5 * time.Second
	sendBuffer   = 32
)

// client pairs a connection with its outbound queue. All writes to the
// connection happen on the writePump goroutine; gorilla/websocket supports
// at most one concurrent writer per connection.
type client struct {
	conn *websocket.Conn
	send chan Event
}

// Hub fans match events out to websocket subscribers keyed by match ID.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uint]map[*client]bool)}
}

// Subscribe upgrades the HTTP request and registers the connection for the
// match. Each subscriber gets a dedicated writer goroutine; the read loop
// only exists to notice the peer going away.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, matchID uint) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{conn: conn, send: make(chan Event, sendBuffer)}

	h.mu.Lock()
	if h.clients[matchID] == nil {
		h.clients[matchID] = make(map[*client]bool)
	}
	h.clients[matchID][c] = true
	h.mu.Unlock()

	go h.writePump(matchID, c)
	go func() {
		defer h.drop(matchID, c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

// writePump drains the client's queue onto the wire. It exits when the
// queue is closed by drop or when a write fails.
func (h *Hub) writePump(matchID uint, c *client) {
	for e := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(e); err != nil {
			h.drop(matchID, c)
			return
		}
	}
}

// Publish queues the event for every subscriber of the match. Queueing never
// blocks: a subscriber whose queue is full is dropped rather than stalling
// the resolver.
func (h *Hub) Publish(matchID uint, e Event) {
	var slow []*client
	h.mu.RLock()
	for c := range h.clients[matchID] {
		select {
		case c.send <- e:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		logging.Warn("dropping slow broadcast subscriber", logging.Fields{
			"match_id": matchID,
			"event":    e.Type,
		})
		h.drop(matchID, c)
	}
}

// drop unregisters the client and closes its queue. Idempotent: only the
// caller that removes the client from the map closes the channel, and
// Publish only queues while holding the read lock, so a send after close
// cannot happen.
func (h *Hub) drop(matchID uint, c *client) {
	h.mu.Lock()
	subs, ok := h.clients[matchID]
	if ok && subs[c] {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.clients, matchID)
		}
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// SubscriberCount reports active subscribers for a match.
func (h *Hub) SubscriberCount(matchID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[matchID])
}
