package broadcast

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func subscribeServer(t *testing.T, h *Hub, matchID uint) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.Subscribe(w, r, matchID); err != nil {
			t.Errorf("subscribe failed: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for h.SubscriberCount(matchID) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	h := NewHub()
	conn := subscribeServer(t, h, 7)

	h.Publish(7, NewEvent(EventRoundResolved, 7, map[string]interface{}{"round": 1}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var e Event
	if err := conn.ReadJSON(&e); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if e.Type != EventRoundResolved || e.MatchID != 7 {
		t.Fatalf("unexpected event %+v", e)
	}
}

// Publishers run on request handlers and detached timer goroutines at the
// same time; every event must still reach the subscriber intact with a
// single connection writer doing the work.
func TestConcurrentPublishersShareOneConnection(t *testing.T) {
	h := NewHub()
	conn := subscribeServer(t, h, 9)

	const publishers = 16
	var wg sync.WaitGroup
	wg.Add(publishers)
	for i := 0; i < publishers; i++ {
		go func() {
			defer wg.Done()
			h.Publish(9, NewEvent(EventMoveSubmitted, 9, nil))
		}()
	}
	wg.Wait()

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for i := 0; i < publishers; i++ {
		var e Event
		if err := conn.ReadJSON(&e); err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
		if e.Type != EventMoveSubmitted {
			t.Fatalf("unexpected event type %s", e.Type)
		}
	}
}

func TestPublishToMatchWithoutSubscribers(t *testing.T) {
	h := NewHub()
	// Must not block or panic.
	h.Publish(1, NewEvent(EventMatchEnded, 1, nil))
}

func TestClosedSubscriberIsDropped(t *testing.T) {
	h := NewHub()
	conn := subscribeServer(t, h, 3)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.SubscriberCount(3) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("closed subscriber was never dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// Publishing after the drop is harmless.
	h.Publish(3, NewEvent(EventMatchEnded, 3, nil))
}
