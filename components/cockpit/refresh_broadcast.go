package cockpit

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Change reasons carried by CockpitEvent.
const (
	ReasonPreferences = "preferences"
	ReasonReset       = "reset"
	ReasonCardSetting = "card_setting"
	ReasonSeed        = "seed"
)

// CockpitEvent tells clients that a cockpit must be recomposed.
type CockpitEvent struct {
	PracticeID string    `json:"practice_id"`
	UserID     string    `json:"user_id,omitempty"`
	WidgetID   string    `json:"widget_id,omitempty"`
	Reason     string    `json:"reason"`
	At         time.Time `json:"at"`
}

// RefreshHook is notified after a successful write.
type RefreshHook interface {
	CockpitChanged(ctx context.Context, event CockpitEvent) error
}

type noopRefreshHook struct{}

func (noopRefreshHook) CockpitChanged(context.Context, CockpitEvent) error { return nil }

type subscription struct {
	practiceID string
	ch         chan CockpitEvent
}

// BroadcastHook fans cockpit events out to in-process subscribers. Slow
// subscribers miss events instead of blocking writers.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]subscription
	next int
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{subs: make(map[int]subscription)}
}

// CockpitChanged implements RefreshHook.
func (h *BroadcastHook) CockpitChanged(_ context.Context, event CockpitEvent) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.practiceID != "" && sub.practiceID != event.PracticeID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe receives every event.
func (h *BroadcastHook) Subscribe() (<-chan CockpitEvent, func()) {
	return h.SubscribePractice("")
}

// SubscribePractice receives events of one practice; an empty id receives all.
func (h *BroadcastHook) SubscribePractice(practiceID string) (<-chan CockpitEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan CockpitEvent, 8)
	h.subs[id] = subscription{practiceID: SanitizePracticeID(practiceID), ch: ch}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub.ch)
		}
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket streams events of the practice named by the `practice_id`
// query parameter as JSON frames.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		return
	}
	defer conn.Close()

	events, cancel := h.SubscribePractice(r.URL.Query().Get("practice_id"))
	defer cancel()

	// the client never sends frames; reading only detects the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams the same events as Server-Sent Events.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.SubscribePractice(r.URL.Query().Get("practice_id"))
	defer cancel()

	flusher, _ := w.(http.Flusher)
	w.WriteHeader(http.StatusOK)
	if flusher != nil {
		flusher.Flush()
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				return
			}
			if _, err := w.Write([]byte("event: cockpit\ndata: " + string(payload) + "\n\n")); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
