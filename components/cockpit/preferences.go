package cockpit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// ViewerContext identifies who is looking at the cockpit and where.
type ViewerContext struct {
	PracticeID string   `json:"practice_id"`
	UserID     string   `json:"user_id"`
	Locale     string   `json:"locale,omitempty"`
	Roles      []string `json:"roles,omitempty"`
}

// SanitizePracticeID maps the placeholder ids clients send before a practice
// is selected to the empty string.
func SanitizePracticeID(id string) string {
	id = strings.TrimSpace(id)
	switch id {
	case "", "undefined", "null", "0":
		return ""
	default:
		return id
	}
}

// PreferenceStore persists per-viewer dashboard documents. Load returns nil
// when the viewer never saved anything.
type PreferenceStore interface {
	DashboardConfig(ctx context.Context, viewer ViewerContext) (json.RawMessage, error)
	SaveDashboardConfig(ctx context.Context, viewer ViewerContext, doc json.RawMessage) error
	DeleteDashboardConfig(ctx context.Context, viewer ViewerContext) error
}

// InMemoryPreferenceStore keeps documents in a map guarded by a RWMutex.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{data: make(map[string]json.RawMessage)}
}

// DashboardConfig returns a copy of the stored document.
func (s *InMemoryPreferenceStore) DashboardConfig(_ context.Context, viewer ViewerContext) (json.RawMessage, error) {
	key, err := preferenceKey(viewer)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), doc...), nil
}

// SaveDashboardConfig replaces the viewer's document.
func (s *InMemoryPreferenceStore) SaveDashboardConfig(_ context.Context, viewer ViewerContext, doc json.RawMessage) error {
	key, err := preferenceKey(viewer)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append(json.RawMessage(nil), doc...)
	return nil
}

// DeleteDashboardConfig forgets the viewer's document.
func (s *InMemoryPreferenceStore) DeleteDashboardConfig(_ context.Context, viewer ViewerContext) error {
	key, err := preferenceKey(viewer)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func preferenceKey(viewer ViewerContext) (string, error) {
	if viewer.UserID == "" {
		return "", ErrViewerRequired
	}
	practice := SanitizePracticeID(viewer.PracticeID)
	if practice == "" {
		return "", ErrPracticeRequired
	}
	return practice + "::" + viewer.UserID, nil
}

// normalizePreferences prepares a viewer config for storage. Spans that mean
// "use the default" are dropped, a missing order becomes the canonical one and
// linebreaks referenced by the order are tracked.
func normalizePreferences(cfg WidgetConfig) WidgetConfig {
	out := cfg.Clone()
	out.orderMalformed = false
	out.ColumnSpans = positiveSpans(out.ColumnSpans)
	out.RowSpans = positiveSpans(out.RowSpans)
	if out.Flags == nil {
		out.Flags = map[string]bool{}
	}
	if out.WidgetOrder == nil {
		out.WidgetOrder = DefaultOrder()
	}
	known := make(map[string]struct{}, len(out.Linebreaks))
	for _, id := range out.Linebreaks {
		known[id] = struct{}{}
	}
	for _, id := range out.WidgetOrder {
		if _, ok := known[id]; !ok && IsLinebreak(id) {
			out.Linebreaks = append(out.Linebreaks, id)
			known[id] = struct{}{}
		}
	}
	if out.Linebreaks == nil {
		out.Linebreaks = []string{}
	}
	return out
}

func positiveSpans(spans map[string]int) map[string]int {
	out := make(map[string]int, len(spans))
	for id, span := range spans {
		if span > 0 {
			out[id] = span
		}
	}
	return out
}

// decodePreferencePayload accepts a viewer-submitted document in any shape and
// unwraps doubly nested `widgets.widgets` bodies older editors produced.
func decodePreferencePayload(data []byte) (WidgetConfig, error) {
	var probe struct {
		Widgets *struct {
			Widgets json.RawMessage `json:"widgets"`
		} `json:"widgets"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return WidgetConfig{}, fmt.Errorf("%w: decode preferences: %w", ErrInvalidPayload, err)
	}
	if probe.Widgets != nil && len(probe.Widgets.Widgets) > 0 {
		data = probe.Widgets.Widgets
	}
	decoded := DecodeConfig(data)
	if decoded.Shape == ShapeUnrecognized {
		return WidgetConfig{}, ErrUnrecognizedConfig
	}
	return decoded.Widgets, nil
}
