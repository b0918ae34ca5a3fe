package cockpit

import (
	"context"
	"sort"
	"sync"
)

// CardSettingsStore persists admin card settings per practice.
type CardSettingsStore interface {
	CardSettings(ctx context.Context, practiceID string) (CardSettings, error)
	SaveCardSetting(ctx context.Context, practiceID string, setting CockpitCardSetting) error
	DeleteCardSetting(ctx context.Context, practiceID, widgetID string) error
}

// InMemoryCardSettingsStore is a concurrency-safe CardSettingsStore.
type InMemoryCardSettingsStore struct {
	mu   sync.RWMutex
	data map[string]map[string]CockpitCardSetting
}

// NewInMemoryCardSettingsStore creates an empty store.
func NewInMemoryCardSettingsStore() *InMemoryCardSettingsStore {
	return &InMemoryCardSettingsStore{data: make(map[string]map[string]CockpitCardSetting)}
}

// CardSettings returns the practice settings ordered by widget id.
func (s *InMemoryCardSettingsStore) CardSettings(_ context.Context, practiceID string) (CardSettings, error) {
	practiceID = SanitizePracticeID(practiceID)
	if practiceID == "" {
		return nil, ErrPracticeRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.data[practiceID]
	out := make(CardSettings, 0, len(entries))
	for _, setting := range entries {
		out = append(out, cloneCardSetting(setting))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WidgetID < out[j].WidgetID })
	return out, nil
}

// SaveCardSetting upserts the setting for its widget.
func (s *InMemoryCardSettingsStore) SaveCardSetting(_ context.Context, practiceID string, setting CockpitCardSetting) error {
	practiceID = SanitizePracticeID(practiceID)
	if practiceID == "" {
		return ErrPracticeRequired
	}
	if setting.WidgetID == "" {
		return ErrWidgetIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.data[practiceID]
	if !ok {
		entries = make(map[string]CockpitCardSetting)
		s.data[practiceID] = entries
	}
	entries[setting.WidgetID] = cloneCardSetting(setting)
	return nil
}

// DeleteCardSetting removes a widget's setting; missing entries are ignored.
func (s *InMemoryCardSettingsStore) DeleteCardSetting(_ context.Context, practiceID, widgetID string) error {
	practiceID = SanitizePracticeID(practiceID)
	if practiceID == "" {
		return ErrPracticeRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[practiceID], widgetID)
	return nil
}

func cloneCardSetting(setting CockpitCardSetting) CockpitCardSetting {
	if setting.CardStyle != nil {
		style := *setting.CardStyle
		setting.CardStyle = &style
	}
	return setting
}
