package cockpit

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Known non-flag keys of the persisted widget document.
const (
	keyWidgets             = "widgets"
	keyColumnSpans         = "columnSpans"
	keyRowSpans            = "rowSpans"
	keyWidgetOrder         = "widgetOrder"
	keyLinebreaks          = "linebreaks"
	keyTodosFilterWichtig  = "todosFilterWichtig"
	keyTodosFilterDringend = "todosFilterDringend"
	keyTodosFilterPriority = "todosFilterPriority"
)

// WidgetConfig is the canonical flat widget configuration of one viewer.
// Flags holds the show* toggles keyed by widget id.
type WidgetConfig struct {
	Flags       map[string]bool
	ColumnSpans map[string]int
	RowSpans    map[string]int
	WidgetOrder []string
	Linebreaks  []string
	TodosFilter TodosFilter

	// orderMalformed is set when the persisted widgetOrder was present but not
	// an array of ids.
	orderMalformed bool
}

// TodosFilter narrows the filtered todo widget.
type TodosFilter struct {
	Important *bool  `json:"todosFilterWichtig,omitempty"`
	Urgent    *bool  `json:"todosFilterDringend,omitempty"`
	Priority  string `json:"todosFilterPriority,omitempty"`
}

// DashboardConfig is the wrapped document persisted by the preference store.
type DashboardConfig struct {
	Widgets *WidgetConfig `json:"widgets,omitempty"`
}

// DefaultWidgetConfig returns a fresh copy of the built-in configuration.
func DefaultWidgetConfig() WidgetConfig {
	flags := make(map[string]bool, len(widgetCatalog))
	for _, def := range widgetCatalog {
		flags[def.ID] = def.DefaultEnabled
	}
	return WidgetConfig{
		Flags:       flags,
		ColumnSpans: map[string]int{},
		RowSpans:    map[string]int{},
		WidgetOrder: DefaultOrder(),
		Linebreaks:  []string{},
	}
}

// Enabled reports whether the show flag for id is set.
func (c WidgetConfig) Enabled(id string) bool {
	return c.Flags[id]
}

// OrderMalformed reports whether the decoded widgetOrder had the wrong shape.
func (c WidgetConfig) OrderMalformed() bool {
	return c.orderMalformed
}

// Clone performs a deep copy.
func (c WidgetConfig) Clone() WidgetConfig {
	out := WidgetConfig{
		Flags:          cloneMap(c.Flags),
		ColumnSpans:    cloneMap(c.ColumnSpans),
		RowSpans:       cloneMap(c.RowSpans),
		WidgetOrder:    cloneSlice(c.WidgetOrder),
		Linebreaks:     cloneSlice(c.Linebreaks),
		TodosFilter:    c.TodosFilter,
		orderMalformed: c.orderMalformed,
	}
	if c.TodosFilter.Important != nil {
		v := *c.TodosFilter.Important
		out.TodosFilter.Important = &v
	}
	if c.TodosFilter.Urgent != nil {
		v := *c.TodosFilter.Urgent
		out.TodosFilter.Urgent = &v
	}
	return out
}

// WithDefaults fills flags the viewer never stored from the built-in config and
// restores the canonical order when none was persisted.
func (c WidgetConfig) WithDefaults() WidgetConfig {
	out := c.Clone()
	defaults := DefaultWidgetConfig()
	if out.Flags == nil {
		out.Flags = map[string]bool{}
	}
	for id, enabled := range defaults.Flags {
		if _, ok := out.Flags[id]; !ok {
			out.Flags[id] = enabled
		}
	}
	if out.ColumnSpans == nil {
		out.ColumnSpans = map[string]int{}
	}
	if out.RowSpans == nil {
		out.RowSpans = map[string]int{}
	}
	if out.WidgetOrder == nil && !out.orderMalformed {
		out.WidgetOrder = defaults.WidgetOrder
	}
	if out.Linebreaks == nil {
		out.Linebreaks = []string{}
	}
	return out
}

// MarshalJSON writes the flat persisted shape.
func (c WidgetConfig) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(c.Flags)+6)
	for id, enabled := range c.Flags {
		doc[id] = enabled
	}
	if c.ColumnSpans != nil {
		doc[keyColumnSpans] = c.ColumnSpans
	}
	if c.RowSpans != nil {
		doc[keyRowSpans] = c.RowSpans
	}
	if c.WidgetOrder != nil {
		doc[keyWidgetOrder] = c.WidgetOrder
	}
	if c.Linebreaks != nil {
		doc[keyLinebreaks] = c.Linebreaks
	}
	if c.TodosFilter.Important != nil {
		doc[keyTodosFilterWichtig] = *c.TodosFilter.Important
	}
	if c.TodosFilter.Urgent != nil {
		doc[keyTodosFilterDringend] = *c.TodosFilter.Urgent
	}
	if c.TodosFilter.Priority != "" {
		doc[keyTodosFilterPriority] = c.TodosFilter.Priority
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reads the flat shape. Fields with unexpected types are skipped
// instead of failing the whole document.
func (c *WidgetConfig) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*c = decodeFlatFields(fields)
	return nil
}

func decodeFlatFields(fields map[string]json.RawMessage) WidgetConfig {
	var cfg WidgetConfig
	for key, raw := range fields {
		switch key {
		case keyColumnSpans:
			cfg.ColumnSpans = decodeSpans(raw)
		case keyRowSpans:
			cfg.RowSpans = decodeSpans(raw)
		case keyWidgetOrder:
			order, ok := decodeIDList(raw)
			if !ok {
				cfg.orderMalformed = true
				continue
			}
			cfg.WidgetOrder = order
		case keyLinebreaks:
			if ids, ok := decodeIDList(raw); ok {
				cfg.Linebreaks = ids
			}
		case keyTodosFilterWichtig:
			cfg.TodosFilter.Important = decodeOptionalBool(raw)
		case keyTodosFilterDringend:
			cfg.TodosFilter.Urgent = decodeOptionalBool(raw)
		case keyTodosFilterPriority:
			var priority string
			if json.Unmarshal(raw, &priority) == nil {
				cfg.TodosFilter.Priority = priority
			}
		default:
			if !strings.HasPrefix(key, "show") {
				continue
			}
			var enabled bool
			if json.Unmarshal(raw, &enabled) != nil {
				continue
			}
			if cfg.Flags == nil {
				cfg.Flags = map[string]bool{}
			}
			cfg.Flags[key] = enabled
		}
	}
	return cfg
}

func decodeSpans(raw json.RawMessage) map[string]int {
	var values map[string]json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil || values == nil {
		return nil
	}
	spans := make(map[string]int, len(values))
	for id, value := range values {
		var n float64
		if json.Unmarshal(value, &n) != nil {
			continue
		}
		spans[id] = int(n)
	}
	return spans
}

// decodeIDList accepts null (absent) or an array; non-string entries are
// dropped. Any other JSON type reports false.
func decodeIDList(raw json.RawMessage) ([]string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, true
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		var id string
		if json.Unmarshal(item, &id) == nil {
			ids = append(ids, id)
		}
	}
	return ids, true
}

func decodeOptionalBool(raw json.RawMessage) *bool {
	var v *bool
	if json.Unmarshal(raw, &v) != nil {
		return nil
	}
	return v
}

// SortedFlagIDs returns flag keys in canonical order, unknown ids last.
func (c WidgetConfig) SortedFlagIDs() []string {
	ids := make([]string, 0, len(c.Flags))
	for id := range c.Flags {
		ids = append(ids, id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		pi, iok := catalogIndex[ids[i]]
		pj, jok := catalogIndex[ids[j]]
		switch {
		case iok && jok:
			return pi < pj
		case iok != jok:
			return iok
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	if in == nil {
		return nil
	}
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append([]T(nil), in...)
}
