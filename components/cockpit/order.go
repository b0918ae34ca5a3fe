package cockpit

import (
	"errors"
	"strings"
)

// ErrMalformedWidgetOrder reports a persisted widgetOrder that was not a list.
var ErrMalformedWidgetOrder = errors.New("cockpit: widgetOrder is not an array")

// MergeOrder returns the viewer order completed with every canonical id. The
// viewer's placement wins, unknown ids keep their position, and duplicates are
// dropped. A malformed order starts from an empty list and is reported through
// ErrMalformedWidgetOrder; the returned order is complete either way.
func MergeOrder(widgets WidgetConfig) ([]string, error) {
	var (
		base []string
		err  error
	)
	switch {
	case widgets.orderMalformed:
		err = ErrMalformedWidgetOrder
	case widgets.WidgetOrder == nil:
		base = defaultOrder
	default:
		base = widgets.WidgetOrder
	}

	return mergeOrder(base, defaultOrder), err
}

func mergeOrder(base, canonical []string) []string {
	order := make([]string, 0, len(base)+len(canonical))
	seen := make(map[string]struct{}, cap(order))
	push := func(id string) {
		id = strings.TrimSpace(id)
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}
	for _, id := range base {
		push(id)
	}
	for _, id := range canonical {
		push(id)
	}
	return order
}
