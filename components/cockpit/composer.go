package cockpit

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ComposeInput is the snapshot a composition is computed from.
// DashboardConfig accepts raw JSON, a WidgetConfig, a DashboardConfig or any
// JSON-encodable document.
type ComposeInput struct {
	DashboardConfig any             `json:"dashboard_config,omitempty"`
	Stats           *DashboardStats `json:"stats,omitempty"`
	CardSettings    CardSettings    `json:"card_settings,omitempty"`
	PracticeID      string          `json:"practice_id,omitempty"`
	UserID          string          `json:"user_id,omitempty"`
	CurrentPractice *Practice       `json:"current_practice,omitempty"`
	Locale          string          `json:"locale,omitempty"`
}

// Composition is the ordered, layout-annotated cockpit.
type Composition struct {
	Widgets WidgetConfig
	Order   []string
	Units   []Unit

	settings CardSettings
	renderer *Renderer
}

// ColumnSpanForEdit returns the numeric column span the editor grid uses.
func (c Composition) ColumnSpanForEdit(widgetID string) int {
	return ColumnSpan(widgetID, c.Widgets, c.settings)
}

// Preview renders a widget in edit mode, ignoring enablement and context gates.
func (c Composition) Preview(widgetID string) *Unit {
	if c.renderer == nil {
		return nil
	}
	return c.renderer.Render(widgetID, true)
}

// EditUnits renders every entry of the order in edit mode.
func (c Composition) EditUnits() []Unit {
	units := make([]Unit, 0, len(c.Order))
	for _, id := range c.Order {
		if unit := c.Preview(id); unit != nil {
			units = append(units, *unit)
		}
	}
	return units
}

// clone copies everything a caller can reach. The renderer is read-only and
// stays shared.
func (c Composition) clone() Composition {
	out := Composition{
		Widgets:  c.Widgets.Clone(),
		Order:    cloneSlice(c.Order),
		renderer: c.renderer,
	}
	if c.Units != nil {
		out.Units = make([]Unit, len(c.Units))
		for i, unit := range c.Units {
			out.Units[i] = unit.Clone()
		}
	}
	if c.settings != nil {
		out.settings = make(CardSettings, len(c.settings))
		for i, setting := range c.settings {
			out.settings[i] = cloneCardSetting(setting)
		}
	}
	return out
}

// ComposerOptions wires optional collaborators.
type ComposerOptions struct {
	Translator TranslationService
	Charts     ChartRenderer
	Logger     *zap.Logger
	Telemetry  Telemetry
}

// Composer turns compose inputs into compositions. It remembers the last
// input and returns the previous result while the input is unchanged.
type Composer struct {
	translator TranslationService
	charts     ChartRenderer
	logger     *zap.Logger
	telemetry  Telemetry

	mu      sync.Mutex
	lastKey string
	last    Composition
}

// NewComposer builds a composer.
func NewComposer(opts ComposerOptions) *Composer {
	return &Composer{
		translator: opts.Translator,
		charts:     opts.Charts,
		logger:     normalizeLogger(opts.Logger),
		telemetry:  normalizeTelemetry(opts.Telemetry),
	}
}

// Compose computes the cockpit for in.
func (c *Composer) Compose(ctx context.Context, in ComposeInput) Composition {
	key := contentHash(in)
	memoizable := key != "invalid"
	if memoizable {
		c.mu.Lock()
		if c.lastKey == key {
			cached := c.last.clone()
			c.mu.Unlock()
			return cached
		}
		c.mu.Unlock()
	}

	composition := c.compose(ctx, in)

	if memoizable {
		c.mu.Lock()
		c.lastKey = key
		c.last = composition
		c.mu.Unlock()
		return composition.clone()
	}
	return composition
}

func (c *Composer) compose(ctx context.Context, in ComposeInput) Composition {
	widgets := ResolveValue(in.DashboardConfig)
	order, err := MergeOrder(widgets)
	if err != nil {
		c.logger.Error("cockpit widget order ignored",
			zap.String("practice_id", in.PracticeID),
			zap.String("user_id", in.UserID),
			zap.Error(err),
		)
	}

	renderer := NewRenderer(RenderContext{
		Widgets:         widgets,
		Stats:           in.Stats,
		CardSettings:    in.CardSettings,
		PracticeID:      in.PracticeID,
		UserID:          in.UserID,
		CurrentPractice: in.CurrentPractice,
		Translate:       translatorFor(ctx, c.translator, in.Locale),
	})

	units := make([]Unit, 0, len(order))
	for _, id := range order {
		unit := renderer.Render(id, false)
		if unit == nil {
			continue
		}
		c.attachChart(ctx, unit)
		units = append(units, *unit)
	}

	c.telemetry.Record(ctx, "cockpit.compose", map[string]any{
		"practice_id": in.PracticeID,
		"user_id":     in.UserID,
		"units":       len(units),
		"order":       len(order),
	})

	return Composition{
		Widgets:  widgets,
		Order:    order,
		Units:    units,
		settings: in.CardSettings,
		renderer: renderer,
	}
}

func (c *Composer) attachChart(ctx context.Context, unit *Unit) {
	if c.charts == nil {
		return
	}
	html, err := c.charts.RenderChart(ctx, *unit)
	if err != nil {
		c.logger.Warn("cockpit chart render failed", zap.String("widget_id", unit.ID), zap.Error(err))
		return
	}
	unit.ChartHTML = html
}
