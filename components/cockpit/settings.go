package cockpit

// CockpitCardSetting is the practice-wide admin override for one widget.
// Zero spans and an empty or "auto" min height mean "not set".
type CockpitCardSetting struct {
	WidgetID   string     `json:"widget_id" yaml:"widget_id"`
	ColumnSpan int        `json:"column_span,omitempty" yaml:"column_span,omitempty"`
	RowSpan    int        `json:"row_span,omitempty" yaml:"row_span,omitempty"`
	MinHeight  string     `json:"min_height,omitempty" yaml:"min_height,omitempty"`
	CardStyle  *CardStyle `json:"card_style,omitempty" yaml:"card_style,omitempty"`
}

// CardStyle carries optional presentation hints for a card.
type CardStyle struct {
	Variant    string `json:"variant,omitempty" yaml:"variant,omitempty"`
	ShowBorder bool   `json:"showBorder" yaml:"show_border"`
	ShowShadow bool   `json:"showShadow" yaml:"show_shadow"`
}

// CardSettings is the list of admin overrides of a practice.
type CardSettings []CockpitCardSetting

// Find returns the first setting for the widget.
func (s CardSettings) Find(widgetID string) (CockpitCardSetting, bool) {
	for _, setting := range s {
		if setting.WidgetID == widgetID {
			return setting, true
		}
	}
	return CockpitCardSetting{}, false
}

// Upsert replaces the setting for the same widget or appends it.
func (s CardSettings) Upsert(setting CockpitCardSetting) CardSettings {
	out := append(CardSettings(nil), s...)
	for i := range out {
		if out[i].WidgetID == setting.WidgetID {
			out[i] = setting
			return out
		}
	}
	return append(out, setting)
}
