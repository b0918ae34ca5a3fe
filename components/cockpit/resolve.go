package cockpit

import (
	"bytes"
	"encoding/json"
)

// ConfigShape classifies a persisted dashboard document.
type ConfigShape int

const (
	// ShapeUnrecognized documents resolve to the default configuration.
	ShapeUnrecognized ConfigShape = iota
	// ShapeFlat documents carry the widget flags at the top level.
	ShapeFlat
	// ShapeWrapped documents nest the flat config under "widgets".
	ShapeWrapped
)

func (s ConfigShape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeWrapped:
		return "wrapped"
	default:
		return "unrecognized"
	}
}

// DecodedConfig is the result of classifying and decoding a document.
type DecodedConfig struct {
	Shape   ConfigShape
	Widgets WidgetConfig
}

// DecodeConfig classifies raw JSON and decodes the flat widget configuration it
// carries. It never fails: anything it cannot recognize yields the defaults.
func DecodeConfig(data []byte) DecodedConfig {
	unrecognized := DecodedConfig{Shape: ShapeUnrecognized, Widgets: DefaultWidgetConfig()}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return unrecognized
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return unrecognized
	}
	if raw, ok := fields[keyWidgets]; ok {
		var nested map[string]json.RawMessage
		if json.Unmarshal(raw, &nested) == nil && looksLikeConfig(nested) {
			return DecodedConfig{Shape: ShapeWrapped, Widgets: decodeFlatFields(nested)}
		}
	}
	if looksLikeConfig(fields) {
		return DecodedConfig{Shape: ShapeFlat, Widgets: decodeFlatFields(fields)}
	}
	return unrecognized
}

// ResolveWidgets returns the flat widget configuration for a persisted document.
func ResolveWidgets(data []byte) WidgetConfig {
	return DecodeConfig(data).Widgets
}

// ResolveValue resolves configuration values that are already in memory, such
// as decoded request bodies or typed documents.
func ResolveValue(value any) WidgetConfig {
	switch v := value.(type) {
	case nil:
		return DefaultWidgetConfig()
	case WidgetConfig:
		return resolveTyped(&v)
	case *WidgetConfig:
		return resolveTyped(v)
	case DashboardConfig:
		return resolveWrapped(v)
	case *DashboardConfig:
		if v == nil {
			return DefaultWidgetConfig()
		}
		return resolveWrapped(*v)
	case json.RawMessage:
		return ResolveWidgets(v)
	case []byte:
		return ResolveWidgets(v)
	case string:
		return ResolveWidgets([]byte(v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return DefaultWidgetConfig()
		}
		return ResolveWidgets(data)
	}
}

func resolveWrapped(doc DashboardConfig) WidgetConfig {
	if doc.Widgets != nil && typedLooksLikeConfig(doc.Widgets) {
		return doc.Widgets.Clone()
	}
	return DefaultWidgetConfig()
}

func resolveTyped(cfg *WidgetConfig) WidgetConfig {
	if cfg == nil || !typedLooksLikeConfig(cfg) {
		return DefaultWidgetConfig()
	}
	return cfg.Clone()
}

func looksLikeConfig(fields map[string]json.RawMessage) bool {
	if fields == nil {
		return false
	}
	if _, ok := fields["showGoals"]; ok {
		return true
	}
	_, ok := fields[keyWidgetOrder]
	return ok
}

func typedLooksLikeConfig(cfg *WidgetConfig) bool {
	if cfg.WidgetOrder != nil || cfg.orderMalformed {
		return true
	}
	_, ok := cfg.Flags["showGoals"]
	return ok
}
