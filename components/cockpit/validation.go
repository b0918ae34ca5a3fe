package cockpit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator checks payloads before they are persisted.
type ConfigValidator interface {
	ValidateWidgetConfig(cfg WidgetConfig) error
	ValidateCardSetting(setting CockpitCardSetting) error
}

const (
	widgetConfigSchemaName = "cockpit-widget-config.json"
	cardSettingSchemaName  = "cockpit-card-setting.json"
)

var widgetConfigSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		keyColumnSpans: spanMapSchema(FullWidthSpan),
		keyRowSpans:    spanMapSchema(3),
		keyWidgetOrder: map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string", "minLength": 1},
		},
		keyLinebreaks: map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string", "pattern": "^" + LinebreakPrefix},
		},
		keyTodosFilterPriority: map[string]any{
			"type": "string",
			"enum": []any{"low", "medium", "high"},
		},
	},
	"patternProperties": map[string]any{
		"^show": map[string]any{"type": "boolean"},
	},
}

var cardSettingSchema = map[string]any{
	"type":     "object",
	"required": []any{"widget_id"},
	"properties": map[string]any{
		"widget_id":   map[string]any{"type": "string", "minLength": 1},
		"column_span": map[string]any{"type": "integer", "minimum": 0, "maximum": FullWidthSpan},
		"row_span":    map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
		"min_height": map[string]any{
			"type":    "string",
			"pattern": `^(auto|\d+(\.\d+)?(px|rem|em|vh|%))?$`,
		},
		"card_style": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"variant":    map[string]any{"type": "string"},
				"showBorder": map[string]any{"type": "boolean"},
				"showShadow": map[string]any{"type": "boolean"},
			},
		},
	},
}

func spanMapSchema(maxSpan int) map[string]any {
	return map[string]any{
		"type": "object",
		"additionalProperties": map[string]any{
			"type":    "integer",
			"minimum": 0,
			"maximum": maxSpan,
		},
	}
}

// JSONSchemaValidator validates payloads against the built-in schemas.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{compiled: make(map[string]*jsonschema.Schema)}
}

// ValidateWidgetConfig implements ConfigValidator.
func (v *JSONSchemaValidator) ValidateWidgetConfig(cfg WidgetConfig) error {
	return v.validate(widgetConfigSchemaName, widgetConfigSchema, cfg)
}

// ValidateCardSetting implements ConfigValidator.
func (v *JSONSchemaValidator) ValidateCardSetting(setting CockpitCardSetting) error {
	return v.validate(cardSettingSchemaName, cardSettingSchema, setting)
}

func (v *JSONSchemaValidator) validate(name string, schemaDoc map[string]any, value any) error {
	schema, err := v.schemaFor(name, schemaDoc)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cockpit: marshal %s payload: %w", name, err)
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("cockpit: normalize %s payload: %w", name, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(name string, schemaDoc map[string]any) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(schemaDoc)
	if err != nil {
		return nil, fmt.Errorf("cockpit: marshal schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("cockpit: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("cockpit: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}

type noopConfigValidator struct{}

func (noopConfigValidator) ValidateWidgetConfig(WidgetConfig) error { return nil }
func (noopConfigValidator) ValidateCardSetting(CockpitCardSetting) error { return nil }
