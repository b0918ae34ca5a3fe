package cockpit

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion is the current card-settings manifest format version.
	ManifestVersion = manifestVersionV1
)

// CardSettingsManifest is a YAML document of admin card settings, used to seed
// practices and to ship templates.
type CardSettingsManifest struct {
	Version    string       `json:"version" yaml:"version"`
	Name       string       `json:"name,omitempty" yaml:"name,omitempty"`
	PracticeID string       `json:"practice_id,omitempty" yaml:"practice_id,omitempty"`
	Settings   CardSettings `json:"settings" yaml:"settings"`
	Source     string       `json:"-" yaml:"-"`
}

// ReadCardSettingsManifest loads a manifest file from disk.
func ReadCardSettingsManifest(path string) (*CardSettingsManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("cockpit: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeCardSettingsManifest(f)
	if err != nil {
		return nil, fmt.Errorf("cockpit: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeCardSettingsManifest reads and validates a manifest from r.
func DecodeCardSettingsManifest(r io.Reader) (*CardSettingsManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc CardSettingsManifest
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("cockpit: manifest is empty")
		}
		return nil, fmt.Errorf("cockpit: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks version, widget ids and span ranges.
func (doc *CardSettingsManifest) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("cockpit: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Settings))
	for idx, setting := range doc.Settings {
		if setting.WidgetID == "" {
			return fmt.Errorf("cockpit: manifest setting at index %d is missing widget_id", idx)
		}
		if !IsKnownWidget(setting.WidgetID) {
			return fmt.Errorf("cockpit: manifest references unknown widget %s", setting.WidgetID)
		}
		if _, exists := seen[setting.WidgetID]; exists {
			return fmt.Errorf("cockpit: manifest duplicates widget %s", setting.WidgetID)
		}
		seen[setting.WidgetID] = struct{}{}
		if setting.ColumnSpan < 0 || setting.ColumnSpan > FullWidthSpan {
			return fmt.Errorf("cockpit: manifest column_span %d for %s out of range", setting.ColumnSpan, setting.WidgetID)
		}
		if setting.RowSpan < 0 || setting.RowSpan > 3 {
			return fmt.Errorf("cockpit: manifest row_span %d for %s out of range", setting.RowSpan, setting.WidgetID)
		}
	}
	return nil
}

func (doc *CardSettingsManifest) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	if doc.Settings == nil {
		doc.Settings = CardSettings{}
	}
}
