package commands

import (
	"context"
	"errors"

	cockpit "github.com/goliatone/go-cockpit/components/cockpit"
	gocommand "github.com/goliatone/go-command"
)

// SeedCardSettingsInput applies a manifest. Path is read when Manifest is nil.
type SeedCardSettingsInput struct {
	Viewer   cockpit.ViewerContext
	Manifest *cockpit.CardSettingsManifest
	Path     string
}

type seedService interface {
	SeedCardSettings(ctx context.Context, viewer cockpit.ViewerContext, doc *cockpit.CardSettingsManifest) (int, error)
}

// SeedCardSettingsCommand stores every setting of a card-settings manifest.
type SeedCardSettingsCommand struct {
	service   seedService
	telemetry Telemetry
}

// NewSeedCardSettingsCommand wires dependencies.
func NewSeedCardSettingsCommand(service seedService, telemetry Telemetry) *SeedCardSettingsCommand {
	return &SeedCardSettingsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeedCardSettingsInput] = (*SeedCardSettingsCommand)(nil)

// Execute loads the manifest if needed and seeds it.
func (c *SeedCardSettingsCommand) Execute(ctx context.Context, msg SeedCardSettingsInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	doc := msg.Manifest
	if doc == nil {
		if msg.Path == "" {
			return errors.New("seed command requires a manifest or path")
		}
		loaded, err := cockpit.ReadCardSettingsManifest(msg.Path)
		if err != nil {
			return err
		}
		doc = loaded
	}
	n, err := c.service.SeedCardSettings(ctx, msg.Viewer, doc)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cockpit.command.seed", map[string]any{
		"settings": n,
		"source":   doc.Source,
	})
	return nil
}
