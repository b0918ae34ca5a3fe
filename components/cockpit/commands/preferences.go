package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	cockpit "github.com/goliatone/go-cockpit/components/cockpit"
	gocommand "github.com/goliatone/go-command"
)

// SavePreferencesInput carries a viewer-submitted dashboard document. Config
// may be flat, wrapped or doubly wrapped.
type SavePreferencesInput struct {
	Viewer cockpit.ViewerContext `json:"viewer"`
	Config json.RawMessage       `json:"config"`
}

type preferenceService interface {
	SavePreferencesDocument(ctx context.Context, viewer cockpit.ViewerContext, data []byte) error
	ResetPreferences(ctx context.Context, viewer cockpit.ViewerContext) error
}

// SavePreferencesCommand persists viewer widget preferences.
type SavePreferencesCommand struct {
	service   preferenceService
	telemetry Telemetry
}

// NewSavePreferencesCommand creates the command.
func NewSavePreferencesCommand(service preferenceService, telemetry Telemetry) *SavePreferencesCommand {
	return &SavePreferencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SavePreferencesInput] = (*SavePreferencesCommand)(nil)

// Execute stores the document for the viewer.
func (c *SavePreferencesCommand) Execute(ctx context.Context, msg SavePreferencesInput) error {
	if c.service == nil {
		return errors.New("preferences command requires service")
	}
	if msg.Viewer.UserID == "" {
		return cockpit.ErrViewerRequired
	}
	if len(msg.Config) == 0 {
		return fmt.Errorf("%w: preferences command requires config", cockpit.ErrInvalidPayload)
	}
	if err := c.service.SavePreferencesDocument(ctx, msg.Viewer, msg.Config); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cockpit.command.preferences.save", map[string]any{
		"practice_id": cockpit.SanitizePracticeID(msg.Viewer.PracticeID),
		"user_id":     msg.Viewer.UserID,
		"bytes":       len(msg.Config),
	})
	return nil
}

// ResetPreferencesInput names the viewer whose preferences are dropped.
type ResetPreferencesInput struct {
	Viewer cockpit.ViewerContext `json:"viewer"`
}

// ResetPreferencesCommand restores the default cockpit for a viewer.
type ResetPreferencesCommand struct {
	service   preferenceService
	telemetry Telemetry
}

// NewResetPreferencesCommand creates the command.
func NewResetPreferencesCommand(service preferenceService, telemetry Telemetry) *ResetPreferencesCommand {
	return &ResetPreferencesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResetPreferencesInput] = (*ResetPreferencesCommand)(nil)

// Execute drops the stored preferences.
func (c *ResetPreferencesCommand) Execute(ctx context.Context, msg ResetPreferencesInput) error {
	if c.service == nil {
		return errors.New("reset command requires service")
	}
	if msg.Viewer.UserID == "" {
		return cockpit.ErrViewerRequired
	}
	if err := c.service.ResetPreferences(ctx, msg.Viewer); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cockpit.command.preferences.reset", map[string]any{
		"practice_id": cockpit.SanitizePracticeID(msg.Viewer.PracticeID),
		"user_id":     msg.Viewer.UserID,
	})
	return nil
}
