package commands

import (
	"context"
	"errors"

	cockpit "github.com/goliatone/go-cockpit/components/cockpit"
	gocommand "github.com/goliatone/go-command"
)

type cardSettingsService interface {
	SaveCardSetting(ctx context.Context, viewer cockpit.ViewerContext, setting cockpit.CockpitCardSetting) error
	DeleteCardSetting(ctx context.Context, viewer cockpit.ViewerContext, widgetID string) error
}

// SaveCardSettingInput upserts one admin setting.
type SaveCardSettingInput struct {
	Viewer  cockpit.ViewerContext      `json:"viewer"`
	Setting cockpit.CockpitCardSetting `json:"setting"`
}

// SaveCardSettingCommand stores a practice-wide card setting.
type SaveCardSettingCommand struct {
	service   cardSettingsService
	telemetry Telemetry
}

// NewSaveCardSettingCommand creates the command.
func NewSaveCardSettingCommand(service cardSettingsService, telemetry Telemetry) *SaveCardSettingCommand {
	return &SaveCardSettingCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveCardSettingInput] = (*SaveCardSettingCommand)(nil)

// Execute stores the setting.
func (c *SaveCardSettingCommand) Execute(ctx context.Context, msg SaveCardSettingInput) error {
	if c.service == nil {
		return errors.New("card setting command requires service")
	}
	if err := c.service.SaveCardSetting(ctx, msg.Viewer, msg.Setting); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cockpit.command.card_setting.save", map[string]any{
		"practice_id": cockpit.SanitizePracticeID(msg.Viewer.PracticeID),
		"widget_id":   msg.Setting.WidgetID,
	})
	return nil
}

// DeleteCardSettingInput removes one admin setting.
type DeleteCardSettingInput struct {
	Viewer   cockpit.ViewerContext `json:"viewer"`
	WidgetID string                `json:"widget_id"`
}

// DeleteCardSettingCommand drops a practice-wide card setting.
type DeleteCardSettingCommand struct {
	service   cardSettingsService
	telemetry Telemetry
}

// NewDeleteCardSettingCommand creates the command.
func NewDeleteCardSettingCommand(service cardSettingsService, telemetry Telemetry) *DeleteCardSettingCommand {
	return &DeleteCardSettingCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteCardSettingInput] = (*DeleteCardSettingCommand)(nil)

// Execute removes the setting.
func (c *DeleteCardSettingCommand) Execute(ctx context.Context, msg DeleteCardSettingInput) error {
	if c.service == nil {
		return errors.New("card setting command requires service")
	}
	if msg.WidgetID == "" {
		return cockpit.ErrWidgetIDRequired
	}
	if err := c.service.DeleteCardSetting(ctx, msg.Viewer, msg.WidgetID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cockpit.command.card_setting.delete", map[string]any{
		"practice_id": cockpit.SanitizePracticeID(msg.Viewer.PracticeID),
		"widget_id":   msg.WidgetID,
	})
	return nil
}
