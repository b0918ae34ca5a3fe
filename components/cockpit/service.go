package cockpit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrViewerRequired     = errors.New("cockpit: viewer user id is required")
	ErrPracticeRequired   = errors.New("cockpit: practice id is required")
	ErrWidgetIDRequired   = errors.New("cockpit: widget id is required")
	ErrUnknownWidget      = errors.New("cockpit: unknown widget id")
	ErrUnrecognizedConfig = errors.New("cockpit: unrecognized dashboard configuration")
	ErrInvalidPayload     = errors.New("cockpit: invalid payload")
	ErrForbidden          = errors.New("cockpit: viewer may not manage card settings")
)

// StatsProvider loads the stats snapshot of a practice.
type StatsProvider interface {
	DashboardStats(ctx context.Context, practiceID string) (*DashboardStats, error)
}

// PracticeDirectory resolves the practice a viewer has selected.
type PracticeDirectory interface {
	Practice(ctx context.Context, practiceID string) (*Practice, error)
}

// Authorizer decides who may change practice-wide card settings.
type Authorizer interface {
	CanManageCardSettings(ctx context.Context, viewer ViewerContext) bool
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CanManageCardSettings(context.Context, ViewerContext) bool { return true }

// RoleAuthorizer allows viewers holding any of Roles.
type RoleAuthorizer struct {
	Roles []string
}

// CanManageCardSettings implements Authorizer.
func (a RoleAuthorizer) CanManageCardSettings(_ context.Context, viewer ViewerContext) bool {
	for _, have := range viewer.Roles {
		for _, want := range a.Roles {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

// Options configures the cockpit Service. Missing collaborators fall back to
// in-memory or no-op implementations.
type Options struct {
	PreferenceStore PreferenceStore
	CardSettings    CardSettingsStore
	Stats           StatsProvider
	Practices       PracticeDirectory
	Authorizer      Authorizer
	Composer        *Composer
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Logger          *zap.Logger
}

// Service loads cockpit inputs, composes them and persists viewer and admin
// changes.
type Service struct {
	opts   Options
	logger *zap.Logger
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	opts.Logger = normalizeLogger(opts.Logger)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	if opts.CardSettings == nil {
		opts.CardSettings = NewInMemoryCardSettingsStore()
	}
	if opts.Authorizer == nil {
		opts.Authorizer = allowAllAuthorizer{}
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Composer == nil {
		opts.Composer = NewComposer(ComposerOptions{
			Translator: CatalogTranslations{},
			Logger:     opts.Logger,
			Telemetry:  opts.Telemetry,
		})
	}
	return &Service{opts: opts, logger: opts.Logger.Named("cockpit")}
}

// Dashboard composes the cockpit of a viewer. Read failures of individual
// inputs are logged and replaced by their defaults.
func (s *Service) Dashboard(ctx context.Context, viewer ViewerContext) (Composition, error) {
	if err := ctx.Err(); err != nil {
		return Composition{}, err
	}
	practiceID := SanitizePracticeID(viewer.PracticeID)
	in := ComposeInput{
		PracticeID: practiceID,
		UserID:     viewer.UserID,
		Locale:     viewer.Locale,
	}

	if practiceID != "" && viewer.UserID != "" {
		cfg, err := s.Preferences(ctx, viewer)
		if err != nil {
			s.logger.Warn("load preferences", zap.String("practice_id", practiceID), zap.String("user_id", viewer.UserID), zap.Error(err))
		} else {
			in.DashboardConfig = cfg
		}
	}

	if practiceID != "" {
		settings, err := s.opts.CardSettings.CardSettings(ctx, practiceID)
		if err != nil {
			s.logger.Warn("load card settings", zap.String("practice_id", practiceID), zap.Error(err))
		}
		in.CardSettings = settings

		if s.opts.Stats != nil {
			stats, err := s.opts.Stats.DashboardStats(ctx, practiceID)
			if err != nil {
				s.logger.Warn("load dashboard stats", zap.String("practice_id", practiceID), zap.Error(err))
			}
			in.Stats = stats
		}
		if s.opts.Practices != nil {
			practice, err := s.opts.Practices.Practice(ctx, practiceID)
			if err != nil {
				s.logger.Warn("load practice", zap.String("practice_id", practiceID), zap.Error(err))
			}
			in.CurrentPractice = practice
		}
	}

	return s.opts.Composer.Compose(ctx, in), nil
}

// Preferences returns the viewer config merged over the defaults. Viewers who
// never saved get the defaults.
func (s *Service) Preferences(ctx context.Context, viewer ViewerContext) (WidgetConfig, error) {
	raw, err := s.opts.PreferenceStore.DashboardConfig(ctx, viewer)
	if err != nil {
		return WidgetConfig{}, err
	}
	if raw == nil {
		return DefaultWidgetConfig(), nil
	}
	return ResolveWidgets(raw).WithDefaults(), nil
}

// SavePreferences validates and stores a viewer config.
func (s *Service) SavePreferences(ctx context.Context, viewer ViewerContext, cfg WidgetConfig) error {
	if _, err := preferenceKey(viewer); err != nil {
		return err
	}
	cfg = normalizePreferences(cfg)
	if err := s.opts.ConfigValidator.ValidateWidgetConfig(cfg); err != nil {
		return err
	}
	doc, err := json.Marshal(DashboardConfig{Widgets: &cfg})
	if err != nil {
		return fmt.Errorf("cockpit: encode preferences: %w", err)
	}
	if err := s.opts.PreferenceStore.SaveDashboardConfig(ctx, viewer, doc); err != nil {
		return fmt.Errorf("cockpit: save preferences: %w", err)
	}
	s.notify(ctx, CockpitEvent{PracticeID: SanitizePracticeID(viewer.PracticeID), UserID: viewer.UserID, Reason: ReasonPreferences})
	s.opts.Telemetry.Record(ctx, "cockpit.preferences.save", withActor(ctx, viewer, map[string]any{
		"practice_id": SanitizePracticeID(viewer.PracticeID),
		"user_id":     viewer.UserID,
		"enabled":     countEnabled(cfg),
		"order":       len(cfg.WidgetOrder),
	}))
	return nil
}

// SavePreferencesDocument decodes a submitted document of any supported shape
// and stores it.
func (s *Service) SavePreferencesDocument(ctx context.Context, viewer ViewerContext, data []byte) error {
	cfg, err := decodePreferencePayload(data)
	if err != nil {
		return err
	}
	return s.SavePreferences(ctx, viewer, cfg)
}

// ResetPreferences drops the viewer config so the defaults apply again.
func (s *Service) ResetPreferences(ctx context.Context, viewer ViewerContext) error {
	if err := s.opts.PreferenceStore.DeleteDashboardConfig(ctx, viewer); err != nil {
		return err
	}
	s.notify(ctx, CockpitEvent{PracticeID: SanitizePracticeID(viewer.PracticeID), UserID: viewer.UserID, Reason: ReasonReset})
	s.opts.Telemetry.Record(ctx, "cockpit.preferences.reset", withActor(ctx, viewer, map[string]any{
		"practice_id": SanitizePracticeID(viewer.PracticeID),
		"user_id":     viewer.UserID,
	}))
	return nil
}

// CardSettings lists the admin settings of a practice.
func (s *Service) CardSettings(ctx context.Context, practiceID string) (CardSettings, error) {
	return s.opts.CardSettings.CardSettings(ctx, practiceID)
}

// SaveCardSetting validates and upserts one admin setting for the viewer's
// practice.
func (s *Service) SaveCardSetting(ctx context.Context, viewer ViewerContext, setting CockpitCardSetting) error {
	practiceID, err := s.authorizeSettings(ctx, viewer)
	if err != nil {
		return err
	}
	if err := s.storeCardSetting(ctx, practiceID, setting); err != nil {
		return err
	}
	s.notify(ctx, CockpitEvent{PracticeID: practiceID, WidgetID: setting.WidgetID, Reason: ReasonCardSetting})
	s.opts.Telemetry.Record(ctx, "cockpit.card_setting.save", withActor(ctx, viewer, map[string]any{
		"practice_id": practiceID,
		"widget_id":   setting.WidgetID,
		"column_span": setting.ColumnSpan,
		"row_span":    setting.RowSpan,
	}))
	return nil
}

// DeleteCardSetting removes one admin setting.
func (s *Service) DeleteCardSetting(ctx context.Context, viewer ViewerContext, widgetID string) error {
	practiceID, err := s.authorizeSettings(ctx, viewer)
	if err != nil {
		return err
	}
	if widgetID == "" {
		return ErrWidgetIDRequired
	}
	if err := s.opts.CardSettings.DeleteCardSetting(ctx, practiceID, widgetID); err != nil {
		return fmt.Errorf("cockpit: delete card setting: %w", err)
	}
	s.notify(ctx, CockpitEvent{PracticeID: practiceID, WidgetID: widgetID, Reason: ReasonCardSetting})
	return nil
}

// SeedCardSettings stores every setting of a manifest. The manifest practice
// wins over the viewer's when both are set.
func (s *Service) SeedCardSettings(ctx context.Context, viewer ViewerContext, doc *CardSettingsManifest) (int, error) {
	if doc == nil {
		return 0, errors.New("cockpit: manifest document is nil")
	}
	if id := SanitizePracticeID(doc.PracticeID); id != "" {
		viewer.PracticeID = id
	}
	practiceID, err := s.authorizeSettings(ctx, viewer)
	if err != nil {
		return 0, err
	}
	for idx, setting := range doc.Settings {
		if err := s.storeCardSetting(ctx, practiceID, setting); err != nil {
			return idx, fmt.Errorf("cockpit: seed %s from %s: %w", setting.WidgetID, doc.Source, err)
		}
	}
	s.notify(ctx, CockpitEvent{PracticeID: practiceID, Reason: ReasonSeed})
	s.opts.Telemetry.Record(ctx, "cockpit.card_settings.seed", withActor(ctx, viewer, map[string]any{
		"practice_id": practiceID,
		"settings":    len(doc.Settings),
		"source":      doc.Source,
	}))
	return len(doc.Settings), nil
}

func (s *Service) authorizeSettings(ctx context.Context, viewer ViewerContext) (string, error) {
	practiceID := SanitizePracticeID(viewer.PracticeID)
	if practiceID == "" {
		return "", ErrPracticeRequired
	}
	if !s.opts.Authorizer.CanManageCardSettings(ctx, viewer) {
		return "", ErrForbidden
	}
	return practiceID, nil
}

func (s *Service) storeCardSetting(ctx context.Context, practiceID string, setting CockpitCardSetting) error {
	setting.WidgetID = strings.TrimSpace(setting.WidgetID)
	setting.MinHeight = strings.TrimSpace(setting.MinHeight)
	if setting.WidgetID == "" {
		return ErrWidgetIDRequired
	}
	if !IsKnownWidget(setting.WidgetID) {
		return fmt.Errorf("%w: %s", ErrUnknownWidget, setting.WidgetID)
	}
	if err := s.opts.ConfigValidator.ValidateCardSetting(setting); err != nil {
		return err
	}
	if err := s.opts.CardSettings.SaveCardSetting(ctx, practiceID, setting); err != nil {
		return fmt.Errorf("cockpit: save card setting: %w", err)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, event CockpitEvent) {
	if err := s.opts.RefreshHook.CockpitChanged(ctx, event); err != nil {
		s.logger.Warn("refresh hook failed", zap.String("reason", event.Reason), zap.Error(err))
	}
}

func countEnabled(cfg WidgetConfig) int {
	n := 0
	for _, enabled := range cfg.Flags {
		if enabled {
			n++
		}
	}
	return n
}
