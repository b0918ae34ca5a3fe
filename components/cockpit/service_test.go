package cockpit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type failingStats struct{}

func (failingStats) DashboardStats(context.Context, string) (*DashboardStats, error) {
	return nil, errors.New("stats backend down")
}

type staticStats struct {
	stats *DashboardStats
	calls []string
}

func (s *staticStats) DashboardStats(_ context.Context, practiceID string) (*DashboardStats, error) {
	s.calls = append(s.calls, practiceID)
	return s.stats, nil
}

type staticPractices map[string]*Practice

func (p staticPractices) Practice(_ context.Context, id string) (*Practice, error) {
	return p[id], nil
}

type recordingHook struct {
	events []CockpitEvent
	err    error
}

func (h *recordingHook) CockpitChanged(_ context.Context, event CockpitEvent) error {
	h.events = append(h.events, event)
	return h.err
}

var testViewer = ViewerContext{PracticeID: "p1", UserID: "u1"}

func TestServicePreferencesDefaultsForNewViewer(t *testing.T) {
	svc := NewService(Options{})
	cfg, err := svc.Preferences(context.Background(), testViewer)
	require.NoError(t, err)
	assert.Equal(t, DefaultWidgetConfig(), cfg)
}

func TestServiceSavePreferencesRoundTrip(t *testing.T) {
	store := NewInMemoryPreferenceStore()
	svc := NewService(Options{PreferenceStore: store})
	ctx := context.Background()

	cfg := DefaultWidgetConfig()
	cfg.Flags["showTeamMembers"] = true
	cfg.Flags["showGoals"] = false
	cfg.ColumnSpans = map[string]int{"showKPIs": 3, "showGoals": 0, "showDrafts": -2}
	cfg.WidgetOrder = append([]string{"linebreak_top"}, cfg.WidgetOrder...)
	require.NoError(t, svc.SavePreferences(ctx, testViewer, cfg))

	raw, err := store.DashboardConfig(ctx, testViewer)
	require.NoError(t, err)
	assert.Equal(t, ShapeWrapped, DecodeConfig(raw).Shape)

	loaded, err := svc.Preferences(ctx, testViewer)
	require.NoError(t, err)
	assert.True(t, loaded.Enabled("showTeamMembers"))
	assert.False(t, loaded.Enabled("showGoals"))
	assert.Equal(t, map[string]int{"showKPIs": 3}, loaded.ColumnSpans)
	assert.Equal(t, []string{"linebreak_top"}, loaded.Linebreaks)
	assert.Equal(t, "linebreak_top", loaded.WidgetOrder[0])
}

func TestServiceSavePreferencesRequiresViewer(t *testing.T) {
	svc := NewService(Options{})
	err := svc.SavePreferences(context.Background(), ViewerContext{PracticeID: "p1"}, DefaultWidgetConfig())
	if !errors.Is(err, ErrViewerRequired) {
		t.Fatalf("expected ErrViewerRequired, got %v", err)
	}
	err = svc.SavePreferences(context.Background(), ViewerContext{PracticeID: "undefined", UserID: "u1"}, DefaultWidgetConfig())
	if !errors.Is(err, ErrPracticeRequired) {
		t.Fatalf("expected ErrPracticeRequired, got %v", err)
	}
}

func TestServiceSavePreferencesRejectsInvalid(t *testing.T) {
	svc := NewService(Options{})
	cfg := DefaultWidgetConfig()
	cfg.ColumnSpans = map[string]int{"showGoals": 9}
	err := svc.SavePreferences(context.Background(), testViewer, cfg)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}

	cfg = DefaultWidgetConfig()
	cfg.TodosFilter.Priority = "urgent"
	require.ErrorIs(t, svc.SavePreferences(context.Background(), testViewer, cfg), ErrInvalidPayload)
}

func TestServiceSavePreferencesDocumentUnwrapsDoubleNesting(t *testing.T) {
	svc := NewService(Options{})
	ctx := context.Background()

	require.NoError(t, svc.SavePreferencesDocument(ctx, testViewer, []byte(`{"widgets":{"widgets":{"showGoals":false,"showDrafts":true}}}`)))
	cfg, err := svc.Preferences(ctx, testViewer)
	require.NoError(t, err)
	assert.False(t, cfg.Enabled("showGoals"))
	assert.True(t, cfg.Enabled("showDrafts"))
	assert.Equal(t, DefaultOrder(), cfg.WidgetOrder)

	err = svc.SavePreferencesDocument(ctx, testViewer, []byte(`{"theme":"dark"}`))
	require.ErrorIs(t, err, ErrUnrecognizedConfig)
}

func TestServiceResetPreferences(t *testing.T) {
	hook := &recordingHook{}
	telemetry := &recordingTelemetry{}
	svc := NewService(Options{RefreshHook: hook, Telemetry: telemetry})
	ctx := ContextWithActivity(context.Background(), ActivityContext{ActorID: "admin-7"})

	cfg := DefaultWidgetConfig()
	cfg.Flags["showGoals"] = false
	require.NoError(t, svc.SavePreferences(ctx, testViewer, cfg))
	require.NoError(t, svc.ResetPreferences(ctx, testViewer))

	loaded, err := svc.Preferences(ctx, testViewer)
	require.NoError(t, err)
	assert.True(t, loaded.Enabled("showGoals"))

	require.Len(t, hook.events, 2)
	assert.Equal(t, ReasonPreferences, hook.events[0].Reason)
	assert.Equal(t, ReasonReset, hook.events[1].Reason)
	assert.Equal(t, 1, telemetry.count("cockpit.preferences.reset"))
	assert.Equal(t, "admin-7", telemetry.last["actor_id"])
}

func TestServiceCardSettings(t *testing.T) {
	hook := &recordingHook{}
	svc := NewService(Options{RefreshHook: hook})
	ctx := context.Background()

	require.NoError(t, svc.SaveCardSetting(ctx, testViewer, CockpitCardSetting{WidgetID: " showGoals ", ColumnSpan: 2, MinHeight: "240px"}))
	require.NoError(t, svc.SaveCardSetting(ctx, testViewer, CockpitCardSetting{WidgetID: "showGoals", ColumnSpan: 3}))
	require.NoError(t, svc.SaveCardSetting(ctx, testViewer, CockpitCardSetting{WidgetID: "showKPIs", RowSpan: 2}))

	settings, err := svc.CardSettings(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, settings, 2)
	goals, ok := settings.Find("showGoals")
	require.True(t, ok)
	assert.Equal(t, 3, goals.ColumnSpan)
	assert.Empty(t, goals.MinHeight)

	require.NoError(t, svc.DeleteCardSetting(ctx, testViewer, "showKPIs"))
	settings, err = svc.CardSettings(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, settings, 1)
	assert.Len(t, hook.events, 4)
	assert.Equal(t, "showKPIs", hook.events[3].WidgetID)
}

func TestServiceCardSettingRejections(t *testing.T) {
	svc := NewService(Options{})
	ctx := context.Background()

	require.ErrorIs(t, svc.SaveCardSetting(ctx, testViewer, CockpitCardSetting{}), ErrWidgetIDRequired)
	require.ErrorIs(t, svc.SaveCardSetting(ctx, testViewer, CockpitCardSetting{WidgetID: "showNothing"}), ErrUnknownWidget)
	require.ErrorIs(t, svc.SaveCardSetting(ctx, testViewer, CockpitCardSetting{WidgetID: "showGoals", ColumnSpan: 6}), ErrInvalidPayload)
	require.ErrorIs(t, svc.SaveCardSetting(ctx, testViewer, CockpitCardSetting{WidgetID: "showGoals", MinHeight: "tall"}), ErrInvalidPayload)
	require.ErrorIs(t, svc.SaveCardSetting(ctx, ViewerContext{PracticeID: "null"}, CockpitCardSetting{WidgetID: "showGoals"}), ErrPracticeRequired)
	require.ErrorIs(t, svc.DeleteCardSetting(ctx, testViewer, ""), ErrWidgetIDRequired)
}

func TestServiceRoleAuthorizer(t *testing.T) {
	svc := NewService(Options{Authorizer: RoleAuthorizer{Roles: []string{"practice_admin"}}})
	ctx := context.Background()
	setting := CockpitCardSetting{WidgetID: "showGoals", ColumnSpan: 2}

	err := svc.SaveCardSetting(ctx, ViewerContext{PracticeID: "p1", UserID: "u1", Roles: []string{"member"}}, setting)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	require.NoError(t, svc.SaveCardSetting(ctx, ViewerContext{PracticeID: "p1", UserID: "u2", Roles: []string{"Practice_Admin"}}, setting))
}

func TestServiceSeedCardSettings(t *testing.T) {
	hook := &recordingHook{}
	telemetry := &recordingTelemetry{}
	svc := NewService(Options{RefreshHook: hook, Telemetry: telemetry})
	ctx := context.Background()

	doc, err := DecodeCardSettingsManifest(strings.NewReader(`
version: "1"
practice_id: p2
settings:
  - widget_id: showActivityChart
    column_span: 3
    row_span: 2
  - widget_id: showBulletin
    min_height: 12rem
`))
	require.NoError(t, err)
	doc.Source = "seed.yaml"

	n, err := svc.SeedCardSettings(ctx, testViewer, doc)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	settings, err := svc.CardSettings(ctx, "p2")
	require.NoError(t, err)
	assert.Len(t, settings, 2)
	empty, err := svc.CardSettings(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.Len(t, hook.events, 1)
	assert.Equal(t, ReasonSeed, hook.events[0].Reason)
	assert.Equal(t, "p2", hook.events[0].PracticeID)
	assert.Equal(t, "seed.yaml", telemetry.last["source"])

	_, err = svc.SeedCardSettings(ctx, testViewer, nil)
	require.Error(t, err)
}

func TestServiceDashboardComposesInputs(t *testing.T) {
	stats := &staticStats{stats: &DashboardStats{ActiveGoals: 11}}
	svc := NewService(Options{
		Stats:     stats,
		Practices: staticPractices{"p1": {ID: "p1", Name: "Praxis Süd"}},
	})
	ctx := context.Background()
	require.NoError(t, svc.SaveCardSetting(ctx, testViewer, CockpitCardSetting{WidgetID: "showGoals", ColumnSpan: 2}))

	composition, err := svc.Dashboard(ctx, testViewer)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, stats.calls)

	var goals *Unit
	for i := range composition.Units {
		if composition.Units[i].ID == "showGoals" {
			goals = &composition.Units[i]
		}
	}
	require.NotNil(t, goals)
	assert.Equal(t, 11, goals.Value)
	assert.Equal(t, "md:col-span-2", goals.Layout.ColumnClass)
	assert.Contains(t, unitIDs(composition.Units), "showGoogleReviews")
}

func TestServiceDashboardDegradesOnFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewService(Options{Stats: failingStats{}, Logger: zap.New(core)})

	composition, err := svc.Dashboard(context.Background(), testViewer)
	require.NoError(t, err)
	assert.NotEmpty(t, composition.Units)
	assert.Equal(t, 1, logs.FilterMessage("load dashboard stats").Len())
}

func TestServiceDashboardWithoutPractice(t *testing.T) {
	stats := &staticStats{}
	svc := NewService(Options{Stats: stats})

	composition, err := svc.Dashboard(context.Background(), ViewerContext{PracticeID: "0", UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, stats.calls)
	ids := unitIDs(composition.Units)
	assert.NotContains(t, ids, "showBulletin")
	assert.NotContains(t, ids, "showTimeTracking")
	assert.Contains(t, ids, "showGoals")
}

func TestServiceDashboardHonoursCancellation(t *testing.T) {
	svc := NewService(Options{})
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	_, err := svc.Dashboard(ctx, testViewer)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServiceRefreshHookFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewService(Options{RefreshHook: &recordingHook{err: errors.New("hub offline")}, Logger: zap.New(core)})
	require.NoError(t, svc.ResetPreferences(context.Background(), testViewer))
	assert.Equal(t, 1, logs.FilterMessage("refresh hook failed").Len())
}

func TestDecodePreferencePayloadShapes(t *testing.T) {
	cfg, err := decodePreferencePayload([]byte(`{"showGoals":false}`))
	require.NoError(t, err)
	assert.False(t, cfg.Enabled("showGoals"))

	cfg, err = decodePreferencePayload([]byte(`{"widgets":{"showGoals":true,"showKPIs":false}}`))
	require.NoError(t, err)
	_, ok := cfg.Flags["showKPIs"]
	assert.True(t, ok)

	_, err = decodePreferencePayload([]byte(`{"widgets":{"showKPIs":false}}`))
	require.ErrorIs(t, err, ErrUnrecognizedConfig)

	_, err = decodePreferencePayload([]byte(`not json`))
	require.Error(t, err)

	doc, err := json.Marshal(DashboardConfig{Widgets: &WidgetConfig{Flags: map[string]bool{"showDrafts": true}, WidgetOrder: []string{"showDrafts"}}})
	require.NoError(t, err)
	cfg, err = decodePreferencePayload(doc)
	require.NoError(t, err)
	assert.True(t, cfg.Enabled("showDrafts"))
}

func TestSanitizePracticeID(t *testing.T) {
	for _, id := range []string{"", " ", "undefined", "null", "0"} {
		assert.Empty(t, SanitizePracticeID(id), id)
	}
	assert.Equal(t, "p-1", SanitizePracticeID(" p-1 "))
}
