package cockpit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
	last   map[string]any
}

func (r *recordingTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.last = payload
}

func (r *recordingTelemetry) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

type stubCharts struct {
	calls int
	err   error
}

func (s *stubCharts) RenderChart(_ context.Context, unit Unit) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if unit.Kind == UnitStatCard {
		return "", nil
	}
	return "<div>" + unit.ID + "</div>", nil
}

func unitIDs(units []Unit) []string {
	ids := make([]string, len(units))
	for i, unit := range units {
		ids[i] = unit.ID
	}
	return ids
}

func TestComposeFollowsOrderAndSkipsHidden(t *testing.T) {
	composer := NewComposer(ComposerOptions{})
	composition := composer.Compose(context.Background(), ComposeInput{
		DashboardConfig: json.RawMessage(`{"showGoals":true,"showKPIs":true,"showTeamMembers":false,"widgetOrder":["showKPIs","linebreak_x","showTeamMembers","showGoals","showRetired"]}`),
	})

	assert.Equal(t, []string{"showKPIs", "linebreak_x", "showTeamMembers", "showGoals", "showRetired"}, composition.Order[:5])
	ids := unitIDs(composition.Units)
	require.GreaterOrEqual(t, len(ids), 3)
	assert.Equal(t, []string{"showKPIs", "linebreak_x", "showGoals"}, ids[:3])
	assert.NotContains(t, ids, "showTeamMembers")
	assert.NotContains(t, ids, "showRetired")
	assert.NotContains(t, ids, "showBulletin")
	for _, unit := range composition.Units {
		require.NotNil(t, unit.Layout, unit.ID)
	}
}

func TestComposeWithPracticeContext(t *testing.T) {
	composer := NewComposer(ComposerOptions{})
	composition := composer.Compose(context.Background(), ComposeInput{
		PracticeID:      "p1",
		UserID:          "u1",
		CurrentPractice: &Practice{ID: "p1", Name: "Praxis Nord"},
	})
	ids := unitIDs(composition.Units)
	assert.Contains(t, ids, "showBulletin")
	assert.Contains(t, ids, "showJournalActions")
	assert.Contains(t, ids, "showTimeTracking")
	assert.Contains(t, ids, "showGoogleReviews")
	assert.NotContains(t, ids, "showQuickActions")
}

func TestComposeColumnSpanForEdit(t *testing.T) {
	composer := NewComposer(ComposerOptions{})
	composition := composer.Compose(context.Background(), ComposeInput{
		DashboardConfig: WidgetConfig{Flags: map[string]bool{"showGoals": true}, ColumnSpans: map[string]int{"showGoals": 4}},
		CardSettings:    CardSettings{{WidgetID: "showKPIs", ColumnSpan: 2}},
	})
	assert.Equal(t, 4, composition.ColumnSpanForEdit("showGoals"))
	assert.Equal(t, 2, composition.ColumnSpanForEdit("showKPIs"))
	assert.Equal(t, FullWidthSpan, composition.ColumnSpanForEdit("showBulletin"))
}

func TestComposePreviewIgnoresGates(t *testing.T) {
	composer := NewComposer(ComposerOptions{})
	composition := composer.Compose(context.Background(), ComposeInput{})

	preview := composition.Preview("showTeamMembers")
	require.NotNil(t, preview)
	assert.Nil(t, preview.Layout)
	require.NotNil(t, composition.Preview("showBulletin"))

	edit := composition.EditUnits()
	assert.Len(t, edit, len(DefaultOrder())-1)
	assert.NotContains(t, unitIDs(edit), "showQuickActions")
}

func TestComposeMemoizesUnchangedInput(t *testing.T) {
	telemetry := &recordingTelemetry{}
	composer := NewComposer(ComposerOptions{Telemetry: telemetry})
	in := ComposeInput{
		DashboardConfig: json.RawMessage(`{"showGoals":true}`),
		Stats:           &DashboardStats{ActiveGoals: 3},
		PracticeID:      "p1",
	}

	first := composer.Compose(context.Background(), in)
	second := composer.Compose(context.Background(), in)
	assert.Equal(t, 1, telemetry.count("cockpit.compose"))
	assert.Equal(t, unitIDs(first.Units), unitIDs(second.Units))

	second.Units[0].Title = "mutated"
	third := composer.Compose(context.Background(), in)
	assert.NotEqual(t, "mutated", third.Units[0].Title)

	in.Stats = &DashboardStats{ActiveGoals: 4}
	composer.Compose(context.Background(), in)
	assert.Equal(t, 2, telemetry.count("cockpit.compose"))
	assert.Equal(t, "p1", telemetry.last["practice_id"])
}

func unitByID(units []Unit, id string) *Unit {
	for i := range units {
		if units[i].ID == id {
			return &units[i]
		}
	}
	return nil
}

func TestComposeResultsDoNotShareState(t *testing.T) {
	composer := NewComposer(ComposerOptions{})
	in := ComposeInput{
		DashboardConfig: json.RawMessage(`{"showGoals":true,"showActivityChart":true}`),
		Stats:           &DashboardStats{ActiveGoals: 3, ActivityData: []ActivityPoint{{Date: "2026-03-02", Value: 4}}},
		PracticeID:      "p1",
	}

	first := composer.Compose(context.Background(), in)
	goals := unitByID(first.Units, "showGoals")
	require.NotNil(t, goals)
	require.NotNil(t, goals.Layout)
	goals.Layout.ColumnSpan = 99
	goals.Layout.ClassName = "mutated"
	goals.Layout.Style = Style{"minHeight": "1px"}
	if goals.Trend != nil {
		*goals.Trend = -1
	}
	first.Widgets.Flags["showGoals"] = false
	first.Order[0] = "mutated"
	if chart := unitByID(first.Units, "showActivityChart"); chart != nil {
		if points, ok := chart.Data.([]ActivityPoint); ok && len(points) > 0 {
			points[0].Value = 99
		}
	}

	second := composer.Compose(context.Background(), in)
	goals = unitByID(second.Units, "showGoals")
	require.NotNil(t, goals)
	require.NotNil(t, goals.Layout)
	assert.NotEqual(t, 99, goals.Layout.ColumnSpan)
	assert.NotEqual(t, "mutated", goals.Layout.ClassName)
	assert.NotContains(t, goals.Layout.Style, "minHeight")
	if goals.Trend != nil {
		assert.NotEqual(t, -1.0, *goals.Trend)
	}
	assert.True(t, second.Widgets.Flags["showGoals"])
	assert.NotEqual(t, "mutated", second.Order[0])
	if chart := unitByID(second.Units, "showActivityChart"); chart != nil {
		points, ok := chart.Data.([]ActivityPoint)
		require.True(t, ok)
		assert.Equal(t, 4, points[0].Value)
	}
	assert.Equal(t, 4, in.Stats.ActivityData[0].Value)
}

func TestComposeLogsMalformedOrder(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	composer := NewComposer(ComposerOptions{Logger: zap.New(core)})

	composition := composer.Compose(context.Background(), ComposeInput{
		DashboardConfig: json.RawMessage(`{"showGoals":true,"widgetOrder":{"a":"showGoals"}}`),
		UserID:          "u1",
	})

	assert.Equal(t, DefaultOrder(), composition.Order)
	entries := logs.FilterMessage("cockpit widget order ignored").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "u1", entries[0].ContextMap()["user_id"])
}

func TestComposeAttachesCharts(t *testing.T) {
	charts := &stubCharts{}
	composer := NewComposer(ComposerOptions{Charts: charts})
	composition := composer.Compose(context.Background(), ComposeInput{})

	var weekly *Unit
	for i := range composition.Units {
		if composition.Units[i].ID == "showWeeklyTasks" {
			weekly = &composition.Units[i]
		}
	}
	require.NotNil(t, weekly)
	assert.Equal(t, "<div>showWeeklyTasks</div>", weekly.ChartHTML)
	assert.Equal(t, len(composition.Units), charts.calls)
}

func TestComposeChartFailureIsNotFatal(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	composer := NewComposer(ComposerOptions{Charts: &stubCharts{err: errors.New("boom")}, Logger: zap.New(core)})
	composition := composer.Compose(context.Background(), ComposeInput{})

	assert.NotEmpty(t, composition.Units)
	for _, unit := range composition.Units {
		assert.Empty(t, unit.ChartHTML)
	}
	assert.NotZero(t, logs.FilterMessage("cockpit chart render failed").Len())
}

func TestComposeTranslatesForLocale(t *testing.T) {
	composer := NewComposer(ComposerOptions{Translator: CatalogTranslations{}})
	composition := composer.Compose(context.Background(), ComposeInput{Locale: "en-US"})

	titles := map[string]string{}
	for _, unit := range composition.Units {
		titles[unit.ID] = unit.Title
	}
	assert.Equal(t, "Active goals", titles["showGoals"])
	assert.Equal(t, "Practice score", titles["showKPIs"])

	german := composer.Compose(context.Background(), ComposeInput{Locale: "de"})
	for _, unit := range german.Units {
		if unit.ID == "showGoals" {
			assert.Equal(t, "Aktive Ziele", unit.Title)
		}
	}
}
