package cockpit

import (
	"strings"

	"github.com/google/uuid"
)

// LinebreakPrefix marks pseudo-widgets that only separate rows in the grid.
const LinebreakPrefix = "linebreak_"

// Category groups widgets in the editor.
type Category string

const (
	CategoryStats     Category = "stats"
	CategoryCharts    Category = "charts"
	CategoryPractice  Category = "practice"
	CategoryShortcuts Category = "shortcuts"
)

// WidgetDefinition describes a catalog entry. Label and Description carry the
// German copy; the localized maps hold optional translations.
type WidgetDefinition struct {
	ID                   string            `json:"id"`
	Label                string            `json:"label"`
	LabelLocalized       map[string]string `json:"label_localized,omitempty"`
	Description          string            `json:"description"`
	DescriptionLocalized map[string]string `json:"description_localized,omitempty"`
	Icon                 string            `json:"icon"`
	Category             Category          `json:"category"`
	DefaultEnabled       bool              `json:"default_enabled"`
}

// widgetCatalog is the canonical order of every known widget.
var widgetCatalog = []WidgetDefinition{
	{ID: "showOpenTasks", Label: "Offene Aufgaben", Description: "Zu erledigende Aufgaben anzeigen", Icon: "check-square", Category: CategoryStats, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Open tasks"}},
	{ID: "showTodayAppointments", Label: "Termine heute", Description: "Heutige Termine anzeigen", Icon: "calendar", Category: CategoryStats, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Appointments today"}},
	{ID: "showActiveCandidates", Label: "Aktive Kandidaten", Description: "Nicht archivierte Bewerber anzeigen", Icon: "users", Category: CategoryStats, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Active candidates"}},
	{ID: "showGoogleReviews", Label: "Google Bewertungen", Description: "Ihre Google Business Bewertungen anzeigen", Icon: "star", Category: CategoryPractice, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Google reviews"}},
	{ID: "showTeamMembers", Label: "Team Mitglieder", Description: "Anzahl der Teammitglieder anzeigen", Icon: "users", Category: CategoryStats,
		LabelLocalized: map[string]string{"en": "Team members"}},
	{ID: "showDrafts", Label: "Entwürfe", Description: "QM-Dokumentation Entwürfe", Icon: "file-text", Category: CategoryStats,
		LabelLocalized: map[string]string{"en": "Drafts"}},
	{ID: "showGoals", Label: "Aktive Ziele", Description: "Übersicht aktiver Ziele", Icon: "target", Category: CategoryStats, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Active goals"}},
	{ID: "showWorkflows", Label: "Workflows", Description: "Anzahl der Workflows anzeigen", Icon: "workflow", Category: CategoryStats, DefaultEnabled: true},
	{ID: "showDocuments", Label: "Dokumente", Description: "Dokumentenanzahl anzeigen", Icon: "file-text", Category: CategoryStats,
		LabelLocalized: map[string]string{"en": "Documents"}},
	{ID: "showRecruiting", Label: "Personalsuche", Description: "Offene Stellen und Bewerbungen", Icon: "briefcase", Category: CategoryStats,
		LabelLocalized: map[string]string{"en": "Recruiting"}},
	{ID: "showKPIs", Label: "Praxis-Score", Description: "KPI-Bewertung Ihrer Praxisleistung", Icon: "trending-up", Category: CategoryCharts, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Practice score"}},
	{ID: "showWeeklyTasks", Label: "Wöchentliche Aufgaben", Description: "Erledigte und ausstehende Aufgaben diese Woche", Icon: "bar-chart-3", Category: CategoryCharts, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Weekly tasks"}},
	{ID: "showTodaySchedule", Label: "Heutige Termine", Description: "Kalendertermine im Tagesverlauf", Icon: "clock", Category: CategoryCharts, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Today's schedule"}},
	{ID: "showActivityChart", Label: "Aktivitäts-Chart", Description: "7-Tage Aktivitätsverlauf", Icon: "activity", Category: CategoryCharts, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Activity chart"}},
	{ID: "showRecentActivities", Label: "Letzte Aktivitäten", Description: "Aktuelle Updates aus Ihrer Praxis", Icon: "rss", Category: CategoryPractice, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Recent activities"}},
	{ID: "showJournalActions", Label: "Journal Handlungsempfehlungen", Description: "KI-generierte Handlungsempfehlungen aus dem Journal", Icon: "lightbulb", Category: CategoryPractice, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Journal recommendations"}},
	{ID: "showQuickActions", Label: "Schnellaktionen", Description: "Schnellzugriff auf häufige Aktionen", Icon: "zap", Category: CategoryShortcuts, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Quick actions"}},
	{ID: "showTodos", Label: "Aufgaben (Todos)", Description: "Gefilterte Aufgabenliste mit konfigurierbaren Filtern", Icon: "check-square", Category: CategoryStats, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Tasks (todos)"}},
	{ID: "showBulletin", Label: "Schwarzes Brett", Description: "Neueste Beiträge vom Schwarzen Brett", Icon: "file-text", Category: CategoryPractice, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Bulletin board"}},
	{ID: "showTimeTracking", Label: "Zeiterfassung", Description: "Arbeitszeit erfassen und Stempeluhr anzeigen", Icon: "timer", Category: CategoryPractice, DefaultEnabled: true,
		LabelLocalized: map[string]string{"en": "Time tracking"}},
}

var (
	defaultOrder     = buildDefaultOrder()
	catalogIndex     = buildCatalogIndex()
	fullWidthWidgets = map[string]struct{}{
		"showBulletin":       {},
		"showJournalActions": {},
	}
	defaultRowSpans = map[string]int{
		"showWeeklyTasks":      2,
		"showTodaySchedule":    2,
		"showActivityChart":    2,
		"showRecentActivities": 2,
	}
)

func buildDefaultOrder() []string {
	order := make([]string, len(widgetCatalog))
	for i, def := range widgetCatalog {
		order[i] = def.ID
	}
	return order
}

func buildCatalogIndex() map[string]int {
	index := make(map[string]int, len(widgetCatalog))
	for i, def := range widgetCatalog {
		index[def.ID] = i
	}
	return index
}

// DefaultOrder returns a copy of the canonical widget order.
func DefaultOrder() []string {
	return append([]string(nil), defaultOrder...)
}

// WidgetDefinitions returns a copy of the catalog in canonical order.
func WidgetDefinitions() []WidgetDefinition {
	defs := make([]WidgetDefinition, len(widgetCatalog))
	copy(defs, widgetCatalog)
	return defs
}

// Definition looks up a catalog entry by id.
func Definition(id string) (WidgetDefinition, bool) {
	idx, ok := catalogIndex[id]
	if !ok {
		return WidgetDefinition{}, false
	}
	return widgetCatalog[idx], true
}

// IsKnownWidget reports whether the id belongs to the catalog.
func IsKnownWidget(id string) bool {
	_, ok := catalogIndex[id]
	return ok
}

// IsFullWidth reports whether the widget spans the whole grid by default.
func IsFullWidth(id string) bool {
	_, ok := fullWidthWidgets[id]
	return ok
}

// DefaultRowSpan returns the built-in row span for a widget, or 0 when the
// catalog has no opinion.
func DefaultRowSpan(id string) int {
	return defaultRowSpans[id]
}

// IsLinebreak reports whether the id is a row separator.
func IsLinebreak(id string) bool {
	return strings.HasPrefix(id, LinebreakPrefix)
}

// NewLinebreakID allocates a fresh separator id.
func NewLinebreakID() string {
	return LinebreakPrefix + uuid.NewString()
}

// LabelForLocale returns the widget label for locale, falling back to German.
func (def WidgetDefinition) LabelForLocale(locale string) string {
	return ResolveLocalizedValue(def.LabelLocalized, locale, def.Label)
}

// DescriptionForLocale returns the localized description if available.
func (def WidgetDefinition) DescriptionForLocale(locale string) string {
	return ResolveLocalizedValue(def.DescriptionLocalized, locale, def.Description)
}
