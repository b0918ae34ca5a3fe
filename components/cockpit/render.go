package cockpit

import "fmt"

// UnitKind identifies the presentational unit a widget renders to.
type UnitKind string

const (
	UnitLinebreak        UnitKind = "linebreak"
	UnitStatCard         UnitKind = "stat_card"
	UnitWeeklyTasks      UnitKind = "weekly_tasks"
	UnitTodaySchedule    UnitKind = "today_schedule"
	UnitActivityChart    UnitKind = "activity_chart"
	UnitKPI              UnitKind = "kpi"
	UnitRecentActivities UnitKind = "recent_activities"
	UnitGoogleReviews    UnitKind = "google_reviews"
	UnitJournalActions   UnitKind = "journal_actions"
	UnitBulletin         UnitKind = "bulletin"
	UnitTimeTracking     UnitKind = "time_tracking"
)

// Unit is a renderable widget. Layout is nil for edit-mode renders, where the
// editor owns the grid.
type Unit struct {
	ID        string      `json:"id"`
	Kind      UnitKind    `json:"kind"`
	Title     string      `json:"title,omitempty"`
	Subtitle  string      `json:"subtitle,omitempty"`
	Value     int         `json:"value,omitempty"`
	Trend     *float64    `json:"trend,omitempty"`
	Icon      string      `json:"icon,omitempty"`
	Color     string      `json:"color,omitempty"`
	Href      string      `json:"href,omitempty"`
	Data      any         `json:"data,omitempty"`
	ChartHTML string      `json:"chart_html,omitempty"`
	Layout    *UnitLayout `json:"layout,omitempty"`
}

// Clone returns a copy that shares no pointers, maps or slices with u.
func (u Unit) Clone() Unit {
	out := u
	if u.Trend != nil {
		trend := *u.Trend
		out.Trend = &trend
	}
	if u.Layout != nil {
		layout := u.Layout.Clone()
		out.Layout = &layout
	}
	switch data := u.Data.(type) {
	case []WeeklyTaskDay:
		out.Data = cloneSlice(data)
	case []ScheduleSlot:
		out.Data = cloneSlice(data)
	case []ActivityPoint:
		out.Data = cloneSlice(data)
	case []RecentActivity:
		out.Data = cloneSlice(data)
	}
	return out
}

// Practice is the currently selected practice.
type Practice struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
}

// KPIData feeds the practice score unit.
type KPIData struct {
	Score float64 `json:"kpi_score"`
	Trend float64 `json:"kpi_trend"`
}

// PracticeRef feeds units bound to the practice and viewer.
type PracticeRef struct {
	PracticeID   string `json:"practice_id"`
	UserID       string `json:"user_id,omitempty"`
	PracticeName string `json:"practice_name,omitempty"`
	WebsiteURL   string `json:"website_url,omitempty"`
}

const defaultPracticeName = "Praxis"

// TranslateFunc returns the translation for key or the fallback.
type TranslateFunc func(key, fallback string) string

// RenderContext is the snapshot one render pass works against.
type RenderContext struct {
	Widgets         WidgetConfig
	Stats           *DashboardStats
	CardSettings    CardSettings
	PracticeID      string
	UserID          string
	CurrentPractice *Practice
	Translate       TranslateFunc
}

// Renderer maps widget ids to units. It has no side effects.
type Renderer struct {
	rc    RenderContext
	stats DashboardStats
}

// NewRenderer binds a renderer to a snapshot. Nil stats fall back to EmptyStats.
func NewRenderer(rc RenderContext) *Renderer {
	stats := EmptyStats()
	if rc.Stats != nil {
		stats = *rc.Stats
	}
	if rc.Translate == nil {
		rc.Translate = func(_, fallback string) string { return fallback }
	}
	return &Renderer{rc: rc, stats: stats}
}

type statCard struct {
	title    string
	value    func(DashboardStats) int
	trend    func(DashboardStats) float64
	subtitle func(DashboardStats) string
	icon     string
	color    string
	href     string
}

var statCards = map[string]statCard{
	"showTeamMembers": {title: "Team-Mitglieder", icon: "users", color: "blue", href: "/team",
		value: func(s DashboardStats) int { return s.TeamMembers },
		trend: func(s DashboardStats) float64 { return s.TeamMembersTrend }},
	"showGoals": {title: "Aktive Ziele", icon: "target", color: "green", href: "/goals",
		value: func(s DashboardStats) int { return s.ActiveGoals },
		trend: func(s DashboardStats) float64 { return s.GoalsTrend }},
	"showWorkflows": {title: "Workflows", icon: "workflow", color: "purple", href: "/workflows",
		value: func(s DashboardStats) int { return s.Workflows },
		trend: func(s DashboardStats) float64 { return s.WorkflowsTrend }},
	"showDocuments": {title: "Dokumente", icon: "file-text", color: "amber", href: "/documents",
		value: func(s DashboardStats) int { return s.Documents },
		trend: func(s DashboardStats) float64 { return s.DocumentsTrend }},
	"showRecruiting": {title: "Offene Stellen", icon: "briefcase", color: "pink", href: "/hiring",
		value:    func(s DashboardStats) int { return s.OpenPositions },
		trend:    func(s DashboardStats) float64 { return s.RecruitingTrend },
		subtitle: func(s DashboardStats) string { return fmt.Sprintf("%d Bewerbungen", s.Applications) }},
	"showOpenTasks": {title: "Offene Aufgaben", icon: "check-square", color: "orange", href: "/todos",
		value: func(s DashboardStats) int { return s.OpenTasks },
		trend: func(s DashboardStats) float64 { return s.TasksTrend }},
	"showTodayAppointments": {title: "Termine heute", icon: "calendar", color: "blue", href: "/calendar",
		value: func(s DashboardStats) int { return s.TodayAppointments },
		trend: func(s DashboardStats) float64 { return s.AppointmentsTrend }},
	"showActiveCandidates": {title: "Aktive Kandidaten", icon: "users", color: "green", href: "/hiring",
		value: func(s DashboardStats) int { return s.ActiveCandidates },
		trend: func(s DashboardStats) float64 { return s.CandidatesTrend }},
	"showDrafts": {title: "Entwürfe", icon: "file-text", color: "gray", href: "/goals?tab=draft",
		value: func(s DashboardStats) int { return s.Drafts },
		trend: func(s DashboardStats) float64 { return s.DraftsTrend }},
	"showTodos": {title: "Gefilterte Aufgaben", icon: "check-square", color: "purple", href: "/todos",
		value: func(s DashboardStats) int { return s.FilteredTodos }},
}

// Render returns the unit for widgetID, or nil when the widget is disabled,
// lacks its practice context, or is unknown. Edit mode ignores both gates and
// leaves Layout unset.
func (r *Renderer) Render(widgetID string, editMode bool) *Unit {
	if IsLinebreak(widgetID) {
		layout := linebreakLayout()
		return &Unit{ID: widgetID, Kind: UnitLinebreak, Layout: &layout}
	}
	if !editMode && !r.rc.Widgets.Enabled(widgetID) {
		return nil
	}

	unit := r.build(widgetID, editMode)
	if unit == nil {
		return nil
	}
	if !editMode {
		layout := ResolveLayout(widgetID, r.rc.Widgets, r.rc.CardSettings)
		unit.Layout = &layout
	}
	return unit
}

func (r *Renderer) build(widgetID string, editMode bool) *Unit {
	if card, ok := statCards[widgetID]; ok {
		return r.statUnit(widgetID, card)
	}
	s := r.stats
	switch widgetID {
	case "showWeeklyTasks":
		data := s.WeeklyTasksData
		if data == nil {
			data = placeholderWeeklyTasks()
		}
		return r.chartUnit(widgetID, UnitWeeklyTasks, data)
	case "showTodaySchedule":
		data := s.TodayScheduleData
		if data == nil {
			data = placeholderSchedule()
		}
		return r.chartUnit(widgetID, UnitTodaySchedule, data)
	case "showActivityChart":
		data := s.ActivityData
		if data == nil {
			data = []ActivityPoint{}
		}
		return r.chartUnit(widgetID, UnitActivityChart, data)
	case "showKPIs":
		return r.chartUnit(widgetID, UnitKPI, KPIData{Score: s.KPIScore, Trend: s.KPITrend})
	case "showRecentActivities":
		data := s.RecentActivities
		if data == nil {
			data = []RecentActivity{}
		}
		return r.chartUnit(widgetID, UnitRecentActivities, data)
	case "showGoogleReviews":
		practice := r.rc.CurrentPractice
		if practice == nil && !editMode {
			return nil
		}
		ref := PracticeRef{PracticeID: r.rc.PracticeID, PracticeName: defaultPracticeName}
		if practice != nil {
			if practice.ID != "" {
				ref.PracticeID = practice.ID
			}
			if practice.Name != "" {
				ref.PracticeName = practice.Name
			}
			ref.WebsiteURL = practice.Website
		}
		return r.chartUnit(widgetID, UnitGoogleReviews, ref)
	case "showJournalActions":
		if r.rc.PracticeID == "" && !editMode {
			return nil
		}
		return r.chartUnit(widgetID, UnitJournalActions, PracticeRef{PracticeID: r.rc.PracticeID})
	case "showBulletin":
		if r.rc.PracticeID == "" && !editMode {
			return nil
		}
		return r.chartUnit(widgetID, UnitBulletin, PracticeRef{PracticeID: r.rc.PracticeID, UserID: r.rc.UserID})
	case "showTimeTracking":
		if (r.rc.PracticeID == "" || r.rc.UserID == "") && !editMode {
			return nil
		}
		return r.chartUnit(widgetID, UnitTimeTracking, PracticeRef{PracticeID: r.rc.PracticeID, UserID: r.rc.UserID})
	case "showQuickActions":
		return nil
	default:
		return nil
	}
}

func (r *Renderer) statUnit(widgetID string, card statCard) *Unit {
	unit := &Unit{
		ID:    widgetID,
		Kind:  UnitStatCard,
		Title: r.rc.Translate(card.title, card.title),
		Value: card.value(r.stats),
		Icon:  card.icon,
		Color: card.color,
		Href:  card.href,
	}
	if card.trend != nil {
		trend := card.trend(r.stats)
		unit.Trend = &trend
	}
	if card.subtitle != nil {
		unit.Subtitle = card.subtitle(r.stats)
	}
	return unit
}

func (r *Renderer) chartUnit(widgetID string, kind UnitKind, data any) *Unit {
	unit := &Unit{ID: widgetID, Kind: kind, Data: data}
	if def, ok := Definition(widgetID); ok {
		unit.Title = r.rc.Translate(def.Label, def.Label)
		unit.Icon = def.Icon
	}
	return unit
}
