package cockpit

// DashboardStats is the snapshot of counts, trends and series behind the
// cockpit. Trends are percentages.
type DashboardStats struct {
	TeamMembers       int     `json:"teamMembers"`
	TeamMembersTrend  float64 `json:"teamMembersTrend"`
	ActiveGoals       int     `json:"activeGoals"`
	GoalsTrend        float64 `json:"goalsTrend"`
	Workflows         int     `json:"workflows"`
	WorkflowsTrend    float64 `json:"workflowsTrend"`
	Documents         int     `json:"documents"`
	DocumentsTrend    float64 `json:"documentsTrend"`
	OpenTasks         int     `json:"openTasks"`
	TasksTrend        float64 `json:"tasksTrend"`
	TodayAppointments int     `json:"todayAppointments"`
	AppointmentsTrend float64 `json:"appointmentsTrend"`
	KPIScore          float64 `json:"kpiScore"`
	KPITrend          float64 `json:"kpiTrend"`
	Drafts            int     `json:"drafts"`
	DraftsTrend       float64 `json:"draftsTrend"`
	ActiveCandidates  int     `json:"activeCandidates"`
	CandidatesTrend   float64 `json:"candidatesTrend"`
	OpenPositions     int     `json:"openPositions"`
	Applications      int     `json:"applications"`
	RecruitingTrend   float64 `json:"recruitingTrend"`
	FilteredTodos     int     `json:"filteredTodos"`

	ActivityData      []ActivityPoint  `json:"activityData"`
	WeeklyTasksData   []WeeklyTaskDay  `json:"weeklyTasksData"`
	TodayScheduleData []ScheduleSlot   `json:"todayScheduleData"`
	RecentActivities  []RecentActivity `json:"recentActivities"`
}

// ActivityPoint is one day of the activity chart.
type ActivityPoint struct {
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// WeeklyTaskDay is one bar group of the weekly tasks chart.
type WeeklyTaskDay struct {
	Day       string `json:"day"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
}

// ScheduleSlot is one hour bucket of today's schedule.
type ScheduleSlot struct {
	Time         string `json:"time"`
	Appointments int    `json:"appointments"`
}

// RecentActivity is an entry of the practice activity feed.
type RecentActivity struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Timestamp   string `json:"timestamp"`
	Priority    string `json:"priority,omitempty"`
}

func placeholderWeeklyTasks() []WeeklyTaskDay {
	return []WeeklyTaskDay{{Day: "Mo", Completed: 3, Pending: 2}}
}

func placeholderSchedule() []ScheduleSlot {
	return []ScheduleSlot{{Time: "09:00", Appointments: 2}}
}

// EmptyStats returns the all-zero snapshot used when no stats are loaded. The
// chart series carry one placeholder point so previews have something to draw.
func EmptyStats() DashboardStats {
	return DashboardStats{
		ActivityData:      []ActivityPoint{},
		WeeklyTasksData:   placeholderWeeklyTasks(),
		TodayScheduleData: placeholderSchedule(),
		RecentActivities:  []RecentActivity{},
	}
}
