package queries

import (
	"context"

	cockpit "github.com/goliatone/go-cockpit/components/cockpit"
	gocommand "github.com/goliatone/go-command"
)

type dashboardService interface {
	Dashboard(ctx context.Context, viewer cockpit.ViewerContext) (cockpit.Composition, error)
}

// DashboardQuery composes the cockpit of a viewer.
type DashboardQuery struct {
	service dashboardService
}

// NewDashboardQuery builds the query.
func NewDashboardQuery(service dashboardService) *DashboardQuery {
	return &DashboardQuery{service: service}
}

var _ gocommand.Querier[cockpit.ViewerContext, cockpit.Composition] = (*DashboardQuery)(nil)

// Query resolves the composition for the viewer.
func (q *DashboardQuery) Query(ctx context.Context, viewer cockpit.ViewerContext) (cockpit.Composition, error) {
	return q.service.Dashboard(ctx, viewer)
}

type preferencesService interface {
	Preferences(ctx context.Context, viewer cockpit.ViewerContext) (cockpit.WidgetConfig, error)
}

// PreferencesQuery loads the effective widget config of a viewer.
type PreferencesQuery struct {
	service preferencesService
}

// NewPreferencesQuery builds the query.
func NewPreferencesQuery(service preferencesService) *PreferencesQuery {
	return &PreferencesQuery{service: service}
}

var _ gocommand.Querier[cockpit.ViewerContext, cockpit.WidgetConfig] = (*PreferencesQuery)(nil)

// Query returns the stored config merged over the defaults.
func (q *PreferencesQuery) Query(ctx context.Context, viewer cockpit.ViewerContext) (cockpit.WidgetConfig, error) {
	return q.service.Preferences(ctx, viewer)
}
