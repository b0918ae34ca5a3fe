package queries

import (
	"context"

	cockpit "github.com/goliatone/go-cockpit/components/cockpit"
	gocommand "github.com/goliatone/go-command"
)

// CardSettingsInput identifies the practice whose admin settings are listed.
type CardSettingsInput struct {
	PracticeID string
}

type cardSettingsService interface {
	CardSettings(ctx context.Context, practiceID string) (cockpit.CardSettings, error)
}

// CardSettingsQuery lists the admin card settings of a practice.
type CardSettingsQuery struct {
	service cardSettingsService
}

// NewCardSettingsQuery builds the query.
func NewCardSettingsQuery(service cardSettingsService) *CardSettingsQuery {
	return &CardSettingsQuery{service: service}
}

var _ gocommand.Querier[CardSettingsInput, cockpit.CardSettings] = (*CardSettingsQuery)(nil)

// Query lists the settings.
func (q *CardSettingsQuery) Query(ctx context.Context, input CardSettingsInput) (cockpit.CardSettings, error) {
	practiceID := cockpit.SanitizePracticeID(input.PracticeID)
	if practiceID == "" {
		return nil, cockpit.ErrPracticeRequired
	}
	return q.service.CardSettings(ctx, practiceID)
}
