package cockpit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifications struct {
	channels []string
	events   []CockpitEvent
	err      error
}

func (r *recordingNotifications) PublishCockpitEvent(_ context.Context, channel string, event CockpitEvent) error {
	r.channels = append(r.channels, channel)
	r.events = append(r.events, event)
	return r.err
}

func TestNotificationsHookPublishes(t *testing.T) {
	client := &recordingNotifications{}
	hook := &NotificationsHook{Client: client}
	require.NoError(t, hook.CockpitChanged(context.Background(), CockpitEvent{PracticeID: "p1", Reason: ReasonReset}))
	assert.Equal(t, []string{"cockpit"}, client.channels)
	assert.Equal(t, ReasonReset, client.events[0].Reason)

	var missing *NotificationsHook
	require.NoError(t, missing.CockpitChanged(context.Background(), CockpitEvent{}))
}

func TestRefreshHooksFanOutAndJoinErrors(t *testing.T) {
	broadcast := NewBroadcastHook()
	events, cancel := broadcast.Subscribe()
	defer cancel()
	failing := &recordingNotifications{err: errors.New("smtp down")}
	hooks := RefreshHooks{broadcast, nil, &NotificationsHook{Client: failing, Channel: "ops"}}

	err := hooks.CockpitChanged(context.Background(), CockpitEvent{PracticeID: "p1", Reason: ReasonSeed})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Equal(t, "p1", (<-events).PracticeID)
	assert.Equal(t, []string{"ops"}, failing.channels)
}

func TestServiceNotifiesAllHooks(t *testing.T) {
	client := &recordingNotifications{}
	service := NewService(Options{RefreshHook: RefreshHooks{&NotificationsHook{Client: client}}})
	viewer := ViewerContext{PracticeID: "p1", UserID: "u1"}
	require.NoError(t, service.ResetPreferences(context.Background(), viewer))
	require.Len(t, client.events, 1)
	assert.Equal(t, "u1", client.events[0].UserID)
}
