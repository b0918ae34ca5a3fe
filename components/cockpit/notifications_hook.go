package cockpit

import (
	"context"
	"errors"
)

// NotificationsClient is the minimal contract of an external notification
// service that wants to hear about cockpit changes.
type NotificationsClient interface {
	PublishCockpitEvent(ctx context.Context, channel string, event CockpitEvent) error
}

// NotificationsHook forwards cockpit events to a notifications client.
type NotificationsHook struct {
	Client  NotificationsClient
	Channel string
}

// CockpitChanged publishes the event on the configured channel.
func (h *NotificationsHook) CockpitChanged(ctx context.Context, event CockpitEvent) error {
	if h == nil || h.Client == nil {
		return nil
	}
	channel := h.Channel
	if channel == "" {
		channel = "cockpit"
	}
	return h.Client.PublishCockpitEvent(ctx, channel, event)
}

// RefreshHooks fans an event out to every hook. All hooks run; their errors
// are joined.
type RefreshHooks []RefreshHook

// CockpitChanged notifies each non-nil hook in order.
func (hooks RefreshHooks) CockpitChanged(ctx context.Context, event CockpitEvent) error {
	var errs []error
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook.CockpitChanged(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
