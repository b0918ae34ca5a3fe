package cockpit

import "context"

// ActivityContext identifies who triggered a write.
type ActivityContext struct {
	ActorID    string
	UserID     string
	PracticeID string
}

type activityContextKey struct{}

// ContextWithActivity stores activity metadata on ctx.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

func activityContextFrom(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	if meta, ok := ctx.Value(activityContextKey{}).(ActivityContext); ok {
		return meta
	}
	return ActivityContext{}
}

// withActor adds the actor of ctx to a telemetry payload, defaulting to the
// viewer when no activity metadata was attached.
func withActor(ctx context.Context, viewer ViewerContext, payload map[string]any) map[string]any {
	meta := activityContextFrom(ctx)
	actor := meta.ActorID
	if actor == "" {
		actor = viewer.UserID
	}
	if actor != "" {
		payload["actor_id"] = actor
	}
	return payload
}
