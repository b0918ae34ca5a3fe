// Package cockpit is the public entry point for embedding the practice
// cockpit. It re-exports the core service types and wires the default SQLite
// and practice API backed stack.
package cockpit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	core "github.com/goliatone/go-cockpit/components/cockpit"
	"github.com/goliatone/go-cockpit/components/cockpit/sqlstore"
	"github.com/goliatone/go-cockpit/pkg/practiceapi"
)

// Service exposes the underlying components/cockpit.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// ViewerContext re-export for convenience.
type ViewerContext = core.ViewerContext

// Composition re-export for convenience.
type Composition = core.Composition

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// Config describes the default stack.
type Config struct {
	// DSN of the SQLite database; ":memory:" when empty.
	DSN string
	// PracticeAPI enables remote stats and practice lookups when BaseURL is set.
	PracticeAPI practiceapi.HTTPConfig
	StatsTTL    time.Duration
	Authorizer  core.Authorizer
	Logger      *zap.Logger

	// Notifications receives every refresh event next to the broadcast hub.
	Notifications        core.NotificationsClient
	NotificationsChannel string
}

// Stack bundles the service with the collaborators it was built from.
type Stack struct {
	Service   *Service
	Store     *sqlstore.Store
	Broadcast *core.BroadcastHook
	Practices *practiceapi.HTTPClient
}

// Close releases the database.
func (s *Stack) Close() error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

// NewStack opens the store, connects the practice API when configured and
// builds a Service that broadcasts refresh events.
func NewStack(ctx context.Context, cfg Config) (*Stack, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dsn := cfg.DSN
	if dsn == "" {
		dsn = ":memory:"
	}
	store, err := sqlstore.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	stack := &Stack{Store: store, Broadcast: core.NewBroadcastHook()}
	telemetry := core.NewLoggerTelemetry(logger)
	hooks := core.RefreshHooks{stack.Broadcast}
	if cfg.Notifications != nil {
		hooks = append(hooks, &core.NotificationsHook{Client: cfg.Notifications, Channel: cfg.NotificationsChannel})
	}
	opts := Options{
		PreferenceStore: store,
		CardSettings:    store,
		Authorizer:      cfg.Authorizer,
		RefreshHook:     hooks,
		Telemetry:       telemetry,
		Logger:          logger,
		Composer: core.NewComposer(core.ComposerOptions{
			Translator: core.CatalogTranslations{},
			Charts:     core.NewEChartsRenderer(),
			Logger:     logger,
			Telemetry:  telemetry,
		}),
	}
	if cfg.PracticeAPI.BaseURL != "" {
		client, err := practiceapi.NewHTTPClient(cfg.PracticeAPI)
		if err != nil {
			return nil, errors.Join(err, store.Close())
		}
		stack.Practices = client
		opts.Stats = practiceapi.NewCachedStats(client, cfg.StatsTTL)
		opts.Practices = client
	}
	stack.Service = core.NewService(opts)
	return stack, nil
}
