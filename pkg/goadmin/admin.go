package goadmin

import (
	"context"
	"errors"
	"fmt"

	core "github.com/goliatone/go-cockpit/components/cockpit"
	cockpitpkg "github.com/goliatone/go-cockpit/pkg/cockpit"
)

// MenuBuilder ensures cockpit entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures cockpit link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the cockpit service into an admin shell.
type Config struct {
	EnableCockpit   bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *cockpitpkg.Service
	DefaultMenuItem MenuItem
	// Seeds are card-settings manifests applied on Bootstrap. Each manifest
	// must name its practice.
	Seeds []*core.CardSettingsManifest
	// SeedActor is recorded as the user behind seeded settings.
	SeedActor string
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed cockpit menus and settings.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableCockpit && cfg.Service == nil {
		return nil, errors.New("goadmin: cockpit service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "app.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Cockpit"
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = "app.cockpit"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "layout-dashboard"
	}
	if cfg.SeedActor == "" {
		cfg.SeedActor = "system"
	}
	return &Admin{cfg: cfg}, nil
}

// Cockpit exposes the configured service when enabled.
func (a *Admin) Cockpit() *cockpitpkg.Service {
	if !a.cfg.EnableCockpit {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap seeds the menu entry and the configured card-settings manifests.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableCockpit {
		return nil
	}
	if a.cfg.MenuBuilder != nil {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, a.cfg.DefaultMenuItem); err != nil {
			return fmt.Errorf("goadmin: ensure menu item: %w", err)
		}
	}
	ctx = core.ContextWithActivity(ctx, core.ActivityContext{ActorID: a.cfg.SeedActor})
	for _, doc := range a.cfg.Seeds {
		if doc == nil {
			continue
		}
		viewer := core.ViewerContext{PracticeID: doc.PracticeID, UserID: a.cfg.SeedActor}
		if _, err := a.cfg.Service.SeedCardSettings(ctx, viewer, doc); err != nil {
			return fmt.Errorf("goadmin: seed %s: %w", doc.Name, err)
		}
	}
	return nil
}
