package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ettle/strcase"
	"go.uber.org/zap"

	"github.com/goliatone/go-cockpit/components/cockpit"
	"github.com/goliatone/go-cockpit/components/cockpit/sqlstore"
)

type inputFlags struct {
	Config   string `type:"existingfile" help:"Preferences document (JSON, flat or wrapped in widgets)."`
	Settings string `type:"existingfile" help:"Card-settings manifest (YAML)."`
}

func (f inputFlags) load(logger *zap.Logger) (cockpit.WidgetConfig, cockpit.CardSettings, error) {
	widgets := cockpit.DefaultWidgetConfig()
	if f.Config != "" {
		data, err := os.ReadFile(f.Config)
		if err != nil {
			return widgets, nil, fmt.Errorf("cockpitctl: read config: %w", err)
		}
		decoded := cockpit.DecodeConfig(data)
		if decoded.Shape == cockpit.ShapeUnrecognized {
			logger.Warn("config not recognized, using defaults", zap.String("path", f.Config))
		}
		widgets = decoded.Widgets.WithDefaults()
	}
	var settings cockpit.CardSettings
	if f.Settings != "" {
		doc, err := cockpit.ReadCardSettingsManifest(f.Settings)
		if err != nil {
			return widgets, nil, err
		}
		settings = doc.Settings
	}
	return widgets, settings, nil
}

type composeCmd struct {
	inputFlags `embed:""`

	Practice string `default:"practice" help:"Practice id used for practice-context gating."`
	User     string `help:"User id recorded on the composition."`
	Locale   string `help:"Locale for titles (e.g. en)."`
	Edit     bool   `help:"Render every ordered widget in edit mode."`
	JSON     bool   `name:"json" help:"Print the units as JSON."`
}

func (cmd *composeCmd) Run(ctx context.Context, logger *zap.Logger, out io.Writer) error {
	widgets, settings, err := cmd.load(logger)
	if err != nil {
		return err
	}
	composer := cockpit.NewComposer(cockpit.ComposerOptions{
		Translator: cockpit.CatalogTranslations{},
		Logger:     logger,
	})
	composition := composer.Compose(ctx, cockpit.ComposeInput{
		DashboardConfig: widgets,
		CardSettings:    settings,
		PracticeID:      cmd.Practice,
		UserID:          cmd.User,
		Locale:          cmd.Locale,
	})
	units := composition.Units
	if cmd.Edit {
		units = composition.EditUnits()
	}
	if cmd.JSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(units)
	}
	return writeUnitTable(out, units)
}

func writeUnitTable(out io.Writer, units []cockpit.Unit) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tKIND\tCOLS\tROWS\tCLASS\tSTYLE")
	for idx, unit := range units {
		cols, rows, class, style := "-", "-", "", ""
		if unit.Layout != nil {
			cols = fmt.Sprint(unit.Layout.ColumnSpan)
			rows = fmt.Sprint(unit.Layout.RowSpan)
			class = unit.Layout.ClassName
			style = unit.Layout.Style.Inline()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", idx+1, unit.ID, unit.Kind, cols, rows, class, style)
	}
	return tw.Flush()
}

type spanCmd struct {
	inputFlags `embed:""`

	Widget string `arg:"" help:"Widget id (showWeeklyTasks) or slug (weekly-tasks)."`
}

func (cmd *spanCmd) Run(logger *zap.Logger, out io.Writer) error {
	id, ok := resolveWidgetID(cmd.Widget)
	if !ok {
		return fmt.Errorf("cockpitctl: unknown widget %s", cmd.Widget)
	}
	widgets, settings, err := cmd.load(logger)
	if err != nil {
		return err
	}
	layout := cockpit.ResolveLayout(id, widgets, settings)
	fmt.Fprintf(out, "widget:       %s\n", id)
	fmt.Fprintf(out, "column_span:  %d\n", layout.ColumnSpan)
	fmt.Fprintf(out, "row_span:     %d\n", layout.RowSpan)
	fmt.Fprintf(out, "column_class: %s\n", layout.ColumnClass)
	fmt.Fprintf(out, "row_class:    %s\n", layout.RowClass)
	fmt.Fprintf(out, "class_name:   %s\n", layout.ClassName)
	fmt.Fprintf(out, "style:        %s\n", layout.Style.Inline())
	return nil
}

type validateCmd struct {
	Manifests []string `arg:"" type:"existingfile" help:"Manifest files to check."`
}

func (cmd *validateCmd) Run(logger *zap.Logger, out io.Writer) error {
	failed := 0
	for _, path := range cmd.Manifests {
		doc, err := cockpit.ReadCardSettingsManifest(path)
		if err != nil {
			failed++
			logger.Error("invalid manifest", zap.String("path", path), zap.Error(err))
			fmt.Fprintf(out, "✗ %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "✓ %s: %d settings\n", path, len(doc.Settings))
	}
	if failed > 0 {
		return fmt.Errorf("cockpitctl: %d of %d manifests invalid", failed, len(cmd.Manifests))
	}
	return nil
}

type seedCmd struct {
	Manifest string `arg:"" type:"existingfile" help:"Card-settings manifest to seed."`
	DB       string `name:"db" default:"cockpit.db" type:"path" help:"SQLite database file."`
	Practice string `help:"Practice id; overrides practice_id in the manifest."`
	Actor    string `default:"cockpitctl" help:"User id recorded as actor."`
}

func (cmd *seedCmd) Run(ctx context.Context, logger *zap.Logger, out io.Writer) error {
	doc, err := cockpit.ReadCardSettingsManifest(cmd.Manifest)
	if err != nil {
		return err
	}
	if cmd.Practice != "" {
		doc.PracticeID = cmd.Practice
	}
	store, err := sqlstore.Open(ctx, cmd.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	service := cockpit.NewService(cockpit.Options{
		PreferenceStore: store,
		CardSettings:    store,
		Logger:          logger,
		Telemetry:       cockpit.NewLoggerTelemetry(logger),
	})
	ctx = cockpit.ContextWithActivity(ctx, cockpit.ActivityContext{ActorID: cmd.Actor})
	count, err := service.SeedCardSettings(ctx, cockpit.ViewerContext{PracticeID: doc.PracticeID, UserID: cmd.Actor}, doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Seeded %d settings for %s into %s\n", count, cockpit.SanitizePracticeID(doc.PracticeID), cmd.DB)
	return nil
}

type widgetsCmd struct{}

func (cmd *widgetsCmd) Run(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tCATEGORY\tDEFAULT\tLABEL")
	for _, def := range cockpit.WidgetDefinitions() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", def.ID, widgetSlug(def.ID), def.Category, def.DefaultEnabled, def.Label)
	}
	return tw.Flush()
}

func widgetSlug(id string) string {
	return strcase.ToKebab(strings.TrimPrefix(id, "show"))
}

// resolveWidgetID accepts catalog ids and their slugs, ignoring case and
// separators.
func resolveWidgetID(input string) (string, bool) {
	if cockpit.IsKnownWidget(input) {
		return input, true
	}
	want := squash(input)
	for _, def := range cockpit.WidgetDefinitions() {
		if squash(def.ID) == want || squash(strings.TrimPrefix(def.ID, "show")) == want || squash(widgetSlug(def.ID)) == want {
			return def.ID, true
		}
	}
	return "", false
}

func squash(s string) string {
	return strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.TrimSpace(s)))
}
