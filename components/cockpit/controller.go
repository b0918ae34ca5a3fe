package cockpit

import (
	"context"
	"errors"
	"io"
)

// DefaultTemplate is the embedded cockpit page template.
const DefaultTemplate = "cockpit"

// TemplateRenderer describes the template renderer contract needed by the controller.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

type dashboardResolver interface {
	Dashboard(ctx context.Context, viewer ViewerContext) (Composition, error)
}

// ControllerOptions wires a Controller.
type ControllerOptions struct {
	Service  dashboardResolver
	Renderer TemplateRenderer
	Template string
}

// Controller turns compositions into JSON payloads and HTML.
type Controller struct {
	service  dashboardResolver
	renderer TemplateRenderer
	template string
}

// NewController builds a controller.
func NewController(opts ControllerOptions) *Controller {
	template := opts.Template
	if template == "" {
		template = DefaultTemplate
	}
	return &Controller{service: opts.Service, renderer: opts.Renderer, template: template}
}

// LayoutPayload returns the JSON view consumed by client grids: the
// normal-mode units plus numeric spans for every ordered id.
func (c *Controller) LayoutPayload(ctx context.Context, viewer ViewerContext) (map[string]any, error) {
	composition, err := c.compose(ctx, viewer)
	if err != nil {
		return nil, err
	}
	spans := make(map[string]int, len(composition.Order))
	for _, id := range composition.Order {
		spans[id] = composition.ColumnSpanForEdit(id)
	}
	return map[string]any{
		"practice_id":  SanitizePracticeID(viewer.PracticeID),
		"user_id":      viewer.UserID,
		"order":        composition.Order,
		"units":        composition.Units,
		"column_spans": spans,
		"widgets":      composition.Widgets,
	}, nil
}

// EditPayload returns every ordered widget rendered in edit mode together with
// the catalog, for editor surfaces.
func (c *Controller) EditPayload(ctx context.Context, viewer ViewerContext) (map[string]any, error) {
	composition, err := c.compose(ctx, viewer)
	if err != nil {
		return nil, err
	}
	catalog := make([]map[string]any, 0, len(widgetCatalog))
	for _, def := range widgetCatalog {
		catalog = append(catalog, map[string]any{
			"id":          def.ID,
			"label":       def.LabelForLocale(viewer.Locale),
			"description": def.DescriptionForLocale(viewer.Locale),
			"icon":        def.Icon,
			"category":    def.Category,
			"enabled":     composition.Widgets.Enabled(def.ID),
			"column_span": composition.ColumnSpanForEdit(def.ID),
		})
	}
	return map[string]any{
		"order":   composition.Order,
		"units":   composition.EditUnits(),
		"catalog": catalog,
		"widgets": composition.Widgets,
	}, nil
}

// RenderTemplate writes the cockpit page for viewer to out.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("cockpit: controller renderer not configured")
	}
	composition, err := c.compose(ctx, viewer)
	if err != nil {
		return err
	}
	units := make([]map[string]any, 0, len(composition.Units))
	for _, unit := range composition.Units {
		units = append(units, templateUnit(unit))
	}
	data := map[string]any{
		"practice_id": SanitizePracticeID(viewer.PracticeID),
		"locale":      viewer.Locale,
		"units":       units,
	}
	_, err = c.renderer.Render(c.template, data, out)
	return err
}

func (c *Controller) compose(ctx context.Context, viewer ViewerContext) (Composition, error) {
	if c.service == nil {
		return Composition{}, errors.New("cockpit: controller service not configured")
	}
	return c.service.Dashboard(ctx, viewer)
}

func templateUnit(unit Unit) map[string]any {
	view := map[string]any{
		"id":         unit.ID,
		"kind":       string(unit.Kind),
		"title":      unit.Title,
		"subtitle":   unit.Subtitle,
		"value":      unit.Value,
		"icon":       unit.Icon,
		"color":      unit.Color,
		"href":       unit.Href,
		"chart_html": unit.ChartHTML,
		"linebreak":  unit.Kind == UnitLinebreak,
		"data":       unit.Data,
	}
	if unit.Trend != nil {
		view["trend"] = *unit.Trend
	}
	if unit.Layout != nil {
		view["class_name"] = unit.Layout.ClassName
		view["style"] = unit.Layout.Style.Inline()
	}
	return view
}
