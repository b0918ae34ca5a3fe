package cockpit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ettle/strcase"
)

const (
	// FullWidthSpan is the column span that fills the whole grid row.
	FullWidthSpan = 5

	unitWrapperClass = "self-stretch [&>*]:h-full [&>*]:overflow-auto"
)

// Style is an inline style map keyed by camelCase CSS property.
type Style map[string]string

// Inline renders the style as a CSS declaration list.
func (s Style) Inline() string {
	if len(s) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", strcase.ToKebab(key), s[key]))
	}
	return strings.Join(parts, "; ")
}

// UnitLayout is the resolved grid placement of a rendered unit.
type UnitLayout struct {
	ColumnSpan  int    `json:"column_span"`
	RowSpan     int    `json:"row_span"`
	ColumnClass string `json:"column_class,omitempty"`
	RowClass    string `json:"row_class,omitempty"`
	ClassName   string `json:"class_name"`
	Style       Style  `json:"style,omitempty"`
}

// Clone returns a copy with its own style map.
func (l UnitLayout) Clone() UnitLayout {
	out := l
	out.Style = cloneMap(l.Style)
	return out
}

// ColumnSpan resolves the numeric column span of a widget. Edit-mode grids use
// it directly instead of the CSS class.
func ColumnSpan(widgetID string, widgets WidgetConfig, settings CardSettings) int {
	builtin := 1
	if IsFullWidth(widgetID) {
		builtin = FullWidthSpan
	}
	admin := layer[int]{}
	if setting, ok := settings.Find(widgetID); ok {
		admin = present(setting.ColumnSpan)
	}
	return resolveLayered(lookup(widgets.ColumnSpans, widgetID), admin, builtin, positiveSpan)
}

// ColumnSpanClass maps the resolved column span to its grid class.
func ColumnSpanClass(widgetID string, widgets WidgetConfig, settings CardSettings) string {
	return columnClass(ColumnSpan(widgetID, widgets, settings))
}

func columnClass(span int) string {
	switch span {
	case 2, 3, 4:
		return fmt.Sprintf("md:col-span-%d", span)
	case FullWidthSpan:
		return "col-span-full"
	default:
		return ""
	}
}

// RowSpan resolves the numeric row span of a widget.
func RowSpan(widgetID string, widgets WidgetConfig, settings CardSettings) int {
	builtin := DefaultRowSpan(widgetID)
	if builtin <= 0 {
		builtin = 1
	}
	admin := layer[int]{}
	if setting, ok := settings.Find(widgetID); ok {
		admin = present(setting.RowSpan)
	}
	return resolveLayered(lookup(widgets.RowSpans, widgetID), admin, builtin, positiveSpan)
}

// RowSpanClass maps the resolved row span to its grid class.
func RowSpanClass(widgetID string, widgets WidgetConfig, settings CardSettings) string {
	return rowClass(RowSpan(widgetID, widgets, settings))
}

func rowClass(span int) string {
	switch span {
	case 2, 3:
		return fmt.Sprintf("md:row-span-%d", span)
	default:
		return ""
	}
}

// MinHeightStyle returns the admin min height as a style. Viewers have no
// min-height override.
func MinHeightStyle(widgetID string, settings CardSettings) Style {
	admin := layer[string]{}
	if setting, ok := settings.Find(widgetID); ok {
		admin = present(setting.MinHeight)
	}
	height := resolveLayered(layer[string]{}, admin, "", explicitHeight)
	if height == "" {
		return Style{}
	}
	return Style{"minHeight": strings.TrimSpace(height)}
}

// ResolveLayout bundles every calculator for one widget.
func ResolveLayout(widgetID string, widgets WidgetConfig, settings CardSettings) UnitLayout {
	colSpan := ColumnSpan(widgetID, widgets, settings)
	rowSpan := RowSpan(widgetID, widgets, settings)
	layout := UnitLayout{
		ColumnSpan:  colSpan,
		RowSpan:     rowSpan,
		ColumnClass: columnClass(colSpan),
		RowClass:    rowClass(rowSpan),
		Style:       MinHeightStyle(widgetID, settings),
	}
	layout.ClassName = joinClasses(layout.ColumnClass, layout.RowClass, unitWrapperClass)
	return layout
}

func linebreakLayout() UnitLayout {
	return UnitLayout{
		ColumnSpan:  FullWidthSpan,
		RowSpan:     1,
		ColumnClass: columnClass(FullWidthSpan),
		ClassName:   columnClass(FullWidthSpan),
		Style:       Style{},
	}
}

func joinClasses(classes ...string) string {
	parts := make([]string, 0, len(classes))
	for _, class := range classes {
		if class = strings.TrimSpace(class); class != "" {
			parts = append(parts, class)
		}
	}
	return strings.Join(parts, " ")
}
