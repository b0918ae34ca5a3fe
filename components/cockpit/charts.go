package cockpit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "280px"

// ChartRenderer turns chart-backed units into embeddable markup. Units it does
// not draw yield an empty string.
type ChartRenderer interface {
	RenderChart(ctx context.Context, unit Unit) (string, error)
}

// EChartsRenderer draws the weekly tasks, schedule, activity and KPI units.
type EChartsRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// EChartsOption customizes the renderer.
type EChartsOption func(*EChartsRenderer)

// WithChartCache injects a render cache; nil disables caching.
func WithChartCache(cache RenderCache) EChartsOption {
	return func(r *EChartsRenderer) {
		r.cache = cache
	}
}

// WithChartTheme overrides the default Westeros theme.
func WithChartTheme(theme string) EChartsOption {
	return func(r *EChartsRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartAssetsHost points the generated pages at a different ECharts host.
func WithChartAssetsHost(host string) EChartsOption {
	return func(r *EChartsRenderer) {
		r.assetsHost = host
	}
}

// NewEChartsRenderer builds a renderer with a five minute chart cache.
func NewEChartsRenderer(options ...EChartsOption) *EChartsRenderer {
	r := &EChartsRenderer{
		cache: NewChartCache(5 * time.Minute),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// RenderChart implements ChartRenderer.
func (r *EChartsRenderer) RenderChart(_ context.Context, unit Unit) (string, error) {
	var render func() (string, error)
	switch data := unit.Data.(type) {
	case []WeeklyTaskDay:
		render = func() (string, error) { return r.weeklyTasks(unit.Title, data) }
	case []ScheduleSlot:
		render = func() (string, error) { return r.schedule(unit.Title, data) }
	case []ActivityPoint:
		render = func() (string, error) { return r.activity(unit.Title, data) }
	case KPIData:
		render = func() (string, error) { return r.kpi(unit.Title, data) }
	default:
		return "", nil
	}
	if r.cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s:%s", unit.ID, unit.Kind, r.theme, contentHash(unit.Data))
	return r.cache.GetOrRender(key, render)
}

func (r *EChartsRenderer) weeklyTasks(title string, days []WeeklyTaskDay) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOptions(title)...)
	labels := make([]string, len(days))
	completed := make([]opts.BarData, len(days))
	pending := make([]opts.BarData, len(days))
	for i, day := range days {
		labels[i] = day.Day
		completed[i] = opts.BarData{Name: day.Day, Value: day.Completed}
		pending[i] = opts.BarData{Name: day.Day, Value: day.Pending}
	}
	bar.SetXAxis(labels).
		AddSeries("Erledigt", completed).
		AddSeries("Ausstehend", pending)
	return renderChart(bar)
}

func (r *EChartsRenderer) schedule(title string, slots []ScheduleSlot) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOptions(title)...)
	labels := make([]string, len(slots))
	data := make([]opts.BarData, len(slots))
	for i, slot := range slots {
		labels[i] = slot.Time
		data[i] = opts.BarData{Name: slot.Time, Value: slot.Appointments}
	}
	bar.SetXAxis(labels).AddSeries("Termine", data)
	return renderChart(bar)
}

func (r *EChartsRenderer) activity(title string, points []ActivityPoint) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalOptions(title)...)
	labels := make([]string, len(points))
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		labels[i] = point.Date
		data[i] = opts.LineData{Name: point.Date, Value: point.Value}
	}
	line.SetXAxis(labels).AddSeries("Aktivität", data)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return renderChart(line)
}

func (r *EChartsRenderer) kpi(title string, kpi KPIData) (string, error) {
	gauge := charts.NewGauge()
	gauge.SetGlobalOptions(r.globalOptions(title)...)
	gauge.AddSeries("Score", []opts.GaugeData{{Name: "Score", Value: kpi.Score}})
	return renderChart(gauge)
}

func (r *EChartsRenderer) globalOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
