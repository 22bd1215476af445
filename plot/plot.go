package plot

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sartorproj/covidframe/frame"
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat maps "png" or "svg" (any case, optional leading dot) to a
// Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case PNG, SVG:
		return f, nil
	default:
		return "", frame.ArgumentError("plot.ParseFormat", "unknown image format %q (want png or svg)", s)
	}
}

// Options control labels and size. Zero values fall back to defaults
// derived from the column names.
type Options struct {
	XLabel string
	YLabel string
	// Y2Label labels the secondary axis of LinesTwoY.
	Y2Label string
	Title   string
	// LegendOrder lists group values in the order their lines are drawn
	// and listed. Groups not named are left out. Empty means order of first
	// appearance.
	LegendOrder []string
	LogScale    bool
	Width       int
	Height      int
}

// DefaultOptions returns an 1100x850 canvas with generated labels.
func DefaultOptions() Options {
	return Options{Width: 1100, Height: 850}
}

type line struct {
	xs []float64
	ys []float64
}

// Lines plots y against x with one line per distinct value of group.
//
// The table must be long. x may be the date column, a date key or a
// numeric column; y must be a metric. Rows where x or y is missing are
// skipped, as are non-positive values on a log scale. Several rows with
// the same x in one group are averaged.
func Lines(t *frame.Table, x, y, group string, opts Options) (*chart.Chart, error) {
	const op = "plot.Lines"
	timeX, err := checkColumns(t, op, x, y)
	if err != nil {
		return nil, err
	}
	if err := frame.RequireColumns(t, op, group); err != nil {
		return nil, err
	}

	groups, err := frame.GroupBy(t, []string{group})
	if err != nil {
		return nil, err
	}
	if groups, err = orderGroups(groups, opts.LegendOrder); err != nil {
		return nil, err
	}

	var series []chart.Series
	for i, g := range groups {
		ln, err := collect(t, g.Rows, x, y, opts.LogScale)
		if err != nil {
			return nil, err
		}
		if len(ln.xs) == 0 {
			continue
		}
		style := chart.Style{StrokeColor: chart.GetDefaultColor(i), StrokeWidth: 2}
		series = append(series, newSeries(g.Key[0].String(), ln, timeX, style, chart.YAxisPrimary))
	}
	if len(series) == 0 {
		return nil, frame.ArgumentError(op, "no plottable values in %q against %q", y, x)
	}

	xLab, yLab := orDefault(opts.XLabel, x), orDefault(opts.YLabel, y)
	title := orDefault(opts.Title, fmt.Sprintf("%s vs %s", x, y))
	if opts.LogScale {
		yLab += " (log scale)"
		title += " (y axis log scale)"
	}

	ch := newChart(opts, title, xLab, timeX, series)
	ch.YAxis = yAxis(yLab, opts.LogScale)
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch, nil
}

// LinesTwoY plots y1 on the left axis and y2 on the right axis against a
// shared x. Rows with the same x are averaged.
func LinesTwoY(t *frame.Table, x, y1, y2 string, opts Options) (*chart.Chart, error) {
	const op = "plot.LinesTwoY"
	timeX, err := checkColumns(t, op, x, y1, y2)
	if err != nil {
		return nil, err
	}

	xLab := orDefault(opts.XLabel, x)
	y1Lab, y2Lab := orDefault(opts.YLabel, y1), orDefault(opts.Y2Label, y2)
	title := orDefault(opts.Title, fmt.Sprintf("%s vs %s and %s", xLab, y1Lab, y2Lab))
	if opts.LogScale {
		y1Lab += " (log scale)"
		y2Lab += " (log scale)"
		title += " (y axes log scale)"
	}

	rows := make([]int, t.NumRows())
	for r := range rows {
		rows[r] = r
	}
	var series []chart.Series
	for _, s := range []struct {
		col, name string
		color     drawing.Color
		axis      chart.YAxisType
	}{
		{y1, y1Lab, chart.ColorBlue, chart.YAxisPrimary},
		{y2, y2Lab, chart.ColorGreen, chart.YAxisSecondary},
	} {
		ln, err := collect(t, rows, x, s.col, opts.LogScale)
		if err != nil {
			return nil, err
		}
		if len(ln.xs) == 0 {
			return nil, frame.ArgumentError(op, "no plottable values in %q against %q", s.col, x)
		}
		series = append(series, newSeries(s.name, ln, timeX, chart.Style{StrokeColor: s.color, StrokeWidth: 2}, s.axis))
	}

	ch := newChart(opts, title, xLab, timeX, series)
	ch.YAxis = yAxis(y1Lab, opts.LogScale)
	ch.YAxisSecondary = yAxis(y2Lab, opts.LogScale)
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch, nil
}

// Render writes the chart to w.
func Render(ch *chart.Chart, w io.Writer, f Format) error {
	var provider chart.RendererProvider
	switch f {
	case PNG:
		provider = chart.PNG
	case SVG:
		provider = chart.SVG
	default:
		return frame.ArgumentError("plot.Render", "unknown image format %q", f)
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("plot.Render: %w", err)
	}
	return nil
}

// WriteFile renders the chart to path in the format named by its
// extension.
func WriteFile(ch *chart.Chart, path string) (err error) {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Render(ch, out, f)
}

// checkColumns reports whether x is a date axis.
func checkColumns(t *frame.Table, op, x string, ys ...string) (bool, error) {
	if t.Layout() != frame.Long {
		return false, &frame.InvalidShapeError{Op: op, Reason: "charts need a long table", Columns: t.Columns()}
	}
	if err := frame.RequireColumns(t, op, append([]string{x}, ys...)...); err != nil {
		return false, err
	}
	for _, y := range ys {
		if !t.HasMetric(y) {
			return false, frame.ArgumentError(op, "%q is not a metric column", y)
		}
	}
	if x == frame.DateColumn || t.HasMetric(x) {
		return x == frame.DateColumn, nil
	}
	keys, _ := t.Keys(x)
	kind := frame.KindNull
	for _, v := range keys {
		if !v.IsNull() {
			kind = v.Kind()
			break
		}
	}
	switch kind {
	case frame.KindDate:
		return true, nil
	case frame.KindNumber:
		return false, nil
	default:
		return false, frame.ArgumentError(op, "x column %q holds neither dates nor numbers", x)
	}
}

func orderGroups(groups []frame.Group, order []string) ([]frame.Group, error) {
	if len(order) == 0 {
		return groups, nil
	}
	byName := make(map[string]frame.Group, len(groups))
	for _, g := range groups {
		byName[g.Key[0].String()] = g
	}
	out := make([]frame.Group, 0, len(order))
	for _, name := range order {
		g, ok := byName[name]
		if !ok {
			return nil, frame.ArgumentError("plot.Lines", "legend entry %q is not a group value", name)
		}
		out = append(out, g)
	}
	return out, nil
}

// collect gathers the (x, y) points of rows sorted by x, averaging
// duplicate x values.
func collect(t *frame.Table, rows []int, x, y string, logScale bool) (line, error) {
	sums := make(map[float64]float64)
	counts := make(map[float64]int)
	for _, r := range rows {
		xv, err := t.Cell(x, r)
		if err != nil {
			return line{}, err
		}
		yv, err := t.Cell(y, r)
		if err != nil {
			return line{}, err
		}
		if xv.IsNull() || yv.IsNull() {
			continue
		}
		val := yv.Float()
		if logScale {
			if val <= 0 {
				continue
			}
			val = math.Log10(val)
		}
		k := xValue(xv)
		sums[k] += val
		counts[k]++
	}

	var ln line
	for k := range sums {
		ln.xs = append(ln.xs, k)
	}
	sort.Float64s(ln.xs)
	for _, k := range ln.xs {
		ln.ys = append(ln.ys, sums[k]/float64(counts[k]))
	}
	return ln, nil
}

func xValue(v frame.Value) float64 {
	if v.Kind() == frame.KindDate {
		return float64(v.Time().Unix())
	}
	return v.Float()
}

func newSeries(name string, ln line, timeX bool, style chart.Style, axis chart.YAxisType) chart.Series {
	xs, ys := ln.xs, ln.ys
	// A single point has no x range to draw on.
	if len(xs) == 1 {
		step := 1.0
		if timeX {
			step = 24 * 60 * 60
		}
		xs = []float64{xs[0], xs[0] + step}
		ys = []float64{ys[0], ys[0]}
	}
	if !timeX {
		return chart.ContinuousSeries{Name: name, Style: style, YAxis: axis, XValues: xs, YValues: ys}
	}
	times := make([]time.Time, len(xs))
	for i, s := range xs {
		times[i] = time.Unix(int64(s), 0).UTC()
	}
	return chart.TimeSeries{Name: name, Style: style, YAxis: axis, XValues: times, YValues: ys}
}

func newChart(opts Options, title, xLab string, timeX bool, series []chart.Series) *chart.Chart {
	def := DefaultOptions()
	ch := &chart.Chart{
		Title:      title,
		Width:      orDefaultInt(opts.Width, def.Width),
		Height:     orDefaultInt(opts.Height, def.Height),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: xLab},
		Series:     series,
	}
	if timeX {
		ch.XAxis.ValueFormatter = dateFormatter
	}
	return ch
}

func yAxis(name string, logScale bool) chart.YAxis {
	ax := chart.YAxis{Name: name}
	if logScale {
		ax.ValueFormatter = powerFormatter
	}
	return ax
}

func dateFormatter(v interface{}) string {
	switch tv := v.(type) {
	case time.Time:
		return tv.Format(frame.DateFormat)
	case float64:
		return time.Unix(0, int64(tv)).UTC().Format(frame.DateFormat)
	}
	return ""
}

// powerFormatter labels log10 ticks with the original magnitude.
func powerFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(math.Pow(10, f), 'g', 4, 64)
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultInt(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
