package presentation

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/chrissnell/autosales/internal/types"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an output image encoding
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Rendering limits
const (
	DefaultWidth  = 640
	DefaultHeight = 400
	maxXTicks     = 12
	minDotWidth   = 3.0
	maxDotWidth   = 14.0
)

var (
	ErrUnknownFormat = errors.New("unknown image format")
	ErrNoData        = errors.New("series set has no points")
)

// ParseFormat maps a file extension (with or without the dot) to a Format
func ParseFormat(ext string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(ext, "."))); f {
	case FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// ContentType returns the MIME type for f
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

// Options controls the rendered image size
type Options struct {
	Width  int
	Height int
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// Render draws set to w in the requested format
func Render(w io.Writer, set types.SeriesSet, format Format, opts Options) error {
	if len(set.Points) == 0 {
		return fmt.Errorf("%w: %s", ErrNoData, set.Pipeline)
	}
	width, height := opts.size()

	var err error
	switch set.Kind {
	case types.ChartLine, types.ChartScatter:
		err = renderXY(w, set, format, width, height)
	case types.ChartBar:
		err = renderBar(w, set, format, width, height)
	case types.ChartPie:
		err = renderPie(w, set, format, width, height)
	default:
		err = fmt.Errorf("unsupported chart kind %q", set.Kind)
	}
	if err != nil {
		return fmt.Errorf("error rendering %s: %w", set.Pipeline, err)
	}
	return nil
}

func seriesStyle(kind types.ChartKind, col drawing.Color) chart.Style {
	if kind == types.ChartScatter {
		return chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    minDotWidth,
			DotColor:    col,
		}
	}
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
		DotWidth:    3,
		DotColor:    col,
	}
}

// renderXY draws line and scatter charts with one series per group
func renderXY(w io.Writer, set types.SeriesSet, format Format, width, height int) error {
	maxSize := 0.0
	for _, p := range set.Points {
		maxSize = math.Max(maxSize, p.Size)
	}

	var series []chart.Series
	for i, group := range set.Groups() {
		var xs, ys, sizes []float64
		for _, p := range set.Points {
			if p.Group != group {
				continue
			}
			xs = append(xs, p.XValue)
			ys = append(ys, p.Y)
			sizes = append(sizes, p.Size)
		}

		st := seriesStyle(set.Kind, chart.GetDefaultColor(i))
		if set.Kind == types.ChartScatter && maxSize > 0 {
			st.DotWidthProvider = func(_, _ chart.Range, index int, _, _ float64) float64 {
				return minDotWidth + (maxDotWidth-minDotWidth)*sizes[index]/maxSize
			}
		}

		name := group
		if set.GroupLabel != "" && group != "" {
			name = fmt.Sprintf("%s %s", set.GroupLabel, group)
		}
		series = append(series, chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: st})
	}

	ch := chart.Chart{
		Title:      set.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xAxis(set),
		YAxis:      chart.YAxis{Name: set.YLabel, Range: yRange(set.Points)},
		Series:     series,
	}
	if len(series) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch.Render(format.provider(), w)
}

// xAxis labels ticks with the point labels, thinned to at most maxXTicks.
// go-chart takes the x range from the tick span whenever ticks are set, so
// unlabelled boundary ticks pad the axis by half a unit on each side. This
// keeps every point inside the plot and gives a single x value a non-zero
// range.
func xAxis(set types.SeriesSet) chart.XAxis {
	labels := make(map[float64]string)
	for _, p := range set.Points {
		labels[p.XValue] = p.X
	}
	values := make([]float64, 0, len(labels))
	for v := range labels {
		values = append(values, v)
	}
	slices.Sort(values)

	lo, hi := values[0]-0.5, values[len(values)-1]+0.5
	step := (len(values) + maxXTicks - 1) / maxXTicks
	ticks := make([]chart.Tick, 0, maxXTicks+2)
	ticks = append(ticks, chart.Tick{Value: lo})
	for i, v := range values {
		if i%step == 0 {
			ticks = append(ticks, chart.Tick{Value: v, Label: labels[v]})
		}
	}
	ticks = append(ticks, chart.Tick{Value: hi})

	return chart.XAxis{
		Name:  set.XLabel,
		Ticks: ticks,
		Range: &chart.ContinuousRange{Min: lo, Max: hi},
	}
}

func yRange(points []types.Point) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lo = math.Min(lo, p.Y)
		hi = math.Max(hi, p.Y)
	}
	lo = math.Min(lo, 0)
	if hi <= lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + (hi-lo)*0.05}
}

// renderBar draws one bar per (category, group) pair, colored by group
func renderBar(w io.Writer, set types.SeriesSet, format Format, width, height int) error {
	groups := set.Groups()
	bars := make([]chart.Value, 0, len(set.Points))
	for _, p := range set.Points {
		col := chart.GetDefaultColor(slices.Index(groups, p.Group))
		label := p.X
		if p.Group != "" {
			label = fmt.Sprintf("%s (%s)", p.X, p.Group)
		}
		bars = append(bars, chart.Value{
			Label: label,
			Value: p.Y,
			Style: chart.Style{FillColor: col, StrokeColor: col},
		})
	}

	bc := chart.BarChart{
		Title:      set.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		BarWidth:   max(8, width/(2*len(bars)+1)),
		YAxis:      chart.YAxis{Name: set.YLabel, Range: yRange(set.Points)},
		Bars:       bars,
	}
	return bc.Render(format.provider(), w)
}

// renderPie draws each point as a slice labelled with its share of the total
func renderPie(w io.Writer, set types.SeriesSet, format Format, width, height int) error {
	var total float64
	for _, p := range set.Points {
		total += p.Y
	}
	if total <= 0 {
		return fmt.Errorf("%w: slices sum to %v", ErrNoData, total)
	}

	values := make([]chart.Value, 0, len(set.Points))
	for _, p := range set.Points {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", p.X, 100*p.Y/total),
			Value: p.Y,
		})
	}

	pc := chart.PieChart{
		Title:  set.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
	return pc.Render(format.provider(), w)
}
