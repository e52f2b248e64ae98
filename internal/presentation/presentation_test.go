package presentation

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/chrissnell/autosales/internal/reactive"
	"github.com/chrissnell/autosales/internal/types"
)

func charts(ids ...types.PipelineID) []Chart {
	out := make([]Chart, len(ids))
	for i, id := range ids {
		out[i] = Chart{Series: types.SeriesSet{Pipeline: id}}
	}
	return out
}

func TestLayout(t *testing.T) {
	tests := []struct {
		name  string
		input []Chart
		want  [][]types.PipelineID
	}{
		{name: "empty", input: nil, want: [][]types.PipelineID{}},
		{
			name:  "four charts",
			input: charts(types.PipelineYearlySales, types.PipelineSeasonality, types.PipelineRecessionComparisonBar, types.PipelineAdvertisingByRecession),
			want: [][]types.PipelineID{
				{types.PipelineYearlySales, types.PipelineSeasonality},
				{types.PipelineRecessionComparisonBar, types.PipelineAdvertisingByRecession},
			},
		},
		{
			name:  "odd count",
			input: charts(types.PipelineYearlySales, types.PipelineSeasonality, types.PipelineRecessionComparisonBar),
			want: [][]types.PipelineID{
				{types.PipelineYearlySales, types.PipelineSeasonality},
				{types.PipelineRecessionComparisonBar},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Layout(tt.input)
			if len(rows) != len(tt.want) {
				t.Fatalf("expected %d rows, got %d", len(tt.want), len(rows))
			}
			for i, row := range rows {
				if len(row.Charts) != len(tt.want[i]) {
					t.Fatalf("row %d: expected %d charts, got %d", i, len(tt.want[i]), len(row.Charts))
				}
				for j, c := range row.Charts {
					if c.Series.Pipeline != tt.want[i][j] {
						t.Errorf("row %d col %d: expected %s, got %s", i, j, tt.want[i][j], c.Series.Pipeline)
					}
				}
			}
		})
	}
}

func TestNewDashboard(t *testing.T) {
	snap := reactive.Snapshot{
		State:              types.InputState{ReportMode: types.ReportModeRecessionPeriod},
		YearControlEnabled: false,
		Charts: []types.SeriesSet{
			{Pipeline: types.PipelineRecessionSalesTrend},
			{Pipeline: types.PipelineSalesByVehicleType},
			{Pipeline: types.PipelineAdvertisingByVehicleType},
		},
	}

	dash := NewDashboard(snap, func(id types.PipelineID) string { return "/api/charts/" + string(id) + ".svg" })
	if len(dash.Rows) != 2 || len(dash.Rows[1].Charts) != 1 {
		t.Fatalf("unexpected rows: %+v", dash.Rows)
	}
	if got := dash.Rows[0].Charts[1].ImageURL; got != "/api/charts/sales-by-vehicle-type.svg" {
		t.Errorf("unexpected image url %q", got)
	}
	if dash.Controls.YearControlEnabled || dash.Controls.ReportMode != types.ReportModeRecessionPeriod {
		t.Errorf("unexpected controls %+v", dash.Controls)
	}
	if n := len(dash.Controls.Years); n != types.MaxSelectableYear-types.MinSelectableYear+1 {
		t.Errorf("expected %d selectable years, got %d", types.MaxSelectableYear-types.MinSelectableYear+1, n)
	}

	if plain := NewDashboard(snap, nil); plain.Rows[0].Charts[0].ImageURL != "" {
		t.Error("expected no image url without a url builder")
	}
}

func TestChunkDoesNotAlias(t *testing.T) {
	items := []int{1, 2, 3}
	chunks := Chunk(items, 2)
	chunks[0] = append(chunks[0], 99)
	if items[2] != 3 {
		t.Error("appending to a chunk overwrote the source slice")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{in: "svg", want: FormatSVG},
		{in: ".PNG", want: FormatPNG},
		{in: "gif", err: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			if !errors.Is(err, ErrUnknownFormat) {
				t.Errorf("ParseFormat(%q): expected ErrUnknownFormat, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func sampleSets() []types.SeriesSet {
	return []types.SeriesSet{
		{
			Pipeline: types.PipelineYearlySales, Title: "Yearly", Kind: types.ChartLine, XAxis: types.AxisNumeric,
			XLabel: "Year", YLabel: "Sales",
			Points: []types.Point{{X: "1980", XValue: 1980, Y: 3}, {X: "1981", XValue: 1981, Y: 4}},
		},
		{
			Pipeline: types.PipelineSalesByVehicleType, Title: "By type", Kind: types.ChartLine, XAxis: types.AxisNumeric,
			GroupLabel: "Vehicle Type",
			Points: []types.Point{
				{X: "2008", XValue: 2008, Y: 10, Group: "Sedan"},
				{X: "2009", XValue: 2009, Y: 12, Group: "Sedan"},
				{X: "2008", XValue: 2008, Y: 7, Group: "Sports"},
			},
		},
		{
			Pipeline: types.PipelineSeasonality, Title: "Seasonality", Kind: types.ChartScatter, XAxis: types.AxisNumeric,
			Points: []types.Point{
				{X: "Jan", XValue: 1, Y: 10, Size: 10, Group: "2008"},
				{X: "Feb", XValue: 2, Y: 20, Size: 20, Group: "2008"},
			},
		},
		{
			Pipeline: types.PipelineRecessionComparisonBar, Title: "Bar", Kind: types.ChartBar, XAxis: types.AxisCategory,
			Points: []types.Point{
				{X: "Sedan", Y: 50, Group: "0"},
				{X: "Sedan", Y: 20, Group: "1"},
			},
		},
		{
			Pipeline: types.PipelineAdvertisingByRecession, Title: "Pie", Kind: types.ChartPie, XAxis: types.AxisCategory,
			Points: []types.Point{{X: "0", XValue: 0, Y: 300}, {X: "1", XValue: 1, Y: 100}},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	for _, set := range sampleSets() {
		t.Run(string(set.Pipeline), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, set, FormatSVG, Options{}); err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if !strings.Contains(buf.String(), "<svg") {
				t.Errorf("output is not SVG: %.80q", buf.String())
			}
		})
	}
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleSets()[0], FormatPNG, Options{Width: 320, Height: 200}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, types.SeriesSet{Pipeline: types.PipelineYearlySales, Kind: types.ChartLine}, FormatSVG, Options{})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	err = Render(&buf, types.SeriesSet{Kind: types.ChartPie, Points: []types.Point{{X: "0", Y: 0}}}, FormatSVG, Options{})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for a zero-total pie, got %v", err)
	}
}

func yearlyPoints(from, to int) []types.Point {
	var points []types.Point
	for y := from; y <= to; y++ {
		points = append(points, types.Point{X: strconv.Itoa(y), XValue: float64(y), Y: float64(y - from + 1)})
	}
	return points
}

func TestXAxisCoversEveryPoint(t *testing.T) {
	tests := []struct {
		name       string
		points     []types.Point
		wantLo     float64
		wantHi     float64
		wantLabels int
	}{
		{name: "single year", points: yearlyPoints(2008, 2008), wantLo: 2007.5, wantHi: 2008.5, wantLabels: 1},
		{name: "full range", points: yearlyPoints(1980, 2023), wantLo: 1979.5, wantHi: 2023.5, wantLabels: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			axis := xAxis(types.SeriesSet{Kind: types.ChartLine, Points: tt.points})

			first, last := axis.Ticks[0], axis.Ticks[len(axis.Ticks)-1]
			if first.Value != tt.wantLo || last.Value != tt.wantHi {
				t.Errorf("expected tick span [%v, %v], got [%v, %v]", tt.wantLo, tt.wantHi, first.Value, last.Value)
			}
			if first.Label != "" || last.Label != "" {
				t.Errorf("boundary ticks must be unlabelled, got %q and %q", first.Label, last.Label)
			}

			labelled := 0
			for _, tick := range axis.Ticks {
				if tick.Label != "" {
					labelled++
				}
			}
			if labelled != tt.wantLabels {
				t.Errorf("expected %d labelled ticks, got %d", tt.wantLabels, labelled)
			}
		})
	}
}

func TestRenderAxisEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		set  types.SeriesSet
	}{
		{
			name: "single year line",
			set: types.SeriesSet{Pipeline: types.PipelineRecessionSalesTrend, Kind: types.ChartLine, XAxis: types.AxisNumeric,
				Points: yearlyPoints(2008, 2008)},
		},
		{
			name: "single month scatter",
			set: types.SeriesSet{Pipeline: types.PipelineSeasonality, Kind: types.ChartScatter, XAxis: types.AxisNumeric,
				Points: []types.Point{{X: "Jan", XValue: 1, Y: 10, Size: 10, Group: "2008"}}},
		},
		{
			name: "forty-four years",
			set: types.SeriesSet{Pipeline: types.PipelineYearlySales, Kind: types.ChartLine, XAxis: types.AxisNumeric,
				Points: yearlyPoints(1980, 2023)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, tt.set, FormatSVG, Options{}); err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if !strings.Contains(buf.String(), "<svg") {
				t.Errorf("output is not SVG: %.80q", buf.String())
			}
		})
	}
}
