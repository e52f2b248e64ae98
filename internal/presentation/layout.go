// Package presentation arranges pipeline output into dashboard rows and
// renders individual charts to SVG or PNG.
package presentation

import (
	"github.com/chrissnell/autosales/internal/reactive"
	"github.com/chrissnell/autosales/internal/types"
)

// ChartsPerRow is the number of charts placed side by side on the dashboard
const ChartsPerRow = 2

// ModeOption is one entry of the report mode dropdown
type ModeOption struct {
	Value types.ReportMode `json:"value"`
	Label string           `json:"label"`
}

// Controls describes the input controls and their current state
type Controls struct {
	ReportModes        []ModeOption     `json:"report_modes"`
	Years              []int            `json:"years"`
	ReportMode         types.ReportMode `json:"report_mode"`
	SelectedYear       int              `json:"selected_year,omitempty"`
	YearControlEnabled bool             `json:"year_control_enabled"`
	ConfigError        string           `json:"config_error,omitempty"`
}

// Chart is one rendered panel. ImageURL is empty when the caller has no
// image endpoint.
type Chart struct {
	Series   types.SeriesSet `json:"series"`
	ImageURL string          `json:"image_url,omitempty"`
}

// Row is one horizontal band of the dashboard
type Row struct {
	Charts []Chart `json:"charts"`
}

// Dashboard is the complete page model for one input state
type Dashboard struct {
	Controls Controls `json:"controls"`
	Rows     []Row    `json:"rows"`
}

// SelectableYears lists the values offered by the year control
func SelectableYears() []int {
	years := make([]int, 0, types.MaxSelectableYear-types.MinSelectableYear+1)
	for y := types.MinSelectableYear; y <= types.MaxSelectableYear; y++ {
		years = append(years, y)
	}
	return years
}

// NewControls builds the control model from a snapshot
func NewControls(snap reactive.Snapshot) Controls {
	modes := make([]ModeOption, len(types.ReportModes))
	for i, m := range types.ReportModes {
		modes[i] = ModeOption{Value: m, Label: string(m)}
	}
	return Controls{
		ReportModes:        modes,
		Years:              SelectableYears(),
		ReportMode:         snap.State.ReportMode,
		SelectedYear:       snap.State.SelectedYear,
		YearControlEnabled: snap.YearControlEnabled,
		ConfigError:        snap.ConfigError,
	}
}

// NewDashboard lays out the charts of snap. imageURL may be nil.
func NewDashboard(snap reactive.Snapshot, imageURL func(types.PipelineID) string) Dashboard {
	charts := make([]Chart, len(snap.Charts))
	for i, set := range snap.Charts {
		charts[i] = Chart{Series: set}
		if imageURL != nil {
			charts[i].ImageURL = imageURL(set.Pipeline)
		}
	}
	return Dashboard{
		Controls: NewControls(snap),
		Rows:     Layout(charts),
	}
}

// Layout groups charts into rows of ChartsPerRow, preserving order. A trailing
// odd chart gets a row of its own.
func Layout(charts []Chart) []Row {
	chunks := Chunk(charts, ChartsPerRow)
	rows := make([]Row, len(chunks))
	for i, c := range chunks {
		rows[i] = Row{Charts: c}
	}
	return rows
}

// Chunk splits items into consecutive groups of at most n
func Chunk[T any](items []T, n int) [][]T {
	if n <= 0 {
		n = 1
	}
	out := make([][]T, 0, (len(items)+n-1)/n)
	for start := 0; start < len(items); start += n {
		end := min(start+n, len(items))
		out = append(out, items[start:end:end])
	}
	return out
}
