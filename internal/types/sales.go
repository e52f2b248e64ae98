package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Year bounds offered by the year selector
const (
	MinSelectableYear = 1980
	MaxSelectableYear = 2023
)

// Record is one row of the historical automobile sales dataset
type Record struct {
	Year                   int        `json:"year"`
	Month                  time.Month `json:"month"`
	VehicleType            string     `json:"vehicle_type"`
	Recession              bool       `json:"recession"`
	AutomobileSales        float64    `json:"automobile_sales"`
	AdvertisingExpenditure float64    `json:"advertising_expenditure"`
	GDP                    float64    `json:"gdp"`
	Price                  float64    `json:"price"`
}

// ParseMonth accepts abbreviated ("Jan") and full ("January") month names
// as well as the numbers 1 through 12.
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month out of range: %d", n)
		}
		return time.Month(n), nil
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unrecognized month: %q", s)
}

// MonthLabel returns the three-letter label used on chart axes
func MonthLabel(m time.Month) string {
	if m < time.January || m > time.December {
		return strconv.Itoa(int(m))
	}
	return m.String()[:3]
}

// RecessionLabel renders the recession flag the way the source data encodes it
func RecessionLabel(recession bool) string {
	if recession {
		return "1"
	}
	return "0"
}

// ReportMode is the value of the statistics selector
type ReportMode string

const (
	ReportModeUnset           ReportMode = ""
	ReportModeYearly          ReportMode = "Yearly Statistics"
	ReportModeRecessionPeriod ReportMode = "Recession Period Statistics"
)

// ReportModes lists the selectable modes in display order
var ReportModes = []ReportMode{ReportModeYearly, ReportModeRecessionPeriod}

// NormalizeReportMode maps the short API aliases onto the canonical mode
// labels. Unknown values are returned untouched so that the view selector
// can reject them.
func NormalizeReportMode(s string) ReportMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ReportModeUnset
	case "yearly", strings.ToLower(string(ReportModeYearly)):
		return ReportModeYearly
	case "recession", "recession-period", strings.ToLower(string(ReportModeRecessionPeriod)):
		return ReportModeRecessionPeriod
	}
	return ReportMode(s)
}

// InputState holds the current value of each dashboard control.
// A SelectedYear of zero means no year has been chosen.
type InputState struct {
	ReportMode   ReportMode `json:"report_mode"`
	SelectedYear int        `json:"selected_year,omitempty"`
}

// HasYear reports whether a year has been selected
func (s InputState) HasYear() bool {
	return s.SelectedYear != 0
}

// ValidYear reports whether y is selectable in the year control
func ValidYear(y int) bool {
	return y >= MinSelectableYear && y <= MaxSelectableYear
}

// PipelineID names an aggregation pipeline
type PipelineID string

const (
	PipelineYearlySales              PipelineID = "yearly-sales"
	PipelineSeasonality              PipelineID = "seasonality"
	PipelineRecessionComparisonBar   PipelineID = "recession-comparison-bar"
	PipelineAdvertisingByRecession   PipelineID = "advertising-share-recession"
	PipelineRecessionSalesTrend      PipelineID = "recession-sales-trend"
	PipelineSalesByVehicleType       PipelineID = "sales-by-vehicle-type"
	PipelineAdvertisingByVehicleType PipelineID = "advertising-share-vehicle-type"
	PipelineUnemploymentEffect       PipelineID = "unemployment-effect"
)

// ViewSpec is the decision derived from the report mode
type ViewSpec struct {
	ActivePipelines    []PipelineID `json:"active_pipelines"`
	YearControlEnabled bool         `json:"year_control_enabled"`
}

// ChartKind selects how the presentation layer draws a SeriesSet
type ChartKind string

const (
	ChartLine    ChartKind = "line"
	ChartScatter ChartKind = "scatter"
	ChartBar     ChartKind = "bar"
	ChartPie     ChartKind = "pie"
)

// AxisKind describes the x values of a SeriesSet
type AxisKind string

const (
	AxisNumeric  AxisKind = "numeric"
	AxisCategory AxisKind = "category"
)

// Point is one aggregated output row. Group carries the color/legend key
// and Size the marker size for bubble charts.
type Point struct {
	X      string  `json:"x"`
	XValue float64 `json:"x_value"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size,omitempty"`
	Group  string  `json:"group,omitempty"`
}

// SeriesSet is the chart-ready output of one aggregation pipeline
type SeriesSet struct {
	Pipeline   PipelineID `json:"pipeline"`
	Title      string     `json:"title"`
	Kind       ChartKind  `json:"kind"`
	XLabel     string     `json:"x_label"`
	YLabel     string     `json:"y_label"`
	XAxis      AxisKind   `json:"x_axis"`
	GroupLabel string     `json:"group_label,omitempty"`
	Points     []Point    `json:"points"`
}

// Groups returns the distinct group keys in first-seen order
func (s SeriesSet) Groups() []string {
	var groups []string
	seen := make(map[string]bool)
	for _, p := range s.Points {
		if !seen[p.Group] {
			seen[p.Group] = true
			groups = append(groups, p.Group)
		}
	}
	return groups
}
