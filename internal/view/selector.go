// Package view decides which pipelines are active and which controls are
// enabled for a given report mode.
package view

import (
	"errors"
	"fmt"
	"slices"

	"github.com/chrissnell/autosales/internal/types"
)

// ErrUnknownReportMode is returned for report modes the dashboard does not offer
var ErrUnknownReportMode = errors.New("unknown report mode")

var (
	yearlyPipelines = []types.PipelineID{
		types.PipelineYearlySales,
		types.PipelineSeasonality,
		types.PipelineRecessionComparisonBar,
		types.PipelineAdvertisingByRecession,
	}
	recessionPipelines = []types.PipelineID{
		types.PipelineRecessionSalesTrend,
		types.PipelineSalesByVehicleType,
		types.PipelineAdvertisingByVehicleType,
		types.PipelineUnemploymentEffect,
	}
)

// Select maps a report mode to its ViewSpec. An unset mode yields an empty
// spec without error; an unknown mode yields an empty spec and
// ErrUnknownReportMode.
func Select(mode types.ReportMode) (types.ViewSpec, error) {
	switch mode {
	case types.ReportModeYearly:
		return types.ViewSpec{
			ActivePipelines:    slices.Clone(yearlyPipelines),
			YearControlEnabled: true,
		}, nil
	case types.ReportModeRecessionPeriod:
		return types.ViewSpec{
			ActivePipelines:    slices.Clone(recessionPipelines),
			YearControlEnabled: false,
		}, nil
	case types.ReportModeUnset:
		return types.ViewSpec{}, nil
	}
	return types.ViewSpec{}, fmt.Errorf("%w: %q", ErrUnknownReportMode, string(mode))
}

// Ready reports whether the inputs are complete enough for the pipelines of
// the mode to run. Yearly statistics wait for a year; recession statistics
// run unconditionally.
func Ready(state types.InputState) bool {
	switch state.ReportMode {
	case types.ReportModeYearly:
		return state.HasYear()
	case types.ReportModeRecessionPeriod:
		return true
	}
	return false
}
