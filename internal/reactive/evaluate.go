// Package reactive connects the dashboard input controls to the derived
// control state and chart output. Every change recomputes the affected
// outputs from the full current input state.
package reactive

import (
	"fmt"

	"github.com/chrissnell/autosales/internal/dataset"
	"github.com/chrissnell/autosales/internal/pipeline"
	"github.com/chrissnell/autosales/internal/types"
	"github.com/chrissnell/autosales/internal/view"
)

// Snapshot is the complete derived output for one input state
type Snapshot struct {
	State              types.InputState  `json:"state"`
	View               types.ViewSpec    `json:"view"`
	YearControlEnabled bool              `json:"year_control_enabled"`
	Charts             []types.SeriesSet `json:"charts"`
	// ConfigError is set when the report mode is not one the dashboard offers
	ConfigError string `json:"config_error,omitempty"`
}

// Evaluate derives the full snapshot for state. It shares nothing between
// calls and is safe to run concurrently over the same store. A non-nil
// error means the report mode was rejected; the snapshot is still valid and
// carries no charts.
func Evaluate(store *dataset.Store, state types.InputState) (Snapshot, error) {
	snap := Snapshot{State: state, Charts: []types.SeriesSet{}}

	spec, err := view.Select(state.ReportMode)
	snap.View = spec
	snap.YearControlEnabled = spec.YearControlEnabled
	if err != nil {
		snap.ConfigError = err.Error()
		return snap, err
	}

	charts, err := computeCharts(store, state, spec)
	if err != nil {
		return snap, err
	}
	snap.Charts = charts
	return snap, nil
}

func computeCharts(store *dataset.Store, state types.InputState, spec types.ViewSpec) ([]types.SeriesSet, error) {
	if !view.Ready(state) || len(spec.ActivePipelines) == 0 {
		return []types.SeriesSet{}, nil
	}

	charts, err := pipeline.RunAll(spec.ActivePipelines, store, pipeline.Criteria{SelectedYear: state.SelectedYear})
	if err != nil {
		return nil, fmt.Errorf("error running pipelines for %q: %w", state.ReportMode, err)
	}
	return charts, nil
}
