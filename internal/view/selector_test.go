package view

import (
	"errors"
	"reflect"
	"testing"

	"github.com/chrissnell/autosales/internal/types"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name        string
		mode        types.ReportMode
		wantEnabled bool
		wantIDs     []types.PipelineID
		wantErr     error
	}{
		{
			name:        "yearly",
			mode:        types.ReportModeYearly,
			wantEnabled: true,
			wantIDs: []types.PipelineID{
				types.PipelineYearlySales,
				types.PipelineSeasonality,
				types.PipelineRecessionComparisonBar,
				types.PipelineAdvertisingByRecession,
			},
		},
		{
			name: "recession period",
			mode: types.ReportModeRecessionPeriod,
			wantIDs: []types.PipelineID{
				types.PipelineRecessionSalesTrend,
				types.PipelineSalesByVehicleType,
				types.PipelineAdvertisingByVehicleType,
				types.PipelineUnemploymentEffect,
			},
		},
		{
			name: "unset",
			mode: types.ReportModeUnset,
		},
		{
			name:    "unknown",
			mode:    "Monthly Statistics",
			wantErr: ErrUnknownReportMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Select(tt.mode)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if spec.YearControlEnabled != tt.wantEnabled {
				t.Errorf("expected year control enabled=%v, got %v", tt.wantEnabled, spec.YearControlEnabled)
			}
			if spec.YearControlEnabled != (tt.mode == types.ReportModeYearly) {
				t.Errorf("year control enablement disagrees with mode %q", tt.mode)
			}
			if !reflect.DeepEqual(spec.ActivePipelines, tt.wantIDs) {
				t.Errorf("expected pipelines %v, got %v", tt.wantIDs, spec.ActivePipelines)
			}
		})
	}
}

func TestSelectReturnsIndependentSlices(t *testing.T) {
	a, _ := Select(types.ReportModeYearly)
	a.ActivePipelines[0] = "mutated"

	b, _ := Select(types.ReportModeYearly)
	if b.ActivePipelines[0] != types.PipelineYearlySales {
		t.Fatal("Select leaked shared state between calls")
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		state types.InputState
		want  bool
	}{
		{types.InputState{ReportMode: types.ReportModeYearly}, false},
		{types.InputState{ReportMode: types.ReportModeYearly, SelectedYear: 1999}, true},
		{types.InputState{ReportMode: types.ReportModeRecessionPeriod}, true},
		{types.InputState{ReportMode: types.ReportModeRecessionPeriod, SelectedYear: 1999}, true},
		{types.InputState{SelectedYear: 1999}, false},
		{types.InputState{ReportMode: "bogus", SelectedYear: 1999}, false},
	}
	for _, tt := range tests {
		if got := Ready(tt.state); got != tt.want {
			t.Errorf("Ready(%+v) = %v, want %v", tt.state, got, tt.want)
		}
	}
}
