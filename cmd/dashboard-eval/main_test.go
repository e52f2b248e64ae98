package main

import (
	"reflect"
	"testing"

	"github.com/chrissnell/autosales/internal/reactive"
	"github.com/chrissnell/autosales/pkg/config"
)

func TestParseEvents(t *testing.T) {
	tests := []struct {
		name    string
		list    string
		args    []string
		want    []reactive.Event
		wantErr bool
	}{
		{
			name: "empty",
			want: []reactive.Event{},
		},
		{
			name: "list then args",
			list: "report_mode=yearly, selected_year=1990",
			args: []string{"selected_year=1991"},
			want: []reactive.Event{
				{Slot: reactive.SlotReportMode, Value: "yearly"},
				{Slot: reactive.SlotSelectedYear, Value: "1990"},
				{Slot: reactive.SlotSelectedYear, Value: "1991"},
			},
		},
		{
			name: "clearing a slot",
			args: []string{"selected_year="},
			want: []reactive.Event{{Slot: reactive.SlotSelectedYear, Value: ""}},
		},
		{
			name:    "missing equals",
			list:    "report_mode",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEvents(tt.list, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseEvents() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseEvents() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDatasetConfig(t *testing.T) {
	dc, err := datasetConfig("", "sales.csv", "")
	if err != nil {
		t.Fatalf("datasetConfig failed: %v", err)
	}
	if dc.Source != config.SourceCSV || dc.Path != "sales.csv" {
		t.Errorf("unexpected dataset config: %+v", dc)
	}

	dc, err = datasetConfig("", "", "sales.db")
	if err != nil {
		t.Fatalf("datasetConfig failed: %v", err)
	}
	if dc.Source != config.SourceSQLite {
		t.Errorf("expected sqlite source, got %q", dc.Source)
	}

	if _, err := datasetConfig("", "", ""); err == nil {
		t.Error("expected an error with no dataset flags")
	}
}
