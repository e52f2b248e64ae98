package dataset

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/chrissnell/autosales/internal/database"
	"github.com/chrissnell/autosales/pkg/config"
)

func TestImportThenLoadSQLite(t *testing.T) {
	ctx := context.Background()
	records, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "sales.db")
	n, err := ImportSQLite(ctx, path, records, nil)
	if err != nil {
		t.Fatalf("ImportSQLite failed: %v", err)
	}
	if n != len(records) {
		t.Errorf("expected %d rows written, got %d", len(records), n)
	}

	store, err := Load(ctx, config.DatasetData{Source: config.SourceSQLite, Path: path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(store.Records(), records) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", store.Records(), records)
	}
}

func TestLoadRejectsBadTableName(t *testing.T) {
	_, err := LoadSQLite(context.Background(), filepath.Join(t.TempDir(), "x.db"), "sales; DROP TABLE x")
	if err == nil {
		t.Fatal("expected invalid table name error")
	}
}

func TestLoadEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	writeFile(t, path, "Year,Month,Vehicle_Type,Recession,Automobile_Sales,Advertising_Expenditure,GDP,Price\n")

	_, err := Load(context.Background(), config.DatasetData{Source: config.SourceCSV, Path: path})
	if !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestRecordsFromRows(t *testing.T) {
	rows := []database.SalesRow{
		{ID: 1, Year: 2008, Month: 3, VehicleType: "Sedan", Recession: true, AutomobileSales: 12},
	}
	records, err := recordsFromRows(rows)
	if err != nil {
		t.Fatalf("recordsFromRows failed: %v", err)
	}
	if records[0].Month.String() != "March" || !records[0].Recession {
		t.Errorf("unexpected record: %+v", records[0])
	}

	rows[0].Month = 13
	if _, err := recordsFromRows(rows); err == nil {
		t.Error("expected month range error")
	}

	rows[0].Month = 3
	rows[0].GDP = math.NaN()
	if _, err := recordsFromRows(rows); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for NaN, got %v", err)
	}
}
