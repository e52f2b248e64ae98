package dataset

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/autosales/internal/database"
	"github.com/chrissnell/autosales/internal/log"
	"github.com/chrissnell/autosales/internal/types"
)

// LoadPostgres reads the dataset from a Postgres (or TimescaleDB) table
// with the same columns as the SQLite schema
func LoadPostgres(ctx context.Context, connectionString, table string) ([]types.Record, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := validateTable(table); err != nil {
		return nil, err
	}

	db, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warnf("error closing database connection: %v", err)
		}
	}()

	rows, err := database.FetchSalesRows(ctx, db, table)
	if err != nil {
		return nil, err
	}
	return recordsFromRows(rows)
}

func recordsFromRows(rows []database.SalesRow) ([]types.Record, error) {
	records := make([]types.Record, 0, len(rows))
	for _, row := range rows {
		if row.Month < 1 || row.Month > 12 {
			return nil, fmt.Errorf("row %d: month out of range: %d", row.ID, row.Month)
		}
		for _, v := range []float64{row.AutomobileSales, row.AdvertisingExpenditure, row.GDP, row.Price} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("row %d: %w: non-finite number", row.ID, ErrInvalidValue)
			}
		}
		records = append(records, types.Record{
			Year:                   row.Year,
			Month:                  time.Month(row.Month),
			VehicleType:            row.VehicleType,
			Recession:              row.Recession,
			AutomobileSales:        row.AutomobileSales,
			AdvertisingExpenditure: row.AdvertisingExpenditure,
			GDP:                    row.GDP,
			Price:                  row.Price,
		})
	}
	return records, nil
}
