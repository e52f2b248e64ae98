package dataset

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"regexp"
	"time"

	"github.com/chrissnell/autosales/internal/types"
	"github.com/chrissnell/autosales/pkg/migrate"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DefaultTable is the table created by the SQLite importer
const DefaultTable = "automobile_sales"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func validateTable(table string) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	return nil
}

const selectColumns = `year, month, vehicle_type, recession, automobile_sales,
	advertising_expenditure, gdp, price`

// LoadSQLite reads every row of table from the SQLite database at path, in
// insertion order
func LoadSQLite(ctx context.Context, path, table string) ([]types.Record, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := validateTable(table); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY id", selectColumns, table))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var records []types.Record
	for rows.Next() {
		var rec types.Record
		var month int
		if err := rows.Scan(&rec.Year, &month, &rec.VehicleType, &rec.Recession,
			&rec.AutomobileSales, &rec.AdvertisingExpenditure, &rec.GDP, &rec.Price); err != nil {
			return nil, fmt.Errorf("failed to scan sales row: %w", err)
		}
		rec.Month = time.Month(month)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales rows: %w", err)
	}

	return records, nil
}

// ImportSQLite migrates the schema of the database at path and appends
// records to the sales table in a single transaction. It returns the number
// of rows written.
func ImportSQLite(ctx context.Context, path string, records []types.Record, logger *zap.SugaredLogger) (int, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	provider := migrate.NewFSProvider(migrations, "migrations", "")
	if err := migrate.NewMigrator(db, provider, logger).MigrateUp(); err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", DefaultTable, selectColumns))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Year, int(rec.Month), rec.VehicleType, rec.Recession,
			rec.AutomobileSales, rec.AdvertisingExpenditure, rec.GDP, rec.Price); err != nil {
			return 0, fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return len(records), nil
}
