// Package database opens GORM connections to PostgreSQL/TimescaleDB.
package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/autosales/internal/log"
	"go.uber.org/zap"
)

// SalesRow is the Postgres representation of one dataset record. The id
// column fixes the row order.
type SalesRow struct {
	ID                     int64   `gorm:"column:id;primaryKey"`
	Year                   int     `gorm:"column:year"`
	Month                  int     `gorm:"column:month"`
	VehicleType            string  `gorm:"column:vehicle_type"`
	Recession              bool    `gorm:"column:recession"`
	AutomobileSales        float64 `gorm:"column:automobile_sales"`
	AdvertisingExpenditure float64 `gorm:"column:advertising_expenditure"`
	GDP                    float64 `gorm:"column:gdp"`
	Price                  float64 `gorm:"column:price"`
}

// CreateConnection opens a Postgres connection with the standard GORM
// configuration
func CreateConnection(connectionString string) (*gorm.DB, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	log.Info("connecting to PostgreSQL...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warnf("unable to create a PostgreSQL connection: %v", err)
		return nil, err
	}
	log.Info("PostgreSQL connection successful")

	return db, nil
}

// FetchSalesRows reads every row of table ordered by id
func FetchSalesRows(ctx context.Context, db *gorm.DB, table string) ([]SalesRow, error) {
	var rows []SalesRow
	if err := db.WithContext(ctx).Table(table).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error querying %s: %w", table, err)
	}
	return rows, nil
}

// Close releases the connection pool behind db
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
