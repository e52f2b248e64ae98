package dataset

import (
	"context"
	"errors"
	"fmt"

	"github.com/chrissnell/autosales/internal/types"
	"github.com/chrissnell/autosales/pkg/config"
)

// ErrEmptyDataset is returned when a source yields no records
var ErrEmptyDataset = errors.New("dataset contains no records")

// Load reads the dataset described by cfg into a Store
func Load(ctx context.Context, cfg config.DatasetData) (*Store, error) {
	var (
		records []types.Record
		source  string
		err     error
	)

	switch cfg.Source {
	case config.SourceCSV, "":
		source = cfg.Path
		records, err = LoadCSV(ctx, cfg.Path)
	case config.SourceSQLite:
		source = "sqlite:" + cfg.Path
		records, err = LoadSQLite(ctx, cfg.Path, cfg.Table)
	case config.SourcePostgres:
		source = "postgres:" + cfg.Table
		records, err = LoadPostgres(ctx, cfg.ConnectionString, cfg.Table)
	default:
		return nil, fmt.Errorf("unsupported dataset source: %s", cfg.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading dataset from %s: %w", source, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptyDataset)
	}

	return NewStore(records, source), nil
}
