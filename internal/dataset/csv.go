package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/autosales/internal/types"
)

// Column names the loader requires, after normalization
var requiredColumns = []string{
	"year",
	"month",
	"vehicle_type",
	"recession",
	"automobile_sales",
	"advertising_expenditure",
	"gdp",
	"price",
}

// Errors returned for malformed CSV input
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidValue  = errors.New("invalid value")
)

const fetchTimeout = 60 * time.Second

// LoadCSV reads the dataset from a local file or an http(s) URL
func LoadCSV(ctx context.Context, location string) ([]types.Record, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return fetchCSV(ctx, location)
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("error opening dataset %s: %w", location, err)
	}
	defer f.Close()

	return ReadCSV(f)
}

func fetchCSV(ctx context.Context, url string) ([]types.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error building dataset request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching dataset %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error fetching dataset %s: unexpected status %s", url, resp.Status)
	}

	return ReadCSV(resp.Body)
}

// ReadCSV parses a CSV stream whose header contains at least the required
// columns. Header names are matched case-insensitively and extra columns are
// ignored.
func ReadCSV(r io.Reader) ([]types.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[normalizeColumn(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	reader.FieldsPerRecord = len(header)

	var records []types.Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading CSV line %d: %w", line, err)
		}

		rec, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

func parseRow(row []string, cols map[string]int) (types.Record, error) {
	var rec types.Record
	var err error

	field := func(name string) string {
		return strings.TrimSpace(row[cols[name]])
	}

	year, err := parseNumber(field("year"))
	if err != nil || year != math.Trunc(year) {
		return rec, fmt.Errorf("%w: year %q", ErrInvalidValue, field("year"))
	}
	rec.Year = int(year)

	if rec.Month, err = types.ParseMonth(field("month")); err != nil {
		return rec, err
	}

	rec.VehicleType = field("vehicle_type")

	flag, err := parseNumber(field("recession"))
	if err != nil {
		return rec, fmt.Errorf("%w: recession flag %q", ErrInvalidValue, field("recession"))
	}
	rec.Recession = flag != 0

	numeric := []struct {
		name string
		dst  *float64
	}{
		{"automobile_sales", &rec.AutomobileSales},
		{"advertising_expenditure", &rec.AdvertisingExpenditure},
		{"gdp", &rec.GDP},
		{"price", &rec.Price},
	}
	for _, n := range numeric {
		v, err := parseNumber(field(n.name))
		if err != nil {
			return rec, fmt.Errorf("%w: %s %q", ErrInvalidValue, n.name, field(n.name))
		}
		*n.dst = v
	}

	return rec, nil
}

// parseNumber parses a finite decimal. NaN and infinities are rejected.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}
