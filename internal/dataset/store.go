// Package dataset holds the immutable automobile sales table in memory and
// provides the filter and group-by-aggregate primitives the pipelines are
// built from.
package dataset

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/autosales/internal/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Store is a read-only, ordered collection of records. It is safe for
// concurrent use because nothing mutates it after construction.
type Store struct {
	records []types.Record
	source  string
}

// NewStore copies records into a new Store. source describes where the data
// came from and is only used for logging.
func NewStore(records []types.Record, source string) *Store {
	return &Store{
		records: slices.Clone(records),
		source:  source,
	}
}

// Len returns the number of records
func (s *Store) Len() int {
	return len(s.records)
}

// Source returns the description of where the dataset was loaded from
func (s *Store) Source() string {
	return s.source
}

// Records returns a copy of every record in load order
func (s *Store) Records() []types.Record {
	return slices.Clone(s.records)
}

// Predicate selects records for Filter
type Predicate func(types.Record) bool

// Filter returns the records matching all predicates, in load order
func (s *Store) Filter(preds ...Predicate) []types.Record {
	return Select(s.records, preds...)
}

// Select returns a new slice with the records matching all predicates
func Select(records []types.Record, preds ...Predicate) []types.Record {
	out := make([]types.Record, 0, len(records))
	for _, r := range records {
		if matchAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

func matchAll(r types.Record, preds []Predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

// RecessionOnly keeps records flagged as recession periods
func RecessionOnly(r types.Record) bool {
	return r.Recession
}

// InYear keeps records from a single year
func InYear(year int) Predicate {
	return func(r types.Record) bool {
		return r.Year == year
	}
}

// Dimension is a grouping key attribute
type Dimension int

const (
	ByYear Dimension = iota
	ByMonth
	ByVehicleType
	ByRecession
)

func (d Dimension) String() string {
	switch d {
	case ByYear:
		return "year"
	case ByMonth:
		return "month"
	case ByVehicleType:
		return "vehicle_type"
	case ByRecession:
		return "recession"
	}
	return "dimension(" + strconv.Itoa(int(d)) + ")"
}

// Numeric reports whether the dimension is plotted on a numeric axis
func (d Dimension) Numeric() bool {
	return d == ByYear || d == ByMonth
}

// KeyPart is the value of one Dimension for a group. Ordinal drives
// ordering for year, month and recession; Text drives it for vehicle type.
type KeyPart struct {
	Dim     Dimension
	Ordinal int
	Text    string
}

func (d Dimension) part(r types.Record) KeyPart {
	switch d {
	case ByYear:
		return KeyPart{Dim: d, Ordinal: r.Year}
	case ByMonth:
		return KeyPart{Dim: d, Ordinal: int(r.Month)}
	case ByVehicleType:
		return KeyPart{Dim: d, Text: r.VehicleType}
	case ByRecession:
		if r.Recession {
			return KeyPart{Dim: d, Ordinal: 1}
		}
		return KeyPart{Dim: d}
	}
	return KeyPart{Dim: d}
}

// Label renders the key the way it appears on a chart axis or legend
func (k KeyPart) Label() string {
	switch k.Dim {
	case ByMonth:
		return types.MonthLabel(time.Month(k.Ordinal))
	case ByVehicleType:
		return k.Text
	case ByRecession:
		return types.RecessionLabel(k.Ordinal == 1)
	}
	return strconv.Itoa(k.Ordinal)
}

func (k KeyPart) compare(o KeyPart) int {
	if c := k.Ordinal - o.Ordinal; c != 0 {
		return c
	}
	return strings.Compare(k.Text, o.Text)
}

func (k KeyPart) id() string {
	return strconv.Itoa(k.Ordinal) + "\x1f" + k.Text
}

// Group is one partition produced by GroupBy
type Group struct {
	Key     []KeyPart
	Records []types.Record
}

// GroupBy partitions records by dims. Groups are ordered ascending by the
// first dimension, then by each following one. Records inside a group keep
// their load order.
func GroupBy(records []types.Record, dims ...Dimension) []Group {
	index := make(map[string]int)
	var groups []Group

	for _, r := range records {
		key := make([]KeyPart, len(dims))
		ids := make([]string, len(dims))
		for i, d := range dims {
			key[i] = d.part(r)
			ids[i] = key[i].id()
		}
		id := strings.Join(ids, "\x1e")

		if i, ok := index[id]; ok {
			groups[i].Records = append(groups[i].Records, r)
			continue
		}
		index[id] = len(groups)
		groups = append(groups, Group{Key: key, Records: []types.Record{r}})
	}

	slices.SortStableFunc(groups, func(a, b Group) int {
		for i := range a.Key {
			if c := a.Key[i].compare(b.Key[i]); c != 0 {
				return c
			}
		}
		return 0
	})
	return groups
}

// Measure extracts the numeric column being aggregated
type Measure func(types.Record) float64

// Measures used by the dashboard pipelines
var (
	AutomobileSales        Measure = func(r types.Record) float64 { return r.AutomobileSales }
	AdvertisingExpenditure Measure = func(r types.Record) float64 { return r.AdvertisingExpenditure }
)

// Reducer collapses the measured values of one group to a scalar
type Reducer func(values []float64) float64

// Mean is the arithmetic mean of values
func Mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

// Sum is the total of values
func Sum(values []float64) float64 {
	return floats.Sum(values)
}

// Aggregate is the reduced value of one group
type Aggregate struct {
	Key   []KeyPart
	Value float64
	Count int
}

// GroupAggregate groups records by dims and reduces measure over every
// group. Groups without records never appear in the output.
func GroupAggregate(records []types.Record, measure Measure, reduce Reducer, dims ...Dimension) []Aggregate {
	groups := GroupBy(records, dims...)
	out := make([]Aggregate, 0, len(groups))
	for _, g := range groups {
		if len(g.Records) == 0 {
			continue
		}
		values := make([]float64, len(g.Records))
		for i, r := range g.Records {
			values[i] = measure(r)
		}
		out = append(out, Aggregate{
			Key:   g.Key,
			Value: reduce(values),
			Count: len(values),
		})
	}
	return out
}
