// Package pipeline defines the aggregation pipelines that turn raw sales
// records into chart-ready series. Every pipeline is a pure function of its
// input records.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/chrissnell/autosales/internal/dataset"
	"github.com/chrissnell/autosales/internal/types"
)

// ErrUnknownPipeline is returned when no definition exists for an id
var ErrUnknownPipeline = errors.New("unknown pipeline")

// Criteria carries the user inputs a pipeline may narrow on
type Criteria struct {
	SelectedYear int
}

// Definition describes one group-by-aggregate pipeline
type Definition struct {
	ID         types.PipelineID
	Title      string
	Kind       types.ChartKind
	XLabel     string
	YLabel     string
	GroupLabel string

	// Filter is applied to the records before grouping
	Filter []dataset.Predicate
	// YearScoped pipelines additionally keep only Criteria.SelectedYear
	YearScoped bool

	Dims    []dataset.Dimension
	Measure dataset.Measure
	Reduce  dataset.Reducer
	// Sized copies the aggregate into the point size (bubble charts)
	Sized bool
}

// Run evaluates the pipeline over records
func (d Definition) Run(records []types.Record, c Criteria) types.SeriesSet {
	preds := d.Filter
	if d.YearScoped && c.SelectedYear != 0 {
		preds = append(preds[:len(preds):len(preds)], dataset.InYear(c.SelectedYear))
	}

	aggs := dataset.GroupAggregate(dataset.Select(records, preds...), d.Measure, d.Reduce, d.Dims...)

	set := types.SeriesSet{
		Pipeline:   d.ID,
		Title:      d.Title,
		Kind:       d.Kind,
		XLabel:     d.XLabel,
		YLabel:     d.YLabel,
		XAxis:      types.AxisCategory,
		GroupLabel: d.GroupLabel,
		Points:     make([]types.Point, 0, len(aggs)),
	}
	if d.Dims[0].Numeric() {
		set.XAxis = types.AxisNumeric
	}

	categories := make(map[string]int)
	for _, a := range aggs {
		x := a.Key[0]
		p := types.Point{
			X: x.Label(),
			Y: a.Value,
		}

		if d.Dims[0].Numeric() {
			p.XValue = float64(x.Ordinal)
		} else {
			pos, ok := categories[p.X]
			if !ok {
				pos = len(categories)
				categories[p.X] = pos
			}
			p.XValue = float64(pos)
		}

		if len(a.Key) > 1 {
			p.Group = a.Key[1].Label()
		}
		if d.Sized {
			p.Size = a.Value
		}
		set.Points = append(set.Points, p)
	}

	return set
}

// Lookup returns the definition registered for id
func Lookup(id types.PipelineID) (Definition, bool) {
	d, ok := registry[id]
	return d, ok
}

// Run evaluates the pipeline registered for id
func Run(id types.PipelineID, records []types.Record, c Criteria) (types.SeriesSet, error) {
	d, ok := Lookup(id)
	if !ok {
		return types.SeriesSet{}, fmt.Errorf("%w: %s", ErrUnknownPipeline, id)
	}
	return d.Run(records, c), nil
}

// RunAll evaluates ids in order against the full dataset
func RunAll(ids []types.PipelineID, store *dataset.Store, c Criteria) ([]types.SeriesSet, error) {
	records := store.Records()
	out := make([]types.SeriesSet, 0, len(ids))
	for _, id := range ids {
		set, err := Run(id, records, c)
		if err != nil {
			return nil, err
		}
		out = append(out, set)
	}
	return out, nil
}
