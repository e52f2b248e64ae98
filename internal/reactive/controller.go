package reactive

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/chrissnell/autosales/internal/dataset"
	"github.com/chrissnell/autosales/internal/types"
	"github.com/chrissnell/autosales/internal/view"
	"go.uber.org/zap"
)

// Slot names a user-settable input
type Slot string

const (
	SlotReportMode   Slot = "report_mode"
	SlotSelectedYear Slot = "selected_year"
)

// Node names a derived output
type Node string

const (
	NodeYearControl Node = "year_control"
	NodeCharts      Node = "charts"
)

// binding declares which slots a derived node reads
type binding struct {
	node   Node
	inputs []Slot
}

// The dependency graph. Nodes are recomputed in this order.
var bindings = []binding{
	{node: NodeYearControl, inputs: []Slot{SlotReportMode}},
	{node: NodeCharts, inputs: []Slot{SlotReportMode, SlotSelectedYear}},
}

// Errors returned for rejected events
var (
	ErrUnknownSlot     = errors.New("unknown input slot")
	ErrYearOutOfRange  = fmt.Errorf("selected year must be between %d and %d", types.MinSelectableYear, types.MaxSelectableYear)
	ErrInvalidYearText = errors.New("selected year is not a number")
)

// Event is a user interaction setting one slot. An empty Value clears the
// slot.
type Event struct {
	Slot  Slot   `json:"slot"`
	Value string `json:"value"`
}

// Update describes the effect of one event
type Update struct {
	Event      Event    `json:"event"`
	Changed    bool     `json:"changed"`
	Recomputed []Node   `json:"recomputed,omitempty"`
	Snapshot   Snapshot `json:"snapshot"`
}

// Listener is notified after every event that changed a slot
type Listener func(Update)

// Controller holds the input state of one dashboard and keeps the derived
// outputs in step with it. Events are serialised; evaluation is synchronous.
type Controller struct {
	mu        sync.Mutex
	store     *dataset.Store
	logger    *zap.SugaredLogger
	state     types.InputState
	snapshot  Snapshot
	listeners []Listener
}

// NewController creates a controller with initial inputs and evaluates
// every node once
func NewController(store *dataset.Store, initial types.InputState, logger *zap.SugaredLogger) *Controller {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	c := &Controller{
		store:  store,
		logger: logger,
		state:  initial,
	}
	c.snapshot = Snapshot{State: initial, Charts: []types.SeriesSet{}}
	for _, b := range bindings {
		c.recompute(b.node)
	}
	return c
}

// Subscribe registers l for future updates
func (c *Controller) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// State returns the current inputs
func (c *Controller) State() types.InputState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current derived outputs
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// SetReportMode sets the report mode slot
func (c *Controller) SetReportMode(mode types.ReportMode) (Update, error) {
	return c.Apply(Event{Slot: SlotReportMode, Value: string(mode)})
}

// SetSelectedYear sets the year slot. Zero clears it.
func (c *Controller) SetSelectedYear(year int) (Update, error) {
	if year == 0 {
		return c.Apply(Event{Slot: SlotSelectedYear})
	}
	return c.Apply(Event{Slot: SlotSelectedYear, Value: strconv.Itoa(year)})
}

// Apply sets one slot and recomputes every node depending on it. Setting a
// slot to its current value is not a change and recomputes nothing.
func (c *Controller) Apply(ev Event) (Update, error) {
	c.mu.Lock()

	next := c.state
	switch ev.Slot {
	case SlotReportMode:
		next.ReportMode = types.NormalizeReportMode(ev.Value)
	case SlotSelectedYear:
		year, err := ParseYear(ev.Value)
		if err != nil {
			c.mu.Unlock()
			return Update{Event: ev}, err
		}
		next.SelectedYear = year
	default:
		c.mu.Unlock()
		return Update{Event: ev}, fmt.Errorf("%w: %s", ErrUnknownSlot, ev.Slot)
	}

	if next == c.state {
		update := Update{Event: ev, Snapshot: c.snapshot}
		c.mu.Unlock()
		return update, nil
	}
	c.state = next
	c.snapshot.State = next

	var recomputed []Node
	for _, b := range bindings {
		if slices.Contains(b.inputs, ev.Slot) {
			c.recompute(b.node)
			recomputed = append(recomputed, b.node)
		}
	}

	update := Update{
		Event:      ev,
		Changed:    true,
		Recomputed: recomputed,
		Snapshot:   c.snapshot,
	}
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	c.logger.Debugw("input changed", "slot", ev.Slot, "value", ev.Value, "recomputed", recomputed)
	for _, l := range listeners {
		l(update)
	}
	return update, nil
}

// recompute re-derives one node from the full current state. Callers hold
// c.mu.
func (c *Controller) recompute(node Node) {
	spec, err := view.Select(c.state.ReportMode)
	c.snapshot.View = spec

	switch node {
	case NodeYearControl:
		c.snapshot.YearControlEnabled = spec.YearControlEnabled
	case NodeCharts:
		c.snapshot.ConfigError = ""
		c.snapshot.Charts = []types.SeriesSet{}
		if err != nil {
			c.snapshot.ConfigError = err.Error()
			c.logger.Warnf("configuration error: %v", err)
			return
		}
		charts, err := computeCharts(c.store, c.state, spec)
		if err != nil {
			c.logger.Errorf("error computing charts: %v", err)
			return
		}
		c.snapshot.Charts = charts
	}
}

// ParseYear parses a year slot value. Empty and "none" clear the slot.
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return 0, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYearText, s)
	}
	if !types.ValidYear(year) {
		return 0, fmt.Errorf("%w: %d", ErrYearOutOfRange, year)
	}
	return year, nil
}
