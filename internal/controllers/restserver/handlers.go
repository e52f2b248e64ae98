package restserver

import (
	"bytes"
	"errors"
	htmltemplate "html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/chrissnell/autosales/internal/constants"
	"github.com/chrissnell/autosales/internal/log"
	"github.com/chrissnell/autosales/internal/presentation"
	"github.com/chrissnell/autosales/internal/reactive"
	"github.com/chrissnell/autosales/internal/types"
	"github.com/chrissnell/autosales/internal/view"
	"github.com/chrissnell/autosales/pkg/responseformat"
	"github.com/gorilla/mux"
)

// ErrInactiveChart is returned when a chart is requested that the current
// inputs do not display
var ErrInactiveChart = errors.New("chart is not active for the selected inputs")

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// HealthResponse is returned by /healthz
type HealthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
	Source  string `json:"source"`
	Version string `json:"version"`
}

// parseInputs reads the mode and year query parameters. Mode values are
// normalized but never rejected; an unknown mode is handled fail-soft by the
// view selector.
func parseInputs(q url.Values) (types.InputState, error) {
	year, err := reactive.ParseYear(q.Get("year"))
	if err != nil {
		return types.InputState{}, err
	}
	return types.InputState{
		ReportMode:   types.NormalizeReportMode(q.Get("mode")),
		SelectedYear: year,
	}, nil
}

// evaluate runs one stateless evaluation for the request's inputs. It
// writes the error response itself and returns ok=false when the request
// cannot be served.
func (h *Handlers) evaluate(w http.ResponseWriter, req *http.Request) (reactive.Snapshot, bool) {
	state, err := parseInputs(req.URL.Query())
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, err)
		return reactive.Snapshot{}, false
	}

	snap, err := reactive.Evaluate(h.controller.store, state)
	switch {
	case errors.Is(err, view.ErrUnknownReportMode):
		log.Warnw("unknown report mode requested", "mode", state.ReportMode, "request_id", log.RequestID(req.Context()))
	case err != nil:
		log.Errorf("error evaluating dashboard: %v", err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err)
		return reactive.Snapshot{}, false
	}
	return snap, true
}

// respond writes data through the formatter and logs a failed write
func (h *Handlers) respond(w http.ResponseWriter, req *http.Request, data any, headers map[string]string) {
	if err := h.formatter.WriteResponse(w, req, data, headers); err != nil {
		log.Errorw("error writing response", "path", req.URL.Path, "request_id", log.RequestID(req.Context()), "error", err)
	}
}

// chartURL builds the image endpoint for a chart under the same inputs
func chartURL(id types.PipelineID, state types.InputState) string {
	q := url.Values{}
	if state.ReportMode != types.ReportModeUnset {
		q.Set("mode", string(state.ReportMode))
	}
	if state.HasYear() {
		q.Set("year", strconv.Itoa(state.SelectedYear))
	}
	u := "/api/charts/" + string(id) + "." + string(presentation.FormatSVG)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// GetControls returns the control options and their enablement for the
// given inputs
func (h *Handlers) GetControls(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.evaluate(w, req)
	if !ok {
		return
	}
	h.respond(w, req, presentation.NewControls(snap), nil)
}

// GetDashboard returns the controls and the chart rows for the given inputs
func (h *Handlers) GetDashboard(w http.ResponseWriter, req *http.Request) {
	snap, ok := h.evaluate(w, req)
	if !ok {
		return
	}

	dash := presentation.NewDashboard(snap, func(id types.PipelineID) string {
		return chartURL(id, snap.State)
	})
	h.respond(w, req, dash, map[string]string{"Cache-Control": "no-store"})
}

// GetChart renders a single active chart as SVG or PNG
func (h *Handlers) GetChart(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	format, err := presentation.ParseFormat(vars["format"])
	if err != nil {
		h.formatter.WriteError(w, req, http.StatusNotFound, err)
		return
	}

	snap, ok := h.evaluate(w, req)
	if !ok {
		return
	}

	id := types.PipelineID(vars["pipeline"])
	var set *types.SeriesSet
	for i := range snap.Charts {
		if snap.Charts[i].Pipeline == id {
			set = &snap.Charts[i]
			break
		}
	}
	if set == nil {
		h.formatter.WriteError(w, req, http.StatusNotFound, ErrInactiveChart)
		return
	}

	var buf bytes.Buffer
	opts := presentation.Options{Width: h.controller.dashboard.ChartWidth, Height: h.controller.dashboard.ChartHeight}
	if err := presentation.Render(&buf, *set, format, opts); err != nil {
		if errors.Is(err, presentation.ErrNoData) {
			h.formatter.WriteError(w, req, http.StatusNotFound, err)
			return
		}
		log.Errorf("error rendering chart %s: %v", id, err)
		h.formatter.WriteError(w, req, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// GetHealth reports the size of the loaded dataset
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	h.respond(w, req, HealthResponse{
		Status:  "ok",
		Records: h.controller.store.Len(),
		Source:  h.controller.store.Source(),
		Version: constants.Version,
	}, nil)
}

// ServeIndexTemplate serves the dashboard page
func (h *Handlers) ServeIndexTemplate(w http.ResponseWriter, req *http.Request) {
	page, err := htmltemplate.New("index.html.tmpl").ParseFS(h.controller.FS, "index.html.tmpl")
	if err != nil {
		log.Errorf("error parsing index template: %v", err)
		http.Error(w, "dashboard page unavailable", http.StatusInternalServerError)
		return
	}

	dc := h.controller.dashboard
	defaultYear := dc.DefaultYear
	if !types.ValidYear(defaultYear) {
		defaultYear = types.MinSelectableYear
	}

	templateData := struct {
		PageTitle   string
		Version     string
		Modes       []types.ReportMode
		DefaultMode types.ReportMode
		Years       []int
		DefaultYear int
	}{
		PageTitle:   dc.PageTitle,
		Version:     constants.Version,
		Modes:       types.ReportModes,
		DefaultMode: types.ReportModeYearly,
		Years:       presentation.SelectableYears(),
		DefaultYear: defaultYear,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, templateData); err != nil {
		log.Errorf("error executing index template: %v", err)
	}
}
