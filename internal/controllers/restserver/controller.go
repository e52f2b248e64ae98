package restserver

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"path"
	"time"

	"github.com/chrissnell/autosales/internal/dataset"
	"github.com/chrissnell/autosales/internal/log"
	"github.com/chrissnell/autosales/pkg/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	store     *dataset.Store
	dashboard config.DashboardData
	Server    http.Server
	FS        fs.FS
	logger    *zap.SugaredLogger
	handlers  *Handlers
}

// NewController creates a new REST server controller serving the dashboard
// for store
func NewController(store *dataset.Store, dc config.DashboardData, logger *zap.SugaredLogger) (*Controller, error) {
	if store == nil {
		return nil, errors.New("REST server requires a dataset")
	}
	if logger == nil {
		logger = log.GetSugaredLogger()
	}

	ctrl := &Controller{
		store:     store,
		dashboard: dc,
		FS:        GetAssets(),
		logger:    logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// Name identifies the controller in manager logs
func (c *Controller) Name() string {
	return "rest"
}

// Handler returns the routed HTTP handler
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// Serve accepts HTTP connections on l until Shutdown is called
func (c *Controller) Serve(l net.Listener) error {
	c.logger.Infof("REST server listening on %s", l.Addr())
	if err := c.Server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (c *Controller) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down the REST server...")
	return c.Server.Shutdown(ctx)
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware(c.logger))

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/controls", c.handlers.GetControls).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", c.handlers.GetDashboard).Methods(http.MethodGet)
	api.HandleFunc("/charts/{pipeline}.{format:svg|png}", c.handlers.GetChart).Methods(http.MethodGet)

	router.HandleFunc("/healthz", c.handlers.GetHealth).Methods(http.MethodGet)

	// Template endpoints
	router.HandleFunc("/", c.handlers.ServeIndexTemplate).Methods(http.MethodGet)

	// Static file serving
	router.PathPrefix("/").Handler(staticFiles(c.FS))

	return router
}

// staticFiles serves the asset filesystem. Page templates are rendered by
// their own handlers and never served as source.
func staticFiles(fsys fs.FS) http.Handler {
	files := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if path.Ext(req.URL.Path) == ".tmpl" {
			http.NotFound(w, req)
			return
		}
		files.ServeHTTP(w, req)
	})
}
