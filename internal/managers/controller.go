package managers

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/chrissnell/autosales/internal/controllers/grpcserver"
	"github.com/chrissnell/autosales/internal/controllers/restserver"
	"github.com/chrissnell/autosales/internal/dataset"
	"github.com/chrissnell/autosales/pkg/config"
	"github.com/soheilhy/cmux"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// ControllerManager interface for the controller manager
type ControllerManager interface {
	StartControllers() error
	Addr() net.Addr
}

// Controller is an interface that provides standard methods for the network
// front ends sharing the listener
type Controller interface {
	Name() string
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

type route struct {
	controller Controller
	listener   net.Listener
}

type controllerManager struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	logger   *zap.SugaredLogger
	listener net.Listener
	mux      cmux.CMux
	routes   []route
}

// NewControllerManager creates the REST controller, and the gRPC controller
// when enabled, behind a single listener
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, store *dataset.Store, logger *zap.SugaredLogger) (ControllerManager, error) {
	l, err := listen(cfg.Server)
	if err != nil {
		return nil, err
	}
	return newControllerManager(ctx, wg, l, cfg, store, logger)
}

func newControllerManager(ctx context.Context, wg *sync.WaitGroup, l net.Listener, cfg *config.ConfigData, store *dataset.Store, logger *zap.SugaredLogger) (*controllerManager, error) {
	cm := &controllerManager{
		ctx:      ctx,
		wg:       wg,
		logger:   logger,
		listener: l,
		mux:      cmux.New(l),
	}

	// gRPC must be matched before the catch-all HTTP listener
	if cfg.Server.GRPCEnabled {
		gc, err := grpcserver.NewController(store, logger)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("error creating controller: %v", err)
		}
		grpcL := cm.mux.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
		cm.routes = append(cm.routes, route{controller: gc, listener: grpcL})
	}

	rc, err := restserver.NewController(store, cfg.Dashboard, logger)
	if err != nil {
		l.Close()
		return nil, fmt.Errorf("error creating controller: %v", err)
	}
	cm.routes = append(cm.routes, route{controller: rc, listener: cm.mux.Match(cmux.Any())})

	return cm, nil
}

// listen opens the shared TCP listener, wrapped in TLS when a key pair is
// configured. http/1.1 is preferred in ALPN so browsers stay on HTTP/1 while
// gRPC clients, which only offer h2, still negotiate HTTP/2.
func listen(sc config.ServerData) (net.Listener, error) {
	addr := net.JoinHostPort(sc.ListenAddr, strconv.Itoa(sc.Port))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not listen on %s: %w", addr, err)
	}

	if sc.TLSCertPath == "" || sc.TLSKeyPath == "" {
		return l, nil
	}

	cert, err := tls.LoadX509KeyPair(sc.TLSCertPath, sc.TLSKeyPath)
	if err != nil {
		l.Close()
		return nil, fmt.Errorf("could not load TLS key pair: %w", err)
	}
	return tls.NewListener(l, &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"http/1.1", "h2"},
		MinVersion:   tls.VersionTLS12,
	}), nil
}

// Addr returns the address of the shared listener
func (cm *controllerManager) Addr() net.Addr {
	return cm.listener.Addr()
}

// StartControllers starts every controller and the connection multiplexer.
// Everything is stopped when the manager's context is cancelled.
func (cm *controllerManager) StartControllers() error {
	cm.logger.Info("Starting controller manager...")

	for _, r := range cm.routes {
		cm.wg.Add(1)
		go func(r route) {
			defer cm.wg.Done()
			if err := r.controller.Serve(r.listener); err != nil && !errors.Is(err, cmux.ErrListenerClosed) {
				cm.logger.Errorf("%s server error: %v", r.controller.Name(), err)
			}
		}(r)
	}

	cm.wg.Add(1)
	go func() {
		defer cm.wg.Done()
		if err := cm.mux.Serve(); err != nil && !errors.Is(err, net.ErrClosed) {
			cm.logger.Errorf("connection multiplexer error: %v", err)
		}
	}()

	cm.wg.Add(1)
	go func() {
		defer cm.wg.Done()
		<-cm.ctx.Done()
		cm.stop()
	}()

	cm.logger.Infof("Started %d controllers on %s", len(cm.routes), cm.Addr())
	return nil
}

func (cm *controllerManager) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, r := range cm.routes {
		if err := r.controller.Shutdown(ctx); err != nil {
			cm.logger.Warnf("error shutting down %s server: %v", r.controller.Name(), err)
		}
	}
	cm.listener.Close()
}
