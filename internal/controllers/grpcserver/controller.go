// Package grpcserver serves dashboard evaluations over gRPC.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"strconv"
	"time"

	"github.com/chrissnell/autosales/internal/constants"
	"github.com/chrissnell/autosales/internal/dataset"
	"github.com/chrissnell/autosales/internal/log"
	"github.com/chrissnell/autosales/internal/presentation"
	"github.com/chrissnell/autosales/internal/reactive"
	"github.com/chrissnell/autosales/internal/types"
	"github.com/chrissnell/autosales/internal/view"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Controller represents the gRPC controller
type Controller struct {
	store  *dataset.Store
	Server *grpc.Server
	health *health.Server
	logger *zap.SugaredLogger
}

// NewController creates a new gRPC controller instance
func NewController(store *dataset.Store, logger *zap.SugaredLogger, opts ...grpc.ServerOption) (*Controller, error) {
	if store == nil {
		return nil, errors.New("gRPC server requires a dataset")
	}
	if logger == nil {
		logger = log.GetSugaredLogger()
	}

	ctrl := &Controller{
		store:  store,
		health: health.NewServer(),
		logger: logger,
	}

	opts = append(opts, grpc.ChainUnaryInterceptor(ctrl.logUnary))
	ctrl.Server = grpc.NewServer(opts...)

	RegisterDashboardServer(ctrl.Server, ctrl)
	healthpb.RegisterHealthServer(ctrl.Server, ctrl.health)
	ctrl.health.SetServingStatus(constants.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return ctrl, nil
}

// Name identifies the controller in manager logs
func (c *Controller) Name() string {
	return "grpc"
}

// Serve accepts gRPC connections on l until Shutdown is called
func (c *Controller) Serve(l net.Listener) error {
	c.logger.Infof("gRPC server listening on %s", l.Addr())
	if err := c.Server.Serve(l); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Shutdown marks the service as not serving and stops gracefully, forcing
// the stop if ctx expires first
func (c *Controller) Shutdown(ctx context.Context) error {
	c.logger.Info("Stopping gRPC controller...")
	c.health.Shutdown()

	done := make(chan struct{})
	go func() {
		c.Server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		c.Server.Stop()
		return ctx.Err()
	}
}

// Evaluate computes the dashboard for the mode and year fields of req
func (c *Controller) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	state, err := inputsFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	snap, err := reactive.Evaluate(c.store, state)
	switch {
	case errors.Is(err, view.ErrUnknownReportMode):
		c.logger.Warnw("unknown report mode requested", "mode", state.ReportMode)
	case err != nil:
		return nil, status.Errorf(codes.Internal, "error evaluating dashboard: %v", err)
	}

	out, err := toStruct(presentation.NewDashboard(snap, nil))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "error encoding dashboard: %v", err)
	}
	return out, nil
}

// inputsFromStruct accepts the year as a number or a numeric string
func inputsFromStruct(req *structpb.Struct) (types.InputState, error) {
	fields := req.GetFields()

	state := types.InputState{
		ReportMode: types.NormalizeReportMode(fields["mode"].GetStringValue()),
	}

	var yearText string
	switch v := fields["year"].GetKind().(type) {
	case nil, *structpb.Value_NullValue:
	case *structpb.Value_NumberValue:
		if v.NumberValue != math.Trunc(v.NumberValue) {
			return state, fmt.Errorf("%w: %v", reactive.ErrInvalidYearText, v.NumberValue)
		}
		yearText = strconv.Itoa(int(v.NumberValue))
	case *structpb.Value_StringValue:
		yearText = v.StringValue
	default:
		return state, fmt.Errorf("%w: unsupported type %T", reactive.ErrInvalidYearText, v)
	}

	year, err := reactive.ParseYear(yearText)
	if err != nil {
		return state, err
	}
	state.SelectedYear = year
	return state, nil
}

// toStruct converts v to a Struct through its JSON encoding
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func (c *Controller) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	c.logger.Infow("grpc request",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, err
}
