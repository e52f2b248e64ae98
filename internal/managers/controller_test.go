package managers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/chrissnell/autosales/internal/constants"
	"github.com/chrissnell/autosales/internal/controllers/grpcserver"
	"github.com/chrissnell/autosales/internal/dataset"
	"github.com/chrissnell/autosales/internal/types"
	"github.com/chrissnell/autosales/pkg/config"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestSharedListener(t *testing.T) {
	store := dataset.NewStore([]types.Record{
		{Year: 1980, Month: time.January, VehicleType: "Sedan", Recession: true, AutomobileSales: 10, AdvertisingExpenditure: 100},
		{Year: 1981, Month: time.January, VehicleType: "Sports", AutomobileSales: 20, AdvertisingExpenditure: 200},
	}, "test")

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	cfg := &config.ConfigData{Server: config.ServerData{GRPCEnabled: true}}

	cm, err := newControllerManager(ctx, &wg, l, cfg, store, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("newControllerManager failed: %v", err)
	}
	if err := cm.StartControllers(); err != nil {
		t.Fatalf("StartControllers failed: %v", err)
	}
	addr := cm.Addr().String()

	resp, err := http.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("HTTP request failed: %v", err)
	}
	var health struct {
		Records int `json:"records"`
	}
	json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || health.Records != 2 {
		t.Errorf("unexpected HTTP health: status %d, records %d", resp.StatusCode, health.Records)
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("gRPC dial failed: %v", err)
	}
	defer conn.Close()

	rpcCtx, rpcCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer rpcCancel()

	check, err := healthpb.NewHealthClient(conn).Check(rpcCtx, &healthpb.HealthCheckRequest{Service: constants.ServiceName})
	if err != nil {
		t.Fatalf("gRPC health check failed: %v", err)
	}
	if check.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %v", check.GetStatus())
	}

	out, err := grpcserver.NewDashboardClient(conn).Evaluate(rpcCtx, grpcserver.NewRequest("recession", 0))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if rows, _ := out.AsMap()["rows"].([]any); len(rows) != 2 {
		t.Errorf("expected 2 rows over gRPC, got %d", len(rows))
	}

	cancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout + 5*time.Second):
		t.Fatal("controllers did not shut down")
	}
}
