package grpcserver

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/arrowflix/internal/logger"
)

// ServiceName is the health service name reported besides the empty
// "whole server" name.
const ServiceName = "arrowflix"

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers grpc.health.v1.Health/Check from the storage state.
type HealthHandler struct {
	healthpb.UnimplementedHealthServer
	db           pinger
	shuttingDown atomic.Bool
}

func NewHealthHandler(db pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Shutdown makes every following Check report NOT_SERVING.
func (h *HealthHandler) Shutdown() {
	h.shuttingDown.Store(true)
}

func (h *HealthHandler) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if service := req.GetService(); service != "" && service != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", service)
	}

	if h.shuttingDown.Load() {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}

	if err := h.db.Ping(ctx); err != nil {
		logger.Log.Debugln("Error calling the `h.db.Ping()`: ", zap.Error(err))
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
