// Package grpcserver exposes the standard gRPC health service so that
// orchestrators can probe storage readiness without going through HTTP.
package grpcserver

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/patric-chuzhbe/arrowflix/internal/grpcserver/interceptor"
)

// NewGRPCServer listens on addr and registers handler as the health service.
func NewGRPCServer(addr string, handler *HealthHandler) (*grpc.Server, net.Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("in internal/grpcserver/server.go/NewGRPCServer(): error while `net.Listen()` calling: %w", err)
	}

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptor.UnaryLoggingInterceptor([]string{
				healthpb.Health_Check_FullMethodName,
			}),
		),
	)
	healthpb.RegisterHealthServer(server, handler)

	return server, lis, nil
}
