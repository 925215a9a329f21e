package storefront

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// RegisterFunc registers gRPC services on a server.
type RegisterFunc func(*grpc.Server)

// ServerConfig configures a gRPC server.
type ServerConfig struct {
	Name string
	Port string
}

// RunServer starts a gRPC server with health checks on cfg.Port.
//
// Blocks until ctx is cancelled (graceful stop) or the server fails.
func RunServer(ctx context.Context, cfg ServerConfig, logger *zap.Logger, register RegisterFunc) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.Port, err)
	}
	return Serve(ctx, lis, cfg, logger, register)
}

// Serve runs the gRPC server on an existing listener.
func Serve(ctx context.Context, lis net.Listener, cfg ServerConfig, logger *zap.Logger, register RegisterFunc) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(logger)))
	register(s)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	logger.Info("grpc server started",
		zap.String("name", cfg.Name),
		zap.String("addr", lis.Addr().String()),
	)

	go func() {
		<-ctx.Done()
		healthServer.Shutdown()
		s.GracefulStop()
	}()

	if err := s.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("rpc failed", zap.String("method", info.FullMethod), zap.Error(err))
		} else {
			logger.Debug("rpc handled", zap.String("method", info.FullMethod))
		}
		return resp, err
	}
}
