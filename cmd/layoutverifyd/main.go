package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/layout-verifier/internal/bootstrap"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/server"
)

func main() {
	// Logger
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}
	cfg := common.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The verification core logs through slog; the transport logs through zap.
	slogger := common.NewLogger(cfg.Log, os.Stderr)
	app, err := bootstrap.New(ctx, cfg, slogger)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer func() { _ = app.Close() }()

	if app.DB != nil {
		if err := app.DB.HealthCheck(ctx, 5*time.Second); err != nil {
			log.Fatalf("DB health failed: %v", err)
		}
		log.Infow("DB health OK", "driver", app.DB.Dialect())
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(server.UnaryLogging(logger)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(server.ServiceName, healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	server.RegisterVerifierServer(grpcServer, server.NewVerifierService(app.Verify, logger))

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	log.Infof("gRPC serving on %s", cfg.Server.GRPCAddr)

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Errorw("grpc serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	hs.Shutdown()
	grpcServer.GracefulStop()
	log.Info("stopped")
}
