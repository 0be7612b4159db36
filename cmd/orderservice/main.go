// The demo order service exposes the fixed backend contract over gRPC:
// CreateOrder answers PENDING with the user id echoed as order id, and
// GetOrders returns a static item list.
package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/drblury/ordergate/internal/backend"
)

func main() {
	addr := env("GRPC_ADDR", ":50051")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("binding listener", "addr", addr, "error", err)
		os.Exit(1)
	}

	srv := backend.NewServer(backend.DemoService{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	logger.Info("order service listening", "addr", addr)
	if err := srv.Serve(lis); err != nil {
		logger.Error("grpc server stopped", "error", err)
		os.Exit(1)
	}
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
