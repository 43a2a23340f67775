package cli

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/breakreminder/breakreminder/internal/config"
	"github.com/breakreminder/breakreminder/internal/daemon/server"
)

const requestTimeout = 5 * time.Second

// connectDaemon establishes a gRPC connection to the running daemon.
func connectDaemon() (*grpc.ClientConn, error) {
	info, err := config.LoadDaemonInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to load daemon info: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("daemon not running")
	}

	addr := fmt.Sprintf("%s:%d", info.Host, info.Port)
	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, server.DialOptions()...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}

	return conn, nil
}

// withClient starts the daemon if needed and runs fn with a connected client.
func withClient(fn func(ctx context.Context, c *server.Client) error) error {
	if err := EnsureDaemon(); err != nil {
		return err
	}

	conn, err := connectDaemon()
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	return fn(ctx, server.NewClient(conn))
}
