// Package server implements the gRPC control server for the daemon and the
// client the CLI uses to reach it.
package server

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"google.golang.org/grpc"

	"github.com/breakreminder/breakreminder/internal/buildinfo"
	"github.com/breakreminder/breakreminder/internal/reminder"
)

// Backend is the daemon state the control service operates on.
type Backend interface {
	Registry() *reminder.Registry
	// SetMuted and SetFollowFocusAssist update the registry and persist the toggle.
	SetMuted(muted bool) error
	SetFollowFocusAssist(follow bool) error
	RequestShutdown()
}

// Server is the daemon's gRPC server.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	port       int
	pid        int
	version    string
	startedAt  time.Time
	backend    Backend
}

// New creates a new server listening on localhost at the specified port.
// Pass port 0 for dynamic allocation.
func New(port int, backend Backend) (*Server, error) {
	listener, err := (&net.ListenConfig{}).Listen(context.TODO(), "tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	return NewWithListener(listener, backend), nil
}

// NewWithListener creates a server on an existing listener.
func NewWithListener(listener net.Listener, backend Backend) *Server {
	// Get actual port if dynamically allocated
	actualPort := 0
	if addr, ok := listener.Addr().(*net.TCPAddr); ok {
		actualPort = addr.Port
	}

	srv := &Server{
		grpcServer: grpc.NewServer(),
		listener:   listener,
		port:       actualPort,
		pid:        os.Getpid(),
		version:    buildinfo.Version,
		startedAt:  time.Now(),
		backend:    backend,
	}

	RegisterReminderServiceServer(srv.grpcServer, &reminderService{server: srv})
	return srv
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Serve starts serving requests. This blocks until Stop is called.
func (s *Server) Serve() error {
	return s.grpcServer.Serve(s.listener)
}

// Stop gracefully stops the server.
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
}
