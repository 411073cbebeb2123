package mgmt

import "context"

// StatusFunc returns a JSON-encoded status payload for management /status.
// Using []byte keeps the management layer independent of endpoint types.
type StatusFunc func(ctx context.Context) ([]byte, error)

// Server exposes the management endpoints (status, health, metrics).
type Server interface {
    Start(ctx context.Context, status StatusFunc) error
    // Addr returns the listening address once started, else the bind address.
    Addr() string
    Stop(ctx context.Context) error
}

// Client fetches status from a node's management Server.
type Client interface {
    GetStatus(ctx context.Context, addr string) ([]byte, error)
}
