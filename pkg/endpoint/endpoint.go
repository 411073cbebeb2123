// Package endpoint tracks started transports on behalf of the caller. The
// creators stay stateless; anything that needs to list or count live
// connections goes through a Registry.
package endpoint

import (
    "context"
    "net/netip"
    "sync/atomic"
    "time"

    "github.com/google/uuid"

    "github.com/amirimatin/go-ftlconn/pkg/connection"
    "github.com/amirimatin/go-ftlconn/pkg/transport"
)

// Info is the JSON view of an endpoint.
type Info struct {
    ID        string    `json:"id"`
    Kind      string    `json:"kind"`
    Local     string    `json:"local"`
    Target    string    `json:"target"`
    Packets   uint64    `json:"packets"`
    Bytes     uint64    `json:"bytes"`
    StartedAt time.Time `json:"startedAt"`
}

// Options describes the connection an endpoint opens.
type Options struct {
    Kind   connection.Kind
    Port   uint16
    Target netip.AddrPort
    // OnBytes, if set, receives every payload after it has been counted.
    OnBytes transport.BytesReceivedFunc
    // OnClosed, if set, runs when the transport stops on its own.
    OnClosed transport.ClosedFunc
}

// Endpoint is a started transport plus traffic counters.
type Endpoint struct {
    id      uuid.UUID
    kind    connection.Kind
    tr      transport.ConnectionTransport
    started time.Time
    packets atomic.Uint64
    bytes   atomic.Uint64
}

// Open creates a connection through c, wires the callbacks and starts the
// transport. The transport is stopped if starting fails.
func Open(ctx context.Context, c connection.Creator, opts Options) (*Endpoint, error) {
    tr, err := c.CreateConnection(opts.Port, opts.Target)
    if err != nil { return nil, err }
    e := &Endpoint{id: uuid.New(), kind: opts.Kind, tr: tr}
    tr.SetOnBytesReceived(func(b []byte) {
        e.packets.Add(1)
        e.bytes.Add(uint64(len(b)))
        if opts.OnBytes != nil { opts.OnBytes(b) }
    })
    if opts.OnClosed != nil { tr.SetOnConnectionClosed(opts.OnClosed) }
    if err := tr.Start(ctx); err != nil {
        _ = tr.Stop()
        return nil, err
    }
    e.started = time.Now().UTC()
    return e, nil
}

func (e *Endpoint) ID() string { return e.id.String() }

// Transport returns the underlying transport, still owned by the endpoint.
func (e *Endpoint) Transport() transport.ConnectionTransport { return e.tr }

// Write sends b to the endpoint's target.
func (e *Endpoint) Write(b []byte) error { return e.tr.Write(b) }

func (e *Endpoint) Info() Info {
    return Info{
        ID:        e.ID(),
        Kind:      string(e.kind),
        Local:     e.tr.LocalAddr().String(),
        Target:    e.tr.Addr().String(),
        Packets:   e.packets.Load(),
        Bytes:     e.bytes.Load(),
        StartedAt: e.started,
    }
}

// Close stops the transport and waits for its read loop to exit.
func (e *Endpoint) Close() error {
    err := e.tr.Stop()
    <-e.tr.Done()
    return err
}
