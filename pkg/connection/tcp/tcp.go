package tcp

import (
    "net/netip"

    "github.com/amirimatin/go-ftlconn/pkg/connection"
    "github.com/amirimatin/go-ftlconn/pkg/socket"
    "github.com/amirimatin/go-ftlconn/pkg/transport"
    tcptransport "github.com/amirimatin/go-ftlconn/pkg/transport/tcp"
)

const network = "TCP"

// Creator creates TCP transports connected to their target. It holds no
// state; the zero value is ready to use.
type Creator struct{}

// New returns a TCP connection.Creator.
func New() *Creator { return &Creator{} }

// CreateConnection binds a new TCP socket to 0.0.0.0:port, connects it to
// target (blocking) and hands it to a tcp transport. The socket is closed on
// any failure.
func (Creator) CreateConnection(port uint16, target netip.AddrPort) (transport.ConnectionTransport, error) {
    h, err := socket.Open(socket.Stream)
    if err != nil {
        return nil, connection.NewError(connection.ErrSocketCreation, network, err)
    }
    if err := h.Bind(port); err != nil {
        _ = h.Close()
        return nil, connection.NewError(connection.ErrBind, network, err)
    }
    if err := h.Connect(target); err != nil {
        _ = h.Close()
        return nil, connection.NewError(connection.ErrConnect, network, err)
    }
    tr, err := tcptransport.New(h, target)
    if err != nil {
        // The transport duplicates the descriptor, which fails like socket()
        // once the process is out of descriptors.
        _ = h.Close()
        return nil, connection.NewError(connection.ErrSocketCreation, network, err)
    }
    return tr, nil
}

var _ connection.Creator = Creator{}
