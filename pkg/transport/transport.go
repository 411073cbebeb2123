package transport

import (
    "context"
    "errors"
    "net/netip"
)

var (
    ErrClosed         = errors.New("transport: closed")
    ErrAlreadyStarted = errors.New("transport: already started")
    ErrNotStarted     = errors.New("transport: not started")
)

// BytesReceivedFunc receives a private copy of every payload read from the
// socket. It runs on the transport's read goroutine.
type BytesReceivedFunc func(b []byte)

// ClosedFunc is invoked once when the transport stops on its own (peer close
// or read failure). It is not invoked for an explicit Stop.
type ClosedFunc func()

// ConnectionTransport exclusively owns a bound socket handed over by a
// connection creator together with the target address it talks to.
type ConnectionTransport interface {
    // Start launches the read loop. It returns immediately.
    Start(ctx context.Context) error
    // Stop closes the socket without invoking the ClosedFunc. It does not wait
    // for the read loop, so it is safe to call from a callback; use Done to wait.
    Stop() error
    // Done is closed once the read loop has exited.
    Done() <-chan struct{}
    // Write sends b to the target address.
    Write(b []byte) error
    // Addr returns the target address the transport was created with.
    Addr() netip.AddrPort
    // LocalAddr returns the address the socket is bound to.
    LocalAddr() netip.AddrPort

    SetOnBytesReceived(fn BytesReceivedFunc)
    SetOnConnectionClosed(fn ClosedFunc)
}
