package transport

import "sync"

// Base carries the callback and lifecycle bookkeeping shared by the concrete
// transports. The zero value is ready to use.
type Base struct {
    mu       sync.Mutex
    onBytes  BytesReceivedFunc
    onClosed ClosedFunc
    started  bool
    stopped  bool
    done     chan struct{}
}

func (b *Base) SetOnBytesReceived(fn BytesReceivedFunc) {
    b.mu.Lock(); defer b.mu.Unlock()
    b.onBytes = fn
}

func (b *Base) SetOnConnectionClosed(fn ClosedFunc) {
    b.mu.Lock(); defer b.mu.Unlock()
    b.onClosed = fn
}

// Done is closed once the read loop has exited, or on Stop if the transport
// was never started.
func (b *Base) Done() <-chan struct{} {
    b.mu.Lock(); defer b.mu.Unlock()
    return b.doneLocked()
}

func (b *Base) doneLocked() chan struct{} {
    if b.done == nil { b.done = make(chan struct{}) }
    return b.done
}

// Begin marks the transport started. The caller must launch its read loop
// only when Begin returns nil.
func (b *Base) Begin() error {
    b.mu.Lock(); defer b.mu.Unlock()
    if b.stopped { return ErrClosed }
    if b.started { return ErrAlreadyStarted }
    b.started = true
    b.doneLocked()
    return nil
}

// Halt marks the transport stopped and reports whether this call did it.
// A transport that never started has its Done channel closed here.
func (b *Base) Halt() bool {
    b.mu.Lock(); defer b.mu.Unlock()
    if b.stopped { return false }
    b.stopped = true
    if !b.started { close(b.doneLocked()) }
    return true
}

// Stopped reports whether Halt has been called.
func (b *Base) Stopped() bool {
    b.mu.Lock(); defer b.mu.Unlock()
    return b.stopped
}

// Deliver hands a private copy of p to the bytes callback, if any.
func (b *Base) Deliver(p []byte) {
    b.mu.Lock()
    fn := b.onBytes
    b.mu.Unlock()
    if fn == nil { return }
    cp := make([]byte, len(p))
    copy(cp, p)
    fn(cp)
}

// Exit is called by the read loop when it returns. If the loop ended without
// an explicit stop, the closed callback fires.
func (b *Base) Exit() {
    b.mu.Lock()
    fire := !b.stopped
    b.stopped = true
    fn := b.onClosed
    done := b.doneLocked()
    b.mu.Unlock()
    close(done)
    if fire && fn != nil { fn() }
}
