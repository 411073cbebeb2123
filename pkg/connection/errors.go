package connection

import (
    "errors"
    "fmt"
    "syscall"

    "github.com/amirimatin/go-ftlconn/pkg/internal/sysutil"
)

var (
    // ErrSocketCreation means the OS refused to allocate a socket.
    ErrSocketCreation = errors.New("connection: socket creation failed")
    // ErrBind means the OS refused to bind the socket to the local port.
    ErrBind = errors.New("connection: bind failed")
    // ErrConnect means a stream socket could not reach its target.
    ErrConnect = errors.New("connection: connect failed")
)

// Error is the failure returned by a Creator. It matches its Kind and the
// captured errno with errors.Is.
type Error struct {
    Kind        error
    Network     string // "UDP", "TCP"
    Code        int    // OS error code, 0 when the failure carried none
    Description string
    Err         error
}

// NewError builds an Error of the given kind, capturing the errno carried by err.
func NewError(kind error, network string, err error) *Error {
    e := &Error{Kind: kind, Network: network, Err: err}
    var errno syscall.Errno
    if errors.As(err, &errno) {
        e.Code = int(errno)
        e.Description = sysutil.ErrnoToString(e.Code)
    } else if err != nil {
        e.Description = err.Error()
    } else {
        e.Description = sysutil.ErrnoToString(0)
    }
    return e
}

func (e *Error) Error() string {
    return fmt.Sprintf("couldn't %s %s socket. Error %d: %s", verb(e.Kind), e.Network, e.Code, e.Description)
}

func (e *Error) Unwrap() []error {
    if e.Err == nil { return []error{e.Kind} }
    return []error{e.Kind, e.Err}
}

func verb(kind error) string {
    switch kind {
    case ErrSocketCreation:
        return "create"
    case ErrBind:
        return "bind"
    case ErrConnect:
        return "connect"
    }
    return "set up"
}

// Reason classifies err for metrics labels: "socket", "bind", "connect" or "other".
func Reason(err error) string {
    switch {
    case errors.Is(err, ErrSocketCreation):
        return "socket"
    case errors.Is(err, ErrBind):
        return "bind"
    case errors.Is(err, ErrConnect):
        return "connect"
    }
    return "other"
}
