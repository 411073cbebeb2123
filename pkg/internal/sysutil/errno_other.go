//go:build !unix

package sysutil

import (
    "fmt"
    "syscall"
)

// ErrnoToString describes an OS error code for diagnostics. It never returns
// an empty string.
func ErrnoToString(code int) string {
    if code <= 0 {
        return fmt.Sprintf("unknown error %d", code)
    }
    if desc := syscall.Errno(code).Error(); desc != "" {
        return desc
    }
    return fmt.Sprintf("unknown error %d", code)
}
