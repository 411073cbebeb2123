// Package logutil writes leveled lines over a *log.Logger.
//
// Lines are plain text ("INFO msg key=value") unless FTLCONN_LOG_JSON=1 or
// FTLCONN_LOG_FORMAT=json, in which case each line is one JSON object.
// FTLCONN_LOG_LEVEL (debug, info, warn, error) drops lines below that level;
// the default is info.
package logutil

import (
    "encoding/json"
    "fmt"
    "log"
    "os"
    "strings"
    "sync/atomic"
    "time"
)

// Level orders log severities.
type Level int32

const (
    LevelDebug Level = iota
    LevelInfo
    LevelWarn
    LevelError
)

func (l Level) String() string {
    switch l {
    case LevelDebug:
        return "debug"
    case LevelInfo:
        return "info"
    case LevelWarn:
        return "warn"
    }
    return "error"
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a Level.
func ParseLevel(s string) (Level, bool) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "debug":
        return LevelDebug, true
    case "info":
        return LevelInfo, true
    case "warn", "warning":
        return LevelWarn, true
    case "error":
        return LevelError, true
    }
    return LevelInfo, false
}

var (
    jsonMode atomic.Bool
    minLevel atomic.Int32
)

func init() {
    if os.Getenv("FTLCONN_LOG_JSON") == "1" || os.Getenv("FTLCONN_LOG_FORMAT") == "json" {
        jsonMode.Store(true)
    }
    lvl, _ := ParseLevel(os.Getenv("FTLCONN_LOG_LEVEL"))
    minLevel.Store(int32(lvl))
}

func SetJSON(enabled bool) { jsonMode.Store(enabled) }

// SetLevel drops subsequent lines below lvl.
func SetLevel(lvl Level) { minLevel.Store(int32(lvl)) }

func Debugf(l *log.Logger, f string, args ...any) { emit(l, LevelDebug, fmt.Sprintf(f, args...), nil) }
func Infof(l *log.Logger, f string, args ...any)  { emit(l, LevelInfo, fmt.Sprintf(f, args...), nil) }
func Warnf(l *log.Logger, f string, args ...any)  { emit(l, LevelWarn, fmt.Sprintf(f, args...), nil) }
func Errorf(l *log.Logger, f string, args ...any) { emit(l, LevelError, fmt.Sprintf(f, args...), nil) }

// Infow logs msg with alternating key/value pairs, e.g.
// Infow(l, "bound", "kind", "udp", "port", 5000).
func Infow(l *log.Logger, msg string, kv ...any)  { emit(l, LevelInfo, msg, kv) }
func Errorw(l *log.Logger, msg string, kv ...any) { emit(l, LevelError, msg, kv) }

func emit(l *log.Logger, lvl Level, msg string, kv []any) {
    if int32(lvl) < minLevel.Load() { return }
    if l == nil { l = log.Default() }
    if jsonMode.Load() {
        evt := make(map[string]any, 3+len(kv)/2)
        forEachField(kv, func(k string, v any) { evt[k] = jsonValue(v) })
        // reserved keys win over fields
        evt["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
        evt["level"] = lvl.String()
        evt["msg"] = msg
        b, _ := json.Marshal(evt)
        l.Println(string(b))
        return
    }
    var sb strings.Builder
    sb.WriteString(strings.ToUpper(lvl.String()))
    sb.WriteByte(' ')
    sb.WriteString(msg)
    forEachField(kv, func(k string, v any) { fmt.Fprintf(&sb, " %s=%v", k, v) })
    l.Print(sb.String())
}

func forEachField(kv []any, fn func(k string, v any)) {
    for i := 0; i < len(kv); i += 2 {
        k := fmt.Sprint(kv[i])
        if i+1 == len(kv) {
            fn(k, "<missing>")
            return
        }
        fn(k, kv[i+1])
    }
}

// jsonValue keeps errors and Stringers readable; json.Marshal would render
// most of them as {}.
func jsonValue(v any) any {
    switch x := v.(type) {
    case error:
        return x.Error()
    case fmt.Stringer:
        return x.String()
    }
    return v
}
