package logutil

import (
    "bytes"
    "encoding/json"
    "errors"
    "log"
    "strings"
    "testing"
)

func TestTextPrefix(t *testing.T) {
    SetJSON(false)
    var buf bytes.Buffer
    l := log.New(&buf, "", 0)
    Warnf(l, "port %d busy", 5000)
    if got := buf.String(); got != "WARN port 5000 busy\n" {
        t.Fatalf("unexpected line %q", got)
    }
}

func TestJSONMode(t *testing.T) {
    SetJSON(true)
    defer SetJSON(false)
    var buf bytes.Buffer
    l := log.New(&buf, "", 0)
    Errorf(l, "bind failed: %s", "in use")
    var evt map[string]any
    if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &evt); err != nil {
        t.Fatalf("not json: %v (%q)", err, buf.String())
    }
    if evt["level"] != "error" || evt["msg"] != "bind failed: in use" {
        t.Fatalf("unexpected event %#v", evt)
    }
}

func TestLevelThreshold(t *testing.T) {
    SetJSON(false)
    defer SetLevel(LevelInfo)
    var buf bytes.Buffer
    l := log.New(&buf, "", 0)

    SetLevel(LevelInfo)
    Debugf(l, "hidden")
    if buf.Len() != 0 { t.Fatalf("debug line written at info level: %q", buf.String()) }

    SetLevel(LevelDebug)
    Debugf(l, "shown")
    if got := buf.String(); got != "DEBUG shown\n" { t.Fatalf("unexpected line %q", got) }

    buf.Reset()
    SetLevel(LevelError)
    Warnf(l, "hidden")
    Errorw(l, "shown")
    if got := buf.String(); got != "ERROR shown\n" { t.Fatalf("unexpected line %q", got) }
}

func TestParseLevel(t *testing.T) {
    cases := map[string]Level{"debug": LevelDebug, "INFO": LevelInfo, "warning": LevelWarn, " error ": LevelError}
    for in, want := range cases {
        got, ok := ParseLevel(in)
        if !ok || got != want { t.Fatalf("ParseLevel(%q) = %v, %v", in, got, ok) }
    }
    if got, ok := ParseLevel("loud"); ok || got != LevelInfo { t.Fatalf("unknown level: %v, %v", got, ok) }
}

func TestFieldsText(t *testing.T) {
    SetJSON(false)
    var buf bytes.Buffer
    l := log.New(&buf, "", 0)
    Infow(l, "connection created", "kind", "udp", "port", 5000, "dangling")
    if got := buf.String(); got != "INFO connection created kind=udp port=5000 dangling=<missing>\n" {
        t.Fatalf("unexpected line %q", got)
    }
}

func TestFieldsJSON(t *testing.T) {
    SetJSON(true)
    defer SetJSON(false)
    var buf bytes.Buffer
    l := log.New(&buf, "", 0)
    Errorw(l, "create failed", "err", errors.New("in use"), "port", 5000, "msg", "shadowed")
    var evt map[string]any
    if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &evt); err != nil {
        t.Fatalf("not json: %v (%q)", err, buf.String())
    }
    if evt["msg"] != "create failed" || evt["err"] != "in use" || evt["port"] != float64(5000) {
        t.Fatalf("unexpected event %#v", evt)
    }
}
