package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    SocketsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "ftlconn",
        Name:      "sockets_created_total",
        Help:      "Total number of sockets created and handed to a transport",
    }, []string{"kind"})

    CreateFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "ftlconn",
        Name:      "create_failures_total",
        Help:      "Total number of failed CreateConnection calls by failure reason",
    }, []string{"kind", "reason"})

    TransportsActive = prometheus.NewGaugeVec(prometheus.GaugeOpts{
        Namespace: "ftlconn",
        Subsystem: "transport",
        Name:      "active",
        Help:      "Number of started transports whose read loop is running",
    }, []string{"kind"})

    BytesReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "ftlconn",
        Subsystem: "transport",
        Name:      "bytes_received_total",
        Help:      "Total payload bytes read by transports",
    }, []string{"kind"})

    BytesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "ftlconn",
        Subsystem: "transport",
        Name:      "bytes_sent_total",
        Help:      "Total payload bytes written by transports",
    }, []string{"kind"})

    Endpoints = prometheus.NewGauge(prometheus.GaugeOpts{
        Namespace: "ftlconn",
        Name:      "endpoints",
        Help:      "Number of endpoints currently registered",
    })
)

// Register registers metrics into the default Prometheus registry (idempotent).
func Register() {
    once.Do(func() {
        prometheus.MustRegister(SocketsCreated)
        prometheus.MustRegister(CreateFailures)
        prometheus.MustRegister(TransportsActive)
        prometheus.MustRegister(BytesReceived)
        prometheus.MustRegister(BytesSent)
        prometheus.MustRegister(Endpoints)
    })
}
