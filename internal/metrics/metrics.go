package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the API
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, path, and status
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    // HTTPDuration records request durations in seconds
    HTTPDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"method", "path", "status"},
    )

    // RateFetches counts rate-provider calls by outcome (ok, empty, throttled, error)
    RateFetches = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "rate_fetches_total", Help: "Rate provider fetches by outcome."},
        []string{"outcome"},
    )
    // WebhookEvents counts inbound webhook events by source, type, and outcome
    WebhookEvents = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "webhook_events_total", Help: "Inbound webhook events by source, type and outcome."},
        []string{"source", "event_type", "outcome"},
    )
    // Notifications counts operator-notification delivery outcomes
    Notifications = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "operator_notifications_total", Help: "Operator notification deliveries by kind and outcome."},
        []string{"kind", "outcome"},
    )
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
    regOnce.Do(func() {
        Registry.MustRegister(HTTPRequests)
        Registry.MustRegister(HTTPDuration)
        Registry.MustRegister(RateFetches)
        Registry.MustRegister(WebhookEvents)
        Registry.MustRegister(Notifications)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once
