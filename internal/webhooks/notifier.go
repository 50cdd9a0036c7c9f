package webhooks

import (
    "bytes"
    "context"
    "net/http"
    "os"
    "strconv"
    "time"

    "freightq/internal/metrics"
    "freightq/internal/store"
)

// KindQuoteRequest tags manual quote requests on the notification queue.
const KindQuoteRequest = "quote_request"

// Notifier drains the operator-notification queue: quote requests and other
// operator-facing events are POSTed to the configured webhook with a signed
// header. Delivery retries back off exponentially; the receiver owns any
// further retry semantics.
type Notifier struct {
    Store       store.Store
    HTTP        *http.Client
    Stop        chan struct{}
    MaxAttempts int
}

func NewNotifier(s store.Store) *Notifier {
    max := 10
    if v := os.Getenv("NOTIFY_MAX_ATTEMPTS"); v != "" {
        if n, err := strconv.Atoi(v); err == nil && n > 0 {
            max = n
        }
    }
    return &Notifier{Store: s, HTTP: &http.Client{Timeout: 5 * time.Second}, Stop: make(chan struct{}), MaxAttempts: max}
}

func (n *Notifier) Start() {
    go func() {
        ticker := time.NewTicker(1 * time.Second)
        defer ticker.Stop()
        for {
            select {
            case <-n.Stop:
                return
            case <-ticker.C:
                n.processOnce()
            }
        }
    }()
}

func (n *Notifier) processOnce() {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    items, err := n.Store.FetchDueNotifications(ctx, 50)
    if err != nil || len(items) == 0 {
        return
    }
    for _, it := range items {
        success := false
        next := time.Now().Add(nextBackoff(it.Attempts))
        req, _ := http.NewRequestWithContext(ctx, http.MethodPost, it.URL, bytes.NewReader(it.Payload))
        req.Header.Set("Content-Type", "application/json")
        req.Header.Set("X-Notification-Kind", it.Kind)
        if it.Secret != "" {
            req.Header.Set("X-Signature", SignHMAC(it.Secret, it.Payload))
        }
        start := time.Now()
        resp, err := n.HTTP.Do(req)
        latency := int(time.Since(start).Milliseconds())
        code := 0
        if err == nil && resp != nil {
            code = resp.StatusCode
            if resp.Body != nil {
                _ = resp.Body.Close()
            }
            if code >= 200 && code < 300 {
                success = true
            }
        }
        lastErr := ""
        if !success && err != nil {
            lastErr = err.Error()
        }
        outcome := "ok"
        if !success {
            outcome = "retry"
        }
        if !success && it.Attempts+1 >= n.MaxAttempts {
            outcome = "failed"
            metrics.Notifications.WithLabelValues(it.Kind, outcome).Inc()
            _ = n.Store.FailNotification(ctx, it.ID, lastErr, code, latency)
            continue
        }
        metrics.Notifications.WithLabelValues(it.Kind, outcome).Inc()
        _ = n.Store.MarkNotification(ctx, it.ID, success, &next, lastErr, code, latency)
    }
}

func nextBackoff(attempts int) time.Duration {
    if attempts < 0 {
        attempts = 0
    }
    if attempts > 10 {
        attempts = 10
    }
    base := time.Second * time.Duration(1<<attempts)
    if base > time.Hour {
        base = time.Hour
    }
    return base
}
