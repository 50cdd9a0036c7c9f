package api

import (
    "bufio"
    "log"
    "net"
    "net/http"
    "strconv"
    "strings"
    "time"

    "freightq/internal/metrics"
)

type statusWriter struct {
    http.ResponseWriter
    status int
}

func (w *statusWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
    if f, ok := w.ResponseWriter.(http.Flusher); ok {
        f.Flush()
    }
}

// Hijack lets the websocket upgrade reach the underlying connection.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
    if hj, ok := w.ResponseWriter.(http.Hijacker); ok {
        return hj.Hijack()
    }
    return nil, nil, http.ErrNotSupported
}

// Instrument wraps the mux with request logging and Prometheus counters.
// Paths are collapsed to their route shape so booking ids don't explode
// label cardinality.
func Instrument(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
        start := time.Now()
        next.ServeHTTP(sw, r)
        dur := time.Since(start)
        path := routeShape(r.URL.Path)
        status := strconv.Itoa(sw.status)
        metrics.HTTPRequests.WithLabelValues(r.Method, path, status).Inc()
        metrics.HTTPDuration.WithLabelValues(r.Method, path, status).Observe(dur.Seconds())
        log.Printf("%s %s %s %d %v", r.RemoteAddr, r.Method, r.URL.Path, sw.status, dur)
    })
}

func routeShape(path string) string {
    const prefix = "/v1/bookings/"
    if strings.HasPrefix(path, prefix) {
        rest := strings.TrimPrefix(path, prefix)
        if i := strings.IndexByte(rest, '/'); i >= 0 {
            return prefix + "{id}/" + rest[i+1:]
        }
        return prefix + "{id}"
    }
    return path
}
