package webhooks

import (
    "context"
    "net/http"
    "net/http/httptest"
    "sync"
    "testing"
    "time"

    "freightq/internal/store"
)

type recordStore struct {
    *store.Memory
    mu    sync.Mutex
    marks []markRec
    fails []failRec
}
type markRec struct {
    ID      string
    Success bool
}
type failRec struct {
    ID      string
    LastErr string
}

func (r *recordStore) MarkNotification(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode, latencyMs int) error {
    r.mu.Lock()
    r.marks = append(r.marks, markRec{ID: id, Success: success})
    r.mu.Unlock()
    return r.Memory.MarkNotification(ctx, id, success, nextAttemptAt, lastError, responseCode, latencyMs)
}

func (r *recordStore) FailNotification(ctx context.Context, id, lastError string, responseCode, latencyMs int) error {
    r.mu.Lock()
    r.fails = append(r.fails, failRec{ID: id, LastErr: lastError})
    r.mu.Unlock()
    return r.Memory.FailNotification(ctx, id, lastError, responseCode, latencyMs)
}

func TestNotifierDeliversWithSignature(t *testing.T) {
    var gotSig, gotKind string
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotSig = r.Header.Get("X-Signature")
        gotKind = r.Header.Get("X-Notification-Kind")
        w.WriteHeader(200)
    }))
    defer srv.Close()

    rs := &recordStore{Memory: store.NewMemory()}
    n := &Notifier{Store: rs, HTTP: srv.Client(), Stop: make(chan struct{}), MaxAttempts: 3}
    id, err := rs.Memory.EnqueueNotification(context.Background(), "quote_request", srv.URL, "secret", []byte(`{"id":"qr_1"}`))
    if err != nil || id == "" {
        t.Fatalf("enqueue: %v", err)
    }

    n.processOnce()

    if gotKind != "quote_request" {
        t.Fatalf("kind header = %q", gotKind)
    }
    if !VerifyHMAC("secret", []byte(`{"id":"qr_1"}`), gotSig) {
        t.Fatalf("bad signature %q", gotSig)
    }
    if len(rs.marks) == 0 || !rs.marks[0].Success {
        t.Fatalf("expected mark success: %+v", rs.marks)
    }
}

func TestNotifierFailsAfterMaxAttempts(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(500) }))
    defer srv.Close()
    rs := &recordStore{Memory: store.NewMemory()}
    n := &Notifier{Store: rs, HTTP: srv.Client(), Stop: make(chan struct{}), MaxAttempts: 1}
    _, _ = rs.Memory.EnqueueNotification(context.Background(), "quote_request", srv.URL, "", []byte(`{}`))
    n.processOnce()
    if len(rs.fails) == 0 {
        t.Fatalf("expected fail recorded")
    }
}

func TestNextBackoff(t *testing.T) {
    if nextBackoff(0) != time.Second {
        t.Fatalf("attempt 0: %v", nextBackoff(0))
    }
    if nextBackoff(3) != 8*time.Second {
        t.Fatalf("attempt 3: %v", nextBackoff(3))
    }
    if nextBackoff(30) != time.Hour {
        t.Fatalf("attempt 30 should cap at 1h: %v", nextBackoff(30))
    }
}
