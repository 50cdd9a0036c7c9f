package store

import (
    "context"
    "sync"
    "time"

    "github.com/google/uuid"

    "freightq/internal/model"
)

// Memory is the in-memory store used when no DATABASE_URL is set.
type Memory struct {
    mu        sync.Mutex
    shipments []model.ShipmentRecord
    subs      map[string]model.SubscriptionRecord // externalID -> record
    quoteReqs []model.QuoteRequest
    notifs    map[string]*memNotification
    notifIDs  []string // insertion order
}

func NewMemory() *Memory {
    return &Memory{
        subs:   map[string]model.SubscriptionRecord{},
        notifs: map[string]*memNotification{},
    }
}

type memNotification struct {
    Notification
    NextAttemptAt time.Time
    LastError     string
    ResponseCode  int
    LatencyMs     int
}

func (m *Memory) InsertShipment(ctx context.Context, rec model.ShipmentRecord) (string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if rec.ID == "" {
        rec.ID = uuid.New().String()
    }
    if rec.CreatedAt == "" {
        rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
    }
    m.shipments = append(m.shipments, rec)
    return rec.ID, nil
}

func (m *Memory) ListShipments(ctx context.Context, cursor string, limit int) ([]model.ShipmentRecord, string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if limit <= 0 {
        limit = 100
    }
    start := 0
    if cursor != "" {
        for i, s := range m.shipments {
            if s.ID == cursor {
                start = i + 1
                break
            }
        }
    }
    out := []model.ShipmentRecord{}
    var next string
    for i := start; i < len(m.shipments) && len(out) < limit; i++ {
        out = append(out, m.shipments[i])
        next = m.shipments[i].ID
    }
    if start+len(out) >= len(m.shipments) {
        next = ""
    }
    return out, next, nil
}

func (m *Memory) UpsertSubscription(ctx context.Context, rec model.SubscriptionRecord) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    rec.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
    m.subs[rec.ExternalID] = rec
    return nil
}

func (m *Memory) UpdateSubscriptionStatus(ctx context.Context, externalID, status string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    rec, ok := m.subs[externalID]
    if !ok {
        // status updates may arrive before the created event; upsert a stub
        rec = model.SubscriptionRecord{ExternalID: externalID}
    }
    rec.Status = status
    rec.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
    m.subs[externalID] = rec
    return nil
}

func (m *Memory) GetSubscription(ctx context.Context, externalID string) (model.SubscriptionRecord, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    rec, ok := m.subs[externalID]
    if !ok {
        return model.SubscriptionRecord{}, ErrNotFound
    }
    return rec, nil
}

func (m *Memory) InsertQuoteRequest(ctx context.Context, qr model.QuoteRequest) (string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if qr.ID == "" {
        qr.ID = "qr_" + uuid.New().String()
    }
    if qr.Status == "" {
        qr.Status = "pending"
    }
    if qr.CreatedAt == "" {
        qr.CreatedAt = time.Now().UTC().Format(time.RFC3339)
    }
    m.quoteReqs = append(m.quoteReqs, qr)
    return qr.ID, nil
}

func (m *Memory) ListQuoteRequests(ctx context.Context, status, cursor string, limit int) ([]model.QuoteRequest, string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if limit <= 0 {
        limit = 100
    }
    start := 0
    if cursor != "" {
        for i, q := range m.quoteReqs {
            if q.ID == cursor {
                start = i + 1
                break
            }
        }
    }
    out := []model.QuoteRequest{}
    var next string
    for i := start; i < len(m.quoteReqs) && len(out) < limit; i++ {
        q := m.quoteReqs[i]
        if status == "" || q.Status == status {
            out = append(out, q)
        }
        next = q.ID
    }
    if start+len(out) >= len(m.quoteReqs) {
        next = ""
    }
    return out, next, nil
}

func (m *Memory) EnqueueNotification(ctx context.Context, kind, url, secret string, payload []byte) (string, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    id := "ntf_" + uuid.New().String()
    m.notifs[id] = &memNotification{
        Notification: Notification{ID: id, Kind: kind, URL: url, Secret: secret, Payload: payload, Status: "pending"},
    }
    m.notifIDs = append(m.notifIDs, id)
    return id, nil
}

func (m *Memory) FetchDueNotifications(ctx context.Context, limit int) ([]Notification, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if limit <= 0 {
        limit = 50
    }
    now := time.Now()
    out := []Notification{}
    for _, id := range m.notifIDs {
        n := m.notifs[id]
        if n.Status != "pending" || n.NextAttemptAt.After(now) {
            continue
        }
        out = append(out, n.Notification)
        if len(out) >= limit {
            break
        }
    }
    return out, nil
}

func (m *Memory) MarkNotification(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode, latencyMs int) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    n, ok := m.notifs[id]
    if !ok {
        return ErrNotFound
    }
    n.Attempts++
    n.LastError = lastError
    n.ResponseCode = responseCode
    n.LatencyMs = latencyMs
    if success {
        n.Status = "delivered"
    } else if nextAttemptAt != nil {
        n.NextAttemptAt = *nextAttemptAt
    }
    return nil
}

func (m *Memory) FailNotification(ctx context.Context, id, lastError string, responseCode, latencyMs int) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    n, ok := m.notifs[id]
    if !ok {
        return ErrNotFound
    }
    n.Attempts++
    n.Status = "failed"
    n.LastError = lastError
    n.ResponseCode = responseCode
    n.LatencyMs = latencyMs
    return nil
}

func (m *Memory) ListNotifications(ctx context.Context, status string, limit int) ([]map[string]any, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if limit <= 0 {
        limit = 100
    }
    out := []map[string]any{}
    for _, id := range m.notifIDs {
        n := m.notifs[id]
        if status != "" && n.Status != status {
            continue
        }
        out = append(out, map[string]any{
            "id": n.ID, "kind": n.Kind, "status": n.Status, "attempts": n.Attempts,
            "lastError": n.LastError, "responseCode": n.ResponseCode, "latencyMs": n.LatencyMs,
        })
        if len(out) >= limit {
            break
        }
    }
    return out, nil
}
