package store

import (
    "context"
    "errors"
    "time"

    "freightq/internal/model"
)

// Store is the persistence interface behind the webhook and quote-request
// handlers. Webhook-driven writes are keyed by external identifiers so that
// duplicate deliveries collapse into the upsert's conflict key.
type Store interface {
    // Shipments (payment webhook)
    InsertShipment(ctx context.Context, rec model.ShipmentRecord) (string, error)
    ListShipments(ctx context.Context, cursor string, limit int) ([]model.ShipmentRecord, string, error)

    // Subscriptions (billing webhook), keyed by external subscription id
    UpsertSubscription(ctx context.Context, rec model.SubscriptionRecord) error
    UpdateSubscriptionStatus(ctx context.Context, externalID, status string) error
    GetSubscription(ctx context.Context, externalID string) (model.SubscriptionRecord, error)

    // Quote requests (operator-reviewed LCL/FCL/air)
    InsertQuoteRequest(ctx context.Context, qr model.QuoteRequest) (string, error)
    ListQuoteRequests(ctx context.Context, status, cursor string, limit int) ([]model.QuoteRequest, string, error)

    // Operator notification queue
    EnqueueNotification(ctx context.Context, kind, url, secret string, payload []byte) (string, error)
    FetchDueNotifications(ctx context.Context, limit int) ([]Notification, error)
    MarkNotification(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode, latencyMs int) error
    FailNotification(ctx context.Context, id, lastError string, responseCode, latencyMs int) error
    ListNotifications(ctx context.Context, status string, limit int) ([]map[string]any, error)
}

var ErrNotFound = errors.New("not found")

// Notification is one queued operator notification delivery.
type Notification struct {
    ID       string
    Kind     string
    URL      string
    Secret   string
    Payload  []byte
    Status   string
    Attempts int
}
