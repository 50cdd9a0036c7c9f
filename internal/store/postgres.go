package store

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"

    "github.com/google/uuid"
    _ "github.com/jackc/pgx/v5/stdlib"

    "freightq/internal/model"
)

type Postgres struct {
    db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
    db, err := sql.Open("pgx", dsn)
    if err != nil {
        return nil, err
    }
    if err := db.Ping(); err != nil {
        return nil, err
    }
    return &Postgres{db: db}, nil
}

// MigrateDir applies *.sql files in lexical order. Dev helper; production
// deployments run migrations out of band.
func (p *Postgres) MigrateDir(dir string) error {
    entries, err := os.ReadDir(dir)
    if err != nil {
        return err
    }
    files := []string{}
    for _, e := range entries {
        if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
            files = append(files, e.Name())
        }
    }
    sort.Strings(files)
    for _, f := range files {
        b, err := os.ReadFile(filepath.Join(dir, f))
        if err != nil {
            return err
        }
        if _, err := p.db.Exec(string(b)); err != nil {
            return err
        }
    }
    return nil
}

func (p *Postgres) InsertShipment(ctx context.Context, rec model.ShipmentRecord) (string, error) {
    if rec.ID == "" {
        rec.ID = uuid.New().String()
    }
    _, err := p.db.ExecContext(ctx, `
        INSERT INTO shipments (id, service, tracking_id, origin, destination, cost, currency, customer_email, payment_ref, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now())`,
        rec.ID, rec.Service, rec.TrackingID, rec.Origin, rec.Destination, rec.Cost, rec.Currency,
        nullIfEmpty(rec.CustomerEmail), rec.PaymentRef)
    if err != nil {
        return "", err
    }
    return rec.ID, nil
}

func (p *Postgres) ListShipments(ctx context.Context, cursor string, limit int) ([]model.ShipmentRecord, string, error) {
    if limit <= 0 {
        limit = 100
    }
    rows, err := p.db.QueryContext(ctx, `
        SELECT id, service, tracking_id, origin, destination, cost, currency, COALESCE(customer_email,''), payment_ref, created_at::text
        FROM shipments
        WHERE ($1 = '' OR id > $1)
        ORDER BY id
        LIMIT $2`, cursor, limit+1)
    if err != nil {
        return nil, "", err
    }
    defer rows.Close()
    out := []model.ShipmentRecord{}
    for rows.Next() {
        var r model.ShipmentRecord
        if err := rows.Scan(&r.ID, &r.Service, &r.TrackingID, &r.Origin, &r.Destination, &r.Cost, &r.Currency, &r.CustomerEmail, &r.PaymentRef, &r.CreatedAt); err != nil {
            return nil, "", err
        }
        out = append(out, r)
    }
    next := ""
    if len(out) > limit {
        out = out[:limit]
        next = out[limit-1].ID
    }
    return out, next, rows.Err()
}

func (p *Postgres) UpsertSubscription(ctx context.Context, rec model.SubscriptionRecord) error {
    _, err := p.db.ExecContext(ctx, `
        INSERT INTO subscriptions (external_id, customer_id, status, plan, current_period_start, current_period_end, cancel_at, trial_end, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8, now())
        ON CONFLICT (external_id) DO UPDATE SET
            customer_id = EXCLUDED.customer_id,
            status = EXCLUDED.status,
            plan = EXCLUDED.plan,
            current_period_start = EXCLUDED.current_period_start,
            current_period_end = EXCLUDED.current_period_end,
            cancel_at = EXCLUDED.cancel_at,
            trial_end = EXCLUDED.trial_end,
            updated_at = now()`,
        rec.ExternalID, nullIfEmpty(rec.CustomerID), rec.Status, nullIfEmpty(rec.Plan),
        nullIfEmpty(rec.CurrentPeriodStart), nullIfEmpty(rec.CurrentPeriodEnd),
        nullIfEmpty(rec.CancelAt), nullIfEmpty(rec.TrialEnd))
    return err
}

func (p *Postgres) UpdateSubscriptionStatus(ctx context.Context, externalID, status string) error {
    _, err := p.db.ExecContext(ctx, `
        INSERT INTO subscriptions (external_id, status, updated_at)
        VALUES ($1,$2, now())
        ON CONFLICT (external_id) DO UPDATE SET status = EXCLUDED.status, updated_at = now()`,
        externalID, status)
    return err
}

func (p *Postgres) GetSubscription(ctx context.Context, externalID string) (model.SubscriptionRecord, error) {
    var r model.SubscriptionRecord
    err := p.db.QueryRowContext(ctx, `
        SELECT external_id, COALESCE(customer_id,''), status, COALESCE(plan,''),
               COALESCE(current_period_start,''), COALESCE(current_period_end,''),
               COALESCE(cancel_at,''), COALESCE(trial_end,''), updated_at::text
        FROM subscriptions WHERE external_id = $1`, externalID).Scan(
        &r.ExternalID, &r.CustomerID, &r.Status, &r.Plan,
        &r.CurrentPeriodStart, &r.CurrentPeriodEnd, &r.CancelAt, &r.TrialEnd, &r.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return model.SubscriptionRecord{}, ErrNotFound
    }
    return r, err
}

func (p *Postgres) InsertQuoteRequest(ctx context.Context, qr model.QuoteRequest) (string, error) {
    if qr.ID == "" {
        qr.ID = "qr_" + uuid.New().String()
    }
    if qr.Status == "" {
        qr.Status = "pending"
    }
    _, err := p.db.ExecContext(ctx, `
        INSERT INTO quote_requests (id, service_type, customer_info, shipment_details, ai_estimate, status, submitted_at, created_at)
        VALUES ($1,$2,$3::jsonb,$4::jsonb,$5::jsonb,$6,$7, now())`,
        qr.ID, qr.ServiceType, toJSON(qr.CustomerInfo), toJSON(qr.ShipmentDetails), toJSON(qr.AIEstimate),
        qr.Status, nullIfEmpty(qr.Timestamp))
    if err != nil {
        return "", err
    }
    return qr.ID, nil
}

func (p *Postgres) ListQuoteRequests(ctx context.Context, status, cursor string, limit int) ([]model.QuoteRequest, string, error) {
    if limit <= 0 {
        limit = 100
    }
    rows, err := p.db.QueryContext(ctx, `
        SELECT id, service_type, customer_info, shipment_details, COALESCE(ai_estimate, '{}'::jsonb), status, COALESCE(submitted_at,''), created_at::text
        FROM quote_requests
        WHERE ($1 = '' OR status = $1) AND ($2 = '' OR id > $2)
        ORDER BY id
        LIMIT $3`, status, cursor, limit+1)
    if err != nil {
        return nil, "", err
    }
    defer rows.Close()
    out := []model.QuoteRequest{}
    for rows.Next() {
        var q model.QuoteRequest
        var ci, sd, ai []byte
        if err := rows.Scan(&q.ID, &q.ServiceType, &ci, &sd, &ai, &q.Status, &q.Timestamp, &q.CreatedAt); err != nil {
            return nil, "", err
        }
        _ = json.Unmarshal(ci, &q.CustomerInfo)
        _ = json.Unmarshal(sd, &q.ShipmentDetails)
        _ = json.Unmarshal(ai, &q.AIEstimate)
        out = append(out, q)
    }
    next := ""
    if len(out) > limit {
        out = out[:limit]
        next = out[limit-1].ID
    }
    return out, next, rows.Err()
}

func (p *Postgres) EnqueueNotification(ctx context.Context, kind, url, secret string, payload []byte) (string, error) {
    id := "ntf_" + uuid.New().String()
    _, err := p.db.ExecContext(ctx, `
        INSERT INTO notifications (id, kind, url, secret, payload, status, attempts, next_attempt_at, created_at)
        VALUES ($1,$2,$3,$4,$5::jsonb,'pending',0, now(), now())`,
        id, kind, url, secret, string(payload))
    if err != nil {
        return "", err
    }
    return id, nil
}

func (p *Postgres) FetchDueNotifications(ctx context.Context, limit int) ([]Notification, error) {
    if limit <= 0 {
        limit = 50
    }
    rows, err := p.db.QueryContext(ctx, `
        SELECT id, kind, url, secret, payload, status, attempts
        FROM notifications
        WHERE status = 'pending' AND next_attempt_at <= now()
        ORDER BY next_attempt_at
        LIMIT $1`, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []Notification{}
    for rows.Next() {
        var n Notification
        if err := rows.Scan(&n.ID, &n.Kind, &n.URL, &n.Secret, &n.Payload, &n.Status, &n.Attempts); err != nil {
            return nil, err
        }
        out = append(out, n)
    }
    return out, rows.Err()
}

func (p *Postgres) MarkNotification(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode, latencyMs int) error {
    if success {
        _, err := p.db.ExecContext(ctx, `
            UPDATE notifications
            SET status = 'delivered', attempts = attempts + 1, last_error = $2, response_code = $3, latency_ms = $4, delivered_at = now()
            WHERE id = $1`, id, nullIfEmpty(lastError), responseCode, latencyMs)
        return err
    }
    _, err := p.db.ExecContext(ctx, `
        UPDATE notifications
        SET attempts = attempts + 1, last_error = $2, response_code = $3, latency_ms = $4, next_attempt_at = $5
        WHERE id = $1`, id, nullIfEmpty(lastError), responseCode, latencyMs, nextAttemptAt)
    return err
}

func (p *Postgres) FailNotification(ctx context.Context, id, lastError string, responseCode, latencyMs int) error {
    _, err := p.db.ExecContext(ctx, `
        UPDATE notifications
        SET status = 'failed', attempts = attempts + 1, last_error = $2, response_code = $3, latency_ms = $4
        WHERE id = $1`, id, nullIfEmpty(lastError), responseCode, latencyMs)
    return err
}

func (p *Postgres) ListNotifications(ctx context.Context, status string, limit int) ([]map[string]any, error) {
    if limit <= 0 {
        limit = 100
    }
    rows, err := p.db.QueryContext(ctx, `
        SELECT id, kind, status, attempts, COALESCE(last_error,''), COALESCE(response_code,0), COALESCE(latency_ms,0)
        FROM notifications
        WHERE ($1 = '' OR status = $1)
        ORDER BY created_at DESC
        LIMIT $2`, status, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []map[string]any{}
    for rows.Next() {
        var id, kind, st, lastErr string
        var attempts, code, latency int
        if err := rows.Scan(&id, &kind, &st, &attempts, &lastErr, &code, &latency); err != nil {
            return nil, err
        }
        out = append(out, map[string]any{
            "id": id, "kind": kind, "status": st, "attempts": attempts,
            "lastError": lastErr, "responseCode": code, "latencyMs": latency,
        })
    }
    return out, rows.Err()
}

func nullIfEmpty(s string) any {
    if strings.TrimSpace(s) == "" {
        return nil
    }
    return s
}

func toJSON(v any) string {
    if v == nil {
        return "{}"
    }
    b, err := json.Marshal(v)
    if err != nil {
        return "{}"
    }
    return string(b)
}
