package api

import (
    "encoding/json"
    "io"
    "net/http"
    "time"

    "freightq/internal/metrics"
    "freightq/internal/model"
    "freightq/internal/webhooks"
)

const maxWebhookBody = 1 << 20

// billingEvent is the envelope shared by both webhook sources.
type billingEvent struct {
    ID   string `json:"id"`
    Type string `json:"type"`
    Data struct {
        Object json.RawMessage `json:"object"`
    } `json:"data"`
}

func signatureHeader(r *http.Request) string {
    if v := r.Header.Get("Stripe-Signature"); v != "" {
        return v
    }
    return r.Header.Get("X-Signature")
}

// readSignedEvent reads and authenticates a webhook body. On any failure it
// writes the response itself and returns ok=false; no store call has
// happened at that point.
func (s *Server) readSignedEvent(w http.ResponseWriter, r *http.Request, secret, source string) (billingEvent, bool) {
    var evt billingEvent
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return evt, false
    }
    // An empty secret must fail closed: the empty HMAC key is one anyone
    // can sign with, so an unconfigured endpoint rejects every delivery.
    if secret == "" {
        metrics.WebhookEvents.WithLabelValues(source, "unknown", "no_secret").Inc()
        writeProblem(w, http.StatusBadRequest, "Webhook secret not configured", "deliveries cannot be authenticated", r.URL.Path)
        return evt, false
    }
    body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
    if err != nil {
        writeProblem(w, http.StatusBadRequest, "Read failed", err.Error(), r.URL.Path)
        return evt, false
    }
    if !webhooks.VerifySigned(secret, body, signatureHeader(r)) {
        metrics.WebhookEvents.WithLabelValues(source, "unknown", "bad_signature").Inc()
        writeProblem(w, http.StatusBadRequest, "Invalid signature", "signature missing or failed verification", r.URL.Path)
        return evt, false
    }
    if err := json.Unmarshal(body, &evt); err != nil {
        metrics.WebhookEvents.WithLabelValues(source, "unknown", "bad_payload").Inc()
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return evt, false
    }
    return evt, true
}

// subscriptionObject mirrors the billing provider's subscription shape.
type subscriptionObject struct {
    ID                 string `json:"id"`
    Customer           string `json:"customer"`
    Status             string `json:"status"`
    CancelAt           int64  `json:"cancel_at"`
    TrialEnd           int64  `json:"trial_end"`
    CurrentPeriodStart int64  `json:"current_period_start"`
    CurrentPeriodEnd   int64  `json:"current_period_end"`
    Items              struct {
        Data []struct {
            Price struct {
                Recurring struct {
                    Interval string `json:"interval"`
                } `json:"recurring"`
                Metadata map[string]string `json:"metadata"`
            } `json:"price"`
        } `json:"data"`
    } `json:"items"`
}

func (o subscriptionObject) plan() string {
    if len(o.Items.Data) > 0 {
        switch o.Items.Data[0].Price.Recurring.Interval {
        case "month":
            return "monthly"
        case "year":
            return "yearly"
        }
        if p := o.Items.Data[0].Price.Metadata["plan"]; p != "" {
            return p
        }
    }
    return ""
}

func unixString(v int64) string {
    if v <= 0 {
        return ""
    }
    return time.Unix(v, 0).UTC().Format(time.RFC3339)
}

// SubscriptionWebhookHandler handles POST /v1/webhooks/subscription.
// Writes are keyed by the provider's subscription id so re-deliveries
// collapse into the upsert.
func (s *Server) SubscriptionWebhookHandler(w http.ResponseWriter, r *http.Request) {
    evt, ok := s.readSignedEvent(w, r, s.Cfg.SubscriptionWebhookSecret, "subscription")
    if !ok {
        return
    }
    outcome := "ok"
    switch evt.Type {
    case "customer.subscription.created", "customer.subscription.updated":
        var obj subscriptionObject
        if err := json.Unmarshal(evt.Data.Object, &obj); err != nil || obj.ID == "" {
            metrics.WebhookEvents.WithLabelValues("subscription", evt.Type, "bad_payload").Inc()
            writeProblem(w, http.StatusBadRequest, "Invalid subscription object", "missing subscription id", r.URL.Path)
            return
        }
        rec := model.SubscriptionRecord{
            ExternalID:         obj.ID,
            CustomerID:         obj.Customer,
            Status:             obj.Status,
            Plan:               obj.plan(),
            CurrentPeriodStart: unixString(obj.CurrentPeriodStart),
            CurrentPeriodEnd:   unixString(obj.CurrentPeriodEnd),
            CancelAt:           unixString(obj.CancelAt),
            TrialEnd:           unixString(obj.TrialEnd),
            UpdatedAt:          time.Now().UTC().Format(time.RFC3339),
        }
        if err := s.Store.UpsertSubscription(r.Context(), rec); err != nil {
            metrics.WebhookEvents.WithLabelValues("subscription", evt.Type, "store_error").Inc()
            writeProblem(w, http.StatusInternalServerError, "Persistence failed", err.Error(), r.URL.Path)
            return
        }
    case "customer.subscription.deleted":
        var obj subscriptionObject
        if err := json.Unmarshal(evt.Data.Object, &obj); err != nil || obj.ID == "" {
            metrics.WebhookEvents.WithLabelValues("subscription", evt.Type, "bad_payload").Inc()
            writeProblem(w, http.StatusBadRequest, "Invalid subscription object", "missing subscription id", r.URL.Path)
            return
        }
        if err := s.Store.UpdateSubscriptionStatus(r.Context(), obj.ID, "canceled"); err != nil {
            metrics.WebhookEvents.WithLabelValues("subscription", evt.Type, "store_error").Inc()
            writeProblem(w, http.StatusInternalServerError, "Persistence failed", err.Error(), r.URL.Path)
            return
        }
    case "invoice.payment_succeeded", "invoice.payment_failed":
        var obj struct {
            Subscription string `json:"subscription"`
        }
        if err := json.Unmarshal(evt.Data.Object, &obj); err != nil || obj.Subscription == "" {
            metrics.WebhookEvents.WithLabelValues("subscription", evt.Type, "bad_payload").Inc()
            writeProblem(w, http.StatusBadRequest, "Invalid invoice object", "missing subscription reference", r.URL.Path)
            return
        }
        status := "active"
        if evt.Type == "invoice.payment_failed" {
            status = "past_due"
        }
        if err := s.Store.UpdateSubscriptionStatus(r.Context(), obj.Subscription, status); err != nil {
            metrics.WebhookEvents.WithLabelValues("subscription", evt.Type, "store_error").Inc()
            writeProblem(w, http.StatusInternalServerError, "Persistence failed", err.Error(), r.URL.Path)
            return
        }
    default:
        outcome = "ignored"
    }
    metrics.WebhookEvents.WithLabelValues("subscription", evt.Type, outcome).Inc()
    writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// checkoutSession is the payment provider's completed-checkout shape. The
// booking context travels in metadata placed there at intent creation.
type checkoutSession struct {
    ID              string            `json:"id"`
    PaymentIntent   string            `json:"payment_intent"`
    AmountTotal     int64             `json:"amount_total"`
    Currency        string            `json:"currency"`
    Metadata        map[string]string `json:"metadata"`
    CustomerDetails struct {
        Email string `json:"email"`
    } `json:"customer_details"`
}

// PaymentWebhookHandler handles POST /v1/webhooks/payment. A completed
// checkout without a tracking id cannot be tied to a booking and is
// rejected outright.
func (s *Server) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
    evt, ok := s.readSignedEvent(w, r, s.Cfg.PaymentWebhookSecret, "payment")
    if !ok {
        return
    }
    if evt.Type != "checkout.session.completed" {
        metrics.WebhookEvents.WithLabelValues("payment", evt.Type, "ignored").Inc()
        writeJSON(w, http.StatusOK, map[string]bool{"received": true})
        return
    }
    var sess checkoutSession
    if err := json.Unmarshal(evt.Data.Object, &sess); err != nil {
        metrics.WebhookEvents.WithLabelValues("payment", evt.Type, "bad_payload").Inc()
        writeProblem(w, http.StatusBadRequest, "Invalid checkout object", err.Error(), r.URL.Path)
        return
    }
    trackingID := sess.Metadata["tracking_id"]
    if trackingID == "" {
        metrics.WebhookEvents.WithLabelValues("payment", evt.Type, "bad_payload").Inc()
        writeProblem(w, http.StatusBadRequest, "Missing tracking id", "metadata.tracking_id is required", r.URL.Path)
        return
    }
    paymentRef := sess.PaymentIntent
    if paymentRef == "" {
        paymentRef = sess.ID
    }
    rec := model.ShipmentRecord{
        Service:       sess.Metadata["service"],
        TrackingID:    trackingID,
        Origin:        sess.Metadata["origin"],
        Destination:   sess.Metadata["destination"],
        Cost:          float64(sess.AmountTotal) / 100,
        Currency:      sess.Currency,
        CustomerEmail: sess.CustomerDetails.Email,
        PaymentRef:    paymentRef,
    }
    id, err := s.Store.InsertShipment(r.Context(), rec)
    if err != nil {
        metrics.WebhookEvents.WithLabelValues("payment", evt.Type, "store_error").Inc()
        writeProblem(w, http.StatusInternalServerError, "Persistence failed", err.Error(), r.URL.Path)
        return
    }
    metrics.WebhookEvents.WithLabelValues("payment", evt.Type, "ok").Inc()
    writeJSON(w, http.StatusOK, map[string]any{"received": true, "shipmentId": id})
}
