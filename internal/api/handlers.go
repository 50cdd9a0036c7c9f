package api

import (
    "encoding/json"
    "errors"
    "net/http"
    "strconv"
    "time"

    "freightq/internal/carrier"
    "freightq/internal/metrics"
    "freightq/internal/model"
    "freightq/internal/webhooks"
)

// RatesHandler handles GET /v1/rates: a stateless rate lookup outside any
// booking session.
func (s *Server) RatesHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    q := r.URL.Query()
    origin := model.Address{
        Postcode: q.Get("originPostcode"),
        Country:  q.Get("originCountry"),
        City:     q.Get("originCity"),
    }
    destination := model.Address{
        Postcode: q.Get("destPostcode"),
        Country:  q.Get("destCountry"),
        City:     q.Get("destCity"),
    }
    parcel := model.Parcel{
        LengthCm: parseFloat(q.Get("lengthCm")),
        WidthCm:  parseFloat(q.Get("widthCm")),
        HeightCm: parseFloat(q.Get("heightCm")),
        WeightKg: parseFloat(q.Get("weightKg")),
    }
    if err := carrier.ValidateParcel(parcel); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid parcel", err.Error(), r.URL.Path)
        return
    }
    rates, err := s.Carrier.FetchRates(r.Context(), origin, destination, parcel)
    if err != nil {
        s.rateProblem(w, r, err)
        return
    }
    metrics.RateFetches.WithLabelValues("ok").Inc()
    writeJSON(w, http.StatusOK, map[string]any{"rates": rates})
}

// rateProblem maps carrier-layer errors onto the wire. Input problems are
// the caller's fault; everything upstream surfaces as a transient problem.
func (s *Server) rateProblem(w http.ResponseWriter, r *http.Request, err error) {
    switch {
    case errors.Is(err, carrier.ErrCountryUnresolved):
        metrics.RateFetches.WithLabelValues("error").Inc()
        writeProblem(w, http.StatusBadRequest, "Country not recognized", err.Error(), r.URL.Path)
    case errors.Is(err, carrier.ErrRateLimited):
        metrics.RateFetches.WithLabelValues("throttled").Inc()
        writeProblem(w, http.StatusTooManyRequests, "Rate provider throttled", "try again shortly", r.URL.Path)
    case errors.Is(err, carrier.ErrNoRates):
        metrics.RateFetches.WithLabelValues("empty").Inc()
        writeProblem(w, http.StatusBadGateway, "No rates available", "no carrier returned a usable rate", r.URL.Path)
    default:
        metrics.RateFetches.WithLabelValues("error").Inc()
        writeProblem(w, http.StatusBadGateway, "Rate provider unavailable", "temporary issue fetching rates", r.URL.Path)
    }
}

func parseFloat(s string) float64 {
    f, _ := strconv.ParseFloat(s, 64)
    return f
}

// CarrierProxyHandler handles POST /v1/carrier/proxy: forwards an arbitrary
// provider call {endpoint, method, data} and relays the raw JSON response.
func (s *Server) CarrierProxyHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    var req struct {
        Endpoint string `json:"endpoint"`
        Method   string `json:"method"`
        Data     any    `json:"data"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    if req.Endpoint == "" {
        writeProblem(w, http.StatusBadRequest, "Missing endpoint", "endpoint is required", r.URL.Path)
        return
    }
    raw, err := s.Carrier.Forward(r.Context(), req.Endpoint, req.Method, req.Data)
    if err != nil {
        s.rateProblem(w, r, err)
        return
    }
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(raw)
}

// PaymentIntentsHandler handles POST /v1/payment-intents.
func (s *Server) PaymentIntentsHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    var req struct {
        Amount      int64  `json:"amount"`
        Currency    string `json:"currency"`
        Description string `json:"description"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    if req.Amount <= 0 || req.Currency == "" {
        writeProblem(w, http.StatusBadRequest, "Missing amount or currency", "amount and currency are required", r.URL.Path)
        return
    }
    it, err := s.Payments.CreateIntent(r.Context(), req.Amount, req.Currency, req.Description)
    if err != nil {
        writeProblem(w, http.StatusBadGateway, "Payment provider unavailable", "could not create payment intent", r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]string{
        "intentId":     it.ID,
        "clientSecret": it.ClientSecret,
        "status":       it.Status,
    })
}

// HSCodesHandler handles POST /v1/hs-codes/suggest.
func (s *Server) HSCodesHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    var req struct {
        Description string `json:"description"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    if req.Description == "" {
        writeProblem(w, http.StatusBadRequest, "Missing description", "description is required", r.URL.Path)
        return
    }
    sugs, err := s.HSCodes.Suggest(r.Context(), req.Description)
    if err != nil {
        writeProblem(w, http.StatusBadGateway, "Suggestion provider unavailable", "could not fetch suggestions", r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"suggestions": sugs})
}

// QuoteRequestsHandler handles POST /v1/quote-requests: operator-reviewed
// LCL/FCL/air requests. A store failure does not reject the request; the
// operator notification is enqueued either way and the response carries
// persisted:false.
func (s *Server) QuoteRequestsHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    var req struct {
        ServiceType     string         `json:"serviceType"`
        CustomerInfo    map[string]any `json:"customerInfo"`
        ShipmentDetails map[string]any `json:"shipmentDetails"`
        AIEstimate      map[string]any `json:"aiEstimate"`
        Timestamp       string         `json:"timestamp"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    if req.ServiceType == "" || len(req.CustomerInfo) == 0 || len(req.ShipmentDetails) == 0 {
        writeProblem(w, http.StatusBadRequest, "Missing fields", "serviceType, customerInfo and shipmentDetails are required", r.URL.Path)
        return
    }
    if req.Timestamp == "" {
        req.Timestamp = time.Now().UTC().Format(time.RFC3339)
    }
    qr := model.QuoteRequest{
        ServiceType:     req.ServiceType,
        CustomerInfo:    req.CustomerInfo,
        ShipmentDetails: req.ShipmentDetails,
        AIEstimate:      req.AIEstimate,
        Timestamp:       req.Timestamp,
    }
    id, err := s.Store.InsertQuoteRequest(r.Context(), qr)
    persisted := err == nil
    qr.ID = id

    if s.Cfg.OperatorWebhookURL != "" {
        payload, _ := json.Marshal(qr)
        _, _ = s.Store.EnqueueNotification(r.Context(), webhooks.KindQuoteRequest, s.Cfg.OperatorWebhookURL, s.Cfg.OperatorWebhookSecret, payload)
    }
    writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "persisted": persisted})
}

// Admin listings. Auth: dev or HS256 bearer, admin role required.

func (s *Server) AdminQuoteRequestsHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    if !s.requireAdmin(w, r) {
        return
    }
    q := r.URL.Query()
    items, next, err := s.Store.ListQuoteRequests(r.Context(), q.Get("status"), q.Get("cursor"), parseLimit(q.Get("limit")))
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

func (s *Server) AdminShipmentsHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    if !s.requireAdmin(w, r) {
        return
    }
    q := r.URL.Query()
    items, next, err := s.Store.ListShipments(r.Context(), q.Get("cursor"), parseLimit(q.Get("limit")))
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

func (s *Server) AdminNotificationsHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    if !s.requireAdmin(w, r) {
        return
    }
    q := r.URL.Query()
    items, err := s.Store.ListNotifications(r.Context(), q.Get("status"), parseLimit(q.Get("limit")))
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "List failed", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func parseLimit(s string) int {
    n, _ := strconv.Atoi(s)
    if n <= 0 || n > 200 {
        n = 50
    }
    return n
}
