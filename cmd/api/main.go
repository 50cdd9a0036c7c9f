package main

import (
    "log"
    "net/http"
    "time"

    "github.com/prometheus/client_golang/prometheus/promhttp"

    "freightq/internal/api"
    "freightq/internal/metrics"
)

func main() {
    srv, err := api.NewServer()
    if err != nil {
        log.Fatalf("failed to init server: %v", err)
    }

    mux := http.NewServeMux()

    // Rates
    mux.HandleFunc("/v1/rates", srv.RatesHandler)
    mux.HandleFunc("/v1/carrier/proxy", srv.CarrierProxyHandler)

    // Booking wizard
    mux.HandleFunc("/v1/bookings", srv.BookingsHandler)
    mux.HandleFunc("/v1/bookings/", srv.BookingByIDHandler) // includes /submit, /quotes, /events/stream

    // Payments and customs
    mux.HandleFunc("/v1/payment-intents", srv.PaymentIntentsHandler)
    mux.HandleFunc("/v1/hs-codes/suggest", srv.HSCodesHandler)

    // Manual quote requests
    mux.HandleFunc("/v1/quote-requests", srv.QuoteRequestsHandler)

    // Inbound webhooks
    mux.HandleFunc("/v1/webhooks/subscription", srv.SubscriptionWebhookHandler)
    mux.HandleFunc("/v1/webhooks/payment", srv.PaymentWebhookHandler)

    // Admin
    mux.HandleFunc("/v1/admin/quote-requests", srv.AdminQuoteRequestsHandler)
    mux.HandleFunc("/v1/admin/shipments", srv.AdminShipmentsHandler)
    mux.HandleFunc("/v1/admin/notifications", srv.AdminNotificationsHandler)

    // Health and introspection
    mux.HandleFunc("/healthz", srv.HealthHandler)
    mux.HandleFunc("/readyz", srv.ReadyHandler)
    mux.HandleFunc("/debug", srv.DebugJSON)
    mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

    addr := ":" + srv.Cfg.Port

    httpSrv := &http.Server{
        Addr:              addr,
        Handler:           api.Instrument(mux),
        ReadHeaderTimeout: 5 * time.Second,
    }

    log.Printf("API listening on %s", addr)
    // Start operator-notification worker
    notifier := srv.NewNotifier()
    notifier.Start()
    if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        log.Fatalf("server error: %v", err)
    }
}
