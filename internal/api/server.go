package api

import (
    "log"
    "net/http"
    "os"
    "strings"

    "freightq/internal/auth"
    "freightq/internal/carrier"
    "freightq/internal/config"
    "freightq/internal/hscode"
    "freightq/internal/metrics"
    "freightq/internal/payment"
    "freightq/internal/store"
    "freightq/internal/webhooks"
    "freightq/internal/wizard"
)

type Server struct {
    Cfg      config.Config
    Store    store.Store
    Sessions wizard.SessionStore
    Broker   EventBroker
    Carrier  *carrier.Client
    Payments *payment.Client
    HSCodes  *hscode.Client
    Auth     *auth.Verifier
}

// NewServer wires the service from config: Postgres when DATABASE_URL is
// set (memory otherwise), Redis sessions and broker when REDIS_URL is set.
func NewServer() (*Server, error) {
    cfg := config.Load()
    metrics.RegisterDefault()

    var st store.Store
    if strings.TrimSpace(cfg.DatabaseURL) == "" {
        st = store.NewMemory()
    } else {
        sp, err := store.NewPostgres(cfg.DatabaseURL)
        if err != nil {
            return nil, err
        }
        // Run migrations (dev helper)
        if os.Getenv("DB_MIGRATE") != "false" {
            if err := sp.MigrateDir("db/migrations"); err != nil {
                log.Printf("migrations failed: %v", err)
            }
        }
        st = sp
    }

    var sessions wizard.SessionStore
    var broker EventBroker
    if cfg.RedisURL != "" {
        if rs, err := wizard.NewRedisSessions(cfg.RedisURL, 0); err == nil {
            sessions = rs
        } else {
            log.Printf("redis sessions unavailable, using memory: %v", err)
        }
        if rb, err := NewRedisBroker(cfg.RedisURL); err == nil {
            broker = rb
        } else {
            log.Printf("redis broker unavailable, using memory: %v", err)
        }
    }
    if sessions == nil {
        sessions = wizard.NewMemorySessions(0)
    }
    if broker == nil {
        broker = NewBroker()
    }

    return &Server{
        Cfg:      cfg,
        Store:    st,
        Sessions: sessions,
        Broker:   broker,
        Carrier:  carrier.NewClient(cfg.RateProviderURL, cfg.RateProviderToken, cfg.RateProviderRPS, cfg.RateProviderBurst),
        Payments: payment.NewClient(cfg.PaymentURL, cfg.PaymentKey),
        HSCodes:  hscode.NewClient(cfg.HSCodeURL, cfg.HSCodeKey),
        Auth:     auth.NewVerifierFromEnv(),
    }, nil
}

// NewNotifier creates the background operator-notification worker.
func (s *Server) NewNotifier() *webhooks.Notifier {
    return webhooks.NewNotifier(s.Store)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
}
