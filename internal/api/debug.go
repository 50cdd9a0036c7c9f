package api

import (
    "encoding/json"
    "net/http"
    "os"
    "time"

    "freightq/internal/buildinfo"
)

func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
    info := map[string]any{
        "build": buildinfo.Info(),
        "time":  time.Now().UTC().Format(time.RFC3339),
        "config": map[string]any{
            "PORT":                 s.Cfg.Port,
            "AUTH_MODE":            os.Getenv("AUTH_MODE"),
            "MARKUP_RATE":          s.Cfg.MarkupRate,
            "TRACKING_PREFIX":      s.Cfg.TrackingPrefix,
            "RATE_PROVIDER_RPS":    s.Cfg.RateProviderRPS,
            "RATE_PROVIDER_BURST":  s.Cfg.RateProviderBurst,
            "NOTIFY_MAX_ATTEMPTS":  os.Getenv("NOTIFY_MAX_ATTEMPTS"),
            "HAS_DATABASE_URL":     s.Cfg.DatabaseURL != "",
            "HAS_REDIS_URL":        s.Cfg.RedisURL != "",
            "HAS_OPERATOR_WEBHOOK": s.Cfg.OperatorWebhookURL != "",
        },
    }
    w.Header().Set("Content-Type", "application/json")
    _ = json.NewEncoder(w).Encode(info)
}
