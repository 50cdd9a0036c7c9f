// Package config loads service configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
    "os"
    "strconv"

    "gopkg.in/yaml.v3"
)

type Config struct {
    Port        string `yaml:"port"`
    DatabaseURL string `yaml:"databaseUrl"`
    RedisURL    string `yaml:"redisUrl"`

    RateProviderURL   string  `yaml:"rateProviderUrl"`
    RateProviderToken string  `yaml:"rateProviderToken"`
    RateProviderRPS   float64 `yaml:"rateProviderRps"`
    RateProviderBurst int     `yaml:"rateProviderBurst"`

    PaymentURL string `yaml:"paymentUrl"`
    PaymentKey string `yaml:"paymentKey"`
    HSCodeURL  string `yaml:"hscodeUrl"`
    HSCodeKey  string `yaml:"hscodeKey"`

    SubscriptionWebhookSecret string `yaml:"subscriptionWebhookSecret"`
    PaymentWebhookSecret      string `yaml:"paymentWebhookSecret"`
    OperatorWebhookURL        string `yaml:"operatorWebhookUrl"`
    OperatorWebhookSecret     string `yaml:"operatorWebhookSecret"`

    MarkupRate     float64 `yaml:"markupRate"`
    TrackingPrefix string  `yaml:"trackingPrefix"`
}

// Load reads CONFIG_FILE (if set) then applies env overrides. Defaults keep
// the binary runnable with no configuration at all: memory store, memory
// sessions, 15% markup.
func Load() Config {
    cfg := Config{
        Port:              "8080",
        RateProviderURL:   "https://api.goshippo.com",
        RateProviderRPS:   5,
        RateProviderBurst: 5,
        MarkupRate:        0.15,
        TrackingPrefix:    "FQ",
    }
    if path := os.Getenv("CONFIG_FILE"); path != "" {
        if b, err := os.ReadFile(path); err == nil {
            _ = yaml.Unmarshal(b, &cfg)
        }
    }
    overrideString(&cfg.Port, "PORT")
    overrideString(&cfg.DatabaseURL, "DATABASE_URL")
    overrideString(&cfg.RedisURL, "REDIS_URL")
    overrideString(&cfg.RateProviderURL, "RATE_PROVIDER_URL")
    overrideString(&cfg.RateProviderToken, "RATE_PROVIDER_TOKEN")
    overrideFloat(&cfg.RateProviderRPS, "RATE_PROVIDER_RPS")
    overrideInt(&cfg.RateProviderBurst, "RATE_PROVIDER_BURST")
    overrideString(&cfg.PaymentURL, "PAYMENT_URL")
    overrideString(&cfg.PaymentKey, "PAYMENT_KEY")
    overrideString(&cfg.HSCodeURL, "HSCODE_URL")
    overrideString(&cfg.HSCodeKey, "HSCODE_KEY")
    overrideString(&cfg.SubscriptionWebhookSecret, "SUBSCRIPTION_WEBHOOK_SECRET")
    overrideString(&cfg.PaymentWebhookSecret, "PAYMENT_WEBHOOK_SECRET")
    overrideString(&cfg.OperatorWebhookURL, "OPERATOR_WEBHOOK_URL")
    overrideString(&cfg.OperatorWebhookSecret, "OPERATOR_WEBHOOK_SECRET")
    overrideFloat(&cfg.MarkupRate, "MARKUP_RATE")
    overrideString(&cfg.TrackingPrefix, "TRACKING_PREFIX")
    return cfg
}

func overrideString(dst *string, key string) {
    if v := os.Getenv(key); v != "" {
        *dst = v
    }
}

func overrideFloat(dst *float64, key string) {
    if v := os.Getenv(key); v != "" {
        if f, err := strconv.ParseFloat(v, 64); err == nil {
            *dst = f
        }
    }
}

func overrideInt(dst *int, key string) {
    if v := os.Getenv(key); v != "" {
        if n, err := strconv.Atoi(v); err == nil {
            *dst = n
        }
    }
}
