package config

import (
    "os"
    "path/filepath"
    "testing"
)

func TestLoadDefaultsAndOverrides(t *testing.T) {
    cfg := Load()
    if cfg.Port != "8080" || cfg.MarkupRate != 0.15 || cfg.TrackingPrefix != "FQ" {
        t.Fatalf("defaults = %+v", cfg)
    }

    dir := t.TempDir()
    path := filepath.Join(dir, "config.yaml")
    if err := os.WriteFile(path, []byte("port: \"9090\"\nmarkupRate: 0.2\ntrackingPrefix: ACME\n"), 0o600); err != nil {
        t.Fatal(err)
    }
    t.Setenv("CONFIG_FILE", path)
    t.Setenv("PORT", "7070")
    cfg = Load()
    if cfg.Port != "7070" {
        t.Fatalf("env should win over file: %q", cfg.Port)
    }
    if cfg.MarkupRate != 0.2 || cfg.TrackingPrefix != "ACME" {
        t.Fatalf("file values not applied: %+v", cfg)
    }
}
