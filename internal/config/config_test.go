package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != 8081 {
		t.Errorf("expected port 8081, got %d", cfg.Server.Port)
	}
	if cfg.Anomaly.LargeAmount != 1000000 {
		t.Errorf("expected large amount 1000000, got %f", cfg.Anomaly.LargeAmount)
	}
	if cfg.Anomaly.FrequencyMax != 5 {
		t.Errorf("expected frequency max 5, got %d", cfg.Anomaly.FrequencyMax)
	}
	if cfg.Scoring.TypeWeights["Shell Company"] != 0.3 {
		t.Errorf("expected shell weight 0.3, got %f", cfg.Scoring.TypeWeights["Shell Company"])
	}
	if cfg.Scoring.AlertThreshold != 0.7 {
		t.Errorf("expected alert threshold 0.7, got %f", cfg.Scoring.AlertThreshold)
	}
	if len(cfg.Enrichment.Sanctions) != 3 {
		t.Errorf("expected 3 default sanctions entries, got %d", len(cfg.Enrichment.Sanctions))
	}
	if cfg.Evidence.NewsEnabled {
		t.Error("news lookups must default to disabled")
	}
}

func TestLoad_LayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9999
anomaly:
  large_amount: 500000
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("expected overridden port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Anomaly.LargeAmount != 500000 {
		t.Errorf("expected overridden large amount, got %f", cfg.Anomaly.LargeAmount)
	}
	// Untouched values keep their defaults
	if cfg.Anomaly.FrequencyMax != 5 {
		t.Errorf("expected default frequency max, got %d", cfg.Anomaly.FrequencyMax)
	}
	if cfg.Scoring.SanctionsWeight != 0.5 {
		t.Errorf("expected default sanctions weight, got %f", cfg.Scoring.SanctionsWeight)
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_RISK_PORT", "7777")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "server:\n  port: ${TEST_RISK_PORT}\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("expected expanded port 7777, got %d", cfg.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ANOMALY_LARGE_AMOUNT", "250000")
	t.Setenv("SCORING_ALERT_THRESHOLD", "0.9")
	t.Setenv("EVIDENCE_TIMEOUT", "5s")

	cfg := LoadFromEnv()

	if cfg.Anomaly.LargeAmount != 250000 {
		t.Errorf("expected 250000, got %f", cfg.Anomaly.LargeAmount)
	}
	if cfg.Scoring.AlertThreshold != 0.9 {
		t.Errorf("expected 0.9, got %f", cfg.Scoring.AlertThreshold)
	}
	if cfg.Evidence.Timeout != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.Evidence.Timeout)
	}
}

func TestEnrichmentConfig_ReferenceTime(t *testing.T) {
	cfg := EnrichmentConfig{ReferenceDate: "2024-06-15"}
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if got := cfg.ReferenceTime(); !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}

	// Malformed dates fall back to the default anchor
	bad := EnrichmentConfig{ReferenceDate: "junk"}
	fallback := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := bad.ReferenceTime(); !got.Equal(fallback) {
		t.Errorf("expected fallback %s, got %s", fallback, got)
	}
}
