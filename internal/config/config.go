package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for RiskWatch
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Enrichment     EnrichmentConfig     `yaml:"enrichment"`
	Classification ClassificationConfig `yaml:"classification"`
	Anomaly        AnomalyConfig        `yaml:"anomaly"`
	Scoring        ScoringConfig        `yaml:"scoring"`
	Evidence       EvidenceConfig       `yaml:"evidence"`
	Generator      GeneratorConfig      `yaml:"generator"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port        int    `yaml:"port"`
	Environment string `yaml:"environment"`
}

// SanctionsEntry is a configured sanctions-list entry. Entities matching
// the entry enrich to the flagged jurisdiction and reputation regardless
// of what the hash derivation would produce.
type SanctionsEntry struct {
	Name         string   `yaml:"name"`
	Aliases      []string `yaml:"aliases"`
	Jurisdiction string   `yaml:"jurisdiction"`
	Program      string   `yaml:"program"`
}

// EnrichmentConfig holds deterministic enrichment configuration
type EnrichmentConfig struct {
	// ReferenceDate anchors all derived dates so profiles are stable
	// across processes. Format 2006-01-02.
	ReferenceDate string `yaml:"reference_date"`
	// Jurisdictions is the pool hash-derived profiles draw from
	Jurisdictions []string `yaml:"jurisdictions"`
	// Sanctions entries override hash-derived values
	Sanctions []SanctionsEntry `yaml:"sanctions"`
	// SanctionedReputation is the reputation forced onto sanctioned entities
	SanctionedReputation float64 `yaml:"sanctioned_reputation"`
	// MaxIncorporationYears bounds how far back incorporation dates go
	MaxIncorporationYears int `yaml:"max_incorporation_years"`
	// ActivityMaxDaily bounds the synthetic daily transaction count
	ActivityMaxDaily int `yaml:"activity_max_daily"`
	// ActivityMaxAmount bounds the synthetic average transaction amount
	ActivityMaxAmount float64 `yaml:"activity_max_amount"`
}

// ClassificationConfig holds entity classification rule configuration
type ClassificationConfig struct {
	LowTransparencyJurisdictions []string `yaml:"low_transparency_jurisdictions"`
	ShellReputationCeiling       float64  `yaml:"shell_reputation_ceiling"`
	NonProfitKeywords            []string `yaml:"nonprofit_keywords"`
	FinancialKeywords            []string `yaml:"financial_keywords"`
	GovernmentKeywords           []string `yaml:"government_keywords"`
	CorporateSuffixes            []string `yaml:"corporate_suffixes"`
}

// AnomalyConfig holds anomaly detection thresholds
type AnomalyConfig struct {
	LargeAmount      float64 `yaml:"large_amount"`
	FrequencyMax     int     `yaml:"frequency_max"`
	VelocityMax      float64 `yaml:"velocity_max"`
	RoundModulus     int64   `yaml:"round_modulus"`
	RoundMinimum     float64 `yaml:"round_minimum"`
	NewEntityAgeDays int     `yaml:"new_entity_age_days"`
}

// JurisdictionBands holds the risk weight per jurisdiction risk band
type JurisdictionBands struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
	Low    float64 `yaml:"low"`
}

// ScoringConfig holds risk and confidence scoring weights. These are the
// documented scoring contract; changing them changes reported scores.
type ScoringConfig struct {
	TypeWeights         map[string]float64 `yaml:"type_weights"`
	SanctionsWeight     float64            `yaml:"sanctions_weight"`
	AnomalyWeight       float64            `yaml:"anomaly_weight"`
	JurisdictionBands   JurisdictionBands  `yaml:"jurisdiction_bands"`
	JurisdictionRisk    map[string]string  `yaml:"jurisdiction_risk"` // code -> high|medium|low
	ReputationWeight    float64            `yaml:"reputation_weight"`
	ConfidenceBase      float64            `yaml:"confidence_base"`
	ConfidencePerSource float64            `yaml:"confidence_per_source"`
	ConfidenceFloor     float64            `yaml:"confidence_floor"`
	AlertThreshold      float64            `yaml:"alert_threshold"`
}

// EvidenceConfig holds external evidence lookup configuration
type EvidenceConfig struct {
	NewsEnabled bool          `yaml:"news_enabled"`
	NewsURL     string        `yaml:"news_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

// GeneratorConfig holds synthetic transaction generator configuration
type GeneratorConfig struct {
	Seed      int64 `yaml:"seed"` // 0 seeds from the clock
	BatchSize int   `yaml:"batch_size"`
}

// Default returns the configuration defaults. Every threshold and
// scoring weight the pipeline consults lives here.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8081,
			Environment: "development",
		},
		Enrichment: EnrichmentConfig{
			ReferenceDate: "2025-01-01",
			Jurisdictions: []string{
				"US", "GB", "DE", "FR", "CA", "CH",
				"RU", "CN", "IR", "KP", "SY", "VE", "MM", "ZW",
			},
			Sanctions: []SanctionsEntry{
				{Name: "Eastbridge Commodities Ltd", Jurisdiction: "RU", Program: "OFAC SDN"},
				{Name: "Meridian Star Trading FZE", Aliases: []string{"Meridian Star FZE"}, Jurisdiction: "IR", Program: "OFAC SDN"},
				{Name: "Golden Lotus Import Export", Jurisdiction: "KP", Program: "UN Consolidated"},
			},
			SanctionedReputation:  -0.8,
			MaxIncorporationYears: 30,
			ActivityMaxDaily:      12,
			ActivityMaxAmount:     250000,
		},
		Classification: ClassificationConfig{
			LowTransparencyJurisdictions: []string{"RU", "IR", "KP", "SY", "VE", "MM", "ZW"},
			ShellReputationCeiling:       0.0,
			NonProfitKeywords:            []string{"foundation", "charity", "ngo", "non-profit", "nonprofit", "association", "society", "trust"},
			FinancialKeywords:            []string{"bank", "financial", "finance", "credit union", "insurance", "fund", "securities", "asset management"},
			GovernmentKeywords:           []string{"government", "ministry", "department", "agency", "authority"},
			CorporateSuffixes:            []string{"inc", "corp", "corporation", "ltd", "limited", "llc", "gmbh", "plc", "s.a.", "co"},
		},
		Anomaly: AnomalyConfig{
			LargeAmount:      1000000,
			FrequencyMax:     5,
			VelocityMax:      100000,
			RoundModulus:     1000,
			RoundMinimum:     10000,
			NewEntityAgeDays: 30,
		},
		Scoring: ScoringConfig{
			TypeWeights: map[string]float64{
				"Shell Company":         0.3,
				"Non-Profit":            0.1,
				"Financial Institution": 0.15,
				"Government Agency":     0.0,
				"Corporation":           0.05,
				"Individual":            0.05,
				"Unknown":               0.05,
			},
			SanctionsWeight: 0.5,
			AnomalyWeight:   0.2,
			JurisdictionBands: JurisdictionBands{
				High:   0.3,
				Medium: 0.2,
				Low:    0.1,
			},
			JurisdictionRisk: map[string]string{
				"IR": "high", "KP": "high", "SY": "high", "RU": "high",
				"CN": "medium", "VE": "medium", "MM": "medium", "ZW": "medium",
				"US": "low", "GB": "low", "DE": "low", "FR": "low", "CA": "low", "CH": "low",
			},
			ReputationWeight:    0.2,
			ConfidenceBase:      0.5,
			ConfidencePerSource: 0.2,
			ConfidenceFloor:     0.1,
			AlertThreshold:      0.7,
		},
		Evidence: EvidenceConfig{
			NewsEnabled: false,
			NewsURL:     "https://news.google.com/rss/search",
			Timeout:     3 * time.Second,
		},
		Generator: GeneratorConfig{
			Seed:      0,
			BatchSize: 5,
		},
	}
}

// Load loads configuration from a YAML file layered over the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv returns the defaults with scalar overrides taken from
// environment variables. List and table configuration requires a file.
func LoadFromEnv() *Config {
	cfg := Default()

	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	cfg.Server.Environment = getEnv("ENVIRONMENT", cfg.Server.Environment)

	cfg.Anomaly.LargeAmount = getEnvFloat("ANOMALY_LARGE_AMOUNT", cfg.Anomaly.LargeAmount)
	cfg.Anomaly.FrequencyMax = getEnvInt("ANOMALY_FREQUENCY_MAX", cfg.Anomaly.FrequencyMax)
	cfg.Anomaly.VelocityMax = getEnvFloat("ANOMALY_VELOCITY_MAX", cfg.Anomaly.VelocityMax)
	cfg.Anomaly.RoundModulus = int64(getEnvInt("ANOMALY_ROUND_MODULUS", int(cfg.Anomaly.RoundModulus)))
	cfg.Anomaly.RoundMinimum = getEnvFloat("ANOMALY_ROUND_MINIMUM", cfg.Anomaly.RoundMinimum)
	cfg.Anomaly.NewEntityAgeDays = getEnvInt("ANOMALY_NEW_ENTITY_DAYS", cfg.Anomaly.NewEntityAgeDays)

	cfg.Scoring.SanctionsWeight = getEnvFloat("SCORING_SANCTIONS_WEIGHT", cfg.Scoring.SanctionsWeight)
	cfg.Scoring.AnomalyWeight = getEnvFloat("SCORING_ANOMALY_WEIGHT", cfg.Scoring.AnomalyWeight)
	cfg.Scoring.AlertThreshold = getEnvFloat("SCORING_ALERT_THRESHOLD", cfg.Scoring.AlertThreshold)

	cfg.Evidence.NewsEnabled = getEnvBool("EVIDENCE_NEWS_ENABLED", cfg.Evidence.NewsEnabled)
	cfg.Evidence.NewsURL = getEnv("EVIDENCE_NEWS_URL", cfg.Evidence.NewsURL)
	cfg.Evidence.Timeout = getEnvDuration("EVIDENCE_TIMEOUT", cfg.Evidence.Timeout)

	cfg.Generator.Seed = int64(getEnvInt("GENERATOR_SEED", int(cfg.Generator.Seed)))
	cfg.Generator.BatchSize = getEnvInt("GENERATOR_BATCH_SIZE", cfg.Generator.BatchSize)

	return cfg
}

// ReferenceTime parses the enrichment reference date. Falls back to the
// default anchor on a malformed value so enrichment never fails.
func (c EnrichmentConfig) ReferenceTime() time.Time {
	t, err := time.Parse("2006-01-02", c.ReferenceDate)
	if err != nil {
		t, _ = time.Parse("2006-01-02", "2025-01-01")
	}
	return t
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
