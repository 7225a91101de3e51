package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code accepted by the pipeline
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
	CurrencyCHF Currency = "CHF"
)

// SupportedCurrencies is the fixed set of currencies the pipeline accepts
var SupportedCurrencies = map[Currency]bool{
	CurrencyUSD: true,
	CurrencyEUR: true,
	CurrencyGBP: true,
	CurrencyJPY: true,
	CurrencyCHF: true,
}

// Valid reports whether the currency is in the supported set
func (c Currency) Valid() bool {
	return SupportedCurrencies[c]
}

// Transaction represents a financial transaction submitted for analysis.
// Immutable once handed to the pipeline.
type Transaction struct {
	ID          string          `json:"transaction_id"`
	Description string          `json:"transaction_data"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    Currency        `json:"currency"`
	Date        time.Time       `json:"date"`
}

// ExtractedEntity is an entity name found in transaction text, with its
// character span in the source for evidence and debugging
type ExtractedEntity struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// EntityType classifies an entity; an entity may carry several types
type EntityType string

const (
	EntityTypeShellCompany         EntityType = "Shell Company"
	EntityTypeNonProfit            EntityType = "Non-Profit"
	EntityTypeFinancialInstitution EntityType = "Financial Institution"
	EntityTypeGovernmentAgency     EntityType = "Government Agency"
	EntityTypeCorporation          EntityType = "Corporation"
	EntityTypeIndividual           EntityType = "Individual"
	EntityTypeUnknown              EntityType = "Unknown"
)

// EvidenceSource identifies a source that contributed to an assessment.
// Kept as an enum internally and serialized to its string form only at
// the API boundary.
type EvidenceSource string

const (
	EvidencePatternMatching EvidenceSource = "Pattern Matching"
	EvidenceEntityRegistry  EvidenceSource = "Entity Registry"
	EvidenceSanctionsList   EvidenceSource = "Sanctions List"
	EvidenceNewsAnalysis    EvidenceSource = "News Analysis"
)

// RecentActivity is the synthetic per-entity activity history consulted
// by the anomaly checks
type RecentActivity struct {
	DailyTransactions int             `json:"daily_transactions"`
	AverageAmount     decimal.Decimal `json:"average_amount"`
}

// DailyVolume returns the amount moved per day implied by the activity
func (a RecentActivity) DailyVolume() decimal.Decimal {
	return a.AverageAmount.Mul(decimal.NewFromInt(int64(a.DailyTransactions)))
}

// EntityProfile is the enriched reference profile for an entity name.
// For a fixed name and fixed enrichment configuration the profile is
// identical across calls and across processes.
type EntityProfile struct {
	Name              string           `json:"name"`
	Jurisdiction      string           `json:"jurisdiction"`
	RegistrationID    string           `json:"registration_id"`
	IncorporationDate time.Time        `json:"incorporation_date"`
	ReputationScore   float64          `json:"reputation_score"` // [-1, 1]
	Sanctioned        bool             `json:"sanctioned"`
	SanctionsProgram  string           `json:"sanctions_program,omitempty"`
	RecentActivity    RecentActivity   `json:"recent_activity"`
	EvidenceSources   []EvidenceSource `json:"evidence_sources"`
}

// AgeAt returns the entity age in days at the given date
func (p *EntityProfile) AgeAt(date time.Time) int {
	return int(date.Sub(p.IncorporationDate).Hours() / 24)
}

// AnomalyType identifies a class of transaction anomaly
type AnomalyType string

const (
	AnomalyLargeTransaction AnomalyType = "large_transaction"
	AnomalyHighFrequency    AnomalyType = "high_frequency"
	AnomalyHighVelocity     AnomalyType = "high_velocity"
	AnomalyRoundAmount      AnomalyType = "round_amount"
	AnomalyNewEntity        AnomalyType = "new_entity"
)

// AnomalyFlag records a single anomaly check that fired, with the value
// measured and the threshold it exceeded
type AnomalyFlag struct {
	Type        AnomalyType `json:"type"`
	Measured    string      `json:"measured"`
	Threshold   string      `json:"threshold"`
	Description string      `json:"description"`
}

// AssessmentResult is the outcome of analyzing one transaction. It
// aggregates over all entities found in the transaction text.
type AssessmentResult struct {
	TransactionID      string   `json:"transaction_id"`
	ExtractedEntities  []string `json:"extracted_entity"`
	EntityTypes        []string `json:"entity_type"`
	RiskScore          float64  `json:"risk_score"`
	SupportingEvidence []string `json:"supporting_evidence"`
	ConfidenceScore    float64  `json:"confidence_score"`
	Reason             string   `json:"reason"`
}

// AlertSeverity represents the severity of a risk alert
type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

// AlertStatus represents the lifecycle status of a risk alert
type AlertStatus string

const (
	AlertStatusOpen     AlertStatus = "open"
	AlertStatusResolved AlertStatus = "resolved"
)

// RiskAlert is recorded when an assessment crosses the alert threshold
type RiskAlert struct {
	ID            string        `json:"id"`
	TransactionID string        `json:"transaction_id"`
	Entities      []string      `json:"entities"`
	RiskScore     float64       `json:"risk_score"`
	Severity      AlertSeverity `json:"severity"`
	Status        AlertStatus   `json:"status"`
	Reason        string        `json:"reason"`
	Resolution    string        `json:"resolution,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	ResolvedAt    *time.Time    `json:"resolved_at,omitempty"`
}
