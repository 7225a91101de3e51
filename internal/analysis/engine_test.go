package analysis

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/savegress/riskwatch/internal/config"
	"github.com/savegress/riskwatch/pkg/models"
	"github.com/shopspring/decimal"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Enrichment.Sanctions = append(cfg.Enrichment.Sanctions, config.SanctionsEntry{
		Name:         "SovCo Capital Partners",
		Jurisdiction: "IR",
		Program:      "OFAC SDN",
	})
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(engine.Stop)
	return engine
}

func sanctionedTxn() *models.Transaction {
	return &models.Transaction{
		ID:          "TXN-TEST-1",
		Description: "Payment from Acme Corp to SovCo Capital Partners",
		Amount:      decimal.NewFromInt(1500000),
		Currency:    models.CurrencyUSD,
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func TestEngine_Analyze_SanctionedShellExample(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Analyze(context.Background(), sanctionedTxn())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TransactionID != "TXN-TEST-1" {
		t.Errorf("unexpected transaction id %s", result.TransactionID)
	}
	if !contains(result.ExtractedEntities, "SovCo Capital Partners") {
		t.Errorf("expected SovCo Capital Partners extracted, got %v", result.ExtractedEntities)
	}
	if !contains(result.ExtractedEntities, "Acme Corp") {
		t.Errorf("expected Acme Corp extracted, got %v", result.ExtractedEntities)
	}
	if !contains(result.EntityTypes, "Shell Company") {
		t.Errorf("expected Shell Company type, got %v", result.EntityTypes)
	}
	if result.RiskScore < 0.8 {
		t.Errorf("expected risk >= 0.8, got %f", result.RiskScore)
	}
	if !contains(result.SupportingEvidence, "Sanctions List") {
		t.Errorf("expected Sanctions List evidence, got %v", result.SupportingEvidence)
	}
	if !strings.Contains(result.Reason, "shell company") {
		t.Errorf("expected reason to mention shell company, got %q", result.Reason)
	}
	if !strings.Contains(result.Reason, "high-risk jurisdiction") {
		t.Errorf("expected reason to mention jurisdiction risk, got %q", result.Reason)
	}
	if !strings.Contains(result.Reason, "SovCo Capital Partners:") {
		t.Errorf("expected reason grouped by entity, got %q", result.Reason)
	}
}

func TestEngine_Analyze_Bounded(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Analyze(context.Background(), sanctionedTxn())
	if err != nil {
		t.Fatal(err)
	}
	if result.RiskScore < 0 || result.RiskScore > 1 {
		t.Errorf("risk %f out of [0,1]", result.RiskScore)
	}
	if result.ConfidenceScore < 0 || result.ConfidenceScore > 1 {
		t.Errorf("confidence %f out of [0,1]", result.ConfidenceScore)
	}
}

func TestEngine_Analyze_Idempotent(t *testing.T) {
	engine := newTestEngine(t)
	txn := sanctionedTxn()

	first, err := engine.Analyze(context.Background(), txn)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Analyze(context.Background(), txn)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestEngine_Analyze_NoEntities(t *testing.T) {
	engine := newTestEngine(t)
	txn := &models.Transaction{
		ID:          "TXN-TEST-2",
		Description: "payment for services rendered",
		Amount:      decimal.NewFromInt(100),
		Currency:    models.CurrencyEUR,
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	result, err := engine.Analyze(context.Background(), txn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.ExtractedEntities) != 0 || len(result.EntityTypes) != 0 {
		t.Errorf("expected empty entity lists, got %+v", result)
	}
	if result.RiskScore != 0 {
		t.Errorf("expected risk 0, got %f", result.RiskScore)
	}
	if result.ConfidenceScore != 0.1 {
		t.Errorf("expected confidence floor 0.1, got %f", result.ConfidenceScore)
	}
}

func TestEngine_Analyze_Validation(t *testing.T) {
	engine := newTestEngine(t)
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		txn   *models.Transaction
		field string
	}{
		{
			"empty description",
			&models.Transaction{ID: "t", Description: "  ", Amount: decimal.NewFromInt(10), Currency: models.CurrencyUSD, Date: date},
			"transaction_data",
		},
		{
			"zero amount",
			&models.Transaction{ID: "t", Description: "Payment to Acme Corp", Amount: decimal.Zero, Currency: models.CurrencyUSD, Date: date},
			"amount",
		},
		{
			"negative amount",
			&models.Transaction{ID: "t", Description: "Payment to Acme Corp", Amount: decimal.NewFromInt(-5), Currency: models.CurrencyUSD, Date: date},
			"amount",
		},
		{
			"unknown currency",
			&models.Transaction{ID: "t", Description: "Payment to Acme Corp", Amount: decimal.NewFromInt(10), Currency: "XYZ", Date: date},
			"currency",
		},
		{
			"zero date",
			&models.Transaction{ID: "t", Description: "Payment to Acme Corp", Amount: decimal.NewFromInt(10), Currency: models.CurrencyUSD},
			"date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Analyze(context.Background(), tt.txn)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestEngine_AnalyzeBatch_PreservesOrder(t *testing.T) {
	engine := newTestEngine(t)
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	var txns []models.Transaction
	for i := 0; i < 8; i++ {
		txns = append(txns, models.Transaction{
			ID:          fmt.Sprintf("TXN-%03d", i),
			Description: "Payment from Acme Corp to Meridian Holdings",
			Amount:      decimal.NewFromInt(int64(1000 + i)),
			Currency:    models.CurrencyUSD,
			Date:        date,
		})
	}

	results, err := engine.AnalyzeBatch(context.Background(), txns)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(txns) {
		t.Fatalf("expected %d results, got %d", len(txns), len(results))
	}
	for i := range txns {
		if results[i].TransactionID != txns[i].ID {
			t.Errorf("result %d: expected %s, got %s", i, txns[i].ID, results[i].TransactionID)
		}
	}
}

func TestEngine_AnalyzeBatch_RejectsInvalid(t *testing.T) {
	engine := newTestEngine(t)

	txns := []models.Transaction{*sanctionedTxn(), {ID: "bad"}}

	_, err := engine.AnalyzeBatch(context.Background(), txns)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Field, "transactions[1]") {
		t.Errorf("expected field to name offending index, got %s", verr.Field)
	}
}

func TestEngine_AnalyzeBatch_CancelledContext(t *testing.T) {
	engine := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	txns := []models.Transaction{*sanctionedTxn()}

	returned := make(chan struct{})
	var (
		results []models.AssessmentResult
		err     error
	)
	go func() {
		results, err = engine.AnalyzeBatch(ctx, txns)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("AnalyzeBatch did not return after context cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results on cancellation, got %d", len(results))
	}
}

func TestEngine_GenerateAndAnalyze(t *testing.T) {
	engine := newTestEngine(t)

	txns, results, err := engine.GenerateAndAnalyze(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 10 || len(results) != 10 {
		t.Fatalf("expected 10 transactions and results, got %d/%d", len(txns), len(results))
	}

	seen := make(map[string]bool)
	for i, result := range results {
		if result.TransactionID != txns[i].ID {
			t.Errorf("result %d: expected %s, got %s", i, txns[i].ID, result.TransactionID)
		}
		if seen[result.TransactionID] {
			t.Errorf("duplicate transaction id %s", result.TransactionID)
		}
		seen[result.TransactionID] = true
	}
}

func TestEngine_ScoreEntity(t *testing.T) {
	engine := newTestEngine(t)

	score := engine.ScoreEntity("SovCo Capital Partners")

	if score.Entity != "SovCo Capital Partners" {
		t.Errorf("unexpected entity %s", score.Entity)
	}
	if !contains(score.EntityTypes, "Shell Company") {
		t.Errorf("expected Shell Company, got %v", score.EntityTypes)
	}
	if score.RiskScore < 0.8 {
		t.Errorf("expected risk >= 0.8, got %f", score.RiskScore)
	}
}

func TestEngine_Alerts(t *testing.T) {
	engine := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := engine.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := engine.Analyze(ctx, sanctionedTxn()); err != nil {
		t.Fatal(err)
	}

	var alerts []*models.RiskAlert
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		alerts = engine.ListAlerts(AlertFilter{})
		if len(alerts) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}

	alert := alerts[0]
	if alert.TransactionID != "TXN-TEST-1" {
		t.Errorf("unexpected transaction id %s", alert.TransactionID)
	}
	if alert.Severity != models.AlertSeverityCritical {
		t.Errorf("expected critical severity for risk %f, got %s", alert.RiskScore, alert.Severity)
	}
	if alert.Status != models.AlertStatusOpen {
		t.Errorf("expected open status, got %s", alert.Status)
	}

	if err := engine.ResolveAlert(alert.ID, "reviewed, expected counterparty"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	resolved, ok := engine.GetAlert(alert.ID)
	if !ok || resolved.Status != models.AlertStatusResolved || resolved.ResolvedAt == nil {
		t.Errorf("alert not resolved: %+v", resolved)
	}

	stats := engine.GetStats()
	if stats.TotalAlerts != 1 || stats.OpenAlerts != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.TotalAnalyzed == 0 {
		t.Error("expected analyzed counter to advance")
	}
}

func TestEngine_ResolveAlert_NotFound(t *testing.T) {
	engine := newTestEngine(t)

	if err := engine.ResolveAlert("missing", "n/a"); !errors.Is(err, ErrAlertNotFound) {
		t.Errorf("expected ErrAlertNotFound, got %v", err)
	}
}
