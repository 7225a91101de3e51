package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/savegress/riskwatch/internal/anomaly"
	"github.com/savegress/riskwatch/internal/classify"
	"github.com/savegress/riskwatch/internal/config"
	"github.com/savegress/riskwatch/internal/enrichment"
	"github.com/savegress/riskwatch/internal/evidence"
	"github.com/savegress/riskwatch/internal/extraction"
	"github.com/savegress/riskwatch/internal/generator"
	"github.com/savegress/riskwatch/internal/scoring"
	"github.com/savegress/riskwatch/pkg/models"
	"github.com/savegress/riskwatch/pkg/workerpool"
)

// ErrAlertNotFound is returned when an alert ID does not exist
var ErrAlertNotFound = errors.New("alert not found")

// ValidationError reports a rejected transaction field. Returned before
// the pipeline runs; everything past validation is non-fatal.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Engine runs the assessment pipeline: extract entities from the
// transaction text, enrich each one, classify it, check the transaction
// for anomalies against its profile, and score the result. The pipeline
// itself is pure; the engine additionally keeps counters and records
// high-risk assessments as alerts.
type Engine struct {
	cfg        *config.Config
	extractor  *extraction.Extractor
	enricher   *enrichment.Enricher
	classifier *classify.Classifier
	detector   *anomaly.Detector
	scorer     *scoring.Scorer
	news       *evidence.NewsClient
	generator  *generator.Generator
	pool       *workerpool.Pool

	analyzed atomic.Uint64

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	alertCh chan *models.RiskAlert
	alerts  map[string]*models.RiskAlert
}

// NewEngine creates an engine from configuration
func NewEngine(cfg *config.Config) (*Engine, error) {
	pool, err := workerpool.New(workerpool.Config{
		Workers:         8,
		QueueSize:       256,
		ShutdownTimeout: 10 * time.Second,
		ErrorHandler: func(err *workerpool.TaskError) {
			log.Printf("batch task failed: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("worker pool: %w", err)
	}

	return &Engine{
		cfg:        cfg,
		extractor:  extraction.NewExtractor(),
		enricher:   enrichment.NewEnricher(cfg.Enrichment),
		classifier: classify.NewClassifier(cfg.Classification),
		detector:   anomaly.NewDetector(cfg.Anomaly),
		scorer:     scoring.NewScorer(cfg.Scoring),
		news:       evidence.NewNewsClient(cfg.Evidence, nil),
		generator:  generator.New(cfg.Generator),
		pool:       pool,
		stopCh:     make(chan struct{}),
		alertCh:    make(chan *models.RiskAlert, 100),
		alerts:     make(map[string]*models.RiskAlert),
	}, nil
}

// Start starts the alert processing loop
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = true
	e.mu.Unlock()

	go e.processAlerts(ctx)
	return nil
}

// Stop stops alert processing and shuts down the batch pool
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.running {
		close(e.stopCh)
		e.running = false
	}
	e.mu.Unlock()

	if err := e.pool.Stop(); err != nil {
		log.Printf("worker pool shutdown: %v", err)
	}
}

func (e *Engine) processAlerts(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case alert := <-e.alertCh:
			e.mu.Lock()
			e.alerts[alert.ID] = alert
			e.mu.Unlock()
		}
	}
}

// Analyze runs the full pipeline over one transaction and returns a
// single aggregated result. The transaction risk is the maximum over
// the entity risk scores; evidence is the ordered union of entity
// evidence; the reason groups per-entity clauses.
func (e *Engine) Analyze(ctx context.Context, txn *models.Transaction) (*models.AssessmentResult, error) {
	if err := validate(txn); err != nil {
		return nil, err
	}

	e.analyzed.Add(1)

	extracted := e.extractor.Extract(txn.Description)
	if len(extracted) == 0 {
		return &models.AssessmentResult{
			TransactionID:      txn.ID,
			ExtractedEntities:  []string{},
			EntityTypes:        []string{},
			RiskScore:          0,
			SupportingEvidence: []string{},
			ConfidenceScore:    e.cfg.Scoring.ConfidenceFloor,
			Reason:             "No entities identified in transaction data",
		}, nil
	}

	var (
		names        []string
		types        []string
		seenType     = make(map[string]bool)
		sources      []models.EvidenceSource
		seenSource   = make(map[models.EvidenceSource]bool)
		reasonGroups []string
		maxRisk      float64
	)

	for _, entity := range extracted {
		profile := e.enricher.Enrich(entity.Name)

		if e.news.Enabled() {
			if report, err := e.news.Lookup(ctx, entity.Name); err == nil && report.ItemCount > 0 {
				profile.EvidenceSources = append(profile.EvidenceSources, models.EvidenceNewsAnalysis)
			}
		}

		tags := e.classifier.Classify(profile)
		flags := e.detector.Detect(txn, profile)
		score, reasons := e.scorer.Score(profile, tags, flags)

		names = append(names, entity.Name)
		for _, tag := range tags {
			if !seenType[string(tag)] {
				seenType[string(tag)] = true
				types = append(types, string(tag))
			}
		}
		for _, src := range profile.EvidenceSources {
			if !seenSource[src] {
				seenSource[src] = true
				sources = append(sources, src)
			}
		}
		if score > maxRisk {
			maxRisk = score
		}
		reasonGroups = append(reasonGroups, entity.Name+": "+strings.Join(reasons, " | "))
	}

	result := &models.AssessmentResult{
		TransactionID:      txn.ID,
		ExtractedEntities:  names,
		EntityTypes:        types,
		RiskScore:          maxRisk,
		SupportingEvidence: evidenceStrings(sources),
		ConfidenceScore:    e.scorer.Confidence(sources),
		Reason:             strings.Join(reasonGroups, "; "),
	}

	if maxRisk >= e.cfg.Scoring.AlertThreshold {
		e.raiseAlert(txn, result)
	}

	return result, nil
}

// AnalyzeBatch analyzes transactions concurrently on the worker pool.
// Results are returned in submission order. All transactions are
// validated up front; one invalid transaction rejects the whole batch.
// Returns ctx.Err() if the context is cancelled before the batch
// completes; tasks still queued at that point are skipped by the pool.
func (e *Engine) AnalyzeBatch(ctx context.Context, txns []models.Transaction) ([]models.AssessmentResult, error) {
	for i := range txns {
		if err := validate(&txns[i]); err != nil {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("transactions[%d].%s", i, err.Field),
				Message: err.Message,
			}
		}
	}

	results := make([]models.AssessmentResult, len(txns))
	// Buffered to len(txns) so tasks never block sending after a
	// cancelled batch has already returned
	done := make(chan error, len(txns))

	for i := range txns {
		i := i
		err := e.pool.SubmitWithContext(ctx, func() error {
			result, err := e.Analyze(ctx, &txns[i])
			if err == nil {
				results[i] = *result
			}
			done <- err
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	// Cancelled tasks never report on done, so completion cannot be
	// tracked with a bare WaitGroup here
	for range txns {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case err := <-done:
			if err != nil {
				return nil, err
			}
		}
	}
	return results, nil
}

// GenerateTransaction returns one synthetic transaction
func (e *Engine) GenerateTransaction() models.Transaction {
	return e.generator.Transaction()
}

// GenerateAndAnalyze generates n synthetic transactions and analyzes
// them as a batch
func (e *Engine) GenerateAndAnalyze(ctx context.Context, n int) ([]models.Transaction, []models.AssessmentResult, error) {
	if n <= 0 {
		n = e.cfg.Generator.BatchSize
	}
	txns := e.generator.Batch(n)
	results, err := e.AnalyzeBatch(ctx, txns)
	if err != nil {
		return nil, nil, err
	}
	return txns, results, nil
}

// ExtractEntities runs only the extraction stage
func (e *Engine) ExtractEntities(text string) []models.ExtractedEntity {
	return e.extractor.Extract(text)
}

// EntityProfile returns the enriched profile for an entity name
func (e *Engine) EntityProfile(name string) *models.EntityProfile {
	return e.enricher.Enrich(name)
}

// EntityRiskScore is a standalone per-entity assessment with no
// transaction context, so no anomaly factors contribute
type EntityRiskScore struct {
	Entity          string   `json:"entity"`
	EntityTypes     []string `json:"entity_types"`
	RiskScore       float64  `json:"risk_score"`
	ConfidenceScore float64  `json:"confidence_score"`
	Reason          string   `json:"reason"`
}

// ScoreEntity assesses an entity by name, outside any transaction
func (e *Engine) ScoreEntity(name string) *EntityRiskScore {
	profile := e.enricher.Enrich(name)
	tags := e.classifier.Classify(profile)
	score, reasons := e.scorer.Score(profile, tags, nil)

	types := make([]string, len(tags))
	for i, tag := range tags {
		types[i] = string(tag)
	}

	return &EntityRiskScore{
		Entity:          profile.Name,
		EntityTypes:     types,
		RiskScore:       score,
		ConfidenceScore: e.scorer.Confidence(profile.EvidenceSources),
		Reason:          strings.Join(reasons, " | "),
	}
}

func (e *Engine) raiseAlert(txn *models.Transaction, result *models.AssessmentResult) {
	alert := &models.RiskAlert{
		ID:            uuid.New().String(),
		TransactionID: txn.ID,
		Entities:      result.ExtractedEntities,
		RiskScore:     result.RiskScore,
		Severity:      e.scorer.Severity(result.RiskScore),
		Status:        models.AlertStatusOpen,
		Reason:        result.Reason,
		CreatedAt:     time.Now(),
	}

	select {
	case e.alertCh <- alert:
	default:
		// Channel full; store directly rather than drop
		e.mu.Lock()
		e.alerts[alert.ID] = alert
		e.mu.Unlock()
	}
}

// AlertFilter filters alert queries
type AlertFilter struct {
	Status   models.AlertStatus
	Severity models.AlertSeverity
	Limit    int
}

// GetAlert retrieves an alert by ID
func (e *Engine) GetAlert(id string) (*models.RiskAlert, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	alert, ok := e.alerts[id]
	return alert, ok
}

// ListAlerts returns alerts matching the filter, newest first
func (e *Engine) ListAlerts(filter AlertFilter) []*models.RiskAlert {
	e.mu.RLock()
	defer e.mu.RUnlock()

	results := make([]*models.RiskAlert, 0, len(e.alerts))
	for _, alert := range e.alerts {
		if filter.Status != "" && alert.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && alert.Severity != filter.Severity {
			continue
		}
		results = append(results, alert)
	}

	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].CreatedAt.After(results[j-1].CreatedAt); j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}

	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}
	return results
}

// ResolveAlert marks an alert resolved
func (e *Engine) ResolveAlert(id, resolution string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	alert, ok := e.alerts[id]
	if !ok {
		return ErrAlertNotFound
	}

	now := time.Now()
	alert.Status = models.AlertStatusResolved
	alert.Resolution = resolution
	alert.ResolvedAt = &now
	return nil
}

// Stats summarizes engine activity
type Stats struct {
	TotalAnalyzed    uint64         `json:"total_analyzed"`
	TotalAlerts      int            `json:"total_alerts"`
	OpenAlerts       int            `json:"open_alerts"`
	BySeverity       map[string]int `json:"by_severity"`
	SanctionsEntries int            `json:"sanctions_entries"`
}

// GetStats returns engine statistics
func (e *Engine) GetStats() *Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := &Stats{
		TotalAnalyzed:    e.analyzed.Load(),
		BySeverity:       make(map[string]int),
		SanctionsEntries: e.enricher.Sanctions().Size(),
	}
	for _, alert := range e.alerts {
		stats.TotalAlerts++
		stats.BySeverity[string(alert.Severity)]++
		if alert.Status == models.AlertStatusOpen {
			stats.OpenAlerts++
		}
	}
	return stats
}

func validate(txn *models.Transaction) *ValidationError {
	if strings.TrimSpace(txn.Description) == "" {
		return &ValidationError{Field: "transaction_data", Message: "must not be empty"}
	}
	if !txn.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "must be positive"}
	}
	if !txn.Currency.Valid() {
		return &ValidationError{Field: "currency", Message: fmt.Sprintf("unsupported currency %q", txn.Currency)}
	}
	if txn.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "is required"}
	}
	return nil
}

func evidenceStrings(sources []models.EvidenceSource) []string {
	out := make([]string, len(sources))
	for i, src := range sources {
		out[i] = string(src)
	}
	return out
}
