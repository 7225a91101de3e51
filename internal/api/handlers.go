package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/savegress/riskwatch/internal/analysis"
	"github.com/savegress/riskwatch/pkg/models"
	"github.com/shopspring/decimal"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	engine *analysis.Engine
}

// NewHandlers creates new handlers
func NewHandlers(engine *analysis.Engine) *Handlers {
	return &Handlers{engine: engine}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "riskwatch",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// analyzeRequest is the transaction payload accepted by the analyze
// endpoint. Dates are accepted as 2006-01-02 or RFC 3339.
type analyzeRequest struct {
	TransactionID string          `json:"transaction_id"`
	Description   string          `json:"transaction_data"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Date          string          `json:"date"`
}

func (req *analyzeRequest) toTransaction() (*models.Transaction, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	id := req.TransactionID
	if id == "" {
		id = "TXN" + strings.ToUpper(uuid.New().String()[:8])
	}

	return &models.Transaction{
		ID:          id,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    models.Currency(req.Currency),
		Date:        date,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("date: is required")
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.New("date: must be 2006-01-02 or RFC 3339")
	}
	return t, nil
}

// AnalyzeTransaction analyzes a single transaction. The response is an
// array with one aggregated result per transaction.
func (h *Handlers) AnalyzeTransaction(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	txn, err := req.toTransaction()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.engine.Analyze(r.Context(), txn)
	if err != nil {
		var verr *analysis.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusBadRequest, verr.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond(w, http.StatusOK, []models.AssessmentResult{*result})
}

// BatchAnalyze generates a batch of synthetic transactions and analyzes
// them. Batch size comes from the count query parameter, falling back
// to the configured default.
func (h *Handlers) BatchAnalyze(w http.ResponseWriter, r *http.Request) {
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			respondError(w, http.StatusBadRequest, "count must be between 1 and 100")
			return
		}
		count = n
	}

	_, results, err := h.engine.GenerateAndAnalyze(r.Context(), count)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond(w, http.StatusOK, results)
}

// GenerateTransaction returns one synthetic transaction
func (h *Handlers) GenerateTransaction(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.engine.GenerateTransaction())
}

// ExtractEntities runs only entity extraction over the text parameter
func (h *Handlers) ExtractEntities(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if strings.TrimSpace(text) == "" {
		respondError(w, http.StatusBadRequest, "text parameter is required")
		return
	}

	entities := h.engine.ExtractEntities(text)
	if entities == nil {
		entities = []models.ExtractedEntity{}
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"text":     text,
		"entities": entities,
	})
}

// GetEntity returns the enriched profile for an entity name
func (h *Handlers) GetEntity(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	respond(w, http.StatusOK, h.engine.EntityProfile(name))
}

// GetEntityRiskScore returns a standalone risk assessment for an entity
func (h *Handlers) GetEntityRiskScore(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	respond(w, http.StatusOK, h.engine.ScoreEntity(name))
}

// ListAlerts lists risk alerts
func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	filter := analysis.AlertFilter{Limit: 100}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = models.AlertStatus(status)
	}
	if severity := r.URL.Query().Get("severity"); severity != "" {
		filter.Severity = models.AlertSeverity(severity)
	}

	alerts := h.engine.ListAlerts(filter)
	if alerts == nil {
		alerts = []*models.RiskAlert{}
	}
	respond(w, http.StatusOK, alerts)
}

// GetAlert gets an alert by ID
func (h *Handlers) GetAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	alert, ok := h.engine.GetAlert(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Alert not found")
		return
	}
	respond(w, http.StatusOK, alert)
}

// ResolveAlert resolves an alert
func (h *Handlers) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Resolution string `json:"resolution"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.engine.ResolveAlert(id, body.Resolution); err != nil {
		respondError(w, http.StatusNotFound, "Alert not found")
		return
	}

	alert, _ := h.engine.GetAlert(id)
	respond(w, http.StatusOK, alert)
}

// GetStats returns engine statistics
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.engine.GetStats())
}

// Helper functions

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}
