package enrichment

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/savegress/riskwatch/internal/config"
	"github.com/savegress/riskwatch/pkg/models"
	"github.com/shopspring/decimal"
)

// Enricher derives a reference profile for an entity name. Enrichment is
// a pure function of the normalized name and the configuration: every
// pseudo-random field is drawn from a generator seeded with a hash of the
// name, never from a process-global source, so repeated enrichment of the
// same name yields the same profile in any process.
type Enricher struct {
	cfg       config.EnrichmentConfig
	sanctions *SanctionsList
	reference time.Time
}

// NewEnricher creates an enricher for the given configuration
func NewEnricher(cfg config.EnrichmentConfig) *Enricher {
	return &Enricher{
		cfg:       cfg,
		sanctions: NewSanctionsList(cfg.Sanctions),
		reference: cfg.ReferenceTime(),
	}
}

// Sanctions exposes the screening list built from the configuration
func (e *Enricher) Sanctions() *SanctionsList {
	return e.sanctions
}

// Enrich derives the profile for an entity name. It never fails: any
// input string produces a valid profile. Sanctions-list entries override
// the hash-derived jurisdiction and reputation.
func (e *Enricher) Enrich(name string) *models.EntityProfile {
	normalized := Normalize(name)
	rng := rand.New(rand.NewSource(seed(normalized)))

	// Draw order is fixed; reordering draws changes every derived profile.
	jurisdiction := e.pickJurisdiction(rng)
	registration := 1000000 + rng.Intn(9000000)
	ageDays := 30 + rng.Intn(e.maxIncorporationDays())
	reputation := rng.Float64()*2 - 1
	dailyTxns := 1 + rng.Intn(e.maxDaily())
	avgAmount := 500 + rng.Float64()*(e.maxAmount()-500)

	profile := &models.EntityProfile{
		Name:              name,
		Jurisdiction:      jurisdiction,
		IncorporationDate: e.reference.AddDate(0, 0, -ageDays),
		ReputationScore:   reputation,
		RecentActivity: models.RecentActivity{
			DailyTransactions: dailyTxns,
			AverageAmount:     decimal.NewFromFloat(avgAmount).Round(2),
		},
		EvidenceSources: []models.EvidenceSource{models.EvidenceEntityRegistry},
	}

	if entry, ok := e.sanctions.Match(normalized); ok {
		profile.Sanctioned = true
		profile.SanctionsProgram = entry.Program
		profile.ReputationScore = e.cfg.SanctionedReputation
		if entry.Jurisdiction != "" {
			profile.Jurisdiction = entry.Jurisdiction
		}
		profile.EvidenceSources = append(profile.EvidenceSources, models.EvidenceSanctionsList)
	}

	profile.RegistrationID = fmt.Sprintf("%s%07d", profile.Jurisdiction, registration)

	return profile
}

func (e *Enricher) pickJurisdiction(rng *rand.Rand) string {
	if len(e.cfg.Jurisdictions) == 0 {
		return "US"
	}
	return e.cfg.Jurisdictions[rng.Intn(len(e.cfg.Jurisdictions))]
}

func (e *Enricher) maxIncorporationDays() int {
	years := e.cfg.MaxIncorporationYears
	if years <= 0 {
		years = 30
	}
	return years * 365
}

func (e *Enricher) maxDaily() int {
	if e.cfg.ActivityMaxDaily <= 0 {
		return 12
	}
	return e.cfg.ActivityMaxDaily
}

func (e *Enricher) maxAmount() float64 {
	if e.cfg.ActivityMaxAmount <= 500 {
		return 250000
	}
	return e.cfg.ActivityMaxAmount
}

// Normalize lower-cases a name and collapses internal whitespace so
// "Acme  Corp" and "acme corp" enrich identically
func Normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func seed(normalized string) int64 {
	h := fnv.New64a()
	h.Write([]byte(normalized))
	return int64(h.Sum64())
}
