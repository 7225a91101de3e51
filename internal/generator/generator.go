package generator

import (
	"encoding/hex"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/savegress/riskwatch/internal/config"
	"github.com/savegress/riskwatch/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	transactionKinds = []string{"Payment", "Transfer", "Invoice", "Service fee", "Consulting fee"}

	currencies = []models.Currency{
		models.CurrencyUSD,
		models.CurrencyEUR,
		models.CurrencyGBP,
		models.CurrencyJPY,
		models.CurrencyCHF,
	}

	surnames = []string{
		"Harrington", "Okafor", "Lindqvist", "Moreau", "Tanaka", "Petrov",
		"Alvarez", "Kowalski", "Nakamura", "Fitzgerald", "Drummond", "Vance",
		"Castellano", "Berg", "Okonkwo", "Sutherland", "Marchetti", "Haas",
	}

	tradeWords = []string{
		"Apex", "Meridian", "Summit", "Vertex", "Horizon", "Cascade",
		"Pinnacle", "Atlas", "Keystone", "Sterling", "Vanguard", "Cobalt",
		"Orion", "Halcyon", "Bluewater", "Ironwood",
	}

	companySuffixes = []string{"Inc", "LLC", "Corp", "Group"}
	partnerSuffixes = []string{"Associates", "Partners"}
	holdingSuffixes = []string{"Holdings", "Investments", "Capital", "Industries"}
	globalPrefixes  = []string{"Global", "International", "United", "National"}
	globalSuffixes  = []string{"Corp", "Inc", "Co", "Ltd"}
)

// Generator produces synthetic transactions with realistic descriptions
// for demos and batch analysis. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a generator. A zero seed seeds from the clock; a fixed
// seed gives a reproducible sequence.
func New(cfg config.GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Transaction generates one synthetic transaction. Descriptions follow
// the "<kind> from <sender> to <recipient>" shape the extractor
// understands, amounts are weighted toward ordinary sizes with
// occasional large or suspiciously round values.
func (g *Generator) Transaction() models.Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()

	kind := transactionKinds[g.rng.Intn(len(transactionKinds))]
	sender := g.entityName()
	recipient := g.entityName()

	id := uuid.New()
	date := time.Now().
		AddDate(0, 0, -g.rng.Intn(30)).
		Add(-time.Duration(g.rng.Intn(24)) * time.Hour).
		Truncate(time.Minute)

	return models.Transaction{
		ID:          fmt.Sprintf("TXN%s", upperHex(id[:4])),
		Description: fmt.Sprintf("%s from %s to %s", kind, sender, recipient),
		Amount:      decimal.NewFromInt(g.amount()),
		Currency:    currencies[g.rng.Intn(len(currencies))],
		Date:        date,
	}
}

// Batch generates n transactions
func (g *Generator) Batch(n int) []models.Transaction {
	txns := make([]models.Transaction, n)
	for i := range txns {
		txns[i] = g.Transaction()
	}
	return txns
}

// amount draws from weighted buckets: mostly ordinary amounts, about one
// in eleven medium, one in eleven large. One in five comes out rounded
// to the nearest thousand.
func (g *Generator) amount() int64 {
	var amount int64
	switch g.rng.Intn(11) {
	case 0:
		amount = 50000 + g.rng.Int63n(150000)
	case 1:
		amount = 500000 + g.rng.Int63n(1500000)
	default:
		amount = 1000 + g.rng.Int63n(49000)
	}
	if g.rng.Float64() < 0.2 {
		amount = amount / 1000 * 1000
	}
	return amount
}

func (g *Generator) entityName() string {
	switch g.rng.Intn(4) {
	case 0:
		return g.pick(surnames) + " " + g.pick(companySuffixes)
	case 1:
		return g.pick(surnames) + " & " + g.pick(surnames) + " " + g.pick(partnerSuffixes)
	case 2:
		return g.pick(tradeWords) + " " + g.pick(holdingSuffixes)
	default:
		return g.pick(globalPrefixes) + " " + g.pick(tradeWords) + " " + g.pick(globalSuffixes)
	}
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

func upperHex(b []byte) string {
	const upper = "0123456789ABCDEF"
	out := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(out, b)
	for i, c := range out {
		if c >= 'a' {
			out[i] = upper[c-'a'+10]
		}
	}
	return string(out)
}
