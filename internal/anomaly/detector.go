package anomaly

import (
	"fmt"
	"strconv"

	"github.com/savegress/riskwatch/internal/config"
	"github.com/savegress/riskwatch/pkg/models"
	"github.com/shopspring/decimal"
)

// Check is a single independent anomaly heuristic. Returns nil when the
// check does not fire.
type Check struct {
	Type models.AnomalyType
	Run  func(txn *models.Transaction, profile *models.EntityProfile) *models.AnomalyFlag
}

// Detector evaluates a transaction and an entity profile against the
// configured thresholds. Every check is a pure comparison; no check
// short-circuits another, and multiple flags may fire at once.
type Detector struct {
	cfg    config.AnomalyConfig
	checks []Check
}

// NewDetector creates a detector with the built-in check table
func NewDetector(cfg config.AnomalyConfig) *Detector {
	d := &Detector{cfg: cfg}
	d.checks = []Check{
		{Type: models.AnomalyLargeTransaction, Run: d.checkLargeTransaction},
		{Type: models.AnomalyHighFrequency, Run: d.checkHighFrequency},
		{Type: models.AnomalyHighVelocity, Run: d.checkHighVelocity},
		{Type: models.AnomalyRoundAmount, Run: d.checkRoundAmount},
		{Type: models.AnomalyNewEntity, Run: d.checkNewEntity},
	}
	return d
}

// Detect runs every check and returns the flags that fired, in check
// table order
func (d *Detector) Detect(txn *models.Transaction, profile *models.EntityProfile) []models.AnomalyFlag {
	var flags []models.AnomalyFlag
	for _, check := range d.checks {
		if flag := check.Run(txn, profile); flag != nil {
			flags = append(flags, *flag)
		}
	}
	return flags
}

func (d *Detector) checkLargeTransaction(txn *models.Transaction, _ *models.EntityProfile) *models.AnomalyFlag {
	threshold := decimal.NewFromFloat(d.cfg.LargeAmount)
	if !txn.Amount.GreaterThan(threshold) {
		return nil
	}
	return &models.AnomalyFlag{
		Type:        models.AnomalyLargeTransaction,
		Measured:    txn.Amount.String(),
		Threshold:   threshold.String(),
		Description: fmt.Sprintf("transaction amount %s %s exceeds %s", txn.Amount, txn.Currency, threshold),
	}
}

func (d *Detector) checkHighFrequency(_ *models.Transaction, profile *models.EntityProfile) *models.AnomalyFlag {
	count := profile.RecentActivity.DailyTransactions
	if count <= d.cfg.FrequencyMax {
		return nil
	}
	return &models.AnomalyFlag{
		Type:        models.AnomalyHighFrequency,
		Measured:    strconv.Itoa(count),
		Threshold:   strconv.Itoa(d.cfg.FrequencyMax),
		Description: fmt.Sprintf("%d transactions per day exceeds %d", count, d.cfg.FrequencyMax),
	}
}

func (d *Detector) checkHighVelocity(_ *models.Transaction, profile *models.EntityProfile) *models.AnomalyFlag {
	volume := profile.RecentActivity.DailyVolume()
	threshold := decimal.NewFromFloat(d.cfg.VelocityMax)
	if !volume.GreaterThan(threshold) {
		return nil
	}
	return &models.AnomalyFlag{
		Type:        models.AnomalyHighVelocity,
		Measured:    volume.String(),
		Threshold:   threshold.String(),
		Description: fmt.Sprintf("daily volume %s exceeds %s", volume, threshold),
	}
}

func (d *Detector) checkRoundAmount(txn *models.Transaction, _ *models.EntityProfile) *models.AnomalyFlag {
	if d.cfg.RoundModulus <= 0 {
		return nil
	}
	minimum := decimal.NewFromFloat(d.cfg.RoundMinimum)
	modulus := decimal.NewFromInt(d.cfg.RoundModulus)
	if txn.Amount.LessThan(minimum) || !txn.Amount.Mod(modulus).IsZero() {
		return nil
	}
	return &models.AnomalyFlag{
		Type:        models.AnomalyRoundAmount,
		Measured:    txn.Amount.String(),
		Threshold:   modulus.String(),
		Description: fmt.Sprintf("amount %s is an exact multiple of %s", txn.Amount, modulus),
	}
}

func (d *Detector) checkNewEntity(txn *models.Transaction, profile *models.EntityProfile) *models.AnomalyFlag {
	age := profile.AgeAt(txn.Date)
	if age >= d.cfg.NewEntityAgeDays {
		return nil
	}
	return &models.AnomalyFlag{
		Type:        models.AnomalyNewEntity,
		Measured:    strconv.Itoa(age),
		Threshold:   strconv.Itoa(d.cfg.NewEntityAgeDays),
		Description: fmt.Sprintf("entity incorporated %d days before the transaction, threshold %d", age, d.cfg.NewEntityAgeDays),
	}
}
