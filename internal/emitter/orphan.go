package emitter

import (
	"math"

	"accounting-dataset-generator/internal/amounts"
	"accounting-dataset-generator/internal/models"

	"github.com/shopspring/decimal"
)

// OrphanConfig holds the parameters of background-noise injection.
type OrphanConfig struct {
	// LogMean and LogSigma parameterize the log-normal amount distribution.
	LogMean  float64
	LogSigma float64

	// AmountCap clips orphan amounts in absolute value.
	AmountCap float64

	// HistoryDays bounds how far in the past orphan statement dates fall.
	HistoryDays int
}

// DefaultOrphanConfig returns the reference noise parameters.
func DefaultOrphanConfig() *OrphanConfig {
	return &OrphanConfig{
		LogMean:     3,
		LogSigma:    1.2,
		AmountCap:   500,
		HistoryDays: 730,
	}
}

// EmitOrphans emits n noise lines with no invoice or expense linkage:
// bank fees, interest, adjustments. Amounts are log-normal, clipped to
// the cap, with a random sign deciding debit versus credit; draws that
// round to zero are skipped and counted. Value dates may precede their
// statement date by one day, the only topology where that happens.
func (e *Emitter) EmitOrphans(n int, cfg *OrphanConfig) ([]models.BankStatementLine, int) {
	if cfg == nil {
		cfg = DefaultOrphanConfig()
	}

	lines := make([]models.BankStatementLine, 0, n)
	skipped := 0

	for i := 0; i < n; i++ {
		raw := math.Exp(cfg.LogMean + cfg.LogSigma*e.rng.NormFloat64())
		if raw > cfg.AmountCap {
			raw = cfg.AmountCap
		}
		amount := decimal.NewFromFloat(raw).Round(amounts.Precision)
		debitSide := e.rng.Intn(2) == 0

		if !amount.IsPositive() {
			e.logger.Warn("Skipping orphan line that rounds to zero")
			skipped++
			continue
		}

		statementDate := e.config.ReferenceDate.AddDate(0, 0, -e.rng.Intn(cfg.HistoryDays+1))
		valueDate := statementDate.AddDate(0, 0, e.rng.Intn(3)-1)

		line := e.newLine(statementDate, valueDate)
		line.OperationLabel = pick(e.rng, orphanOperationLabels)
		line.AdditionalLabel = pick(e.rng, orphanAdditionalLabels)
		if debitSide {
			line.Debit = &amount
		} else {
			line.Credit = &amount
		}
		line.MatchType = models.MatchTypeOrphan
		lines = append(lines, line)
	}

	e.logEmitted("orphan", len(lines), skipped)
	return lines, skipped
}
