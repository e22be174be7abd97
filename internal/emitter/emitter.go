// Package emitter turns partitioned invoices, expenses and background
// noise into bank statement lines. Each emission pass consumes draws from
// the shared seeded source in a fixed order, and all lines share one
// sequential identity sequence.
package emitter

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"accounting-dataset-generator/internal/amounts"
	"accounting-dataset-generator/internal/models"
	"accounting-dataset-generator/pkg/errors"
	"accounting-dataset-generator/pkg/logger"

	"github.com/shopspring/decimal"
)

// Config holds the tunable parameters of statement-line emission.
type Config struct {
	// MatchedVariation perturbs one-to-one settlement amounts by up to
	// this fraction in either direction.
	MatchedVariation float64

	// ExpenseVariation perturbs expense settlement amounts likewise.
	ExpenseVariation float64

	// PartialMin and PartialMax bound the number of installments a
	// partially settled invoice is split into.
	PartialMin int
	PartialMax int

	// PartialDelayMaxDays is the maximum lag of an installment past the
	// invoice payment date.
	PartialDelayMaxDays int

	// GroupSize is the number of invoices settled by one grouped payment;
	// the last group of a bucket may be smaller.
	GroupSize int

	// GroupDelayMaxDays is the maximum lag of a grouped payment past the
	// earliest payment date in the group.
	GroupDelayMaxDays int

	// ValueDateMaxLagDays is the maximum lag of a value date past its
	// statement date for matched and expense lines.
	ValueDateMaxLagDays int

	// ReferenceDate is the generation-time "now".
	ReferenceDate time.Time
}

// DefaultConfig returns the reference emission parameters.
func DefaultConfig() *Config {
	return &Config{
		MatchedVariation:    0.05,
		ExpenseVariation:    0.02,
		PartialMin:          2,
		PartialMax:          4,
		PartialDelayMaxDays: 30,
		GroupSize:           3,
		GroupDelayMaxDays:   5,
		ValueDateMaxLagDays: 2,
		ReferenceDate:       time.Now().UTC(),
	}
}

// Validate checks the configuration for fatal errors.
func (c *Config) Validate() error {
	if c.MatchedVariation < 0 || c.MatchedVariation >= 1 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "matched-variation", c.MatchedVariation)
	}
	if c.ExpenseVariation < 0 || c.ExpenseVariation >= 1 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "expense-variation", c.ExpenseVariation)
	}
	if c.PartialMin < 2 || c.PartialMax < c.PartialMin {
		return errors.ConfigurationError(errors.CodeInvalidRange, "partial-installments",
			fmt.Sprintf("[%d, %d]", c.PartialMin, c.PartialMax))
	}
	if c.PartialDelayMaxDays < 0 || c.GroupDelayMaxDays < 0 || c.ValueDateMaxLagDays < 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "delay-days", "negative")
	}
	if c.GroupSize < 2 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "group-size", c.GroupSize)
	}
	if c.ReferenceDate.IsZero() {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "reference-date", "zero")
	}
	return nil
}

// Emitter produces bank statement lines for every reconciliation topology.
type Emitter struct {
	config *Config
	rng    *rand.Rand
	logger logger.Logger
	nextID int
}

// NewEmitter creates an emitter after validating its configuration. The
// identity sequence starts at 1 and is shared by every emission pass.
func NewEmitter(config *Config, rng *rand.Rand, log logger.Logger) (*Emitter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "rng", nil)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Emitter{
		config: config,
		rng:    rng,
		logger: log.WithComponent("emitter"),
		nextID: 1,
	}, nil
}

// EmitMatched emits one-to-one settlement lines. The settled amount is the
// invoice net perturbed within the configured variation, so reconciliation
// engines cannot rely on exact equality. Invoices whose perturbed amount
// is not positive are skipped; the second return value counts them.
func (e *Emitter) EmitMatched(invoices []models.Invoice) ([]models.BankStatementLine, int) {
	lines := make([]models.BankStatementLine, 0, len(invoices))
	skipped := 0

	for i := range invoices {
		inv := &invoices[i]
		credit := e.perturb(inv.NetPayable, e.config.MatchedVariation)
		if !credit.IsPositive() {
			e.logger.WithField("invoice_id", inv.ID).Warn("Skipping matched line with non-positive amount")
			skipped++
			continue
		}

		statementDate := e.randDateBetween(*inv.PaymentDate, e.config.ReferenceDate)
		line := e.newLine(statementDate, statementDate.AddDate(0, 0, e.rng.Intn(e.config.ValueDateMaxLagDays+1)))
		line.OperationLabel = "VIREMENT RECU"
		line.AdditionalLabel = fmt.Sprintf("REF: %s - %s", inv.InvoiceNumber, inv.Label)
		line.Credit = &credit
		line.RelatedInvoiceID = intPtr(inv.ID)
		line.MatchType = models.MatchTypeMatched
		lines = append(lines, line)
	}

	e.logEmitted("matched", len(lines), skipped)
	return lines, skipped
}

// EmitPartial splits each invoice into several installments. Installment
// i of k takes the remaining amount divided by the installments left,
// rounded; the last installment takes the remainder exactly, so the
// installments of one invoice always sum to its net payable.
func (e *Emitter) EmitPartial(invoices []models.Invoice) ([]models.BankStatementLine, int) {
	var lines []models.BankStatementLine
	skipped := 0

	for i := range invoices {
		inv := &invoices[i]
		if !inv.NetPayable.IsPositive() {
			e.logger.WithField("invoice_id", inv.ID).Warn("Skipping partial split of non-positive net")
			skipped++
			continue
		}

		installments := e.config.PartialMin + e.rng.Intn(e.config.PartialMax-e.config.PartialMin+1)
		remaining := inv.NetPayable

		for j := 0; j < installments; j++ {
			amount := remaining
			if j < installments-1 {
				amount = remaining.Div(decimal.NewFromInt(int64(installments - j))).Round(amounts.Precision)
			}
			remaining = remaining.Sub(amount)

			// Rounding can consume a sub-cent net before the last
			// installment; a zero credit is not a valid line.
			if !amount.IsPositive() {
				e.logger.WithFields(logger.Fields{
					"invoice_id":  inv.ID,
					"installment": j + 1,
				}).Warn("Skipping installment with non-positive amount")
				skipped++
				continue
			}

			statementDate := inv.PaymentDate.AddDate(0, 0, e.rng.Intn(e.config.PartialDelayMaxDays+1))
			line := e.newLine(statementDate, statementDate)
			line.OperationLabel = "VIREMENT RECU"
			line.AdditionalLabel = fmt.Sprintf("PAIEMENT PARTIEL %d/%d - REF: %s", j+1, installments, inv.InvoiceNumber)
			credit := amount
			line.Credit = &credit
			line.RelatedInvoiceID = intPtr(inv.ID)
			line.MatchType = models.MatchTypePartial
			lines = append(lines, line)
		}
	}

	e.logEmitted("partial", len(lines), skipped)
	return lines, skipped
}

// EmitGrouped settles invoices in groups of the configured size with a
// single payment per group. The credited amount is the exact sum of the
// group's net payables; the line references the first invoice and carries
// the full identity set.
func (e *Emitter) EmitGrouped(invoices []models.Invoice) ([]models.BankStatementLine, int) {
	var lines []models.BankStatementLine
	skipped := 0

	for start := 0; start < len(invoices); start += e.config.GroupSize {
		end := start + e.config.GroupSize
		if end > len(invoices) {
			end = len(invoices)
		}
		group := invoices[start:end]

		total := decimal.Zero
		ids := make([]int, 0, len(group))
		for i := range group {
			total = total.Add(group[i].NetPayable)
			ids = append(ids, group[i].ID)
		}
		if !total.IsPositive() {
			e.logger.WithField("invoice_ids", ids).Warn("Skipping grouped line with non-positive total")
			skipped += len(group)
			continue
		}

		statementDate := group[0].PaymentDate.AddDate(0, 0, e.rng.Intn(e.config.GroupDelayMaxDays+1))
		line := e.newLine(statementDate, statementDate)
		line.OperationLabel = "VIREMENT RECU"
		line.AdditionalLabel = fmt.Sprintf("PAIEMENT GROUPE %d FACTURES", len(group))
		credit := total
		line.Credit = &credit
		line.RelatedInvoiceID = intPtr(group[0].ID)
		line.GroupedInvoiceIDs = ids
		line.MatchType = models.MatchTypeGrouped
		lines = append(lines, line)
	}

	e.logEmitted("grouped", len(lines), skipped)
	return lines, skipped
}

// EmitUnmatched emits settlement lines whose labels carry no parseable
// invoice reference, only the paying company's name. The ground-truth
// invoice identity stays on the line for scoring.
func (e *Emitter) EmitUnmatched(invoices []models.Invoice, clients map[int]models.Client) ([]models.BankStatementLine, int) {
	lines := make([]models.BankStatementLine, 0, len(invoices))
	skipped := 0

	for i := range invoices {
		inv := &invoices[i]
		if !inv.NetPayable.IsPositive() {
			e.logger.WithField("invoice_id", inv.ID).Warn("Skipping unmatched line with non-positive net")
			skipped++
			continue
		}

		label := "VIREMENT"
		if client, ok := clients[inv.ClientID]; ok {
			label = strings.ToUpper(client.CompanyName)
		}

		line := e.newLine(*inv.PaymentDate, *inv.PaymentDate)
		line.OperationLabel = "VIREMENT RECU"
		line.AdditionalLabel = label
		credit := inv.NetPayable
		line.Credit = &credit
		line.RelatedInvoiceID = intPtr(inv.ID)
		line.MatchType = models.MatchTypeUnmatched
		lines = append(lines, line)
	}

	e.logEmitted("unmatched", len(lines), skipped)
	return lines, skipped
}

// EmitExpenses emits debit lines settling paid expenses. The debited
// amount is the expense amount perturbed within the configured variation.
func (e *Emitter) EmitExpenses(expenses []models.Expense) ([]models.BankStatementLine, int) {
	var lines []models.BankStatementLine
	skipped := 0

	for i := range expenses {
		exp := &expenses[i]
		if exp.Status != models.ExpenseStatusPaid {
			continue
		}

		debit := e.perturb(exp.Amount, e.config.ExpenseVariation)
		if !debit.IsPositive() {
			e.logger.WithField("expense_id", exp.ID).Warn("Skipping expense line with non-positive amount")
			skipped++
			continue
		}

		statementDate := e.randDateBetween(exp.ExpenseDate, e.config.ReferenceDate)
		line := e.newLine(statementDate, statementDate.AddDate(0, 0, e.rng.Intn(e.config.ValueDateMaxLagDays+1)))
		line.OperationLabel = pick(e.rng, expenseOperationLabels)
		line.AdditionalLabel = formatExpenseLabel(pick(e.rng, expenseAdditionalLabels), statementDate)
		line.Debit = &debit
		line.RelatedExpenseID = intPtr(exp.ID)
		line.MatchType = models.MatchTypeExpense
		lines = append(lines, line)
	}

	e.logEmitted("expense", len(lines), skipped)
	return lines, skipped
}

// perturb multiplies the amount by a factor drawn uniformly from
// [1-variation, 1+variation] and rounds the result.
func (e *Emitter) perturb(amount decimal.Decimal, variation float64) decimal.Decimal {
	factor := decimal.NewFromFloat(1 + (e.rng.Float64()*2-1)*variation)
	return amount.Mul(factor).Round(amounts.Precision)
}

func (e *Emitter) newLine(statementDate, valueDate time.Time) models.BankStatementLine {
	line := models.BankStatementLine{
		ID:            e.nextID,
		StatementDate: statementDate,
		ValueDate:     valueDate,
		CreatedAt:     e.config.ReferenceDate,
	}
	e.nextID++
	return line
}

func (e *Emitter) randDateBetween(start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return start
	}
	return start.AddDate(0, 0, e.rng.Intn(days+1))
}

func (e *Emitter) logEmitted(topology string, count, skipped int) {
	e.logger.WithFields(logger.Fields{
		"topology": topology,
		"lines":    count,
		"skipped":  skipped,
	}).Info("Emitted statement lines")
}

func formatExpenseLabel(template string, date time.Time) string {
	return strings.ReplaceAll(template, "{date}", date.Format("02/01"))
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func intPtr(v int) *int {
	return &v
}
