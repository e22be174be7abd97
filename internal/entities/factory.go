// Package entities produces the base Client, Invoice and Expense records
// of a synthetic accounting dataset. All randomness comes from a single
// explicitly passed rand.Rand; the order of draws is part of the
// reproducibility contract.
package entities

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"accounting-dataset-generator/internal/amounts"
	"accounting-dataset-generator/internal/models"
	"accounting-dataset-generator/pkg/errors"
	"accounting-dataset-generator/pkg/logger"

	"github.com/shopspring/decimal"
)

// StatusWeight pairs an invoice status with its categorical weight.
// Weights need not sum to 1; they are normalized before drawing.
type StatusWeight struct {
	Status models.InvoiceStatus
	Weight float64
}

// Config holds the tunable bounds of entity generation.
type Config struct {
	// PublicClientRatio is the fraction of generated clients that are PUBLIC.
	PublicClientRatio float64

	// StatusWeights is the categorical distribution invoice statuses are
	// drawn from, in a fixed order for reproducibility.
	StatusWeights []StatusWeight

	// Gross amount bounds for invoices, in currency units.
	GrossMin float64
	GrossMax float64

	// Quantity bounds for invoice line quantity.
	QuantityMin int
	QuantityMax int

	// Unit-price realism band. An invoice whose derived unit price
	// (gross/quantity, rounded) falls outside the band is discarded and
	// NOT retried, so requested counts are upper bounds.
	UnitPriceMin float64
	UnitPriceMax float64

	// GraceDays extends the payment window past the expected payment date.
	GraceDays int

	// InvoiceHistoryDays and ExpenseHistoryDays bound how far in the past
	// issue/expense dates are drawn.
	InvoiceHistoryDays int
	ExpenseHistoryDays int

	// ExpensePaidRatio is the fraction of expenses generated as paid.
	ExpensePaidRatio float64

	// Expense amounts follow a log-normal distribution clipped to
	// [ExpenseAmountMin, ExpenseAmountMax].
	ExpenseLogMean   float64
	ExpenseLogSigma  float64
	ExpenseAmountMin float64
	ExpenseAmountMax float64

	// ReferenceDate is the generation-time "now". Injecting it keeps
	// repeated runs byte-identical.
	ReferenceDate time.Time
}

// DefaultConfig returns generation bounds matching the reference dataset.
func DefaultConfig() *Config {
	return &Config{
		PublicClientRatio: 0.5,
		StatusWeights: []StatusWeight{
			{models.InvoiceStatusDraft, 0.05},
			{models.InvoiceStatusSent, 0.12},
			{models.InvoiceStatusPaid, 0.70},
			{models.InvoiceStatusPartial, 0.03},
			{models.InvoiceStatusOverdue, 0.07},
			{models.InvoiceStatusCancelled, 0.03},
		},
		GrossMin:           100,
		GrossMax:           10000,
		QuantityMin:        1,
		QuantityMax:        100,
		UnitPriceMin:       1,
		UnitPriceMax:       1000,
		GraceDays:          30,
		InvoiceHistoryDays: 548,
		ExpenseHistoryDays: 730,
		ExpensePaidRatio:   0.7,
		ExpenseLogMean:     4,
		ExpenseLogSigma:    0.8,
		ExpenseAmountMin:   5,
		ExpenseAmountMax:   5000,
		ReferenceDate:      dateOnly(time.Now().UTC()),
	}
}

// Validate checks the configuration for fatal errors.
func (c *Config) Validate() error {
	if c.PublicClientRatio < 0 || c.PublicClientRatio > 1 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "public-client-ratio", c.PublicClientRatio)
	}
	if len(c.StatusWeights) == 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "status-weights", "empty")
	}
	total := 0.0
	for _, sw := range c.StatusWeights {
		if !sw.Status.IsValid() {
			return errors.ConfigurationError(errors.CodeInvalidConfig, "status-weights", sw.Status)
		}
		if sw.Weight < 0 {
			return errors.ConfigurationError(errors.CodeInvalidConfig, "status-weights", sw.Weight)
		}
		total += sw.Weight
	}
	if total == 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "status-weights", "weights sum to zero")
	}
	if c.GrossMin <= 0 || c.GrossMax < c.GrossMin {
		return errors.ConfigurationError(errors.CodeInvalidRange, "gross", fmt.Sprintf("[%v, %v]", c.GrossMin, c.GrossMax))
	}
	if c.QuantityMin <= 0 || c.QuantityMax < c.QuantityMin {
		return errors.ConfigurationError(errors.CodeInvalidRange, "quantity", fmt.Sprintf("[%d, %d]", c.QuantityMin, c.QuantityMax))
	}
	if c.UnitPriceMin <= 0 || c.UnitPriceMax < c.UnitPriceMin {
		return errors.ConfigurationError(errors.CodeInvalidRange, "unit-price", fmt.Sprintf("[%v, %v]", c.UnitPriceMin, c.UnitPriceMax))
	}
	if c.GraceDays < 0 {
		return errors.ConfigurationError(errors.CodeInvalidCount, "grace-days", c.GraceDays)
	}
	if c.InvoiceHistoryDays <= 0 || c.ExpenseHistoryDays <= 0 {
		return errors.ConfigurationError(errors.CodeInvalidRange, "history-days",
			fmt.Sprintf("invoice=%d expense=%d", c.InvoiceHistoryDays, c.ExpenseHistoryDays))
	}
	if c.ExpensePaidRatio < 0 || c.ExpensePaidRatio > 1 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "expense-paid-ratio", c.ExpensePaidRatio)
	}
	if c.ExpenseAmountMin <= 0 || c.ExpenseAmountMax < c.ExpenseAmountMin {
		return errors.ConfigurationError(errors.CodeInvalidRange, "expense-amount",
			fmt.Sprintf("[%v, %v]", c.ExpenseAmountMin, c.ExpenseAmountMax))
	}
	if c.ReferenceDate.IsZero() {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "reference-date", "zero")
	}
	return nil
}

// Factory generates base entity records from a seeded random source.
type Factory struct {
	config *Config
	rng    *rand.Rand
	logger logger.Logger
}

// NewFactory creates a new Factory after validating the configuration.
func NewFactory(config *Config, rng *rand.Rand, log logger.Logger) (*Factory, error) {
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
	return &Factory{
		config: config,
		rng:    rng,
		logger: log.WithComponent("entities"),
	}, nil
}

// GenerateClients generates n clients with a configured PUBLIC/PRIVATE mix.
func (f *Factory) GenerateClients(n int) ([]models.Client, error) {
	if n < 0 {
		return nil, errors.ConfigurationError(errors.CodeInvalidCount, "client-count", n)
	}

	clients := make([]models.Client, 0, n)
	for i := 0; i < n; i++ {
		category := models.ClientCategoryPrivate
		if f.rng.Float64() < f.config.PublicClientRatio {
			category = models.ClientCategoryPublic
		}

		var company string
		if category == models.ClientCategoryPublic {
			company = pick(f.rng, cities) + " " + pick(f.rng, publicSuffixes)
		} else {
			company = pick(f.rng, companyStems) + " " + pick(f.rng, companyForms)
		}

		first := pick(f.rng, firstNames)
		last := pick(f.rng, lastNames)

		clients = append(clients, models.Client{
			ID:          i + 1,
			CompanyName: company,
			Category:    category,
			ContactName: first + " " + last,
			Email:       fmt.Sprintf("%s.%s@%s", lower(first), lower(last), pick(f.rng, emailDomains)),
			Phone:       f.phoneNumber(),
			City:        pick(f.rng, cities),
			CreatedAt:   f.randDateBack(5 * 365),
		})
	}

	f.logger.WithField("count", len(clients)).Info("Generated clients")
	return clients, nil
}

// GenerateInvoices generates up to n invoices against the given clients.
// Invoices whose derived unit price falls outside the configured band are
// discarded without retry, so the returned slice may be shorter than n;
// the second return value is the number of discarded candidates.
func (f *Factory) GenerateInvoices(n int, clients []models.Client) ([]models.Invoice, int, error) {
	if n < 0 {
		return nil, 0, errors.ConfigurationError(errors.CodeInvalidCount, "invoice-count", n)
	}
	if n > 0 && len(clients) == 0 {
		return nil, 0, errors.GenerationError(errors.CodeEmptyPopulation, "invoice generation", nil)
	}

	invoices := make([]models.Invoice, 0, n)
	skipped := 0
	tracker := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "generate_invoices",
		Total:     int64(n),
		Logger:    f.logger,
	})

	for i := 0; i < n; i++ {
		tracker.Increment()
		client := clients[f.rng.Intn(len(clients))]

		issueDate := f.randDateBack(f.config.InvoiceHistoryDays)
		expectedPayment := issueDate.AddDate(0, 0, 15+f.rng.Intn(76))
		status := f.drawStatus()

		gross := decimal.NewFromFloat(f.uniform(f.config.GrossMin, f.config.GrossMax)).Round(amounts.Precision)
		quantity := f.config.QuantityMin + f.rng.Intn(f.config.QuantityMax-f.config.QuantityMin+1)
		unitPrice := gross.Div(decimal.NewFromInt(int64(quantity))).Round(amounts.Precision)

		if unitPrice.LessThan(decimal.NewFromFloat(f.config.UnitPriceMin)) ||
			unitPrice.GreaterThan(decimal.NewFromFloat(f.config.UnitPriceMax)) {
			skipped++
			continue
		}

		vatRate := decimal.Zero
		if client.Category == models.ClientCategoryPrivate {
			vatRate = amounts.DrawPrivateVATRate(f.rng)
		}
		derived, err := amounts.Compute(gross, client.Category, vatRate)
		if err != nil {
			return nil, skipped, errors.GenerationError(errors.CodeDegenerateAmount, "invoice amount computation", err)
		}

		var paymentDate *time.Time
		if status.ImpliesPayment() {
			latest := minDate(expectedPayment.AddDate(0, 0, f.config.GraceDays), f.config.ReferenceDate)
			d := f.randDateBetween(issueDate, latest)
			paymentDate = &d
		}

		id := len(invoices) + 1
		invoices = append(invoices, models.Invoice{
			ID:                  id,
			ClientID:            client.ID,
			IssueDate:           issueDate,
			PaymentDate:         paymentDate,
			ExpectedPaymentDate: expectedPayment,
			Status:              status,
			InvoiceNumber:       fmt.Sprintf("FACT-%d-%06d", issueDate.Year(), id),
			Label:               pick(f.rng, invoiceLabels),
			Gross:               gross,
			VAT:                 derived.VAT,
			TTC:                 derived.TTC,
			Withholding5Pct:     derived.Withholding5Pct,
			WithholdingVAT:      derived.WithholdingVAT,
			NetPayable:          derived.NetPayable,
			Quantity:            quantity,
			UnitPrice:           unitPrice,
			CreatedAt:           f.randDateBetween(issueDate, f.config.ReferenceDate),
		})
	}

	tracker.Complete()
	f.logger.WithFields(logger.Fields{
		"count":   len(invoices),
		"skipped": skipped,
	}).Info("Generated invoices")
	return invoices, skipped, nil
}

// GenerateExpenses generates n operating expenses with log-normal amounts.
func (f *Factory) GenerateExpenses(n int) ([]models.Expense, error) {
	if n < 0 {
		return nil, errors.ConfigurationError(errors.CodeInvalidCount, "expense-count", n)
	}

	expenses := make([]models.Expense, 0, n)
	for i := 0; i < n; i++ {
		expenseDate := f.randDateBack(f.config.ExpenseHistoryDays)

		amount := math.Exp(f.config.ExpenseLogMean + f.config.ExpenseLogSigma*f.rng.NormFloat64())
		amount = clamp(amount, f.config.ExpenseAmountMin, f.config.ExpenseAmountMax)

		status := models.ExpenseStatusUnpaid
		if f.rng.Float64() < f.config.ExpensePaidRatio {
			status = models.ExpenseStatusPaid
		}

		expenses = append(expenses, models.Expense{
			ID:                  i + 1,
			Number:              fmt.Sprintf("EXP-%d-%05d", expenseDate.Year(), i+1),
			Label:               pick(f.rng, expenseLabelPrefixes) + " " + pick(f.rng, expenseLabelSubjects),
			Amount:              decimal.NewFromFloat(amount).Round(amounts.Precision),
			Category:            pick(f.rng, expenseCategories),
			Status:              status,
			ExpenseDate:         expenseDate,
			ExpectedPaymentDate: expenseDate.AddDate(0, 0, 1+f.rng.Intn(60)),
			CreatedAt:           expenseDate.AddDate(0, 0, f.rng.Intn(3)),
		})
	}

	f.logger.WithField("count", len(expenses)).Info("Generated expenses")
	return expenses, nil
}

// drawStatus draws an invoice status from the normalized weight table.
func (f *Factory) drawStatus() models.InvoiceStatus {
	total := 0.0
	for _, sw := range f.config.StatusWeights {
		total += sw.Weight
	}

	r := f.rng.Float64() * total
	cumulative := 0.0
	for _, sw := range f.config.StatusWeights {
		cumulative += sw.Weight
		if r < cumulative {
			return sw.Status
		}
	}
	return f.config.StatusWeights[len(f.config.StatusWeights)-1].Status
}

func (f *Factory) uniform(min, max float64) float64 {
	return min + f.rng.Float64()*(max-min)
}

func (f *Factory) phoneNumber() string {
	digits := make([]byte, 0, 14)
	digits = append(digits, '0', byte('1'+f.rng.Intn(9)))
	for i := 0; i < 4; i++ {
		digits = append(digits, ' ',
			byte('0'+f.rng.Intn(10)), byte('0'+f.rng.Intn(10)))
	}
	return string(digits)
}

// randDateBack draws a date uniformly in the maxDaysBack days preceding
// the reference date, inclusive.
func (f *Factory) randDateBack(maxDaysBack int) time.Time {
	return f.config.ReferenceDate.AddDate(0, 0, -f.rng.Intn(maxDaysBack+1))
}

// randDateBetween draws a whole-day date uniformly in [start, end].
// A window that is empty or inverted collapses to start.
func (f *Factory) randDateBetween(start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return start
	}
	return start.AddDate(0, 0, f.rng.Intn(days+1))
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
