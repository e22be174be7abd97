package emitter

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"accounting-dataset-generator/internal/models"

	"github.com/shopspring/decimal"
)

var testReference = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

func newTestEmitter(t *testing.T, seed int64) *Emitter {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ReferenceDate = testReference
	e, err := NewEmitter(cfg, rand.New(rand.NewSource(seed)), nil)
	if err != nil {
		t.Fatalf("NewEmitter() error = %v", err)
	}
	return e
}

func paidInvoice(id int, net float64) models.Invoice {
	payment := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, id)
	return models.Invoice{
		ID:            id,
		ClientID:      id,
		Status:        models.InvoiceStatusPaid,
		PaymentDate:   &payment,
		InvoiceNumber: fmt.Sprintf("FACT-2026-%06d", id),
		Label:         "Consulting IT",
		NetPayable:    decimal.NewFromFloat(net),
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"negative variation", func(c *Config) { c.MatchedVariation = -0.1 }, true},
		{"variation of one", func(c *Config) { c.ExpenseVariation = 1 }, true},
		{"single installment", func(c *Config) { c.PartialMin = 1 }, true},
		{"inverted installments", func(c *Config) { c.PartialMin, c.PartialMax = 4, 2 }, true},
		{"group of one", func(c *Config) { c.GroupSize = 1 }, true},
		{"zero reference date", func(c *Config) { c.ReferenceDate = time.Time{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ReferenceDate = testReference
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmitMatched(t *testing.T) {
	e := newTestEmitter(t, 42)
	invoices := []models.Invoice{paidInvoice(1, 1000), paidInvoice(2, 250.50), paidInvoice(3, 87.30)}

	lines, skipped := e.EmitMatched(invoices)
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(lines) != len(invoices) {
		t.Fatalf("got %d lines, want %d", len(lines), len(invoices))
	}

	// Rounding may push the perturbed amount a cent past the band.
	slack := decimal.NewFromFloat(0.01)
	for i, line := range lines {
		inv := invoices[i]
		if line.MatchType != models.MatchTypeMatched {
			t.Errorf("line %d match type = %s", line.ID, line.MatchType)
		}
		if line.RelatedInvoiceID == nil || *line.RelatedInvoiceID != inv.ID {
			t.Errorf("line %d does not reference invoice %d", line.ID, inv.ID)
		}
		if err := line.Validate(); err != nil {
			t.Errorf("line %d invalid: %v", line.ID, err)
		}

		low := inv.NetPayable.Mul(decimal.NewFromFloat(0.95)).Sub(slack)
		high := inv.NetPayable.Mul(decimal.NewFromFloat(1.05)).Add(slack)
		if line.Amount().LessThan(low) || line.Amount().GreaterThan(high) {
			t.Errorf("line %d credit %s outside [%s, %s]", line.ID, line.Amount(), low, high)
		}

		if line.StatementDate.Before(*inv.PaymentDate) || line.StatementDate.After(testReference) {
			t.Errorf("line %d statement date %s outside [payment, reference]", line.ID, line.StatementDate)
		}
		if line.ValueDate.Before(line.StatementDate) {
			t.Errorf("line %d value date precedes statement date", line.ID)
		}
		if !strings.Contains(line.AdditionalLabel, inv.InvoiceNumber) {
			t.Errorf("line %d label %q does not carry the invoice reference", line.ID, line.AdditionalLabel)
		}
	}
}

func TestEmitPartial_SumsExactly(t *testing.T) {
	e := newTestEmitter(t, 42)
	invoices := []models.Invoice{paidInvoice(1, 1000), paidInvoice(2, 333.33), paidInvoice(3, 100.01)}

	lines, skipped := e.EmitPartial(invoices)
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}

	sums := make(map[int]decimal.Decimal)
	counts := make(map[int]int)
	for _, line := range lines {
		if line.MatchType != models.MatchTypePartial {
			t.Errorf("line %d match type = %s", line.ID, line.MatchType)
		}
		if line.RelatedInvoiceID == nil {
			t.Fatalf("line %d carries no invoice reference", line.ID)
		}
		if !line.Amount().IsPositive() {
			t.Errorf("line %d installment %s is not positive", line.ID, line.Amount())
		}
		id := *line.RelatedInvoiceID
		sums[id] = sums[id].Add(line.Amount())
		counts[id]++
	}

	for _, inv := range invoices {
		if counts[inv.ID] < 2 || counts[inv.ID] > 4 {
			t.Errorf("invoice %d split into %d installments, want 2-4", inv.ID, counts[inv.ID])
		}
		if !sums[inv.ID].Equal(inv.NetPayable) {
			t.Errorf("installments of invoice %d sum to %s, want exactly %s", inv.ID, sums[inv.ID], inv.NetPayable)
		}
	}
}

func TestEmitPartial_SubCentNet(t *testing.T) {
	e := newTestEmitter(t, 42)
	invoices := []models.Invoice{paidInvoice(1, 0.01)}

	lines, skipped := e.EmitPartial(invoices)
	if skipped == 0 {
		t.Error("splitting a one-cent net should skip at least one installment")
	}
	if len(lines) == 0 {
		t.Fatal("no installments emitted")
	}

	sum := decimal.Zero
	for _, line := range lines {
		if !line.Amount().IsPositive() {
			t.Errorf("line %d installment %s is not positive", line.ID, line.Amount())
		}
		if err := line.Validate(); err != nil {
			t.Errorf("line %d invalid: %v", line.ID, err)
		}
		sum = sum.Add(line.Amount())
	}
	if !sum.Equal(invoices[0].NetPayable) {
		t.Errorf("installments sum to %s, want exactly %s", sum, invoices[0].NetPayable)
	}
}

func TestEmitGrouped(t *testing.T) {
	e := newTestEmitter(t, 42)
	var invoices []models.Invoice
	for i := 1; i <= 7; i++ {
		invoices = append(invoices, paidInvoice(i, float64(i)*111.11))
	}

	lines, skipped := e.EmitGrouped(invoices)
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	// Seven invoices in groups of three: 3 + 3 + 1.
	if len(lines) != 3 {
		t.Fatalf("got %d grouped lines, want 3", len(lines))
	}

	byID := make(map[int]models.Invoice)
	for _, inv := range invoices {
		byID[inv.ID] = inv
	}

	covered := make(map[int]bool)
	for _, line := range lines {
		if line.MatchType != models.MatchTypeGrouped {
			t.Errorf("line %d match type = %s", line.ID, line.MatchType)
		}
		if len(line.GroupedInvoiceIDs) == 0 {
			t.Fatalf("line %d carries no grouped identities", line.ID)
		}
		if line.RelatedInvoiceID == nil || *line.RelatedInvoiceID != line.GroupedInvoiceIDs[0] {
			t.Errorf("line %d primary reference does not match first grouped invoice", line.ID)
		}

		total := decimal.Zero
		for _, id := range line.GroupedInvoiceIDs {
			if covered[id] {
				t.Errorf("invoice %d grouped twice", id)
			}
			covered[id] = true
			total = total.Add(byID[id].NetPayable)
		}
		if !line.Amount().Equal(total) {
			t.Errorf("line %d credits %s, grouped nets sum to %s", line.ID, line.Amount(), total)
		}
	}
	if len(covered) != len(invoices) {
		t.Errorf("grouped lines cover %d invoices, want %d", len(covered), len(invoices))
	}
}

func TestEmitUnmatched(t *testing.T) {
	e := newTestEmitter(t, 42)
	invoices := []models.Invoice{paidInvoice(1, 500), paidInvoice(2, 750.25)}
	clients := map[int]models.Client{
		1: {ID: 1, CompanyName: "Altair Conseil"},
		2: {ID: 2, CompanyName: "Nexio SARL"},
	}

	lines, skipped := e.EmitUnmatched(invoices, clients)
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}

	for i, line := range lines {
		inv := invoices[i]
		if line.MatchType != models.MatchTypeUnmatched {
			t.Errorf("line %d match type = %s", line.ID, line.MatchType)
		}
		if !line.Amount().Equal(inv.NetPayable) {
			t.Errorf("line %d credits %s, want the unchanged net %s", line.ID, line.Amount(), inv.NetPayable)
		}
		// The label must not leak a parseable reference.
		if strings.Contains(line.AdditionalLabel, inv.InvoiceNumber) {
			t.Errorf("line %d label %q leaks the invoice number", line.ID, line.AdditionalLabel)
		}
		if line.AdditionalLabel != strings.ToUpper(clients[inv.ClientID].CompanyName) {
			t.Errorf("line %d label = %q, want uppercase company name", line.ID, line.AdditionalLabel)
		}
		// Ground truth stays on the line for scoring.
		if line.RelatedInvoiceID == nil || *line.RelatedInvoiceID != inv.ID {
			t.Errorf("line %d lost its ground-truth invoice reference", line.ID)
		}
	}
}

func TestEmitExpenses(t *testing.T) {
	e := newTestEmitter(t, 42)
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	expenses := []models.Expense{
		{ID: 1, Status: models.ExpenseStatusPaid, Amount: decimal.NewFromFloat(120.50), ExpenseDate: date},
		{ID: 2, Status: models.ExpenseStatusUnpaid, Amount: decimal.NewFromFloat(80), ExpenseDate: date},
		{ID: 3, Status: models.ExpenseStatusPaid, Amount: decimal.NewFromFloat(2400), ExpenseDate: date},
	}

	lines, skipped := e.EmitExpenses(expenses)
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d expense lines, want 2 (paid expenses only)", len(lines))
	}

	slack := decimal.NewFromFloat(0.01)
	for _, line := range lines {
		if line.MatchType != models.MatchTypeExpense {
			t.Errorf("line %d match type = %s", line.ID, line.MatchType)
		}
		if !line.IsDebit() {
			t.Errorf("line %d settles an expense but is not a debit", line.ID)
		}
		if line.RelatedExpenseID == nil {
			t.Fatalf("line %d carries no expense reference", line.ID)
		}

		var amount decimal.Decimal
		for _, exp := range expenses {
			if exp.ID == *line.RelatedExpenseID {
				amount = exp.Amount
			}
		}
		low := amount.Mul(decimal.NewFromFloat(0.98)).Sub(slack)
		high := amount.Mul(decimal.NewFromFloat(1.02)).Add(slack)
		if line.Amount().LessThan(low) || line.Amount().GreaterThan(high) {
			t.Errorf("line %d debit %s outside [%s, %s]", line.ID, line.Amount(), low, high)
		}
	}
}

func TestEmitOrphans(t *testing.T) {
	e := newTestEmitter(t, 42)
	lines, skipped := e.EmitOrphans(200, nil)
	if len(lines)+skipped != 200 {
		t.Fatalf("lines %d + skipped %d != 200", len(lines), skipped)
	}

	maxAmount := decimal.NewFromInt(500)
	debits, credits := 0, 0
	for _, line := range lines {
		if line.MatchType != models.MatchTypeOrphan {
			t.Errorf("line %d match type = %s", line.ID, line.MatchType)
		}
		if line.RelatedInvoiceID != nil || line.RelatedExpenseID != nil {
			t.Errorf("orphan line %d carries a reference", line.ID)
		}
		if line.Amount().GreaterThan(maxAmount) {
			t.Errorf("line %d amount %s above the cap", line.ID, line.Amount())
		}
		if err := line.Validate(); err != nil {
			t.Errorf("line %d invalid: %v", line.ID, err)
		}
		if line.IsDebit() {
			debits++
		} else {
			credits++
		}
	}
	if debits == 0 || credits == 0 {
		t.Errorf("degenerate sign mix: %d debits, %d credits", debits, credits)
	}
}

func TestEmitter_SequentialIdentity(t *testing.T) {
	e := newTestEmitter(t, 42)
	matched, _ := e.EmitMatched([]models.Invoice{paidInvoice(1, 100)})
	partial, _ := e.EmitPartial([]models.Invoice{paidInvoice(2, 200)})
	orphans, _ := e.EmitOrphans(2, nil)

	var all []models.BankStatementLine
	all = append(all, matched...)
	all = append(all, partial...)
	all = append(all, orphans...)

	for i, line := range all {
		if line.ID != i+1 {
			t.Fatalf("line %d has ID %d, the identity sequence must be shared and sequential", i, line.ID)
		}
	}
}
