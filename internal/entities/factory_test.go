package entities

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"accounting-dataset-generator/internal/models"

	"github.com/shopspring/decimal"
)

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.ReferenceDate = time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	return cfg
}

func newTestFactory(t *testing.T, seed int64) *Factory {
	t.Helper()
	factory, err := NewFactory(testConfig(), rand.New(rand.NewSource(seed)), nil)
	if err != nil {
		t.Fatalf("NewFactory() error = %v", err)
	}
	return factory
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"ratio above one", func(c *Config) { c.PublicClientRatio = 1.5 }, true},
		{"negative ratio", func(c *Config) { c.PublicClientRatio = -0.1 }, true},
		{"empty weights", func(c *Config) { c.StatusWeights = nil }, true},
		{"negative weight", func(c *Config) { c.StatusWeights[0].Weight = -1 }, true},
		{"unknown status", func(c *Config) { c.StatusWeights[0].Status = "UNKNOWN" }, true},
		{"inverted gross range", func(c *Config) { c.GrossMin, c.GrossMax = 500, 100 }, true},
		{"zero quantity", func(c *Config) { c.QuantityMin = 0 }, true},
		{"inverted unit price band", func(c *Config) { c.UnitPriceMin, c.UnitPriceMax = 100, 1 }, true},
		{"negative grace", func(c *Config) { c.GraceDays = -1 }, true},
		{"zero reference date", func(c *Config) { c.ReferenceDate = time.Time{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateClients(t *testing.T) {
	factory := newTestFactory(t, 42)
	clients, err := factory.GenerateClients(200)
	if err != nil {
		t.Fatalf("GenerateClients() error = %v", err)
	}
	if len(clients) != 200 {
		t.Fatalf("got %d clients, want 200", len(clients))
	}

	public := 0
	for i, c := range clients {
		if c.ID != i+1 {
			t.Errorf("client %d has ID %d, identities must be sequential", i, c.ID)
		}
		if err := c.Validate(); err != nil {
			t.Errorf("client %d invalid: %v", c.ID, err)
		}
		if c.Category == models.ClientCategoryPublic {
			public++
		}
		if !strings.Contains(c.Email, "@") {
			t.Errorf("client %d has malformed email %q", c.ID, c.Email)
		}
	}

	// Both categories must occur with a 0.5 ratio over 200 draws.
	if public == 0 || public == len(clients) {
		t.Errorf("degenerate category mix: %d public of %d", public, len(clients))
	}
}

func TestGenerateClients_Deterministic(t *testing.T) {
	first, err := newTestFactory(t, 7).GenerateClients(50)
	if err != nil {
		t.Fatalf("GenerateClients() error = %v", err)
	}
	second, err := newTestFactory(t, 7).GenerateClients(50)
	if err != nil {
		t.Fatalf("GenerateClients() error = %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("client %d differs between identically seeded runs", i+1)
		}
	}
}

func TestGenerateInvoices(t *testing.T) {
	factory := newTestFactory(t, 42)
	clients, err := factory.GenerateClients(50)
	if err != nil {
		t.Fatalf("GenerateClients() error = %v", err)
	}

	const requested = 500
	invoices, skipped, err := factory.GenerateInvoices(requested, clients)
	if err != nil {
		t.Fatalf("GenerateInvoices() error = %v", err)
	}
	if len(invoices)+skipped != requested {
		t.Errorf("invoices %d + skipped %d != requested %d", len(invoices), skipped, requested)
	}

	cfg := factory.config
	unitMin := decimal.NewFromFloat(cfg.UnitPriceMin)
	unitMax := decimal.NewFromFloat(cfg.UnitPriceMax)
	clientByID := make(map[int]models.Client)
	for _, c := range clients {
		clientByID[c.ID] = c
	}

	for i := range invoices {
		inv := &invoices[i]
		if inv.ID != i+1 {
			t.Errorf("invoice %d has ID %d, identities must be sequential", i, inv.ID)
		}
		if err := inv.Validate(); err != nil {
			t.Errorf("invoice %d invalid: %v", inv.ID, err)
		}
		if _, ok := clientByID[inv.ClientID]; !ok {
			t.Errorf("invoice %d references unknown client %d", inv.ID, inv.ClientID)
		}
		if inv.UnitPrice.LessThan(unitMin) || inv.UnitPrice.GreaterThan(unitMax) {
			t.Errorf("invoice %d unit price %s outside band", inv.ID, inv.UnitPrice)
		}
		if !strings.HasPrefix(inv.InvoiceNumber, "FACT-") {
			t.Errorf("invoice %d has malformed number %q", inv.ID, inv.InvoiceNumber)
		}
		if inv.PaymentDate != nil && inv.PaymentDate.After(cfg.ReferenceDate) {
			t.Errorf("invoice %d paid in the future: %s", inv.ID, inv.PaymentDate)
		}

		client := clientByID[inv.ClientID]
		if client.Category == models.ClientCategoryPrivate {
			if !inv.Withholding5Pct.IsZero() || !inv.WithholdingVAT.IsZero() {
				t.Errorf("private invoice %d carries withholdings", inv.ID)
			}
		}
	}
}

func TestGenerateInvoices_NoClients(t *testing.T) {
	factory := newTestFactory(t, 1)
	if _, _, err := factory.GenerateInvoices(10, nil); err == nil {
		t.Error("expected error when generating invoices without clients")
	}
}

func TestGenerateExpenses(t *testing.T) {
	factory := newTestFactory(t, 42)
	expenses, err := factory.GenerateExpenses(300)
	if err != nil {
		t.Fatalf("GenerateExpenses() error = %v", err)
	}
	if len(expenses) != 300 {
		t.Fatalf("got %d expenses, want 300", len(expenses))
	}

	cfg := factory.config
	min := decimal.NewFromFloat(cfg.ExpenseAmountMin)
	max := decimal.NewFromFloat(cfg.ExpenseAmountMax)
	paid := 0

	for i := range expenses {
		exp := &expenses[i]
		if err := exp.Validate(); err != nil {
			t.Errorf("expense %d invalid: %v", exp.ID, err)
		}
		if exp.Amount.LessThan(min) || exp.Amount.GreaterThan(max) {
			t.Errorf("expense %d amount %s outside [%s, %s]", exp.ID, exp.Amount, min, max)
		}
		if !strings.HasPrefix(exp.Number, "EXP-") {
			t.Errorf("expense %d has malformed number %q", exp.ID, exp.Number)
		}
		if exp.Status == models.ExpenseStatusPaid {
			paid++
		}
	}

	if paid == 0 || paid == len(expenses) {
		t.Errorf("degenerate settlement mix: %d paid of %d", paid, len(expenses))
	}
}
