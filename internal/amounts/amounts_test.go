package amounts

import (
	"math/rand"
	"testing"

	"accounting-dataset-generator/internal/models"

	"github.com/shopspring/decimal"
)

func TestCompute_Public(t *testing.T) {
	tests := []struct {
		name            string
		gross           float64
		vat             string
		ttc             string
		withholding5Pct string
		withholdingVAT  string
		netPayable      string
	}{
		{"round amount", 1000, "200", "1200", "50", "150", "1000"},
		{"cents", 123.45, "24.69", "148.14", "6.17", "18.52", "123.45"},
		{"small", 1, "0.2", "1.2", "0.05", "0.15", "1"},
		{"zero", 0, "0", "0", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(decimal.NewFromFloat(tt.gross), models.ClientCategoryPublic, decimal.Zero)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			assertDecimal(t, "VAT", got.VAT, tt.vat)
			assertDecimal(t, "TTC", got.TTC, tt.ttc)
			assertDecimal(t, "Withholding5Pct", got.Withholding5Pct, tt.withholding5Pct)
			assertDecimal(t, "WithholdingVAT", got.WithholdingVAT, tt.withholdingVAT)
			assertDecimal(t, "NetPayable", got.NetPayable, tt.netPayable)
		})
	}
}

func TestCompute_PublicNetIdentity(t *testing.T) {
	// For the PUBLIC branch the withholdings cancel the VAT exactly when
	// gross has at most 2 decimals: net = gross + 20% - 5% - 15%.
	for _, gross := range []float64{1000, 250.50, 7642.13, 99.99} {
		got, err := Compute(decimal.NewFromFloat(gross), models.ClientCategoryPublic, decimal.Zero)
		if err != nil {
			t.Fatalf("Compute(%v) error = %v", gross, err)
		}
		expected := got.TTC.Sub(got.Withholding5Pct).Sub(got.WithholdingVAT)
		if !got.NetPayable.Equal(expected) {
			t.Errorf("NetPayable = %s, want TTC - withholdings = %s", got.NetPayable, expected)
		}
	}
}

func TestCompute_Private(t *testing.T) {
	tests := []struct {
		name    string
		gross   float64
		vatRate float64
		vat     string
		ttc     string
	}{
		{"reduced rate", 1000, 0.055, "55", "1055"},
		{"intermediate rate", 1000, 0.10, "100", "1100"},
		{"standard rate", 1000, 0.20, "200", "1200"},
		{"cents", 333.33, 0.20, "66.67", "400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(decimal.NewFromFloat(tt.gross), models.ClientCategoryPrivate, decimal.NewFromFloat(tt.vatRate))
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			assertDecimal(t, "VAT", got.VAT, tt.vat)
			assertDecimal(t, "TTC", got.TTC, tt.ttc)
			if !got.Withholding5Pct.IsZero() || !got.WithholdingVAT.IsZero() {
				t.Errorf("private invoice carries withholdings: %s, %s", got.Withholding5Pct, got.WithholdingVAT)
			}
			if !got.NetPayable.Equal(got.TTC) {
				t.Errorf("NetPayable = %s, want TTC %s", got.NetPayable, got.TTC)
			}
		})
	}
}

func TestCompute_Errors(t *testing.T) {
	if _, err := Compute(decimal.NewFromInt(100), "UNKNOWN", decimal.Zero); err == nil {
		t.Error("expected error for invalid category")
	}
	if _, err := Compute(decimal.NewFromInt(-1), models.ClientCategoryPublic, decimal.Zero); err == nil {
		t.Error("expected error for negative gross")
	}
}

func TestDrawPrivateVATRate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	allowed := make(map[string]bool)
	for _, rate := range PrivateVATRates {
		allowed[rate.String()] = true
	}

	for i := 0; i < 100; i++ {
		rate := DrawPrivateVATRate(rng)
		if !allowed[rate.String()] {
			t.Fatalf("drew rate %s outside the allowed set", rate)
		}
	}
}

func assertDecimal(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	expected, err := decimal.NewFromString(want)
	if err != nil {
		t.Fatalf("bad expected value %q: %v", want, err)
	}
	if !got.Equal(expected) {
		t.Errorf("%s = %s, want %s", field, got, want)
	}
}
