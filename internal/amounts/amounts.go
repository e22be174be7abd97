// Package amounts computes the derived tax and withholding amounts of an
// invoice from its gross amount and the owning client's category.
//
// All results are rounded to 2 decimal places with round-half-up
// (decimal.Round). The rounding mode is part of the dataset contract:
// split and group emission relies on these exact rounded values.
package amounts

import (
	"fmt"
	"math/rand"

	"accounting-dataset-generator/internal/models"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places carried by all monetary amounts.
const Precision = 2

var (
	publicVATRate        = decimal.NewFromFloat(0.20)
	withholding5PctRate  = decimal.NewFromFloat(0.05)
	withholdingVATFactor = decimal.NewFromFloat(0.75)
)

// PrivateVATRates is the discrete set of VAT rates applied to
// private-sector invoices.
var PrivateVATRates = []decimal.Decimal{
	decimal.NewFromFloat(0.055),
	decimal.NewFromFloat(0.10),
	decimal.NewFromFloat(0.20),
}

// Amounts holds the derived monetary fields of an invoice.
type Amounts struct {
	VAT             decimal.Decimal
	TTC             decimal.Decimal
	Withholding5Pct decimal.Decimal
	WithholdingVAT  decimal.Decimal
	NetPayable      decimal.Decimal
}

// DrawPrivateVATRate draws one of the allowed private-sector VAT rates
// from the given random source.
func DrawPrivateVATRate(rng *rand.Rand) decimal.Decimal {
	return PrivateVATRates[rng.Intn(len(PrivateVATRates))]
}

// Compute derives VAT, TTC, withholding and net-payable amounts from a
// gross amount. For PUBLIC clients the VAT rate is fixed at 20% and the
// vatRate argument is ignored; a 5% withholding on gross and a 75%
// withholding on VAT are subtracted from TTC. For PRIVATE clients the
// caller supplies the VAT rate (see DrawPrivateVATRate) and no
// withholding applies.
func Compute(gross decimal.Decimal, category models.ClientCategory, vatRate decimal.Decimal) (Amounts, error) {
	if !category.IsValid() {
		return Amounts{}, fmt.Errorf("invalid client category: %s", category)
	}
	if gross.IsNegative() {
		return Amounts{}, fmt.Errorf("gross amount cannot be negative: %s", gross.String())
	}

	if category == models.ClientCategoryPublic {
		vat := gross.Mul(publicVATRate).Round(Precision)
		ttc := gross.Add(vat).Round(Precision)
		ras5 := gross.Mul(withholding5PctRate).Round(Precision)
		rasVAT := vat.Mul(withholdingVATFactor).Round(Precision)
		return Amounts{
			VAT:             vat,
			TTC:             ttc,
			Withholding5Pct: ras5,
			WithholdingVAT:  rasVAT,
			NetPayable:      ttc.Sub(ras5).Sub(rasVAT).Round(Precision),
		}, nil
	}

	vat := gross.Mul(vatRate).Round(Precision)
	ttc := gross.Add(vat).Round(Precision)
	return Amounts{
		VAT:             vat,
		TTC:             ttc,
		Withholding5Pct: decimal.Zero,
		WithholdingVAT:  decimal.Zero,
		NetPayable:      ttc,
	}, nil
}
