package core

import "github.com/shopspring/decimal"

// VATCheck is the outcome of a VAT coherence or calculation check.
type VATCheck struct {
	Valid         bool             `json:"valid"`
	Reason        string           `json:"reason,omitempty"`
	ExpectedTotal *decimal.Decimal `json:"expected_total,omitempty"`
}

// VATValidator checks the internal consistency of invoice VAT figures.
// It is injected into the invoice pipeline so callers can substitute
// their own arithmetic policy.
type VATValidator interface {
	// ValidateCoherence checks that the grand total equals the sum of
	// bases, VAT amounts and other taxes.
	ValidateCoherence(totals InvoiceTotals) VATCheck
	// ValidateCalculation checks a single bracket: vat ≈ base · rate / 100.
	ValidateCalculation(base, vat decimal.Decimal, rate int) VATCheck
}

// vatCentTolerance admits one cent of rounding noise per check.
var vatCentTolerance = decimal.RequireFromString("0.01")

type spanishVAT struct{}

// NewSpanishVATValidator returns the standard IVA arithmetic used by the
// pipeline: 10% and 21% brackets, one cent of tolerance.
func NewSpanishVATValidator() VATValidator {
	return spanishVAT{}
}

func (spanishVAT) ValidateCoherence(totals InvoiceTotals) VATCheck {
	if totals.Total == nil {
		return VATCheck{Valid: false, Reason: "falta el total de la factura"}
	}
	expected := decimal.Zero
	for _, d := range []*decimal.Decimal{totals.Base10, totals.VAT10, totals.Base21, totals.VAT21} {
		expected = expected.Add(orZero(d))
	}
	for _, ot := range totals.OtherTaxes {
		expected = expected.Add(orZero(ot.Amount))
	}
	expected = expected.Round(2)

	if totals.Total.Sub(expected).Abs().GreaterThan(vatCentTolerance) {
		return VATCheck{
			Valid:         false,
			Reason:        "el total declarado no coincide con Base+IVA",
			ExpectedTotal: &expected,
		}
	}
	return VATCheck{Valid: true, ExpectedTotal: &expected}
}

func (spanishVAT) ValidateCalculation(base, vat decimal.Decimal, rate int) VATCheck {
	expected := base.Mul(decimal.NewFromInt(int64(rate))).Div(decimal.NewFromInt(100)).Round(2)
	if vat.Sub(expected).Abs().GreaterThan(vatCentTolerance) {
		return VATCheck{
			Valid:         false,
			Reason:        "la cuota de IVA no corresponde a la base por el tipo",
			ExpectedTotal: &expected,
		}
	}
	return VATCheck{Valid: true, ExpectedTotal: &expected}
}
