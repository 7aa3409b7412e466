package core

import "github.com/shopspring/decimal"

// DeclaredTotals are the totals as printed on the document.
type DeclaredTotals struct {
	BaseTotalPlusFees decimal.Decimal `json:"base_total_plus_fees"`
	TaxTotal          decimal.Decimal `json:"tax_total"`
	GrandTotal        decimal.Decimal `json:"grand_total"`
}

// VATLineTotals is one per-VAT-bracket line item of a document. Missing
// fields count as zero.
type VATLineTotals struct {
	Base *decimal.Decimal `json:"base,omitempty"`
	Tax  *decimal.Decimal `json:"tax,omitempty"`
}

// DocumentFees are surcharges itemized outside the VAT brackets. The green
// point fee participates in the base equation only.
type DocumentFees struct {
	GreenPoint *decimal.Decimal `json:"green_point,omitempty"`
}

// RecalculatedTotals are the recomputed figures as fixed 2-decimal strings.
type RecalculatedTotals struct {
	Base  string `json:"base"`
	Tax   string `json:"tax"`
	Grand string `json:"grand"`
}

// TotalsDiffs hold recomputed − declared per equation, in integer cents.
// Positive means the recomputation exceeds the declared figure.
type TotalsDiffs struct {
	Eq1 int64 `json:"eq1"` // base
	Eq2 int64 `json:"eq2"` // tax
	Eq3 int64 `json:"eq3"` // grand total
}

// ReconcileResult is the outcome of ReconcileTotals.
type ReconcileResult struct {
	OK                 bool               `json:"ok"`
	Diffs              TotalsDiffs        `json:"diffs"`
	RecalculatedTotals RecalculatedTotals `json:"recalculated_totals"`
}

// totalsToleranceCents is the admissible per-equation rounding noise:
// per-line rounding legitimately drifts declared totals by a cent or two.
const totalsToleranceCents = 2

// toCents converts an amount to integer cents, rounding half away from
// zero, so the equations compare exact integers instead of floats.
func toCents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// ReconcileTotals checks the three monetary equations of a document —
// base, tax, and grand total — between its declared totals and totals
// recomputed from the per-VAT line items plus the green point fee.
//
// A document with no line items recomputes to zero across the board; the
// resulting large negative diffs against any non-zero declared totals are
// the intended outcome, not a case to special-case away.
func ReconcileTotals(declared DeclaredTotals, lines []VATLineTotals, fees DocumentFees) ReconcileResult {
	recalcBase := orZero(fees.GreenPoint)
	recalcTax := decimal.Zero
	for _, l := range lines {
		recalcBase = recalcBase.Add(orZero(l.Base))
		recalcTax = recalcTax.Add(orZero(l.Tax))
	}
	recalcGrand := recalcBase.Add(recalcTax)

	diffs := TotalsDiffs{
		Eq1: toCents(recalcBase) - toCents(declared.BaseTotalPlusFees),
		Eq2: toCents(recalcTax) - toCents(declared.TaxTotal),
		Eq3: toCents(recalcGrand) - toCents(declared.GrandTotal),
	}

	return ReconcileResult{
		OK:    withinBand(diffs.Eq1) && withinBand(diffs.Eq2) && withinBand(diffs.Eq3),
		Diffs: diffs,
		RecalculatedTotals: RecalculatedTotals{
			Base:  recalcBase.StringFixed(2),
			Tax:   recalcTax.StringFixed(2),
			Grand: recalcGrand.StringFixed(2),
		},
	}
}

func withinBand(cents int64) bool {
	return cents >= -totalsToleranceCents && cents <= totalsToleranceCents
}
