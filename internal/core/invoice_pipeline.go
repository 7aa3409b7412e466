package core

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FiscalYearStatusProvider reports whether a centro's fiscal year is open
// for posting. It is the pipeline's only external call; failures degrade
// to warnings so an unavailable backend never blocks a review screen.
type FiscalYearStatusProvider interface {
	FiscalYearStatus(ctx context.Context, centroCode string, year int) (FiscalYearStatus, error)
}

// nifPattern covers the Spanish NIF (8 digits + control letter), NIE
// (X/Y/Z + 7 digits + letter) and CIF (letter + 7 digits + control)
// shapes after whitespace/dash normalization.
var nifPattern = regexp.MustCompile(`^(?:\d{8}[A-Z]|[XYZ]\d{7}[A-Z]|[A-HJNP-SUVW]\d{7}[0-9A-J])$`)

// Confidence policy for the pipeline. AP-mapping scores below the bands
// cap the final unit score, and every accumulated warning shaves a fixed
// decrement off it. The blocking list alone decides ready_to_post.
const (
	lowConfidenceThreshold = PercentScore(50)
	midConfidenceThreshold = PercentScore(80)
)

var (
	lowConfidenceCap         = UnitScore(0.45)
	midConfidenceCap         = UnitScore(0.75)
	warningConfidencePenalty = UnitScore(0.05)
)

// Default accounts used when the AP mapping leaves a slot empty.
const (
	defaultAPAccount          = "4100000"
	defaultWithholdingAccount = "4730000"
)

// InvoiceEntryPipeline validates an OCR-derived invoice against its AP
// mapping and produces a balanced posting preview. Every check runs
// unconditionally and findings accumulate: the manual-review UI needs the
// complete picture, not the first failure.
type InvoiceEntryPipeline struct {
	fiscalYears FiscalYearStatusProvider
	vat         VATValidator
}

func NewInvoiceEntryPipeline(fiscalYears FiscalYearStatusProvider, vat VATValidator) *InvoiceEntryPipeline {
	return &InvoiceEntryPipeline{fiscalYears: fiscalYears, vat: vat}
}

// Validate runs the full pipeline for one invoice.
func (p *InvoiceEntryPipeline) Validate(ctx context.Context, invoice NormalizedInvoice, mapping APMapping, centroCode string) ValidationResult {
	result := ValidationResult{
		BlockingIssues: []string{},
		Warnings:       []string{},
	}

	issueYear := p.checkRequiredFields(invoice, &result)
	p.checkFiscalYear(ctx, centroCode, issueYear, &result)
	p.checkVAT(invoice.Totals, &result)
	p.checkMapping(mapping.InvoiceLevel, &result)
	result.PostPreview = p.buildPreview(invoice, mapping.InvoiceLevel, &result)
	result.ConfidenceScore = p.aggregateConfidence(mapping.InvoiceLevel.ConfidenceScore, result.Warnings)
	result.ReadyToPost = len(result.BlockingIssues) == 0
	return result
}

// checkRequiredFields validates identity, number, date and total. Returns
// the issue year when the date parsed, 0 otherwise.
func (p *InvoiceEntryPipeline) checkRequiredFields(invoice NormalizedInvoice, result *ValidationResult) int {
	vatID := normalizeVATID(invoice.Issuer.VATID)
	switch {
	case vatID == "":
		result.BlockingIssues = append(result.BlockingIssues, "falta el NIF/CIF del emisor")
	case !nifPattern.MatchString(vatID):
		result.BlockingIssues = append(result.BlockingIssues,
			fmt.Sprintf("el NIF/CIF del emisor %q no tiene un formato válido", vatID))
	}

	if invoice.InvoiceNumber == nil || strings.TrimSpace(*invoice.InvoiceNumber) == "" {
		result.BlockingIssues = append(result.BlockingIssues, "falta el número de factura")
	}

	issueYear := 0
	if invoice.IssueDate == nil || strings.TrimSpace(*invoice.IssueDate) == "" {
		result.BlockingIssues = append(result.BlockingIssues, "falta la fecha de emisión")
	} else if d, err := time.Parse("2006-01-02", *invoice.IssueDate); err != nil {
		result.BlockingIssues = append(result.BlockingIssues,
			fmt.Sprintf("la fecha de emisión %q no es válida (se espera AAAA-MM-DD)", *invoice.IssueDate))
	} else {
		issueYear = d.Year()
	}

	if invoice.Totals.Total == nil || !invoice.Totals.Total.IsPositive() {
		result.BlockingIssues = append(result.BlockingIssues, "el total de la factura debe ser mayor que cero")
	}
	return issueYear
}

// checkFiscalYear asks the injected provider once. A closed year blocks;
// a not-yet-created year or a provider failure is flagged but allowed.
func (p *InvoiceEntryPipeline) checkFiscalYear(ctx context.Context, centroCode string, year int, result *ValidationResult) {
	if year == 0 {
		return // the date issue is already blocking
	}
	status, err := p.fiscalYears.FiscalYearStatus(ctx, centroCode, year)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("no se pudo comprobar el ejercicio fiscal %d: %v", year, err))
		return
	}
	if status.IsClosed {
		msg := status.Message
		if msg == "" {
			msg = fmt.Sprintf("el ejercicio fiscal %d del centro %s está cerrado", year, centroCode)
		}
		result.BlockingIssues = append(result.BlockingIssues, msg)
		return
	}
	if !status.Exists {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("el ejercicio fiscal %d del centro %s no existe todavía", year, centroCode))
	}
}

// checkVAT runs the coherence check (blocking) and per-bracket
// calculation checks (warnings only: a bad sub-total should not halt
// posting when the grand total is internally consistent).
func (p *InvoiceEntryPipeline) checkVAT(totals InvoiceTotals, result *ValidationResult) {
	if coherence := p.vat.ValidateCoherence(totals); !coherence.Valid {
		result.BlockingIssues = append(result.BlockingIssues, "total no cuadra con Base+IVA")
	}

	brackets := []struct {
		base *decimal.Decimal
		vat  *decimal.Decimal
		rate int
	}{
		{totals.Base10, totals.VAT10, 10},
		{totals.Base21, totals.VAT21, 21},
	}
	for _, b := range brackets {
		if b.base == nil {
			continue
		}
		if check := p.vat.ValidateCalculation(*b.base, orZero(b.vat), b.rate); !check.Valid {
			result.Warnings = append(result.Warnings, fmt.Sprintf("IVA %d%% mal calculado", b.rate))
		}
	}
}

// checkMapping validates the AP mapping's confidence and account shapes.
func (p *InvoiceEntryPipeline) checkMapping(level APMappingLevel, result *ValidationResult) {
	if level.ConfidenceScore < lowConfidenceThreshold {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("confianza baja en el mapeo contable (%.0f%%)", float64(level.ConfidenceScore)))
	}

	if !strings.HasPrefix(level.AccountSuggestion, "6") {
		result.BlockingIssues = append(result.BlockingIssues,
			fmt.Sprintf("la cuenta de gasto sugerida %q no es válida (debe empezar por 6)", level.AccountSuggestion))
	}
	if !strings.HasPrefix(level.TaxAccount, "472") {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("la cuenta de IVA soportado %q no empieza por 472", level.TaxAccount))
	}
}

// buildPreview emits the balanced entry the invoice would post: expense
// and VAT debits per bracket, a withholding debit when the other taxes
// carry one, and the AP credit for the grand total.
func (p *InvoiceEntryPipeline) buildPreview(invoice NormalizedInvoice, level APMappingLevel, result *ValidationResult) []LedgerLine {
	totals := invoice.Totals
	var lines []LedgerLine

	addDebit := func(account string, amount decimal.Decimal, desc string) {
		if amount.IsZero() {
			return
		}
		lines = append(lines, LedgerLine{
			AccountCode:  account,
			MovementType: Debit,
			Amount:       amount.Round(2),
			Description:  desc,
		})
	}

	addDebit(level.AccountSuggestion, orZero(totals.Base10), "Base imponible 10%")
	addDebit(level.AccountSuggestion, orZero(totals.Base21), "Base imponible 21%")
	addDebit(level.TaxAccount, orZero(totals.VAT10), "IVA soportado 10%")
	addDebit(level.TaxAccount, orZero(totals.VAT21), "IVA soportado 21%")

	for _, ot := range totals.OtherTaxes {
		if !isWithholding(ot.Type) {
			continue
		}
		addDebit(defaultWithholdingAccount, orZero(ot.Amount).Abs(), "Retenciones "+ot.Type)
	}

	apAccount := level.APAccount
	if apAccount == "" {
		apAccount = defaultAPAccount
	}
	grand := orZero(totals.Total)
	if grand.IsPositive() {
		lines = append(lines, LedgerLine{
			AccountCode:  apAccount,
			MovementType: Credit,
			Amount:       grand.Round(2),
			Description:  "Proveedores",
		})
	}

	debit := decimal.Zero
	credit := decimal.Zero
	for _, l := range lines {
		if l.MovementType == Debit {
			debit = debit.Add(l.Amount)
		} else {
			credit = credit.Add(l.Amount)
		}
	}
	if debit.Sub(credit).Abs().GreaterThanOrEqual(balanceTolerance) {
		result.BlockingIssues = append(result.BlockingIssues,
			fmt.Sprintf("asiento descuadrado: debe %s, haber %s", debit.StringFixed(2), credit.StringFixed(2)))
	}
	return lines
}

// aggregateConfidence converts the AP score to the unit scale, applies
// the band caps, then floors further per accumulated warning.
func (p *InvoiceEntryPipeline) aggregateConfidence(apScore PercentScore, warnings []string) UnitScore {
	score := apScore.Unit()
	switch {
	case apScore < lowConfidenceThreshold && score > lowConfidenceCap:
		score = lowConfidenceCap
	case apScore < midConfidenceThreshold && score > midConfidenceCap:
		score = midConfidenceCap
	}
	score -= warningConfidencePenalty * UnitScore(len(warnings))
	return score.Clamp()
}

func normalizeVATID(id *string) string {
	if id == nil {
		return ""
	}
	s := strings.ToUpper(strings.TrimSpace(*id))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

func isWithholding(taxType string) bool {
	t := strings.ToLower(taxType)
	return strings.Contains(t, "retenci") || strings.Contains(t, "irpf")
}
