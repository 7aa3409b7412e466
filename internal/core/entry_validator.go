package core

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Validation error codes for journal entries.
const (
	CodeUnbalancedEntry     = "UNBALANCED_ENTRY"
	CodeInsufficientLines   = "INSUFFICIENT_LINES"
	CodeNegativeAmounts     = "NEGATIVE_AMOUNTS"
	CodeInvalidAccountCode  = "INVALID_ACCOUNT_CODE"
	CodeMissingMovementType = "MISSING_MOVEMENT_TYPE"
	CodeMissingDate         = "MISSING_DATE"
	CodeMissingDescription  = "MISSING_DESCRIPTION"
)

// EntryError is a journal-entry validation failure with a stable code.
type EntryError struct {
	Code    string
	Message string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func entryError(code, format string, args ...any) *EntryError {
	return &EntryError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// accountCodePattern is the 7-digit Spanish chart-of-accounts code shape.
var accountCodePattern = regexp.MustCompile(`^\d{7}$`)

// balanceTolerance is the maximum admissible |debit − credit| on an entry.
var balanceTolerance = decimal.RequireFromString("0.01")

// CalculateTotals sums debit and credit lines separately, rounded to 2
// decimals. The entry balances when the absolute difference stays under
// one cent.
func CalculateTotals(transactions []Transaction) EntryTotals {
	debit := decimal.Zero
	credit := decimal.Zero
	for _, tx := range transactions {
		if tx.MovementType == Debit {
			debit = debit.Add(tx.Amount)
		} else {
			credit = credit.Add(tx.Amount)
		}
	}
	debit = debit.Round(2)
	credit = credit.Round(2)
	diff := debit.Sub(credit)
	return EntryTotals{
		Debit:      debit,
		Credit:     credit,
		Difference: diff,
		IsBalanced: diff.Abs().LessThan(balanceTolerance),
	}
}

// ValidateBalance fails with UNBALANCED_ENTRY when debits and credits
// diverge by a cent or more.
func ValidateBalance(transactions []Transaction) error {
	totals := CalculateTotals(transactions)
	if !totals.IsBalanced {
		return entryError(CodeUnbalancedEntry,
			"debe %s no cuadra con haber %s (diferencia %s)",
			totals.Debit.StringFixed(2), totals.Credit.StringFixed(2), totals.Difference.StringFixed(2))
	}
	return nil
}

// ValidateMinimumLines enforces the double-entry minimum of two lines.
func ValidateMinimumLines(transactions []Transaction) error {
	if len(transactions) < 2 {
		return entryError(CodeInsufficientLines,
			"el asiento necesita al menos 2 líneas, tiene %d", len(transactions))
	}
	return nil
}

// ValidatePositiveAmounts rejects any line whose amount is zero or
// negative. Direction is carried by the movement type, never by sign.
func ValidatePositiveAmounts(transactions []Transaction) error {
	for _, tx := range transactions {
		if !tx.Amount.IsPositive() {
			return entryError(CodeNegativeAmounts,
				"importe no positivo %s en cuenta %s", tx.Amount.String(), tx.AccountCode)
		}
	}
	return nil
}

// ValidateAccountCodes requires every line to carry a 7-digit PGC code.
func ValidateAccountCodes(transactions []Transaction) error {
	for _, tx := range transactions {
		if !accountCodePattern.MatchString(tx.AccountCode) {
			return entryError(CodeInvalidAccountCode,
				"código de cuenta inválido %q (se esperan 7 dígitos)", tx.AccountCode)
		}
	}
	return nil
}

// ValidateBothMovementTypes requires at least one debit and one credit line.
func ValidateBothMovementTypes(transactions []Transaction) error {
	var hasDebit, hasCredit bool
	for _, tx := range transactions {
		switch tx.MovementType {
		case Debit:
			hasDebit = true
		case Credit:
			hasCredit = true
		}
	}
	if !hasDebit || !hasCredit {
		return entryError(CodeMissingMovementType,
			"el asiento necesita al menos una línea al debe y una al haber")
	}
	return nil
}

// ValidateEntry runs the composite entry check and returns the first
// failure: header fields first, then the five transaction-level checks.
// Unlike the invoice pipeline this is a single pass/fail gate, so it
// fails fast rather than accumulating findings.
func ValidateEntry(entry JournalEntry) error {
	if entry.EntryDate == "" {
		return entryError(CodeMissingDate, "el asiento no tiene fecha")
	}
	if entry.Description == "" {
		return entryError(CodeMissingDescription, "el asiento no tiene descripción")
	}
	checks := []func([]Transaction) error{
		ValidateMinimumLines,
		ValidatePositiveAmounts,
		ValidateAccountCodes,
		ValidateBothMovementTypes,
		ValidateBalance,
	}
	for _, check := range checks {
		if err := check(entry.Transactions); err != nil {
			return err
		}
	}
	return nil
}
