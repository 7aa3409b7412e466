package core

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Additive match-score weights. An amount+date+reference hit reaches 100;
// anything under the floor is dropped entirely rather than ranked low.
const (
	scoreAmountExact = PercentScore(50)
	scoreAmountClose = PercentScore(30)
	scoreDateExact   = PercentScore(30)
	scoreDateClose   = PercentScore(15)
	scoreReference   = PercentScore(20)
	scoreFloor       = PercentScore(40)
)

// MatchOptions tune the finder's heuristics. Zero-value fields fall back
// to the defaults below.
type MatchOptions struct {
	AmountTolerance   decimal.Decimal
	DateToleranceDays int
	CheckReference    bool
}

var defaultAmountTolerance = decimal.RequireFromString("1.00")

const defaultDateToleranceDays = 5

func (o MatchOptions) withDefaults() MatchOptions {
	if o.AmountTolerance.IsZero() {
		o.AmountTolerance = defaultAmountTolerance
	}
	if o.DateToleranceDays == 0 {
		o.DateToleranceDays = defaultDateToleranceDays
	}
	return o
}

// FindInvoiceMatches fuzzy-scores a bank transaction against candidate
// invoices. Each heuristic contributes independently: amount proximity,
// date proximity, and (optionally) the invoice number appearing in the
// transaction's reference or description. Results come back sorted by
// score descending; equal scores keep their input order.
func FindInvoiceMatches(tx BankTransaction, invoices []CandidateInvoice, opts MatchOptions) []MatchCandidate {
	opts = opts.withDefaults()
	txAmount := tx.Amount.Abs()
	txDate, txDateOK := parseISODate(tx.TransactionDate)

	var candidates []MatchCandidate
	for _, inv := range invoices {
		var score PercentScore
		var reasons []string

		amountDiff := txAmount.Sub(inv.Total).Abs()
		switch {
		case amountDiff.IsZero():
			score += scoreAmountExact
			reasons = append(reasons, "Importe exacto")
		case amountDiff.LessThanOrEqual(opts.AmountTolerance):
			score += scoreAmountClose
			reasons = append(reasons, "Importe muy cercano")
		}

		if invDate, ok := parseISODate(inv.IssueDate); ok && txDateOK {
			days := daysBetween(txDate, invDate)
			switch {
			case days == 0:
				score += scoreDateExact
				reasons = append(reasons, "Fecha exacta")
			case days <= opts.DateToleranceDays:
				score += scoreDateClose
				reasons = append(reasons, "Fecha cercana")
			}
		}

		if opts.CheckReference && referenceMentions(tx, inv.InvoiceNumber) {
			score += scoreReference
			reasons = append(reasons, "Referencia coincide")
		}

		if score < scoreFloor {
			continue
		}
		candidates = append(candidates, MatchCandidate{
			MatchedID:       inv.ID,
			ConfidenceScore: score,
			MatchReasons:    reasons,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ConfidenceScore > candidates[j].ConfidenceScore
	})
	return candidates
}

// referenceMentions reports whether the transaction's reference or
// description contains the invoice number, case-insensitively and with
// whitespace stripped from both sides of the comparison.
func referenceMentions(tx BankTransaction, invoiceNumber string) bool {
	needle := squash(invoiceNumber)
	if needle == "" {
		return false
	}
	if tx.Reference != nil && strings.Contains(squash(*tx.Reference), needle) {
		return true
	}
	return strings.Contains(squash(tx.Description), needle)
}

func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func parseISODate(s string) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", s)
	return d, err == nil
}

func daysBetween(a, b time.Time) int {
	days := int(a.Sub(b).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
