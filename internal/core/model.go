package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// PercentScore is a confidence score on the 0–100 scale used by AP mappings
// and bank reconciliations.
type PercentScore float64

// UnitScore is a confidence score on the 0–1 scale used by invoice
// validation results. The two scales never mix: Unit is the only conversion
// point between them.
type UnitScore float64

// Unit converts a 0–100 score to the 0–1 scale.
func (p PercentScore) Unit() UnitScore {
	return UnitScore(float64(p) / 100)
}

// Clamp bounds a unit score to [0, 1].
func (u UnitScore) Clamp() UnitScore {
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}

type MovementType string

const (
	Debit  MovementType = "debit"
	Credit MovementType = "credit"
)

// Transaction is a single debit or credit line within a journal entry.
// Amounts are always positive; the direction lives in MovementType.
type Transaction struct {
	AccountCode  string          `json:"account_code"`
	MovementType MovementType    `json:"movement_type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
}

// JournalEntry is a dated set of transaction lines for one centro.
type JournalEntry struct {
	EntryDate    string        `json:"entry_date"` // YYYY-MM-DD
	Description  string        `json:"description"`
	CentroCode   string        `json:"centro_code"`
	Transactions []Transaction `json:"transactions"`
}

// EntryTotals is the result of summing an entry's lines.
type EntryTotals struct {
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Difference decimal.Decimal `json:"difference"`
	IsBalanced bool            `json:"is_balanced"`
}

// Party identifies the issuer or receiver of an invoice.
type Party struct {
	Name  *string `json:"name,omitempty"`
	VATID *string `json:"vat_id,omitempty"`
}

// OtherTax is an itemized non-VAT tax or surcharge on an invoice
// (e.g. IRPF withholding, punto verde).
type OtherTax struct {
	Type   string           `json:"type"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// InvoiceTotals carries the monetary breakdown of a normalized invoice.
// Fields are pointers because the upstream extractor may omit any of them.
type InvoiceTotals struct {
	Base10     *decimal.Decimal `json:"base_10,omitempty"`
	VAT10      *decimal.Decimal `json:"vat_10,omitempty"`
	Base21     *decimal.Decimal `json:"base_21,omitempty"`
	VAT21      *decimal.Decimal `json:"vat_21,omitempty"`
	OtherTaxes []OtherTax       `json:"other_taxes,omitempty"`
	Total      *decimal.Decimal `json:"total,omitempty"`
	Currency   string           `json:"currency"`
}

// NormalizedInvoice is the OCR-normalized invoice handed to the engine.
// It is produced upstream and consumed read-only here.
type NormalizedInvoice struct {
	Issuer        Party         `json:"issuer"`
	Receiver      Party         `json:"receiver"`
	InvoiceNumber *string       `json:"invoice_number,omitempty"`
	IssueDate     *string       `json:"issue_date,omitempty"` // YYYY-MM-DD
	Totals        InvoiceTotals `json:"totals"`
}

// APMappingLevel is the invoice-level account suggestion.
type APMappingLevel struct {
	AccountSuggestion string       `json:"account_suggestion"`
	TaxAccount        string       `json:"tax_account"`
	APAccount         string       `json:"ap_account"`
	CentreID          string       `json:"centre_id"`
	ConfidenceScore   PercentScore `json:"confidence_score"`
}

// APLineMapping is a per-line account suggestion.
type APLineMapping struct {
	LineIndex         int          `json:"line_index"`
	AccountSuggestion string       `json:"account_suggestion"`
	ConfidenceScore   PercentScore `json:"confidence_score"`
}

// APMapping is a suggested account assignment for an invoice. It is advice,
// not a commitment: the pipeline validates it before anything is posted.
type APMapping struct {
	InvoiceLevel APMappingLevel  `json:"invoice_level"`
	LineLevel    []APLineMapping `json:"line_level,omitempty"`
}

// LedgerLine is one line of a posting preview.
type LedgerLine struct {
	AccountCode  string          `json:"account_code"`
	MovementType MovementType    `json:"movement_type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
}

// ValidationResult is the accumulated outcome of the invoice entry
// pipeline. It is transient: the caller decides whether to auto-post or
// queue the invoice for manual review.
type ValidationResult struct {
	ReadyToPost     bool         `json:"ready_to_post"`
	BlockingIssues  []string     `json:"blocking_issues"`
	Warnings        []string     `json:"warnings"`
	ConfidenceScore UnitScore    `json:"confidence_score"`
	PostPreview     []LedgerLine `json:"post_preview"`
}

type BankTransactionStatus string

const (
	BankTransactionPending    BankTransactionStatus = "pending"
	BankTransactionReconciled BankTransactionStatus = "reconciled"
)

// BankTransaction is a bank statement movement. Amount is signed: negative
// is an outflow (debit), zero or positive an inflow (credit).
type BankTransaction struct {
	ID               string                `json:"id"`
	BankAccountID    string                `json:"bank_account_id"`
	TransactionDate  string                `json:"transaction_date"` // YYYY-MM-DD
	ValueDate        string                `json:"value_date"`
	Description      string                `json:"description"`
	Reference        *string               `json:"reference,omitempty"`
	Amount           decimal.Decimal       `json:"amount"`
	Status           BankTransactionStatus `json:"status"`
	MatchedEntryID   *string               `json:"matched_entry_id,omitempty"`
	MatchedInvoiceID *string               `json:"matched_invoice_id,omitempty"`
	ReconciliationID *string               `json:"reconciliation_id,omitempty"`
}

// Type derives the movement type from the signed amount.
func (t BankTransaction) Type() MovementType {
	if t.Amount.IsNegative() {
		return Debit
	}
	return Credit
}

// ReconciliationRule auto-classifies bank transactions. Rules are created
// and edited in the UI; the engine only reads them.
type ReconciliationRule struct {
	ID                  string           `json:"id"`
	RuleName            string           `json:"rule_name"`
	TransactionType     *MovementType    `json:"transaction_type,omitempty"`
	DescriptionPattern  *string          `json:"description_pattern,omitempty"`
	AmountMin           *decimal.Decimal `json:"amount_min,omitempty"`
	AmountMax           *decimal.Decimal `json:"amount_max,omitempty"`
	AutoMatchType       string           `json:"auto_match_type"`
	SuggestedAccount    *string          `json:"suggested_account,omitempty"`
	ConfidenceThreshold PercentScore     `json:"confidence_threshold"`
	Active              bool             `json:"active"`
	Priority            int              `json:"priority"`
}

type ReconciliationStatus string

const (
	ReconciliationPending   ReconciliationStatus = "pending"
	ReconciliationSuggested ReconciliationStatus = "suggested"
	ReconciliationMatched   ReconciliationStatus = "matched"
	ReconciliationReviewed  ReconciliationStatus = "reviewed"
	ReconciliationConfirmed ReconciliationStatus = "confirmed"
	ReconciliationRejected  ReconciliationStatus = "rejected"
)

type MatchType string

const (
	MatchTypeInvoice MatchType = "invoice"
	MatchTypeEntry   MatchType = "entry"
)

// BankReconciliation links a bank transaction to the accounting document
// that explains it. Once confirmed it is immutable.
type BankReconciliation struct {
	ID                   string               `json:"id"`
	BankTransactionID    string               `json:"bank_transaction_id"`
	MatchedType          MatchType            `json:"matched_type"`
	MatchedID            *string              `json:"matched_id,omitempty"`
	ReconciliationStatus ReconciliationStatus `json:"reconciliation_status"`
	ConfidenceScore      PercentScore         `json:"confidence_score"`
	RuleID               *string              `json:"rule_id,omitempty"`
	ReconciledBy         string               `json:"reconciled_by"`
	Notes                *string              `json:"notes,omitempty"`
	CreatedAt            time.Time            `json:"created_at"`
}

// MatchCandidate is a scored invoice candidate for a bank transaction.
// Pure finder output, never persisted.
type MatchCandidate struct {
	MatchedID       string       `json:"matched_id"`
	ConfidenceScore PercentScore `json:"confidence_score"`
	MatchReasons    []string     `json:"match_reasons"`
}

// CandidateInvoice is the slice of invoice data the match finder needs.
type CandidateInvoice struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	IssueDate     string          `json:"issue_date"` // YYYY-MM-DD
	Total         decimal.Decimal `json:"total"`
}

// FiscalYearStatus reports whether a centro's fiscal year can receive
// postings.
type FiscalYearStatus struct {
	Exists   bool   `json:"exists"`
	IsClosed bool   `json:"is_closed"`
	Year     int    `json:"year"`
	Message  string `json:"message"`
}
