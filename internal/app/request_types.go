package app

import "franchise-backoffice/internal/core"

// ValidateInvoiceRequest is the input for ValidateInvoice.
type ValidateInvoiceRequest struct {
	Invoice    core.NormalizedInvoice `json:"invoice"`
	Mapping    core.APMapping         `json:"mapping"`
	CentroCode string                 `json:"centro_code"`
}

// ReconcileTotalsRequest is the input for ReconcileDocumentTotals.
type ReconcileTotalsRequest struct {
	Declared core.DeclaredTotals  `json:"declared"`
	Lines    []core.VATLineTotals `json:"totals_by_vat"`
	Fees     core.DocumentFees    `json:"fees"`
}

// SuggestMatchesRequest is the input for SuggestMatches. Invoices must
// already be filtered to the transaction's centro by the caller.
type SuggestMatchesRequest struct {
	BankTransactionID string                  `json:"bank_transaction_id"`
	CentroCode        string                  `json:"centro_code"`
	Invoices          []core.CandidateInvoice `json:"invoices"`
}

// ReconcileRequest is the input for ReconcileTransaction.
type ReconcileRequest struct {
	BankTransactionID string            `json:"bank_transaction_id"`
	MatchType         core.MatchType    `json:"match_type"`
	MatchedID         string            `json:"matched_id"`
	ConfidenceScore   core.PercentScore `json:"confidence_score"`
	RuleID            *string           `json:"rule_id,omitempty"`
	UserID            string            `json:"user_id"`
}
