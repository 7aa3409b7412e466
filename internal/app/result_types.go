package app

import "franchise-backoffice/internal/core"

// SuggestMatchesResult is returned by SuggestMatches.
type SuggestMatchesResult struct {
	BankTransactionID string                `json:"bank_transaction_id"`
	Suggestions       []core.MatchCandidate `json:"suggestions"`
	TotalFound        int                   `json:"total_found"`
}

// ReconcileResult is returned by ReconcileTransaction.
type ReconcileResult struct {
	Reconciliation *core.BankReconciliation `json:"reconciliation"`
	Warnings       []string                 `json:"warnings,omitempty"`
}

// TransitionResult is returned by Confirm/RejectReconciliation.
type TransitionResult struct {
	Reconciliation *core.BankReconciliation `json:"reconciliation"`
	Warnings       []string                 `json:"warnings,omitempty"`
}

// PendingTransactionsResult is returned by ListPendingTransactions.
type PendingTransactionsResult struct {
	BankAccountID string                 `json:"bank_account_id"`
	Transactions  []core.BankTransaction `json:"transactions"`
}

// RulesResult is returned by ListActiveRules.
type RulesResult struct {
	Rules []core.ReconciliationRule `json:"rules"`
}
