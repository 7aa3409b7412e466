package app

import (
	"context"

	"franchise-backoffice/internal/core"
)

// ApplicationService is the single interface all adapters call. It
// decouples presentation from the engine: implementations contain no
// display logic of any kind.
type ApplicationService interface {
	// ValidateInvoice runs the invoice entry pipeline and returns the
	// accumulated result for auto-posting or manual review.
	ValidateInvoice(ctx context.Context, req ValidateInvoiceRequest) (*core.ValidationResult, error)

	// ValidateJournalEntry runs the fail-fast double-entry gate over a
	// journal entry. A nil error means the entry may be posted.
	ValidateJournalEntry(ctx context.Context, entry core.JournalEntry) error

	// ReconcileDocumentTotals checks a document's declared totals against
	// totals recomputed from its line items.
	ReconcileDocumentTotals(ctx context.Context, req ReconcileTotalsRequest) (*core.ReconcileResult, error)

	// SuggestMatches scores the given centro-filtered invoices against a
	// pending bank transaction.
	SuggestMatches(ctx context.Context, req SuggestMatchesRequest) (*SuggestMatchesResult, error)

	// ApplyRules runs the active reconciliation rules over a bank
	// transaction. A nil rule means nothing matched.
	ApplyRules(ctx context.Context, bankTransactionID string) (*core.ReconciliationRule, error)

	// ReconcileTransaction creates and persists a reconciliation for a
	// pending bank transaction.
	ReconcileTransaction(ctx context.Context, req ReconcileRequest) (*ReconcileResult, error)

	// ConfirmReconciliation advances a matched or reviewed reconciliation
	// to the terminal confirmed state.
	ConfirmReconciliation(ctx context.Context, reconciliationID string) (*TransitionResult, error)

	// RejectReconciliation terminates a reconciliation at rejected.
	RejectReconciliation(ctx context.Context, reconciliationID, notes string) (*TransitionResult, error)

	// GetReconciliation returns a reconciliation by id.
	GetReconciliation(ctx context.Context, reconciliationID string) (*core.BankReconciliation, error)

	// ListPendingTransactions returns a bank account's unreconciled
	// transactions, oldest first.
	ListPendingTransactions(ctx context.Context, bankAccountID string) (*PendingTransactionsResult, error)

	// ListActiveRules returns the active rules, priority first.
	ListActiveRules(ctx context.Context) (*RulesResult, error)
}
