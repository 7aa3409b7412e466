package app

import (
	"context"
	"fmt"

	"franchise-backoffice/internal/core"
)

// Store interfaces the service depends on. internal/store provides the
// PostgreSQL implementations; tests substitute in-memory fakes.

type BankTransactionStore interface {
	Get(ctx context.Context, id string) (*core.BankTransaction, error)
	ListPending(ctx context.Context, bankAccountID string) ([]core.BankTransaction, error)
	MarkReconciled(ctx context.Context, txID, reconciliationID string, matchType core.MatchType, matchedID string) error
}

type ReconciliationStore interface {
	Insert(ctx context.Context, rec *core.BankReconciliation) error
	Get(ctx context.Context, id string) (*core.BankReconciliation, error)
	GetByTransaction(ctx context.Context, bankTransactionID string) (*core.BankReconciliation, error)
	UpdateStatus(ctx context.Context, id string, status core.ReconciliationStatus, notes *string) error
}

type RuleStore interface {
	ListActive(ctx context.Context) ([]core.ReconciliationRule, error)
}

// AppService implements ApplicationService on top of the engine and the
// stores.
type AppService struct {
	pipeline     *core.InvoiceEntryPipeline
	reconcileUC  *core.ReconcileBankTransactionUseCase
	suggestUC    *core.SuggestReconciliationMatchesUseCase
	transactions BankTransactionStore
	rules        RuleStore
	recs         ReconciliationStore
}

func NewAppService(
	pipeline *core.InvoiceEntryPipeline,
	transactions BankTransactionStore,
	rules RuleStore,
	recs ReconciliationStore,
) *AppService {
	return &AppService{
		pipeline:     pipeline,
		reconcileUC:  core.NewReconcileBankTransactionUseCase(),
		suggestUC:    core.NewSuggestReconciliationMatchesUseCase(),
		transactions: transactions,
		rules:        rules,
		recs:         recs,
	}
}

func (s *AppService) ValidateInvoice(ctx context.Context, req ValidateInvoiceRequest) (*core.ValidationResult, error) {
	result := s.pipeline.Validate(ctx, req.Invoice, req.Mapping, req.CentroCode)
	return &result, nil
}

func (s *AppService) ValidateJournalEntry(_ context.Context, entry core.JournalEntry) error {
	return core.ValidateEntry(entry)
}

func (s *AppService) ReconcileDocumentTotals(_ context.Context, req ReconcileTotalsRequest) (*core.ReconcileResult, error) {
	result := core.ReconcileTotals(req.Declared, req.Lines, req.Fees)
	return &result, nil
}

func (s *AppService) SuggestMatches(ctx context.Context, req SuggestMatchesRequest) (*SuggestMatchesResult, error) {
	tx, err := s.transactions.Get(ctx, req.BankTransactionID)
	if err != nil {
		return nil, err
	}
	result := s.suggestUC.Execute(core.SuggestInput{
		Transaction: *tx,
		CentroCode:  req.CentroCode,
		Invoices:    req.Invoices,
	})
	return &SuggestMatchesResult{
		BankTransactionID: tx.ID,
		Suggestions:       result.Suggestions,
		TotalFound:        result.TotalFound,
	}, nil
}

func (s *AppService) ApplyRules(ctx context.Context, bankTransactionID string) (*core.ReconciliationRule, error) {
	tx, err := s.transactions.Get(ctx, bankTransactionID)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return core.ApplyReconciliationRules(*tx, rules), nil
}

// ReconcileTransaction runs the use-case guard, persists the record and
// marks the bank transaction reconciled.
func (s *AppService) ReconcileTransaction(ctx context.Context, req ReconcileRequest) (*ReconcileResult, error) {
	tx, err := s.transactions.Get(ctx, req.BankTransactionID)
	if err != nil {
		return nil, err
	}
	existing, err := s.recs.GetByTransaction(ctx, req.BankTransactionID)
	if err != nil {
		return nil, err
	}

	check := core.CanReconcile(*tx, existing)
	rec, err := s.reconcileUC.Execute(core.ReconcileInput{
		Transaction:     *tx,
		Existing:        existing,
		MatchType:       req.MatchType,
		MatchedID:       req.MatchedID,
		ConfidenceScore: req.ConfidenceScore,
		RuleID:          req.RuleID,
		UserID:          req.UserID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.recs.Insert(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.transactions.MarkReconciled(ctx, tx.ID, rec.ID, rec.MatchedType, req.MatchedID); err != nil {
		return nil, err
	}
	return &ReconcileResult{Reconciliation: rec, Warnings: check.Warnings}, nil
}

func (s *AppService) ConfirmReconciliation(ctx context.Context, reconciliationID string) (*TransitionResult, error) {
	rec, err := s.recs.Get(ctx, reconciliationID)
	if err != nil {
		return nil, err
	}
	check := core.CanConfirmReconciliation(*rec)
	if !check.Valid {
		return nil, fmt.Errorf("no se puede confirmar la conciliación %s: %s", reconciliationID, check.Message)
	}
	if err := s.recs.UpdateStatus(ctx, reconciliationID, core.ReconciliationConfirmed, nil); err != nil {
		return nil, err
	}
	rec.ReconciliationStatus = core.ReconciliationConfirmed
	return &TransitionResult{Reconciliation: rec, Warnings: check.Warnings}, nil
}

func (s *AppService) RejectReconciliation(ctx context.Context, reconciliationID, notes string) (*TransitionResult, error) {
	rec, err := s.recs.Get(ctx, reconciliationID)
	if err != nil {
		return nil, err
	}
	check := core.CanRejectReconciliation(*rec, notes)
	if !check.Valid {
		return nil, fmt.Errorf("no se puede rechazar la conciliación %s: %s", reconciliationID, check.Message)
	}
	var notesPtr *string
	if notes != "" {
		notesPtr = &notes
	}
	if err := s.recs.UpdateStatus(ctx, reconciliationID, core.ReconciliationRejected, notesPtr); err != nil {
		return nil, err
	}
	rec.ReconciliationStatus = core.ReconciliationRejected
	rec.Notes = notesPtr
	return &TransitionResult{Reconciliation: rec, Warnings: check.Warnings}, nil
}

func (s *AppService) GetReconciliation(ctx context.Context, reconciliationID string) (*core.BankReconciliation, error) {
	return s.recs.Get(ctx, reconciliationID)
}

func (s *AppService) ListPendingTransactions(ctx context.Context, bankAccountID string) (*PendingTransactionsResult, error) {
	txs, err := s.transactions.ListPending(ctx, bankAccountID)
	if err != nil {
		return nil, err
	}
	return &PendingTransactionsResult{BankAccountID: bankAccountID, Transactions: txs}, nil
}

func (s *AppService) ListActiveRules(ctx context.Context) (*RulesResult, error) {
	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return &RulesResult{Rules: rules}, nil
}
