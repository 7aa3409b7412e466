package store

import (
	"context"
	"errors"
	"fmt"

	"franchise-backoffice/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReconciliationStore persists reconciliation records. The SQL guards
// here are the cross-process half of the confirmed-is-immutable
// invariant: the pure validators cannot serialize concurrent writers, so
// every status change refuses to touch a confirmed row.
type ReconciliationStore struct {
	pool *pgxpool.Pool
}

func NewReconciliationStore(pool *pgxpool.Pool) *ReconciliationStore {
	return &ReconciliationStore{pool: pool}
}

// Insert stores a freshly created reconciliation.
func (s *ReconciliationStore) Insert(ctx context.Context, rec *core.BankReconciliation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bank_reconciliations
			(id, bank_transaction_id, matched_type, matched_id,
			 reconciliation_status, confidence_score, rule_id, reconciled_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.BankTransactionID, string(rec.MatchedType), rec.MatchedID,
		string(rec.ReconciliationStatus), float64(rec.ConfidenceScore),
		rec.RuleID, rec.ReconciledBy, rec.Notes, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reconciliation %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns a reconciliation by id.
func (s *ReconciliationStore) Get(ctx context.Context, id string) (*core.BankReconciliation, error) {
	var rec core.BankReconciliation
	var matchedType, status string
	var score float64
	err := s.pool.QueryRow(ctx, `
		SELECT id, bank_transaction_id, matched_type, matched_id,
		       reconciliation_status, confidence_score, rule_id, reconciled_by, notes, created_at
		FROM bank_reconciliations
		WHERE id = $1`, id,
	).Scan(
		&rec.ID, &rec.BankTransactionID, &matchedType, &rec.MatchedID,
		&status, &score, &rec.RuleID, &rec.ReconciledBy, &rec.Notes, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reconciliation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get reconciliation %s: %w", id, err)
	}
	rec.MatchedType = core.MatchType(matchedType)
	rec.ReconciliationStatus = core.ReconciliationStatus(status)
	rec.ConfidenceScore = core.PercentScore(score)
	return &rec, nil
}

// GetByTransaction returns the latest reconciliation of a bank
// transaction, or nil when none exists yet.
func (s *ReconciliationStore) GetByTransaction(ctx context.Context, bankTransactionID string) (*core.BankReconciliation, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		SELECT id FROM bank_reconciliations
		WHERE bank_transaction_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, bankTransactionID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup reconciliation for transaction %s: %w", bankTransactionID, err)
	}
	return s.Get(ctx, id)
}

// UpdateStatus transitions a reconciliation, optionally recording notes.
// Confirmed rows are never touched; a zero-row update surfaces as an
// error so the caller learns the transition was lost to a concurrent
// confirmation or a missing row.
func (s *ReconciliationStore) UpdateStatus(ctx context.Context, id string, status core.ReconciliationStatus, notes *string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE bank_reconciliations
		SET reconciliation_status = $2,
		    notes = COALESCE($3, notes)
		WHERE id = $1 AND reconciliation_status <> 'confirmed'`,
		id, string(status), notes,
	)
	if err != nil {
		return fmt.Errorf("update reconciliation %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reconciliation %s is confirmed or does not exist", id)
	}
	return nil
}
