package store

import (
	"context"
	"fmt"

	"franchise-backoffice/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RuleStore reads reconciliation rules. Rules are written by the UI;
// the engine only consumes them.
type RuleStore struct {
	pool *pgxpool.Pool
}

func NewRuleStore(pool *pgxpool.Pool) *RuleStore {
	return &RuleStore{pool: pool}
}

// ListActive returns the active rules ordered by priority descending and
// then id, so the in-memory matcher sees a deterministic list.
func (s *RuleStore) ListActive(ctx context.Context) ([]core.ReconciliationRule, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, rule_name, transaction_type, description_pattern,
		       amount_min, amount_max, auto_match_type, suggested_account,
		       confidence_threshold, active, priority
		FROM reconciliation_rules
		WHERE active = true
		ORDER BY priority DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list active rules: %w", err)
	}
	defer rows.Close()

	var rules []core.ReconciliationRule
	for rows.Next() {
		var r core.ReconciliationRule
		var transactionType *string
		if err := rows.Scan(
			&r.ID, &r.RuleName, &transactionType, &r.DescriptionPattern,
			&r.AmountMin, &r.AmountMax, &r.AutoMatchType, &r.SuggestedAccount,
			&r.ConfidenceThreshold, &r.Active, &r.Priority,
		); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		if transactionType != nil {
			mt := core.MovementType(*transactionType)
			r.TransactionType = &mt
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}
