package store

import (
	"context"
	"errors"
	"fmt"

	"franchise-backoffice/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// BankTransactionStore reads and updates imported bank movements.
type BankTransactionStore struct {
	pool *pgxpool.Pool
}

func NewBankTransactionStore(pool *pgxpool.Pool) *BankTransactionStore {
	return &BankTransactionStore{pool: pool}
}

const bankTransactionColumns = `
	id, bank_account_id,
	to_char(transaction_date, 'YYYY-MM-DD'),
	to_char(value_date, 'YYYY-MM-DD'),
	description, reference, amount, status,
	matched_entry_id, matched_invoice_id, reconciliation_id`

func scanBankTransaction(row pgx.Row) (*core.BankTransaction, error) {
	var t core.BankTransaction
	var status string
	if err := row.Scan(
		&t.ID, &t.BankAccountID, &t.TransactionDate, &t.ValueDate,
		&t.Description, &t.Reference, &t.Amount, &status,
		&t.MatchedEntryID, &t.MatchedInvoiceID, &t.ReconciliationID,
	); err != nil {
		return nil, err
	}
	t.Status = core.BankTransactionStatus(status)
	return &t, nil
}

// Get returns a single bank transaction by id.
func (s *BankTransactionStore) Get(ctx context.Context, id string) (*core.BankTransaction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+bankTransactionColumns+` FROM bank_transactions WHERE id = $1`, id)
	t, err := scanBankTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bank transaction %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get bank transaction %s: %w", id, err)
	}
	return t, nil
}

// ListPending returns the unreconciled transactions of a bank account,
// oldest first.
func (s *BankTransactionStore) ListPending(ctx context.Context, bankAccountID string) ([]core.BankTransaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+bankTransactionColumns+`
		FROM bank_transactions
		WHERE bank_account_id = $1 AND status = 'pending'
		ORDER BY transaction_date, id`,
		bankAccountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.BankTransaction
	for rows.Next() {
		t, err := scanBankTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bank transaction: %w", err)
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

// MarkReconciled flags a pending transaction as reconciled and records
// the match. The status filter in the UPDATE makes double reconciliation
// of the same transaction a no-row error instead of a silent overwrite.
func (s *BankTransactionStore) MarkReconciled(ctx context.Context, txID, reconciliationID string, matchType core.MatchType, matchedID string) error {
	var entryID, invoiceID *string
	switch matchType {
	case core.MatchTypeEntry:
		entryID = &matchedID
	default:
		invoiceID = &matchedID
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE bank_transactions
		SET status = 'reconciled',
		    reconciliation_id = $2,
		    matched_entry_id = $3,
		    matched_invoice_id = $4
		WHERE id = $1 AND status = 'pending'`,
		txID, reconciliationID, entryID, invoiceID,
	)
	if err != nil {
		return fmt.Errorf("mark transaction %s reconciled: %w", txID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s is not pending", txID)
	}
	return nil
}
