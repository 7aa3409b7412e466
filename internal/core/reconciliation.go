package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StateCheck is the outcome of a reconciliation state-machine guard.
// Invalid means the transition must not happen; warnings are advisory.
type StateCheck struct {
	Valid    bool     `json:"valid"`
	Message  string   `json:"message,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// confirmWarningThreshold flags confirmations of low-confidence matches.
const confirmWarningThreshold = PercentScore(80)

// CanReconcile guards the creation of a new reconciliation. A confirmed
// existing reconciliation is a hard lock; everything else is structurally
// valid, with informational warnings for suspicious transactions.
func CanReconcile(tx BankTransaction, existing *BankReconciliation) StateCheck {
	if existing != nil && existing.ReconciliationStatus == ReconciliationConfirmed {
		return StateCheck{
			Valid:   false,
			Message: "la transacción ya tiene una conciliación confirmada",
		}
	}
	check := StateCheck{Valid: true}
	if tx.Amount.IsZero() {
		check.Warnings = append(check.Warnings, "la transacción tiene importe cero")
	}
	if tx.Description == "" {
		check.Warnings = append(check.Warnings, "la transacción no tiene descripción")
	}
	return check
}

// CanConfirmReconciliation allows confirmation only from matched or
// reviewed, and only with a match to confirm. Confirmed is terminal, so
// this also rejects re-confirmation.
func CanConfirmReconciliation(rec BankReconciliation) StateCheck {
	switch rec.ReconciliationStatus {
	case ReconciliationMatched, ReconciliationReviewed:
	default:
		return StateCheck{
			Valid:   false,
			Message: fmt.Sprintf("no se puede confirmar desde el estado %q", rec.ReconciliationStatus),
		}
	}
	if rec.MatchedID == nil {
		return StateCheck{Valid: false, Message: "la conciliación no tiene documento asociado"}
	}
	check := StateCheck{Valid: true}
	if rec.ConfidenceScore < confirmWarningThreshold {
		check.Warnings = append(check.Warnings,
			fmt.Sprintf("confianza %.0f%% por debajo del umbral de revisión", float64(rec.ConfidenceScore)))
	}
	return check
}

// CanRejectReconciliation allows rejection from every state except the
// terminal confirmed. Empty notes are flagged, not forbidden.
func CanRejectReconciliation(rec BankReconciliation, notes string) StateCheck {
	if rec.ReconciliationStatus == ReconciliationConfirmed {
		return StateCheck{
			Valid:   false,
			Message: "una conciliación confirmada no se puede rechazar",
		}
	}
	check := StateCheck{Valid: true}
	if notes == "" {
		check.Warnings = append(check.Warnings, "se recomienda indicar el motivo del rechazo")
	}
	return check
}

// DefaultMatchedThreshold separates auto-matched reconciliations from
// mere suggestions. Evidence from production data puts the cut between
// 75 (suggested) and 95 (matched); 90 is the default and callers can
// override it per use-case instance.
const DefaultMatchedThreshold = PercentScore(90)

// ReconcileBankTransactionUseCase creates a reconciliation record for a
// bank transaction after running the state guard.
type ReconcileBankTransactionUseCase struct {
	// MatchedThreshold is the minimum confidence for the matched status;
	// below it the reconciliation starts as suggested.
	MatchedThreshold PercentScore
}

func NewReconcileBankTransactionUseCase() *ReconcileBankTransactionUseCase {
	return &ReconcileBankTransactionUseCase{MatchedThreshold: DefaultMatchedThreshold}
}

// ReconcileInput carries everything Execute needs. Existing is the
// transaction's current reconciliation, if any.
type ReconcileInput struct {
	Transaction     BankTransaction
	Existing        *BankReconciliation
	MatchType       MatchType
	MatchedID       string
	ConfidenceScore PercentScore
	RuleID          *string
	UserID          string
}

// Execute guards and builds the reconciliation. An illegal transition
// returns a descriptive error and no record is produced.
func (uc *ReconcileBankTransactionUseCase) Execute(input ReconcileInput) (*BankReconciliation, error) {
	check := CanReconcile(input.Transaction, input.Existing)
	if !check.Valid {
		return nil, fmt.Errorf("No se puede conciliar: %s", check.Message)
	}

	status := ReconciliationSuggested
	if input.ConfidenceScore >= uc.MatchedThreshold {
		status = ReconciliationMatched
	}

	matchedID := input.MatchedID
	return &BankReconciliation{
		ID:                   uuid.NewString(),
		BankTransactionID:    input.Transaction.ID,
		MatchedType:          input.MatchType,
		MatchedID:            &matchedID,
		ReconciliationStatus: status,
		ConfidenceScore:      input.ConfidenceScore,
		RuleID:               input.RuleID,
		ReconciledBy:         input.UserID,
		CreatedAt:            time.Now().UTC(),
	}, nil
}

// maxSuggestions caps the suggestion list handed to the review UI.
const maxSuggestions = 10

// SuggestReconciliationMatchesUseCase runs the match finder over a
// centro-filtered invoice list.
type SuggestReconciliationMatchesUseCase struct {
	Options MatchOptions
}

func NewSuggestReconciliationMatchesUseCase() *SuggestReconciliationMatchesUseCase {
	return &SuggestReconciliationMatchesUseCase{Options: MatchOptions{CheckReference: true}}
}

// SuggestInput is the input for Execute. Invoices must already be
// filtered to the transaction's centro by the caller.
type SuggestInput struct {
	Transaction BankTransaction
	CentroCode  string
	Invoices    []CandidateInvoice
}

// SuggestResult carries the capped suggestion list plus the total number
// of candidates that cleared the score floor.
type SuggestResult struct {
	Suggestions []MatchCandidate `json:"suggestions"`
	TotalFound  int              `json:"total_found"`
}

func (uc *SuggestReconciliationMatchesUseCase) Execute(input SuggestInput) SuggestResult {
	candidates := FindInvoiceMatches(input.Transaction, input.Invoices, uc.Options)
	total := len(candidates)
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return SuggestResult{Suggestions: candidates, TotalFound: total}
}
