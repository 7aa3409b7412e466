package core_test

import (
	"fmt"
	"strings"
	"testing"

	"franchise-backoffice/internal/core"
)

func reconciliation(status core.ReconciliationStatus, score core.PercentScore) core.BankReconciliation {
	matchedID := "inv-1"
	return core.BankReconciliation{
		ID:                   "rec-1",
		BankTransactionID:    "tx-1",
		MatchedType:          core.MatchTypeInvoice,
		MatchedID:            &matchedID,
		ReconciliationStatus: status,
		ConfidenceScore:      score,
		ReconciledBy:         "user-1",
	}
}

func TestCanReconcile(t *testing.T) {
	tx := bankTx("-121.00", "2025-03-10", "RECIBO", nil)

	t.Run("no existing reconciliation", func(t *testing.T) {
		check := core.CanReconcile(tx, nil)
		if !check.Valid {
			t.Errorf("expected valid, got %q", check.Message)
		}
	})

	t.Run("confirmed existing is a hard lock", func(t *testing.T) {
		existing := reconciliation(core.ReconciliationConfirmed, 95)
		check := core.CanReconcile(tx, &existing)
		if check.Valid {
			t.Error("expected invalid against a confirmed reconciliation")
		}
	})

	t.Run("rejected existing allows a new attempt", func(t *testing.T) {
		existing := reconciliation(core.ReconciliationRejected, 40)
		check := core.CanReconcile(tx, &existing)
		if !check.Valid {
			t.Errorf("expected valid, got %q", check.Message)
		}
	})

	t.Run("zero amount and empty description warn", func(t *testing.T) {
		odd := bankTx("0.00", "2025-03-10", "", nil)
		check := core.CanReconcile(odd, nil)
		if !check.Valid {
			t.Errorf("warnings must not invalidate, got %q", check.Message)
		}
		if len(check.Warnings) != 2 {
			t.Errorf("warnings = %v, want 2", check.Warnings)
		}
	})
}

func TestCanConfirmReconciliation(t *testing.T) {
	for _, status := range []core.ReconciliationStatus{
		core.ReconciliationMatched,
		core.ReconciliationReviewed,
	} {
		t.Run("valid from "+string(status), func(t *testing.T) {
			check := core.CanConfirmReconciliation(reconciliation(status, 95))
			if !check.Valid {
				t.Errorf("expected valid from %s, got %q", status, check.Message)
			}
		})
	}

	for _, status := range []core.ReconciliationStatus{
		core.ReconciliationPending,
		core.ReconciliationSuggested,
		core.ReconciliationConfirmed,
		core.ReconciliationRejected,
	} {
		t.Run("invalid from "+string(status), func(t *testing.T) {
			check := core.CanConfirmReconciliation(reconciliation(status, 95))
			if check.Valid {
				t.Errorf("expected invalid from %s", status)
			}
			if !strings.Contains(check.Message, string(status)) {
				t.Errorf("message %q does not name the illegal status %s", check.Message, status)
			}
		})
	}

	t.Run("nil matched id invalid", func(t *testing.T) {
		rec := reconciliation(core.ReconciliationMatched, 95)
		rec.MatchedID = nil
		if check := core.CanConfirmReconciliation(rec); check.Valid {
			t.Error("expected invalid without a matched document")
		}
	})

	t.Run("low confidence warns but stays valid", func(t *testing.T) {
		check := core.CanConfirmReconciliation(reconciliation(core.ReconciliationMatched, 60))
		if !check.Valid {
			t.Errorf("expected valid, got %q", check.Message)
		}
		if len(check.Warnings) != 1 {
			t.Errorf("warnings = %v, want 1", check.Warnings)
		}
	})
}

func TestCanRejectReconciliation(t *testing.T) {
	t.Run("invalid only from confirmed", func(t *testing.T) {
		check := core.CanRejectReconciliation(reconciliation(core.ReconciliationConfirmed, 95), "duplicado")
		if check.Valid {
			t.Error("expected invalid from confirmed")
		}
	})

	for _, status := range []core.ReconciliationStatus{
		core.ReconciliationPending,
		core.ReconciliationSuggested,
		core.ReconciliationMatched,
		core.ReconciliationReviewed,
		core.ReconciliationRejected,
	} {
		t.Run("valid from "+string(status), func(t *testing.T) {
			check := core.CanRejectReconciliation(reconciliation(status, 95), "motivo")
			if !check.Valid {
				t.Errorf("expected valid from %s, got %q", status, check.Message)
			}
		})
	}

	t.Run("empty notes warn", func(t *testing.T) {
		check := core.CanRejectReconciliation(reconciliation(core.ReconciliationMatched, 95), "")
		if !check.Valid {
			t.Errorf("expected valid, got %q", check.Message)
		}
		if len(check.Warnings) != 1 {
			t.Errorf("warnings = %v, want 1", check.Warnings)
		}
	})
}

func TestReconcileBankTransactionUseCase(t *testing.T) {
	tx := bankTx("-121.00", "2025-03-10", "RECIBO", nil)

	tests := []struct {
		score      core.PercentScore
		wantStatus core.ReconciliationStatus
	}{
		{95, core.ReconciliationMatched},
		{90, core.ReconciliationMatched},
		{89, core.ReconciliationSuggested},
		{75, core.ReconciliationSuggested},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("score %.0f", float64(tt.score)), func(t *testing.T) {
			uc := core.NewReconcileBankTransactionUseCase()
			rec, err := uc.Execute(core.ReconcileInput{
				Transaction:     tx,
				MatchType:       core.MatchTypeInvoice,
				MatchedID:       "inv-1",
				ConfidenceScore: tt.score,
				UserID:          "user-1",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.ReconciliationStatus != tt.wantStatus {
				t.Errorf("status = %s, want %s", rec.ReconciliationStatus, tt.wantStatus)
			}
			if rec.ID == "" {
				t.Error("expected a generated id")
			}
			if rec.MatchedID == nil || *rec.MatchedID != "inv-1" {
				t.Errorf("matched id = %v, want inv-1", rec.MatchedID)
			}
		})
	}

	t.Run("custom threshold", func(t *testing.T) {
		uc := &core.ReconcileBankTransactionUseCase{MatchedThreshold: 80}
		rec, err := uc.Execute(core.ReconcileInput{
			Transaction:     tx,
			MatchType:       core.MatchTypeInvoice,
			MatchedID:       "inv-1",
			ConfidenceScore: 85,
			UserID:          "user-1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.ReconciliationStatus != core.ReconciliationMatched {
			t.Errorf("status = %s, want matched at lowered threshold", rec.ReconciliationStatus)
		}
	})

	t.Run("confirmed lock makes Execute fail before any mutation", func(t *testing.T) {
		existing := reconciliation(core.ReconciliationConfirmed, 95)
		uc := core.NewReconcileBankTransactionUseCase()
		rec, err := uc.Execute(core.ReconcileInput{
			Transaction:     tx,
			Existing:        &existing,
			MatchType:       core.MatchTypeInvoice,
			MatchedID:       "inv-2",
			ConfidenceScore: 99,
			UserID:          "user-1",
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if rec != nil {
			t.Error("no record must be produced on an illegal transition")
		}
		if !strings.HasPrefix(err.Error(), "No se puede conciliar:") {
			t.Errorf("error %q missing descriptive prefix", err)
		}
	})
}

func TestSuggestReconciliationMatchesUseCase(t *testing.T) {
	tx := bankTx("-50.00", "2025-03-10", "PAGO", nil)

	var invoices []core.CandidateInvoice
	for i := 0; i < 15; i++ {
		invoices = append(invoices, invoice(
			fmt.Sprintf("inv-%02d", i), fmt.Sprintf("F-%02d", i), "2025-03-10", "50.00"))
	}

	uc := core.NewSuggestReconciliationMatchesUseCase()
	result := uc.Execute(core.SuggestInput{Transaction: tx, CentroCode: "C001", Invoices: invoices})

	if result.TotalFound != 15 {
		t.Errorf("total found = %d, want 15", result.TotalFound)
	}
	if len(result.Suggestions) != 10 {
		t.Errorf("suggestions = %d, want capped at 10", len(result.Suggestions))
	}
	for i := 1; i < len(result.Suggestions); i++ {
		if result.Suggestions[i].ConfidenceScore > result.Suggestions[i-1].ConfidenceScore {
			t.Error("suggestions not sorted by score descending")
		}
	}
	if result.Suggestions[0].MatchedID != "inv-00" {
		t.Errorf("tie ordering lost: first = %s, want inv-00", result.Suggestions[0].MatchedID)
	}
}
