package core_test

import (
	"testing"

	"franchise-backoffice/internal/core"
)

func bankTx(amount, date, description string, reference *string) core.BankTransaction {
	return core.BankTransaction{
		ID:              "tx-1",
		BankAccountID:   "acc-1",
		TransactionDate: date,
		ValueDate:       date,
		Description:     description,
		Reference:       reference,
		Amount:          dec(amount),
		Status:          core.BankTransactionPending,
	}
}

func invoice(id, number, date, total string) core.CandidateInvoice {
	return core.CandidateInvoice{ID: id, InvoiceNumber: number, IssueDate: date, Total: dec(total)}
}

func TestFindInvoiceMatches_Scoring(t *testing.T) {
	tx := bankTx("-121.00", "2025-03-10", "RECIBO SUMINISTROS F-2025-0042", nil)
	invoices := []core.CandidateInvoice{
		invoice("inv-full", "F-2025-0042", "2025-03-10", "121.00"),
		invoice("inv-amount", "F-2025-0099", "2025-01-01", "121.00"),
		invoice("inv-none", "F-2025-0100", "2024-06-01", "999.99"),
	}

	got := core.FindInvoiceMatches(tx, invoices, core.MatchOptions{CheckReference: true})

	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(got), got)
	}
	if got[0].MatchedID != "inv-full" {
		t.Errorf("top candidate = %s, want inv-full", got[0].MatchedID)
	}
	if got[0].ConfidenceScore <= got[1].ConfidenceScore {
		t.Errorf("full match score %v not above amount-only score %v",
			got[0].ConfidenceScore, got[1].ConfidenceScore)
	}
	for _, c := range got {
		if c.MatchedID == "inv-none" {
			t.Error("candidate with no matching heuristic must be dropped")
		}
	}

	wantReasons := map[string]bool{"Importe exacto": true, "Fecha exacta": true, "Referencia coincide": true}
	if len(got[0].MatchReasons) != 3 {
		t.Errorf("reasons = %v, want amount+date+reference", got[0].MatchReasons)
	}
	for _, r := range got[0].MatchReasons {
		if !wantReasons[r] {
			t.Errorf("unexpected reason %q", r)
		}
	}
}

func TestFindInvoiceMatches_Tolerances(t *testing.T) {
	tx := bankTx("-120.50", "2025-03-12", "TRANSFERENCIA", nil)
	invoices := []core.CandidateInvoice{
		invoice("inv-1", "A-1", "2025-03-10", "121.00"),
	}

	got := core.FindInvoiceMatches(tx, invoices, core.MatchOptions{
		AmountTolerance:   dec("1.00"),
		DateToleranceDays: 5,
	})
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}

	hasClose := func(reason string) bool {
		for _, r := range got[0].MatchReasons {
			if r == reason {
				return true
			}
		}
		return false
	}
	if !hasClose("Importe muy cercano") {
		t.Errorf("reasons %v missing close-amount reason", got[0].MatchReasons)
	}
	if !hasClose("Fecha cercana") {
		t.Errorf("reasons %v missing close-date reason", got[0].MatchReasons)
	}
}

func TestFindInvoiceMatches_FloorDropsWeakCandidates(t *testing.T) {
	// Close amount alone scores 30, below the floor of 40.
	tx := bankTx("-120.50", "2025-03-12", "TRANSFERENCIA", nil)
	invoices := []core.CandidateInvoice{
		invoice("inv-1", "A-1", "2024-01-01", "121.00"),
	}
	got := core.FindInvoiceMatches(tx, invoices, core.MatchOptions{AmountTolerance: dec("1.00")})
	if len(got) != 0 {
		t.Errorf("weak candidate should be dropped, got %+v", got)
	}
}

func TestFindInvoiceMatches_ReferenceNormalization(t *testing.T) {
	ref := "pago fact f-2025- 0042"
	tx := bankTx("-121.00", "2025-03-10", "sin detalle", &ref)
	invoices := []core.CandidateInvoice{
		invoice("inv-1", "F-2025-0042", "2025-03-10", "121.00"),
	}
	got := core.FindInvoiceMatches(tx, invoices, core.MatchOptions{CheckReference: true})
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	found := false
	for _, r := range got[0].MatchReasons {
		if r == "Referencia coincide" {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons %v missing reference match despite case/space differences", got[0].MatchReasons)
	}
}

func TestFindInvoiceMatches_StableOrderOnTies(t *testing.T) {
	tx := bankTx("-50.00", "2025-03-10", "PAGO", nil)
	invoices := []core.CandidateInvoice{
		invoice("inv-a", "A-1", "2025-03-10", "50.00"),
		invoice("inv-b", "B-1", "2025-03-10", "50.00"),
	}
	got := core.FindInvoiceMatches(tx, invoices, core.MatchOptions{})
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].MatchedID != "inv-a" || got[1].MatchedID != "inv-b" {
		t.Errorf("tie order = %s, %s; want input order inv-a, inv-b", got[0].MatchedID, got[1].MatchedID)
	}
}
