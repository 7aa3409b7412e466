package core_test

import (
	"testing"

	"franchise-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func movementPtr(mt core.MovementType) *core.MovementType { return &mt }

func activeRule(id string, priority int) core.ReconciliationRule {
	return core.ReconciliationRule{
		ID:            id,
		RuleName:      "rule " + id,
		AutoMatchType: "invoice",
		Active:        true,
		Priority:      priority,
	}
}

func TestApplyReconciliationRules_Constraints(t *testing.T) {
	tx := bankTx("-120.00", "2025-03-10", "RECIBO LUZ IBERDROLA", nil)

	tests := []struct {
		name      string
		mutate    func(*core.ReconciliationRule)
		wantMatch bool
	}{
		{
			name:      "no constraints matches anything",
			mutate:    func(r *core.ReconciliationRule) {},
			wantMatch: true,
		},
		{
			name: "matching debit type",
			mutate: func(r *core.ReconciliationRule) {
				r.TransactionType = movementPtr(core.Debit)
			},
			wantMatch: true,
		},
		{
			name: "mismatching credit type",
			mutate: func(r *core.ReconciliationRule) {
				r.TransactionType = movementPtr(core.Credit)
			},
			wantMatch: false,
		},
		{
			name: "amount inside bounds",
			mutate: func(r *core.ReconciliationRule) {
				min, max := decimal.RequireFromString("100"), decimal.RequireFromString("150")
				r.AmountMin, r.AmountMax = &min, &max
			},
			wantMatch: true,
		},
		{
			name: "amount below min",
			mutate: func(r *core.ReconciliationRule) {
				min := decimal.RequireFromString("200")
				r.AmountMin = &min
			},
			wantMatch: false,
		},
		{
			name: "amount above max",
			mutate: func(r *core.ReconciliationRule) {
				max := decimal.RequireFromString("100")
				r.AmountMax = &max
			},
			wantMatch: false,
		},
		{
			name: "substring pattern case-insensitive",
			mutate: func(r *core.ReconciliationRule) {
				p := "iberdrola"
				r.DescriptionPattern = &p
			},
			wantMatch: true,
		},
		{
			name: "regex pattern",
			mutate: func(r *core.ReconciliationRule) {
				p := `recibo\s+luz`
				r.DescriptionPattern = &p
			},
			wantMatch: true,
		},
		{
			name: "pattern without hit",
			mutate: func(r *core.ReconciliationRule) {
				p := "alquiler"
				r.DescriptionPattern = &p
			},
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := activeRule("r1", 10)
			tt.mutate(&rule)
			got := core.ApplyReconciliationRules(tx, []core.ReconciliationRule{rule})
			if tt.wantMatch && got == nil {
				t.Error("expected a match, got nil")
			}
			if !tt.wantMatch && got != nil {
				t.Errorf("expected no match, got %s", got.ID)
			}
		})
	}
}

func TestApplyReconciliationRules_PriorityAndTies(t *testing.T) {
	tx := bankTx("-50.00", "2025-03-10", "CUOTA", nil)

	t.Run("higher priority wins regardless of position", func(t *testing.T) {
		rules := []core.ReconciliationRule{activeRule("low", 1), activeRule("high", 9)}
		got := core.ApplyReconciliationRules(tx, rules)
		if got == nil || got.ID != "high" {
			t.Errorf("got %+v, want rule high", got)
		}
	})

	t.Run("ties resolve to earliest input position", func(t *testing.T) {
		rules := []core.ReconciliationRule{activeRule("first", 5), activeRule("second", 5)}
		got := core.ApplyReconciliationRules(tx, rules)
		if got == nil || got.ID != "first" {
			t.Errorf("got %+v, want rule first", got)
		}
	})

	t.Run("inactive rule never selected", func(t *testing.T) {
		inactive := activeRule("inactive", 99)
		inactive.Active = false
		rules := []core.ReconciliationRule{inactive, activeRule("active", 1)}
		got := core.ApplyReconciliationRules(tx, rules)
		if got == nil || got.ID != "active" {
			t.Errorf("got %+v, want rule active", got)
		}
	})

	t.Run("empty rule set", func(t *testing.T) {
		if got := core.ApplyReconciliationRules(tx, nil); got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("all rules inactive", func(t *testing.T) {
		inactive := activeRule("off", 5)
		inactive.Active = false
		if got := core.ApplyReconciliationRules(tx, []core.ReconciliationRule{inactive}); got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})
}
