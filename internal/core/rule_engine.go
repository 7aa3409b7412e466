package core

import (
	"regexp"
	"sort"
	"strings"
)

// ApplyReconciliationRules picks the auto-classification rule for a bank
// transaction. Only active rules participate; a rule matches when every
// constraint it sets (transaction type, |amount| bounds, description
// pattern) holds. The highest priority wins and ties resolve to the
// earliest rule in the input list, so selection is deterministic for any
// input ordering. Returns nil when nothing matches.
func ApplyReconciliationRules(tx BankTransaction, rules []ReconciliationRule) *ReconciliationRule {
	type indexed struct {
		rule  ReconciliationRule
		index int
	}
	var matching []indexed
	for i, rule := range rules {
		if !rule.Active {
			continue
		}
		if ruleMatches(tx, rule) {
			matching = append(matching, indexed{rule: rule, index: i})
		}
	}
	if len(matching) == 0 {
		return nil
	}
	sort.SliceStable(matching, func(i, j int) bool {
		if matching[i].rule.Priority != matching[j].rule.Priority {
			return matching[i].rule.Priority > matching[j].rule.Priority
		}
		return matching[i].index < matching[j].index
	})
	winner := matching[0].rule
	return &winner
}

func ruleMatches(tx BankTransaction, rule ReconciliationRule) bool {
	if rule.TransactionType != nil && *rule.TransactionType != tx.Type() {
		return false
	}
	amount := tx.Amount.Abs()
	if rule.AmountMin != nil && amount.LessThan(*rule.AmountMin) {
		return false
	}
	if rule.AmountMax != nil && amount.GreaterThan(*rule.AmountMax) {
		return false
	}
	if rule.DescriptionPattern != nil && !descriptionMatches(tx.Description, *rule.DescriptionPattern) {
		return false
	}
	return true
}

// descriptionMatches treats the pattern as a case-insensitive regular
// expression when it compiles, and as a plain case-insensitive substring
// otherwise.
func descriptionMatches(description, pattern string) bool {
	if re, err := regexp.Compile("(?i)" + pattern); err == nil {
		return re.MatchString(description)
	}
	return strings.Contains(strings.ToLower(description), strings.ToLower(pattern))
}
