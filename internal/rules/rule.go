// Package rules implements the planning constraint rules engine: a fixed,
// prioritized set of predicates over a property fact record that together
// decide whether the property retains permitted development rights.
package rules

import (
	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// Rule is a named unit of planning policy. Evaluate must be a pure function
// of the fact record: deterministic, no side effects, never panics. Absent
// facts are already false in the record, so every rule always evaluates.
type Rule struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Severity    domain.Severity `json:"severity"`

	// Priority orders both evaluation and the resulting check list,
	// highest first. Registration order breaks ties.
	Priority int `json:"priority"`

	Evaluate func(facts domain.PropertyFacts) domain.RuleResult `json:"-"`
}

// Evaluation pairs a rule with its result for one fact record, so callers
// never have to correlate a result slice back to the registry by index.
type Evaluation struct {
	Rule   Rule              `json:"rule"`
	Result domain.RuleResult `json:"result"`
}

// constraintRule builds a rule over a single designation flag, enforcing the
// status/applies/severity invariant in one place.
func constraintRule(id, name, description string, severity domain.Severity, priority int,
	fires func(domain.PropertyFacts) bool,
	firedMessage, clearMessage, details string,
	firedImpact, clearImpact float64,
) Rule {
	return Rule{
		ID:          id,
		Name:        name,
		Description: description,
		Severity:    severity,
		Priority:    priority,
		Evaluate: func(facts domain.PropertyFacts) domain.RuleResult {
			if !fires(facts) {
				return domain.RuleResult{
					Applies:          false,
					Status:           domain.StatusPass,
					Message:          clearMessage,
					ConfidenceImpact: clearImpact,
				}
			}
			status := domain.StatusWarning
			if severity == domain.SeverityBlocking {
				status = domain.StatusFail
			}
			return domain.RuleResult{
				Applies:          true,
				Status:           status,
				Message:          firedMessage,
				ConfidenceImpact: firedImpact,
				Details:          details,
			}
		},
	}
}
