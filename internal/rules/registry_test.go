package rules

import (
	"testing"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

func TestRegistryTable(t *testing.T) {
	byID := map[string]Rule{}
	for _, rule := range DefaultRules() {
		byID[rule.ID] = rule
	}

	cases := []struct {
		id          string
		severity    domain.Severity
		priority    int
		flags       domain.ConstraintFlags
		fireImpact  float64
		clearImpact float64
	}{
		{RuleArticle4, domain.SeverityBlocking, 100, domain.ConstraintFlags{Article4Direction: true}, -2.0, 1.0},
		{RuleListedBuilding, domain.SeverityBlocking, 95, domain.ConstraintFlags{ListedBuilding: true}, -3.0, 1.5},
		{RuleWorldHeritage, domain.SeverityRestrictive, 85, domain.ConstraintFlags{WorldHeritage: true}, -2.5, 0.5},
		{RuleConservationArea, domain.SeverityRestrictive, 80, domain.ConstraintFlags{ConservationArea: true}, -1.5, 0.5},
		{RuleNationalPark, domain.SeverityRestrictive, 75, domain.ConstraintFlags{NationalPark: true}, -1.0, 0.5},
		{RuleAONB, domain.SeverityRestrictive, 70, domain.ConstraintFlags{AONB: true}, -1.0, 0.5},
		{RuleTPO, domain.SeverityAdvisory, 60, domain.ConstraintFlags{TPO: true}, -0.5, 0.2},
		{RuleFloodZone, domain.SeverityAdvisory, 50, domain.ConstraintFlags{FloodZone: true}, -0.5, 0.2},
	}

	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			rule, ok := byID[tc.id]
			if !ok {
				t.Fatalf("rule %s not registered", tc.id)
			}
			if rule.Severity != tc.severity {
				t.Errorf("severity %s, want %s", rule.Severity, tc.severity)
			}
			if rule.Priority != tc.priority {
				t.Errorf("priority %d, want %d", rule.Priority, tc.priority)
			}

			fired := rule.Evaluate(domain.PropertyFacts{PropertyType: domain.PropertyHouse, Constraints: tc.flags})
			if !fired.Applies || fired.ConfidenceImpact != tc.fireImpact {
				t.Errorf("fired = %+v, want applies with impact %.1f", fired, tc.fireImpact)
			}

			clear := rule.Evaluate(domain.PropertyFacts{PropertyType: domain.PropertyHouse})
			if clear.Applies || clear.ConfidenceImpact != tc.clearImpact {
				t.Errorf("clear = %+v, want pass with impact %.1f", clear, tc.clearImpact)
			}
		})
	}
}

func TestPropertyTypeRule(t *testing.T) {
	var rule Rule
	for _, r := range DefaultRules() {
		if r.ID == RulePropertyType {
			rule = r
		}
	}

	cases := []struct {
		propertyType domain.PropertyType
		fires        bool
	}{
		{domain.PropertyHouse, false},
		{domain.PropertyFlat, true},
		{domain.PropertyMaisonette, true},
		{domain.PropertyCommercial, false},
	}
	for _, tc := range cases {
		result := rule.Evaluate(domain.PropertyFacts{PropertyType: tc.propertyType})
		if result.Applies != tc.fires {
			t.Errorf("%s: applies = %v, want %v", tc.propertyType, result.Applies, tc.fires)
		}
	}
}

func TestBlockingRulesFailWhenFired(t *testing.T) {
	facts := domain.PropertyFacts{
		PropertyType: domain.PropertyFlat,
		Constraints: domain.ConstraintFlags{
			Article4Direction: true,
			ListedBuilding:    true,
		},
	}

	for _, rule := range DefaultRules() {
		if rule.Severity != domain.SeverityBlocking {
			continue
		}
		result := rule.Evaluate(facts)
		if !result.Applies || result.Status != domain.StatusFail {
			t.Errorf("rule %s: expected fail when fired, got %+v", rule.ID, result)
		}
		if result.Details == "" {
			t.Errorf("rule %s: expected details on a fired blocking rule", rule.ID)
		}
	}
}
