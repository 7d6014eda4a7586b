package rules

import (
	"strings"
	"testing"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

func TestSummaryFullRights(t *testing.T) {
	engine := NewDefaultEngine()
	facts := houseFacts(domain.ConstraintFlags{})

	summary := GenerateSummary(facts, engine.Evaluate(facts))

	if summary != FullRightsSummary {
		t.Errorf("unexpected summary: %q", summary)
	}
}

func TestSummarySingleRestriction(t *testing.T) {
	engine := NewDefaultEngine()
	facts := houseFacts(domain.ConstraintFlags{ConservationArea: true})

	summary := GenerateSummary(facts, engine.Evaluate(facts))

	if !strings.Contains(summary, "conservation area") {
		t.Errorf("expected summary to mention conservation area: %q", summary)
	}
	if !strings.Contains(summary, "retains permitted development rights") {
		t.Errorf("expected a retained-rights summary: %q", summary)
	}
}

func TestSummaryMultipleRestrictions(t *testing.T) {
	engine := NewDefaultEngine()
	facts := houseFacts(domain.ConstraintFlags{
		ConservationArea: true,
		NationalPark:     true,
		AONB:             true,
	})

	summary := GenerateSummary(facts, engine.Evaluate(facts))

	if !strings.Contains(summary, "conservation area, national park and area of outstanding natural beauty") {
		t.Errorf("expected joined designation list, got %q", summary)
	}
}

func TestSummaryBlocked(t *testing.T) {
	engine := NewDefaultEngine()
	facts := houseFacts(domain.ConstraintFlags{ListedBuilding: true})

	summary := GenerateSummary(facts, engine.Evaluate(facts))

	if !strings.Contains(summary, "not available") {
		t.Errorf("expected a blocked-verdict summary: %q", summary)
	}
	if !strings.Contains(summary, "Listed Building") {
		t.Errorf("expected the blocking reason: %q", summary)
	}
	if !strings.HasSuffix(summary, ConsultAuthorityNote) {
		t.Errorf("expected the consult-authority closing sentence: %q", summary)
	}
}

func TestSummaryBlockedWithNotes(t *testing.T) {
	engine := NewDefaultEngine()
	facts := houseFacts(domain.ConstraintFlags{Article4Direction: true})
	facts.Notes = "Grade II listing pending review."

	summary := GenerateSummary(facts, engine.Evaluate(facts))

	if !strings.HasSuffix(summary, facts.Notes) {
		t.Errorf("expected property notes to close the summary: %q", summary)
	}
}

func TestJoinAnd(t *testing.T) {
	cases := []struct {
		items []string
		want  string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a", "b"}, "a and b"},
		{[]string{"a", "b", "c"}, "a, b and c"},
	}
	for _, tc := range cases {
		if got := joinAnd(tc.items); got != tc.want {
			t.Errorf("joinAnd(%v) = %q, want %q", tc.items, got, tc.want)
		}
	}
}
