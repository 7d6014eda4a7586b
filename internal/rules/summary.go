package rules

import (
	"fmt"
	"strings"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// Fixed summary sentences.
const (
	// FullRightsSummary is returned when nothing applied at all.
	FullRightsSummary = "This property retains full permitted development rights. No planning restrictions were identified."

	// ConsultAuthorityNote closes a blocked-verdict summary when the
	// property carries no free-text notes.
	ConsultAuthorityNote = "Consult your local planning authority before carrying out any work."
)

// GenerateSummary turns an engine result into a single human-readable
// paragraph. Pure string formatting: the same result always produces the
// same summary.
func GenerateSummary(facts domain.PropertyFacts, result *Result) string {
	if result.HasPermittedDevelopmentRights {
		restricted := restrictiveTypes(result)
		if len(restricted) == 0 {
			return FullRightsSummary
		}
		return fmt.Sprintf(
			"This property retains permitted development rights, but its %s designation means some work may need prior approval or planning permission.",
			joinAnd(restricted),
		)
	}

	reasons := blockingReasons(result)
	summary := fmt.Sprintf(
		"Permitted development rights are not available for this property: %s.",
		strings.Join(reasons, ", "),
	)
	if facts.Notes != "" {
		return summary + " " + facts.Notes
	}
	return summary + " " + ConsultAuthorityNote
}

// restrictiveTypes collects the lower-cased names of restrictive rules that
// applied, in evaluation order.
func restrictiveTypes(result *Result) []string {
	var names []string
	for _, ev := range result.RuleResults {
		if ev.Rule.Severity == domain.SeverityRestrictive && ev.Result.Applies {
			names = append(names, strings.ToLower(ev.Rule.Name))
		}
	}
	return names
}

// blockingReasons returns the primary reasons without the trailing
// restrictive note. The note never coexists with a blocking reason, but the
// filter keeps the summary correct regardless of who built the result.
func blockingReasons(result *Result) []string {
	var reasons []string
	for _, r := range result.PrimaryReasons {
		if r != RestrictionsNote {
			reasons = append(reasons, r)
		}
	}
	return reasons
}

// joinAnd renders "a", "a and b", or "a, b and c".
func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
