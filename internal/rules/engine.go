package rules

import (
	"sort"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// Confidence policy constants. Fixed product behaviour - see DefaultRules.
const (
	BaseConfidence = 95.0
	MinConfidence  = 75.0
	MaxConfidence  = 99.8
)

// RestrictionsNote is appended to the primary reasons when rights survive but
// at least one restrictive rule applied.
const RestrictionsNote = "Some restrictions may apply"

// Engine evaluates a rule registry against property fact records.
//
// The registry is fixed at construction: an Engine value is immutable and
// safe for concurrent use. AddRule returns a new Engine and must not be
// raced with Evaluate calls on the result.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over the given rules, ordered by descending
// priority. The sort is stable, so rules sharing a priority keep their
// registration order.
func NewEngine(ruleSet []Rule) *Engine {
	ordered := make([]Rule, len(ruleSet))
	copy(ordered, ruleSet)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})
	return &Engine{rules: ordered}
}

// NewDefaultEngine creates an engine over the statutory registry.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultRules())
}

// AddRule returns a new engine with the rule inserted at its priority
// position. The receiver is unchanged.
func (e *Engine) AddRule(rule Rule) *Engine {
	return NewEngine(append(e.Rules(), rule))
}

// Rules returns a copy of the registry in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// RulesCount returns the number of registered rules.
func (e *Engine) RulesCount() int {
	return len(e.rules)
}

// Result is the aggregate outcome of evaluating every rule against one
// fact record.
type Result struct {
	HasPermittedDevelopmentRights bool     `json:"hasPermittedDevelopmentRights"`
	Confidence                    float64  `json:"confidence"`
	PrimaryReasons                []string `json:"primaryReasons"`

	// Checks holds one entry per rule, in evaluation order.
	Checks []domain.Check `json:"checks"`

	// RuleResults holds every rule paired with its outcome, parallel to Checks.
	RuleResults []Evaluation `json:"ruleResults"`
}

// Evaluate runs every rule against the facts in priority order and aggregates
// the verdict. Pure computation: no I/O, no retained state, deterministic for
// equal fact records.
func (e *Engine) Evaluate(facts domain.PropertyFacts) *Result {
	result := &Result{
		HasPermittedDevelopmentRights: true,
		PrimaryReasons:                []string{},
		Checks:                        make([]domain.Check, 0, len(e.rules)),
		RuleResults:                   make([]Evaluation, 0, len(e.rules)),
	}

	confidence := BaseConfidence
	restrictiveApplied := false

	for _, rule := range e.rules {
		rr := rule.Evaluate(facts)
		result.RuleResults = append(result.RuleResults, Evaluation{Rule: rule, Result: rr})
		confidence += rr.ConfidenceImpact

		// Every blocking rule that fires is recorded, not just the first.
		if rule.Severity == domain.SeverityBlocking && rr.Applies && rr.Status == domain.StatusFail {
			result.HasPermittedDevelopmentRights = false
			result.PrimaryReasons = append(result.PrimaryReasons, rule.Name)
		}

		if rule.Severity == domain.SeverityRestrictive && rr.Applies {
			restrictiveApplied = true
		}

		if rr.Applies || rr.Status == domain.StatusPass {
			result.Checks = append(result.Checks, domain.Check{
				Type:        rule.Name,
				Status:      rr.Status,
				Description: rr.Message,
			})
		}
	}

	result.Confidence = clamp(confidence, MinConfidence, MaxConfidence)

	if result.HasPermittedDevelopmentRights && restrictiveApplied {
		result.PrimaryReasons = append(result.PrimaryReasons, RestrictionsNote)
	}

	return result
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
