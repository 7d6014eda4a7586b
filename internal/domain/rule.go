package domain

// Severity determines how a firing rule affects the overall verdict.
type Severity string

const (
	// SeverityBlocking rules force the verdict to "planning permission required".
	SeverityBlocking Severity = "blocking"

	// SeverityRestrictive rules attach caveats and reduce confidence but never block.
	SeverityRestrictive Severity = "restrictive"

	// SeverityAdvisory rules flag considerations for the owner to be aware of.
	SeverityAdvisory Severity = "advisory"

	// SeverityInformational rules carry no planning weight at all.
	SeverityInformational Severity = "informational"
)

// CheckStatus is the per-rule outcome shown to the caller.
type CheckStatus string

const (
	StatusPass    CheckStatus = "pass"
	StatusFail    CheckStatus = "fail"
	StatusWarning CheckStatus = "warning"
)

// RuleResult is the outcome of evaluating one rule against one fact record.
//
// Status is always consistent with Applies and the rule's severity:
// blocking+applies => fail, restrictive/advisory+applies => warning,
// not-applies => pass.
type RuleResult struct {
	Applies          bool        `json:"applies"`
	Status           CheckStatus `json:"status"`
	Message          string      `json:"message"`
	ConfidenceImpact float64     `json:"confidenceImpact"`
	Details          string      `json:"details,omitempty"`
}

// Check is one entry in the caller-visible check list.
type Check struct {
	Type        string      `json:"type"`
	Status      CheckStatus `json:"status"`
	Description string      `json:"description"`
}

// RuleConfig defines an operator-authored rule stored in the repository.
// The expression is CEL over the fact record and must return bool; a true
// result means the rule applies. Blocking severity is reserved for the
// statutory built-in rules and is rejected at validation.
type RuleConfig struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Priority    int      `json:"priority"`

	// CEL expression to evaluate
	Expression string `json:"expression"`

	// Messages shown depending on whether the rule applies
	AppliesMessage string `json:"appliesMessage"`
	ClearMessage   string `json:"clearMessage"`
	Details        string `json:"details,omitempty"`

	// Confidence deltas applied when the rule fires / is clear
	AppliesImpact float64 `json:"appliesImpact"`
	ClearImpact   float64 `json:"clearImpact"`

	// Whether rule is active
	Enabled bool `json:"enabled"`
}
