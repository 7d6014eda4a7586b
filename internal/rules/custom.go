package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// Compiler turns operator-authored rule configurations into engine rules.
// Expressions are CEL over the flattened fact record and must return bool:
// true means the rule applies.
type Compiler struct {
	env *cel.Env
}

// NewCompiler creates a compiler with the fact record variables declared.
func NewCompiler() (*Compiler, error) {
	env, err := cel.NewEnv(
		cel.Variable("address", cel.StringType),
		cel.Variable("postcode", cel.StringType),
		cel.Variable("local_authority", cel.StringType),
		cel.Variable("property_type", cel.StringType),
		cel.Variable("article4_direction", cel.BoolType),
		cel.Variable("conservation_area", cel.BoolType),
		cel.Variable("listed_building", cel.BoolType),
		cel.Variable("national_park", cel.BoolType),
		cel.Variable("aonb", cel.BoolType),
		cel.Variable("world_heritage", cel.BoolType),
		cel.Variable("tpo", cel.BoolType),
		cel.Variable("flood_zone", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Compiler{env: env}, nil
}

// Validate checks a configuration without building a rule.
func (c *Compiler) Validate(cfg *domain.RuleConfig) error {
	_, err := c.Compile(cfg)
	return err
}

// Compile builds an engine rule from a configuration.
func (c *Compiler) Compile(cfg *domain.RuleConfig) (Rule, error) {
	if cfg == nil {
		return Rule{}, fmt.Errorf("rule config is required")
	}
	if cfg.ID == "" || cfg.Name == "" || cfg.Expression == "" {
		return Rule{}, fmt.Errorf("rule id, name, and expression are required")
	}

	// Only the statutory built-ins may force the overall verdict.
	switch cfg.Severity {
	case domain.SeverityRestrictive, domain.SeverityAdvisory, domain.SeverityInformational:
	case domain.SeverityBlocking:
		return Rule{}, fmt.Errorf("rule %s: custom rules cannot be blocking", cfg.ID)
	default:
		return Rule{}, fmt.Errorf("rule %s: unknown severity %q", cfg.ID, cfg.Severity)
	}

	ast, issues := c.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return Rule{}, fmt.Errorf("failed to compile rule %s: %w", cfg.ID, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return Rule{}, fmt.Errorf("rule %s: expression must return bool, got %s", cfg.ID, ast.OutputType())
	}

	program, err := c.env.Program(ast)
	if err != nil {
		return Rule{}, fmt.Errorf("failed to create program for rule %s: %w", cfg.ID, err)
	}

	cfgCopy := *cfg
	return Rule{
		ID:          cfgCopy.ID,
		Name:        cfgCopy.Name,
		Description: cfgCopy.Description,
		Severity:    cfgCopy.Severity,
		Priority:    cfgCopy.Priority,
		Evaluate: func(facts domain.PropertyFacts) domain.RuleResult {
			out, _, err := program.Eval(activation(facts))
			fires := err == nil && out == types.True
			if !fires {
				return domain.RuleResult{
					Applies:          false,
					Status:           domain.StatusPass,
					Message:          cfgCopy.ClearMessage,
					ConfidenceImpact: cfgCopy.ClearImpact,
				}
			}
			return domain.RuleResult{
				Applies:          true,
				Status:           domain.StatusWarning,
				Message:          cfgCopy.AppliesMessage,
				ConfidenceImpact: cfgCopy.AppliesImpact,
				Details:          cfgCopy.Details,
			}
		},
	}, nil
}

// CompileAll builds rules for every enabled configuration.
func (c *Compiler) CompileAll(configs []*domain.RuleConfig) ([]Rule, error) {
	var compiled []Rule
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		rule, err := c.Compile(cfg)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, rule)
	}
	return compiled, nil
}

// activation flattens the fact record into CEL variables.
func activation(facts domain.PropertyFacts) map[string]any {
	return map[string]any{
		"address":            facts.Address,
		"postcode":           facts.Postcode,
		"local_authority":    facts.LocalAuthority,
		"property_type":      string(facts.PropertyType),
		"article4_direction": facts.Constraints.Article4Direction,
		"conservation_area":  facts.Constraints.ConservationArea,
		"listed_building":    facts.Constraints.ListedBuilding,
		"national_park":      facts.Constraints.NationalPark,
		"aonb":               facts.Constraints.AONB,
		"world_heritage":     facts.Constraints.WorldHeritage,
		"tpo":                facts.Constraints.TPO,
		"flood_zone":         facts.Constraints.FloodZone,
	}
}
