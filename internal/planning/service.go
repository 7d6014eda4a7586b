// Package planning is the facade over the fact provider, the rules engine,
// and the summary generator. It is the only boundary the core is invoked
// through; HTTP and async workers both call into it.
package planning

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/naxonsolutions/pdcheck/internal/domain"
	"github.com/naxonsolutions/pdcheck/internal/rules"
)

// FallbackConfidence caps the score on results built without resolved facts.
const FallbackConfidence = 80.0

// Service orchestrates one planning rights check end to end.
type Service struct {
	provider domain.FactProvider
	repo     domain.Repository
	bus      domain.EventBus

	// The engine value is immutable; the pointer is swapped on rule reload.
	mu     sync.RWMutex
	engine *rules.Engine
}

// NewService creates the facade. Repository and bus may be nil, in which
// case results are neither persisted nor published.
func NewService(provider domain.FactProvider, engine *rules.Engine, repo domain.Repository, bus domain.EventBus) *Service {
	return &Service{
		provider: provider,
		engine:   engine,
		repo:     repo,
		bus:      bus,
	}
}

// Engine returns the engine currently serving checks.
func (s *Service) Engine() *rules.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// SetEngine swaps in a rebuilt engine (rule reload). Safe against concurrent
// checks: in-flight evaluations finish on the engine they started with.
func (s *Service) SetEngine(engine *rules.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = engine
}

// CheckPlanningRights resolves facts for the address, evaluates the rule
// registry, and returns the composed result. The caller never sees a rules
// engine error: when no facts are obtainable the result is a conservative
// fallback recommending the local planning authority.
func (s *Service) CheckPlanningRights(ctx context.Context, req domain.CheckRequest) (*domain.PlanningResult, error) {
	start := time.Now()
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	engine := s.Engine()

	lookup, err := s.provider.Facts(ctx, req)
	if err != nil {
		slog.Warn("facts unavailable, returning fallback result",
			"check_id", req.ID,
			"address", req.Address,
			"error", err,
		)
		result := s.fallbackResult(req, engine)
		s.finish(ctx, result)
		return result, nil
	}

	evaluation := engine.Evaluate(lookup.Facts)

	result := &domain.PlanningResult{
		ID:                            req.ID,
		Address:                       lookup.Facts.Address,
		Postcode:                      lookup.Facts.Postcode,
		Coordinates:                   lookup.Coordinates,
		LocalAuthority:                lookup.Facts.LocalAuthority,
		PropertyType:                  lookup.Facts.PropertyType,
		HasPermittedDevelopmentRights: evaluation.HasPermittedDevelopmentRights,
		Confidence:                    min(lookup.Confidence, evaluation.Confidence),
		PrimaryReasons:                evaluation.PrimaryReasons,
		Checks:                        evaluation.Checks,
		Summary:                       rules.GenerateSummary(lookup.Facts, evaluation),
		CheckedAt:                     time.Now().UTC(),
	}

	s.finish(ctx, result)

	slog.Info("check completed",
		"check_id", result.ID,
		"postcode", result.Postcode,
		"has_pd_rights", result.HasPermittedDevelopmentRights,
		"confidence", result.Confidence,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

// GetCheck retrieves a previously completed check.
func (s *Service) GetCheck(ctx context.Context, checkID string) (*domain.PlanningResult, error) {
	return s.repo.GetCheck(ctx, checkID)
}

// fallbackResult builds the conservative answer for an unmatched address:
// rights retained, capped confidence, and every check present but flagged
// as unverified.
func (s *Service) fallbackResult(req domain.CheckRequest, engine *rules.Engine) *domain.PlanningResult {
	facts := domain.PropertyFacts{
		Address:      req.Address,
		PropertyType: req.PropertyType,
	}
	if facts.PropertyType == "" {
		facts.PropertyType = domain.PropertyHouse
	}

	evaluation := engine.Evaluate(facts)

	checks := make([]domain.Check, len(evaluation.Checks))
	for i, c := range evaluation.Checks {
		c.Description += " (low confidence - property could not be verified)"
		checks[i] = c
	}

	return &domain.PlanningResult{
		ID:                            req.ID,
		Address:                       req.Address,
		PropertyType:                  facts.PropertyType,
		HasPermittedDevelopmentRights: evaluation.HasPermittedDevelopmentRights,
		Confidence:                    min(FallbackConfidence, evaluation.Confidence),
		PrimaryReasons:                evaluation.PrimaryReasons,
		Checks:                        checks,
		Summary:                       "The property could not be verified against planning records. " + rules.ConsultAuthorityNote,
		Fallback:                      true,
		CheckedAt:                     time.Now().UTC(),
	}
}

// finish persists the result and publishes pipeline events. Both are
// best-effort: the caller still gets the result when storage is down.
func (s *Service) finish(ctx context.Context, result *domain.PlanningResult) {
	if s.repo != nil {
		if err := s.repo.SaveCheck(ctx, result); err != nil {
			slog.Error("failed to save check",
				"check_id", result.ID,
				"error", err,
			)
		}
	}

	if s.bus == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		slog.Error("failed to marshal check result", "check_id", result.ID, "error", err)
		return
	}

	if err := s.bus.Publish(ctx, domain.TopicCheckCompleted, payload); err != nil {
		slog.Error("failed to publish check completed",
			"check_id", result.ID,
			"error", err,
		)
	}

	if !result.HasPermittedDevelopmentRights {
		if err := s.bus.Publish(ctx, domain.TopicPermissionRequired, payload); err != nil {
			slog.Error("failed to publish permission required notice",
				"check_id", result.ID,
				"error", err,
			)
		}
	}
}
