// Package api exposes the planning check service over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/naxonsolutions/pdcheck/internal/domain"
	"github.com/naxonsolutions/pdcheck/internal/planning"
	"github.com/naxonsolutions/pdcheck/internal/repository"
	"github.com/naxonsolutions/pdcheck/internal/rules"
	"github.com/naxonsolutions/pdcheck/internal/worker"
)

// Handler holds the HTTP endpoint implementations.
type Handler struct {
	service  *planning.Service
	repo     domain.Repository
	cache    domain.Cache
	bus      domain.EventBus
	compiler *rules.Compiler
}

// NewHandler creates the endpoint set.
func NewHandler(service *planning.Service, repo domain.Repository, cache domain.Cache, bus domain.EventBus, compiler *rules.Compiler) *Handler {
	return &Handler{
		service:  service,
		repo:     repo,
		cache:    cache,
		bus:      bus,
		compiler: compiler,
	}
}

type checkRequest struct {
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	PropertyType string   `json:"propertyType,omitempty"`
}

type queuedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Check handles POST /api/v1/check. With ?async=1 the check is queued on
// the event bus and a 202 with the pre-assigned ID is returned; otherwise
// it runs synchronously.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Address == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}

	if r.URL.Query().Get("async") == "1" {
		h.enqueueCheck(w, r, req)
		return
	}

	result, err := h.service.CheckPlanningRights(r.Context(), domain.CheckRequest{
		Address:      req.Address,
		Lat:          req.Lat,
		Lng:          req.Lng,
		PropertyType: domain.PropertyType(req.PropertyType),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "check failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) enqueueCheck(w http.ResponseWriter, r *http.Request, req checkRequest) {
	if h.bus == nil {
		writeError(w, http.StatusServiceUnavailable, "async checks unavailable")
		return
	}

	checkID := uuid.New().String()
	msg := worker.CheckMessage{
		CheckID:      checkID,
		Address:      req.Address,
		Lat:          req.Lat,
		Lng:          req.Lng,
		PropertyType: req.PropertyType,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to queue check")
		return
	}
	if err := h.bus.Publish(r.Context(), domain.TopicCheckRequested, payload); err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to queue check")
		return
	}

	writeJSON(w, http.StatusAccepted, queuedResponse{ID: checkID, Status: "queued"})
}

// GetCheck handles GET /api/v1/checks/{id}.
func (h *Handler) GetCheck(w http.ResponseWriter, r *http.Request) {
	checkID := chi.URLParam(r, "id")

	result, err := h.service.GetCheck(r.Context(), checkID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "check not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load check")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListChecks handles GET /api/v1/checks?postcode=SW1A1AA&limit=20.
func (h *Handler) ListChecks(w http.ResponseWriter, r *http.Request) {
	postcode := r.URL.Query().Get("postcode")
	if postcode == "" {
		writeError(w, http.StatusBadRequest, "postcode is required")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	results, err := h.repo.ListChecksByPostcode(r.Context(), postcode, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list checks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"postcode": postcode,
		"checks":   results,
	})
}

type ruleDescriptor struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Severity    domain.Severity `json:"severity"`
	Priority    int             `json:"priority"`
	Custom      bool            `json:"custom"`
}

// ListRules handles GET /api/v1/rules. Returns the active registry in
// evaluation order, marking operator-authored rules.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	builtin := make(map[string]bool, len(rules.DefaultRules()))
	for _, rule := range rules.DefaultRules() {
		builtin[rule.ID] = true
	}

	active := h.service.Engine().Rules()
	descriptors := make([]ruleDescriptor, 0, len(active))
	for _, rule := range active {
		descriptors = append(descriptors, ruleDescriptor{
			ID:          rule.ID,
			Name:        rule.Name,
			Description: rule.Description,
			Severity:    rule.Severity,
			Priority:    rule.Priority,
			Custom:      !builtin[rule.ID],
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(descriptors),
		"rules": descriptors,
	})
}

// CreateRule handles POST /api/v1/rules. The configuration is validated,
// persisted, and the engine is rebuilt so the rule takes effect immediately.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var cfg domain.RuleConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if cfg.ID == "" {
		cfg.ID = uuid.New().String()
	}
	cfg.Enabled = true

	if err := h.compiler.Validate(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.SaveRuleConfig(r.Context(), &cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save rule")
		return
	}

	if err := h.reloadEngine(r); err != nil {
		writeError(w, http.StatusInternalServerError, "rule saved but reload failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, cfg)
}

// DeleteRule handles DELETE /api/v1/rules/{id}. Built-in rules cannot be
// removed.
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")

	for _, rule := range rules.DefaultRules() {
		if rule.ID == ruleID {
			writeError(w, http.StatusForbidden, "built-in rules cannot be deleted")
			return
		}
	}

	if err := h.repo.DeleteRuleConfig(r.Context(), ruleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rule not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete rule")
		return
	}

	if err := h.reloadEngine(r); err != nil {
		writeError(w, http.StatusInternalServerError, "rule deleted but reload failed: "+err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReloadRules handles POST /api/v1/rules/reload. Rebuilds the engine from
// the built-in registry plus all enabled stored configurations.
func (h *Handler) ReloadRules(w http.ResponseWriter, r *http.Request) {
	if err := h.reloadEngine(r); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "reloaded",
		"rulesCount": h.service.Engine().RulesCount(),
	})
}

func (h *Handler) reloadEngine(r *http.Request) error {
	configs, err := h.repo.ListRuleConfigs(r.Context())
	if err != nil {
		return err
	}
	compiled, err := h.compiler.CompileAll(configs)
	if err != nil {
		return err
	}

	h.service.SetEngine(rules.NewEngine(append(rules.DefaultRules(), compiled...)))
	return nil
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /ready. Checks every backing dependency.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	healthy := true

	if err := h.repo.Ping(r.Context()); err != nil {
		checks["repository"] = err.Error()
		healthy = false
	} else {
		checks["repository"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			checks["cache"] = err.Error()
			healthy = false
		} else {
			checks["cache"] = "ok"
		}
	}

	if h.bus != nil {
		if err := h.bus.Ping(r.Context()); err != nil {
			checks["bus"] = err.Error()
			healthy = false
		} else {
			checks["bus"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"healthy": healthy, "checks": checks})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
