// Package worker consumes queued check requests from the event bus and
// runs them through the planning service. The Pro tier runs it so HTTP
// clients can submit checks asynchronously.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/naxonsolutions/pdcheck/internal/domain"
	"github.com/naxonsolutions/pdcheck/internal/planning"
)

// CheckMessage is the payload published to the check-requested topic.
type CheckMessage struct {
	CheckID      string   `json:"checkId"`
	Address      string   `json:"address"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	PropertyType string   `json:"propertyType,omitempty"`
	TraceID      string   `json:"traceId,omitempty"`
}

// Worker processes asynchronous check requests.
type Worker struct {
	service *planning.Service
	bus     domain.EventBus

	mu  sync.Mutex
	sub domain.Subscription
}

// New creates a worker bound to the planning service and event bus.
func New(service *planning.Service, bus domain.EventBus) *Worker {
	return &Worker{
		service: service,
		bus:     bus,
	}
}

// Start subscribes to the check-requested topic and begins processing.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sub != nil {
		return fmt.Errorf("worker already started")
	}

	sub, err := w.bus.Subscribe(ctx, domain.TopicCheckRequested, w.handleCheckRequested)
	if err != nil {
		return fmt.Errorf("worker subscribe failed: %w", err)
	}
	w.sub = sub

	slog.Info("worker started", "topic", domain.TopicCheckRequested)
	return nil
}

// Stop unsubscribes from the bus.
func (w *Worker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sub == nil {
		return nil
	}
	err := w.sub.Unsubscribe()
	w.sub = nil
	slog.Info("worker stopped")
	return err
}

// handleCheckRequested runs one queued check. The service persists the
// result and publishes the completion events, so the worker only drives
// the call.
func (w *Worker) handleCheckRequested(ctx context.Context, msg *domain.Message) error {
	var checkMsg CheckMessage
	if err := json.Unmarshal(msg.Payload, &checkMsg); err != nil {
		slog.Error("invalid check message", "error", err)
		return fmt.Errorf("invalid check message: %w", err)
	}

	if checkMsg.Address == "" {
		slog.Warn("check message missing address", "check_id", checkMsg.CheckID)
		return fmt.Errorf("check message missing address")
	}

	req := domain.CheckRequest{
		ID:           checkMsg.CheckID,
		Address:      checkMsg.Address,
		Lat:          checkMsg.Lat,
		Lng:          checkMsg.Lng,
		PropertyType: domain.PropertyType(checkMsg.PropertyType),
	}

	result, err := w.service.CheckPlanningRights(ctx, req)
	if err != nil {
		slog.Error("async check failed",
			"check_id", checkMsg.CheckID,
			"error", err,
		)
		return err
	}

	slog.Info("async check processed",
		"check_id", result.ID,
		"has_pd_rights", result.HasPermittedDevelopmentRights,
		"fallback", result.Fallback,
	)
	return nil
}
