// Package bus provides event bus implementations for pdcheck.
package bus

import (
	"fmt"

	"github.com/naxonsolutions/pdcheck/internal/domain"
)

// New creates an event bus based on configuration.
// Community tier uses an in-process channel bus; Pro tier uses NATS.
func New(cfg domain.EventBusConfig) (domain.EventBus, error) {
	switch cfg.Type {
	case "channel", "":
		return NewChannelBus(cfg.ChannelBufferSize), nil
	case "nats":
		return NewNATSBus(cfg)
	default:
		return nil, fmt.Errorf("unknown event bus type: %s", cfg.Type)
	}
}
