package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Hub delivers events to the connections of this instance.
type Hub struct {
	registry *Registry
	log      *slog.Logger

	// serialises delivery so every connection sees events in the same order
	mu sync.Mutex
}

func NewHub(registry *Registry, log *slog.Logger) *Hub {
	return &Hub{registry: registry, log: log}
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

func (h *Hub) Publish(_ context.Context, audience Audience, event string, payload any) error {
	const op = "notify.Hub.Publish"

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := h.Deliver(audience, event, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Deliver queues one frame on every member of audience and returns how many accepted it.
func (h *Hub) Deliver(audience Audience, event string, data json.RawMessage) (int, error) {
	frame, err := encodeFrame(event, data)
	if err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	members, err := h.registry.Members(audience)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, c := range members {
		if err := c.Send(frame); err != nil {
			h.log.Debug("event dropped",
				slog.String("event", event),
				slog.String("user_id", c.UserID()),
				slog.String("reason", err.Error()),
			)
			continue
		}
		delivered++
	}

	return delivered, nil
}
