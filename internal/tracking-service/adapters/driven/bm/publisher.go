package bm

import (
	"context"
	"encoding/json"
	"fmt"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/core/domain/events"
	ports "bus-fleet/internal/tracking-service/core/ports/driven"
)

// Publisher turns audience channels into routing keys on the fleet topic
// exchange. The payload is wrapped in the shared Event envelope so the
// notifier can fan it out without re-parsing domain types.
type Publisher struct {
	log    mylogger.Logger
	broker ports.IFleetBroker
}

var _ ports.IEventPublisher = (*Publisher)(nil)

func NewPublisher(broker ports.IFleetBroker, log mylogger.Logger) *Publisher {
	return &Publisher{
		broker: broker,
		log:    log,
	}
}

func (p *Publisher) Publish(ctx context.Context, channel string, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	event := events.Event{
		Type: eventType,
		Data: data,
	}
	if err := p.broker.PublishJSON(ctx, fleetExchangeName, channel, event); err != nil {
		p.log.Action("publish").Error("failed to publish event", err, "channel", channel, "type", eventType)
		return err
	}
	return nil
}
