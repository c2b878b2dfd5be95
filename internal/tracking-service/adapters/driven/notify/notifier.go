package notify

import (
	"context"
	"encoding/json"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/core/domain/events"
	ports "bus-fleet/internal/tracking-service/core/ports/driven"

	"github.com/rabbitmq/amqp091-go"
)

// binding key per audience
const (
	parentUpdates = "parent.*"
	orgUpdates    = "org.*"
	driverUpdates = "driver.*"
	opsUpdates    = "ops.*"
)

// Notifier bridges the fleet topic exchange and the websocket rooms. The
// routing key of a delivery doubles as the room name, so fanout needs no
// lookup beyond the dispatcher's room table.
type Notifier struct {
	ctx        context.Context
	dispatcher ports.IRoomDispatcher
	broker     ports.IFleetBroker
	log        mylogger.Logger
}

func New(
	ctx context.Context,
	dispatcher ports.IRoomDispatcher,
	broker ports.IFleetBroker,
	log mylogger.Logger,
) *Notifier {
	return &Notifier{
		ctx:        ctx,
		dispatcher: dispatcher,
		broker:     broker,
		log:        log,
	}
}

func (n *Notifier) Run() error {
	bindings := map[string]string{
		"ws_fanout_parent": parentUpdates,
		"ws_fanout_org":    orgUpdates,
		"ws_fanout_driver": driverUpdates,
		"ws_fanout_ops":    opsUpdates,
	}

	for queue, key := range bindings {
		ch, err := n.broker.Consume(n.ctx, queue, key, ports.ConsumeOptions{
			QueueDurable: true,
			Prefetch:     32,
		})
		if err != nil {
			return err
		}
		go n.work(n.ctx, ch)
	}
	return nil
}

func (n *Notifier) work(ctx context.Context, ch <-chan amqp091.Delivery) {
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := n.fanout(msg); err != nil {
				n.log.Action("notify_fanout").Warn("dropping delivery", "key", msg.RoutingKey, "err", err.Error())
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		case <-ctx.Done():
			return
		}
	}
}

func (n *Notifier) fanout(msg amqp091.Delivery) error {
	event := events.Event{}
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return err
	}
	n.dispatcher.WriteToRoom(msg.RoutingKey, event)
	return nil
}
