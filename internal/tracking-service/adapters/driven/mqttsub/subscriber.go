package mqttsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bus-fleet/internal/config"
	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/observability"
	"bus-fleet/internal/tracking-service/core/domain/dto"
	portsdriver "bus-fleet/internal/tracking-service/core/ports/driver"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Subscriber feeds bus-unit position payloads from MQTT into the same
// ingest path as the HTTP endpoint. Topics look like fleet/<vehicle>/location;
// the payload is the standard position report DTO. Bad payloads are dropped
// and counted, never crash the loop.
type Subscriber struct {
	client   mqtt.Client
	topic    string
	tracking portsdriver.ITrackingService
	log      mylogger.Logger
}

func New(cfg *config.Mqttconfig, tracking portsdriver.ITrackingService, log mylogger.Logger) (*Subscriber, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	return &Subscriber{
		client:   client,
		topic:    cfg.Topic,
		tracking: tracking,
		log:      log,
	}, nil
}

func (s *Subscriber) Start(ctx context.Context) error {
	token := s.client.Subscribe(s.topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		s.handle(ctx, msg)
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", s.topic, token.Error())
	}
	s.log.Action("mqtt_subscribe").Info("listening for position reports", "topic", s.topic)
	return nil
}

func (s *Subscriber) Stop() {
	s.client.Disconnect(250)
}

func (s *Subscriber) handle(ctx context.Context, msg mqtt.Message) {
	log := s.log.Action("mqtt_ingest").With("topic", msg.Topic())

	var req dto.PositionReportRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		observability.MqttDropped.Inc()
		log.Warn("unparseable position payload", "err", err.Error())
		return
	}
	// the topic segment is authoritative for the vehicle id
	if id := vehicleFromTopic(msg.Topic()); id != "" {
		req.VehicleID = id
	}

	if _, err := s.tracking.Record(ctx, req); err != nil {
		observability.MqttDropped.Inc()
		log.Warn("position report rejected", "vehicle_id", req.VehicleID, "err", err.Error())
	}
}

func vehicleFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 3 {
		return parts[1]
	}
	return ""
}
