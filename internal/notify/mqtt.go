package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pepsifleet/fleet-maintenance/internal/models"
	log "github.com/sirupsen/logrus"
)

// Publisher announces work-order lifecycle changes.
type Publisher interface {
	PublishOrderEstado(order *models.WorkOrder)
	Close()
}

// orderEvent is the retained payload on taller/ordenes/<id>/estado.
type orderEvent struct {
	ID      string        `json:"id"`
	Patente string        `json:"patente"`
	Estado  models.Estado `json:"estado"`
}

// MQTTPublisher publishes lifecycle events to an MQTT broker.
type MQTTPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher connects to the broker with auto-reconnect. An empty
// broker URL yields a no-op publisher.
func NewMQTTPublisher(brokerURL, clientID string) (Publisher, error) {
	if brokerURL == "" {
		return NopPublisher{}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout to %s", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	log.WithField("broker", brokerURL).Info("Connected to MQTT broker")
	return &MQTTPublisher{client: client}, nil
}

// PublishOrderEstado publishes the order's current estado, retained, so late
// subscribers (shop floor displays) see the latest state.
func (p *MQTTPublisher) PublishOrderEstado(order *models.WorkOrder) {
	payload, err := json.Marshal(orderEvent{
		ID:      order.ID.Hex(),
		Patente: order.Patente,
		Estado:  order.Estado,
	})
	if err != nil {
		log.WithError(err).Error("Failed to marshal order event")
		return
	}

	topic := fmt.Sprintf("taller/ordenes/%s/estado", order.ID.Hex())
	token := p.client.Publish(topic, 1, true, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.WithError(err).WithField("topic", topic).Error("Failed to publish order event")
		}
	}()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// NopPublisher drops all events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderEstado(*models.WorkOrder) {}
func (NopPublisher) Close()                               {}
