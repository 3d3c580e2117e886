package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/i474232898/geofence-notifier/internal/geofence"
)

// DefaultMQTTTopic is used when no topic is configured.
const DefaultMQTTTopic = "geofence/notifications"

var errPublishTimeout = errors.New("mqtt publish timed out")

// MQTTNotifier publishes notifications to an MQTT topic.
type MQTTNotifier struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// NewMQTT connects an MQTT client to broker.
func NewMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return client, nil
}

// NewMQTTNotifier wraps a connected client.
func NewMQTTNotifier(client mqtt.Client, topic string) *MQTTNotifier {
	if topic == "" {
		topic = DefaultMQTTTopic
	}
	return &MQTTNotifier{client: client, topic: topic, timeout: 5 * time.Second}
}

func (n *MQTTNotifier) Name() string { return "mqtt" }

func (n *MQTTNotifier) Notify(ctx context.Context, msg geofence.Notification) error {
	body, err := encodeEvent(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	timeout := n.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	token := n.client.Publish(n.topic, 1, false, body)
	if !token.WaitTimeout(timeout) {
		return errPublishTimeout
	}
	return token.Error()
}
