package mqtt

import (
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// NewMQTTClient connects to broker. The client id gets a random suffix so
// several dashboards can share a broker.
func NewMQTTClient(broker, clientID string, log *slog.Logger) (mqtt.Client, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "mqtt")

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("%s-%s", clientID, uuid.NewString()[:8])).
		SetAutoReconnect(true).
		SetKeepAlive(60 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Info("connected to broker", "broker", broker)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn("connection to broker lost", "error", err)
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", broker, token.Error())
	}
	return client, nil
}
