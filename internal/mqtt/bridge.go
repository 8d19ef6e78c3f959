package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"energydash/internal/models"
	"energydash/internal/utils"
)

const publishTimeout = 2 * time.Second

// Client is the part of mqtt.Client the bridge uses
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
}

// Commander applies device commands received over MQTT
type Commander interface {
	ToggleDevice(id string) (models.Snapshot, bool)
	SetDeviceActive(id string, active bool) (models.Snapshot, bool)
}

// Command is the payload accepted on <prefix>/<id>/commands. Either On
// sets the state explicitly or Action "toggle" flips it.
type Command struct {
	On     *bool  `json:"on,omitempty"`
	Action string `json:"action,omitempty"`
}

var ErrUnknownCommand = errors.New("unknown command")

// Bridge publishes device state and accepts on/off commands over MQTT
type Bridge struct {
	client Client
	prefix string
	ctrl   Commander
	log    *slog.Logger

	published map[string]models.DeviceState
}

// NewBridge creates a bridge using topics under prefix
func NewBridge(client Client, prefix string, ctrl Commander, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{
		client:    client,
		prefix:    prefix,
		ctrl:      ctrl,
		log:       log.With("component", "mqtt"),
		published: make(map[string]models.DeviceState),
	}
}

func (b *Bridge) StateTopic(id string) string { return fmt.Sprintf("%s/%s/state", b.prefix, id) }

func (b *Bridge) commandTopic() string { return fmt.Sprintf("%s/+/commands", b.prefix) }

// Start subscribes to device commands
func (b *Bridge) Start() error {
	topic := b.commandTopic()
	b.log.Info("subscribing to commands", "topic", topic)
	token := b.client.Subscribe(topic, 1, b.onCommand)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("subscribing to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	return nil
}

// Stop unsubscribes from device commands
func (b *Bridge) Stop() {
	b.client.Unsubscribe(b.commandTopic()).WaitTimeout(publishTimeout)
}

// Run publishes each snapshot until ctx is done or snaps is closed
func (b *Bridge) Run(ctx context.Context, snaps <-chan models.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			if err := b.PublishSnapshot(snap); err != nil {
				b.log.Warn("device state not published", "error", err)
			}
		}
	}
}

// PublishSnapshot publishes the retained state of every device that
// changed since the last successful publish
func (b *Bridge) PublishSnapshot(snap models.Snapshot) error {
	var errs []error
	for _, d := range snap.Devices {
		state := d.State()
		if prev, ok := b.published[d.ID]; ok && prev == state {
			continue
		}
		payload, err := json.Marshal(state)
		if err != nil {
			errs = append(errs, fmt.Errorf("encoding %s: %w", d.ID, err))
			continue
		}
		token := b.client.Publish(b.StateTopic(d.ID), 0, true, payload)
		if !token.WaitTimeout(publishTimeout) {
			errs = append(errs, fmt.Errorf("publishing %s: timed out", d.ID))
			continue
		}
		if err := token.Error(); err != nil {
			errs = append(errs, fmt.Errorf("publishing %s: %w", d.ID, err))
			continue
		}
		b.published[d.ID] = state
	}
	return errors.Join(errs...)
}

func (b *Bridge) onCommand(_ mqtt.Client, msg mqtt.Message) {
	deviceID := utils.ParseDeviceID(msg.Topic())
	if err := b.HandleCommand(deviceID, msg.Payload()); err != nil {
		b.log.Warn("command rejected", "topic", msg.Topic(), "error", err)
	}
}

// HandleCommand decodes payload and applies it to deviceID. Commands for
// unknown devices are ignored like any other toggle of an unknown id.
func (b *Bridge) HandleCommand(deviceID string, payload []byte) error {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("decoding command: %w", err)
	}

	switch {
	case cmd.On != nil:
		_, changed := b.ctrl.SetDeviceActive(deviceID, *cmd.On)
		b.log.Debug("set command", "device_id", deviceID, "on", *cmd.On, "changed", changed)
	case cmd.Action == "toggle":
		_, found := b.ctrl.ToggleDevice(deviceID)
		b.log.Debug("toggle command", "device_id", deviceID, "found", found)
	default:
		return ErrUnknownCommand
	}
	return nil
}
