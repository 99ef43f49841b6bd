package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 500 // milliseconds
	defaultKeepAlive         = 60 * time.Second
)

var (
	ErrConnectionFailed = errors.New("mqtt connection failed")
	ErrPublishTimeout   = errors.New("mqtt publish timeout")
)

// Options configures the MQTT publisher.
type Options struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Username string
	Password string
	QoS      byte
}

// tokenPublisher is the part of pahomqtt.Client the publisher uses.
type tokenPublisher interface {
	Publish(topic string, qos byte, retained bool, payload any) pahomqtt.Token
}

// MQTTPublisher publishes events as JSON to an MQTT broker.
type MQTTPublisher struct {
	client  pahomqtt.Client
	pub     tokenPublisher
	qos     byte
	timeout time.Duration
	topics  Topics
}

// Connect dials the broker and announces the publisher as online.
func Connect(opts Options) (*MQTTPublisher, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("%w: broker is required", ErrConnectionFailed)
	}
	if opts.ClientID == "" {
		opts.ClientID = "remotehub"
	}

	co := pahomqtt.NewClientOptions()
	co.AddBroker(opts.Broker)
	co.SetClientID(opts.ClientID)
	if opts.Username != "" {
		co.SetUsername(opts.Username)
		co.SetPassword(opts.Password)
	}
	co.SetCleanSession(true)
	co.SetAutoReconnect(true)
	co.SetConnectTimeout(defaultConnectTimeout)
	co.SetKeepAlive(defaultKeepAlive)
	co.SetWill(Topics{}.Status(), statusPayload("offline"), 1, true)
	co.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", opts.Broker).Msg("mqtt connection lost")
	})

	client := pahomqtt.NewClient(co)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	p := &MQTTPublisher{
		client:  client,
		pub:     client,
		qos:     opts.QoS,
		timeout: defaultPublishTimeout,
	}
	if err := p.publish(context.Background(), p.topics.Status(), true, statusPayload("online")); err != nil {
		log.Warn().Err(err).Msg("failed to publish online status")
	}
	log.Info().Str("broker", opts.Broker).Msg("mqtt publisher connected")
	return p, nil
}

func (p *MQTTPublisher) PublishLearn(ctx context.Context, ev LearnEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	return p.publishJSON(ctx, p.topics.Learn(ev.DeviceID), ev)
}

func (p *MQTTPublisher) PublishGenerate(ctx context.Context, ev GenerateEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	return p.publishJSON(ctx, p.topics.Generate(), ev)
}

// Close publishes the offline status and disconnects.
func (p *MQTTPublisher) Close() error {
	if p.client == nil {
		return nil
	}
	if p.client.IsConnected() {
		_ = p.publish(context.Background(), p.topics.Status(), true, statusPayload("offline"))
	}
	p.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}

func (p *MQTTPublisher) publishJSON(ctx context.Context, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding event for %s: %w", topic, err)
	}
	return p.publish(ctx, topic, false, payload)
}

func (p *MQTTPublisher) publish(ctx context.Context, topic string, retained bool, payload any) error {
	token := p.pub.Publish(topic, p.qos, retained, payload)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publishing to %s: %w", topic, err)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: %s", ErrPublishTimeout, topic)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func statusPayload(status string) string {
	return fmt.Sprintf(`{"status":%q,"timestamp":%q}`, status, time.Now().UTC().Format(time.RFC3339))
}
