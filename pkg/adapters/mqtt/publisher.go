// Package mqtt publishes session outcomes to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/aretw0/heartaxis/pkg/domain"
)

// DefaultTopic is the prefix used when none is configured.
const DefaultTopic = "heartaxis/outcomes"

// ErrNotConnected is returned when publishing on a disconnected client.
var ErrNotConnected = errors.New("mqtt client not connected")

// Client is the subset of paho.Client the publisher uses.
type Client interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher implements ports.OutcomePublisher over MQTT. Each outcome is
// published as JSON to "<topic>/<session-id>".
type Publisher struct {
	client   Client
	topic    string
	qos      byte
	retained bool
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithTopic sets the topic prefix.
func WithTopic(topic string) Option {
	return func(p *Publisher) {
		p.topic = strings.TrimSuffix(topic, "/")
	}
}

// WithQoS sets the delivery guarantee (0, 1 or 2).
func WithQoS(qos byte) Option {
	return func(p *Publisher) {
		p.qos = qos
	}
}

// WithRetained keeps the last outcome of each session on the broker.
func WithRetained(retained bool) Option {
	return func(p *Publisher) {
		p.retained = retained
	}
}

// NewPublisher wraps a connected client.
func NewPublisher(client Client, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		topic:  DefaultTopic,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Topic returns the topic of a session.
func (p *Publisher) Topic(sessionID string) string {
	return p.topic + "/" + sessionID
}

// Publish sends the outcome and waits for the broker (or ctx).
func (p *Publisher) Publish(ctx context.Context, sessionID string, outcome domain.Outcome) error {
	if !p.client.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to encode outcome: %w", err)
	}

	token := p.client.Publish(p.Topic(sessionID), p.qos, p.retained, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish to %s failed: %w", p.Topic(sessionID), err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connect dials the broker and waits until the connection is up or the
// timeout expires.
func Connect(broker, clientID string, timeout time.Duration) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out after %s", broker, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s failed: %w", broker, err)
	}
	return client, nil
}
