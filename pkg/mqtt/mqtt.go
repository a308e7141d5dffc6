// Package mqtt wraps the paho client behind the small surface the bridge
// needs: connect once at startup, feed inbound messages into a channel,
// publish outbound payloads, disconnect on shutdown.
package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultConnectTimeout = 10 * time.Second
	publishTimeout        = 5 * time.Second
	disconnectQuiesceMs   = 250
	messageBuffer         = 256
)

type Config struct {
	BrokerURL      string
	ClientID       string
	Username       string
	Password       string
	ConnectTimeout time.Duration
}

// Message is one inbound publication.
type Message struct {
	Topic   string
	Payload []byte
}

type Client struct {
	cli      paho.Client
	qos      byte
	messages chan Message
	closed   chan struct{}
	once     sync.Once
}

// New connects to the broker with the supplied credentials. A handshake
// failure is returned with the broker's reason, reconnect policy afterwards
// is the paho client's own concern.
func New(cfg *Config, qos byte) (*Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(timeout).
		SetOrderMatters(true)

	c := &Client{
		qos:      qos,
		messages: make(chan Message, messageBuffer),
		closed:   make(chan struct{}),
	}

	c.cli = paho.NewClient(opts)

	token := c.cli.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connect to broker %s timed out after %s", cfg.BrokerURL, timeout)
	}

	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to broker %s: %w", cfg.BrokerURL, err)
	}

	return c, nil
}

// Subscribe registers the topic; deliveries land on the Messages channel in
// arrival order.
func (c *Client) Subscribe(topic string) error {
	token := c.cli.Subscribe(topic, c.qos, func(_ paho.Client, m paho.Message) {
		select {
		case c.messages <- Message{Topic: m.Topic(), Payload: m.Payload()}:
		case <-c.closed:
		}
	})

	token.Wait()

	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	return nil
}

func (c *Client) Messages() <-chan Message {
	return c.messages
}

func (c *Client) Publish(topic string, payload []byte) error {
	token := c.cli.Publish(topic, c.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out after %s", topic, publishTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	return nil
}

// Close disconnects from the broker. The Messages channel is left open so a
// reader blocked on it must also watch its own context.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.closed)
		c.cli.Disconnect(disconnectQuiesceMs)
	})
}
