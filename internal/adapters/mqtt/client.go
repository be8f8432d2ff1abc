// Package mqtt implements the bus ports on an MQTT broker using the Eclipse
// Paho client.
package mqtt

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/bft-labs/aisdecoder/internal/domain"
	"github.com/bft-labs/aisdecoder/internal/ports"
	"github.com/bft-labs/aisdecoder/pkg/log"
)

// Transport variants.
const (
	TransportTCP        = "tcp"
	TransportWebsockets = "websockets"
)

// websocketPath is the broker path used for websocket transport.
const websocketPath = "/mqtt"

// disconnectQuiesce is how long Close lets in-flight work finish, in ms.
const disconnectQuiesce = 250

// Config configures the MQTT client.
type Config struct {
	Host      string
	Port      int
	ClientID  string
	Transport string
	TLS       bool
	Username  string
	Password  string

	// QoS is used for the subscription and every publish.
	QoS byte

	// ConnectTimeout bounds the initial connection and each subscribe.
	ConnectTimeout time.Duration

	Logger   ports.Logger
	Observer ports.Observer
}

// BrokerURL returns the broker address in the form Paho expects.
func (c Config) BrokerURL() string {
	scheme := "tcp"
	path := ""
	switch {
	case c.Transport == TransportWebsockets && c.TLS:
		scheme, path = "wss", websocketPath
	case c.Transport == TransportWebsockets:
		scheme, path = "ws", websocketPath
	case c.TLS:
		scheme = "ssl"
	}
	return scheme + "://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port)) + path
}

type subscription struct {
	topic string
	out   chan<- domain.Delivery
}

// Client is an MQTT implementation of ports.Bus.
type Client struct {
	cfg    Config
	client paho.Client
	logger ports.Logger

	mu   sync.Mutex
	subs []subscription

	// closed ends resubscribe retries.
	closed    chan struct{}
	closeOnce sync.Once
}

// New creates an MQTT client. No connection is made until Connect.
func New(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNoopLogger()
	}

	c := &Client{
		cfg:    cfg,
		logger: cfg.Logger,
		closed: make(chan struct{}),
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL()).
		SetClientID(cfg.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost).
		SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
			c.logger.Info("reconnecting to broker", log.String("broker", cfg.BrokerURL()))
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	c.client = paho.NewClient(opts)
	return c
}

// Connect opens the broker connection.
func (c *Client) Connect(ctx context.Context) error {
	if c.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
	}

	if err := wait(ctx, c.client.Connect()); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrConnection, c.cfg.BrokerURL(), err)
	}

	c.logger.Info("connected to broker",
		log.String("broker", c.cfg.BrokerURL()),
		log.String("client_id", c.cfg.ClientID),
	)
	return nil
}

// Subscribe delivers messages on topic into out. Deliveries that find out
// full are dropped. The subscription is restored after a reconnect.
func (c *Client) Subscribe(ctx context.Context, topic string, out chan<- domain.Delivery) error {
	if c.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
	}

	if err := wait(ctx, c.client.Subscribe(topic, c.cfg.QoS, c.handler(out))); err != nil {
		return fmt.Errorf("%w: subscribe %s: %v", domain.ErrConnection, topic, err)
	}

	c.mu.Lock()
	c.subs = append(c.subs, subscription{topic: topic, out: out})
	c.mu.Unlock()

	c.logger.Info("subscribed", log.Topic(topic), log.Int("qos", int(c.cfg.QoS)))
	return nil
}

// Publish sends msg and waits for the client to complete it.
func (c *Client) Publish(ctx context.Context, msg domain.Outbound) error {
	if err := wait(ctx, c.client.Publish(msg.Topic, c.cfg.QoS, false, msg.Payload)); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrPublish, msg.Topic, err)
	}
	return nil
}

// Close unsubscribes and disconnects.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })

	if !c.client.IsConnected() {
		return nil
	}

	c.mu.Lock()
	topics := make([]string, 0, len(c.subs))
	for _, s := range c.subs {
		topics = append(topics, s.topic)
	}
	c.subs = nil
	c.mu.Unlock()

	if len(topics) > 0 {
		tok := c.client.Unsubscribe(topics...)
		if !tok.WaitTimeout(time.Second) || tok.Error() != nil {
			c.logger.Warn("unsubscribe failed", log.Any("topics", topics), log.Err(tok.Error()))
		}
	}

	c.client.Disconnect(disconnectQuiesce)
	c.logger.Info("disconnected from broker")
	return nil
}

// handler pushes messages into out without blocking the client.
func (c *Client) handler(out chan<- domain.Delivery) paho.MessageHandler {
	return func(_ paho.Client, m paho.Message) {
		d := domain.Delivery{
			Topic:      m.Topic(),
			Payload:    m.Payload(),
			ReceivedAt: time.Now(),
		}
		select {
		case out <- d:
		default:
			c.logger.Warn("queue full, dropping message", log.Topic(d.Topic))
			if c.cfg.Observer != nil {
				c.cfg.Observer.OnQueueDrop()
			}
		}
	}
}

// onConnect restores subscriptions after a reconnect. Paho runs it on its
// own goroutine.
func (c *Client) onConnect(pc paho.Client) {
	c.mu.Lock()
	subs := append([]subscription(nil), c.subs...)
	c.mu.Unlock()

	if len(subs) == 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-c.closed:
			cancel()
		case <-ctx.Done():
		}
	}()

	b := newBackoff(DefaultBackoffInitial, DefaultBackoffMax)
	for _, s := range subs {
		for {
			tok := pc.Subscribe(s.topic, c.cfg.QoS, c.handler(s.out))
			err := wait(ctx, tok)
			if err == nil {
				c.logger.Info("resubscribed", log.Topic(s.topic))
				b.Reset()
				break
			}

			c.logger.Warn("resubscribe failed",
				log.Topic(s.topic),
				log.Err(err),
				log.Duration("retry_in", b.Current()),
			)
			if !pc.IsConnectionOpen() || !b.Wait(ctx) {
				// The next OnConnect retries, or the client is closing.
				return
			}
		}
	}
}

func (c *Client) onConnectionLost(_ paho.Client, err error) {
	c.logger.Warn("connection to broker lost", log.Err(err))
}

// wait blocks until tok completes or ctx ends.
func wait(ctx context.Context, tok paho.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
