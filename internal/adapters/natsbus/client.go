// Package natsbus implements the bus ports on a NATS server. MQTT-style topics
// are mapped to NATS subjects so the rest of the service is unaware of the
// difference.
package natsbus

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/bft-labs/aisdecoder/internal/domain"
	"github.com/bft-labs/aisdecoder/internal/ports"
	"github.com/bft-labs/aisdecoder/pkg/log"
)

// reconnectWait is the pause between reconnect attempts.
const reconnectWait = 2 * time.Second

var (
	toSubject = strings.NewReplacer("/", ".", "+", "*", "#", ">")
	toTopic   = strings.NewReplacer(".", "/")
)

// Subject converts an MQTT topic or filter to a NATS subject.
func Subject(topic string) string {
	return toSubject.Replace(topic)
}

// Topic converts a NATS subject back to an MQTT-style topic.
func Topic(subject string) string {
	return toTopic.Replace(subject)
}

// Config configures the NATS client.
type Config struct {
	Host     string
	Port     int
	Name     string
	TLS      bool
	Username string
	Password string

	// Flush waits for the server to acknowledge each publish. Set when the
	// configured QoS is above zero.
	Flush bool

	ConnectTimeout time.Duration

	Logger   ports.Logger
	Observer ports.Observer
}

// URL returns the server address.
func (c Config) URL() string {
	scheme := "nats"
	if c.TLS {
		scheme = "tls"
	}
	return scheme + "://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Client is a NATS implementation of ports.Bus.
type Client struct {
	cfg    Config
	logger ports.Logger

	mu   sync.Mutex
	conn *nats.Conn
	subs []*nats.Subscription
}

// New creates a NATS client. No connection is made until Connect.
func New(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNoopLogger()
	}
	return &Client{cfg: cfg, logger: cfg.Logger}
}

func (c *Client) options() []nats.Option {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				c.logger.Warn("connection to server lost", log.Err(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.logger.Info("reconnected to server", log.String("server", nc.ConnectedUrl()))
		}),
	}
	if c.cfg.Name != "" {
		opts = append(opts, nats.Name(c.cfg.Name))
	}
	if c.cfg.ConnectTimeout > 0 {
		opts = append(opts, nats.Timeout(c.cfg.ConnectTimeout))
	}
	if c.cfg.Username != "" {
		opts = append(opts, nats.UserInfo(c.cfg.Username, c.cfg.Password))
	}
	if c.cfg.TLS {
		opts = append(opts, nats.Secure(&tls.Config{MinVersion: tls.VersionTLS12}))
	}
	return opts
}

// Connect opens the server connection.
func (c *Client) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}

	nc, err := nats.Connect(c.cfg.URL(), c.options()...)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrConnection, c.cfg.URL(), err)
	}

	c.mu.Lock()
	c.conn = nc
	c.mu.Unlock()

	c.logger.Info("connected to server",
		log.String("server", c.cfg.URL()),
		log.String("name", c.cfg.Name),
	)
	return nil
}

// Subscribe delivers messages matching topic into out. Deliveries that
// find out full are dropped. The client library restores subscriptions
// after a reconnect.
func (c *Client) Subscribe(ctx context.Context, topic string, out chan<- domain.Delivery) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("%w: subscribe %s: not connected", domain.ErrConnection, topic)
	}

	sub, err := c.conn.Subscribe(Subject(topic), c.handler(out))
	if err != nil {
		return fmt.Errorf("%w: subscribe %s: %v", domain.ErrConnection, topic, err)
	}
	c.subs = append(c.subs, sub)

	c.logger.Info("subscribed", log.Topic(topic), log.String("subject", sub.Subject))
	return nil
}

// Publish sends msg. With Flush set it also waits for the server to
// process it.
func (c *Client) Publish(ctx context.Context, msg domain.Outbound) error {
	c.mu.Lock()
	nc := c.conn
	c.mu.Unlock()

	if nc == nil {
		return fmt.Errorf("%w: %s: not connected", domain.ErrPublish, msg.Topic)
	}
	if err := nc.Publish(Subject(msg.Topic), msg.Payload); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrPublish, msg.Topic, err)
	}
	if c.cfg.Flush {
		if err := nc.FlushWithContext(ctx); err != nil {
			return fmt.Errorf("%w: %s: flush: %v", domain.ErrPublish, msg.Topic, err)
		}
	}
	return nil
}

// Close unsubscribes and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			c.logger.Warn("unsubscribe failed", log.String("subject", sub.Subject), log.Err(err))
		}
	}
	c.subs = nil

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.logger.Info("disconnected from server")
	}
	return nil
}

func (c *Client) handler(out chan<- domain.Delivery) nats.MsgHandler {
	return func(m *nats.Msg) {
		d := domain.Delivery{
			Topic:      Topic(m.Subject),
			Payload:    m.Data,
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
