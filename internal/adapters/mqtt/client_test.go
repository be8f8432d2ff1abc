package mqtt

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bft-labs/aisdecoder/internal/domain"
)

func TestConfig_BrokerURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"tcp", Config{Host: "localhost", Port: 1883, Transport: TransportTCP}, "tcp://localhost:1883"},
		{"empty transport", Config{Host: "broker", Port: 1883}, "tcp://broker:1883"},
		{"tls", Config{Host: "broker", Port: 8883, TLS: true}, "ssl://broker:8883"},
		{"websockets", Config{Host: "broker", Port: 80, Transport: TransportWebsockets}, "ws://broker:80/mqtt"},
		{"secure websockets", Config{Host: "broker", Port: 443, Transport: TransportWebsockets, TLS: true}, "wss://broker:443/mqtt"},
		{"ipv6", Config{Host: "::1", Port: 1883}, "tcp://[::1]:1883"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.BrokerURL(); got != tt.want {
				t.Errorf("BrokerURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

// fakeMessage implements paho.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type dropCounter struct{ drops atomic.Int32 }

func (d *dropCounter) OnDelivery()                    {}
func (d *dropCounter) OnOutcome(domain.Outcome)       {}
func (d *dropCounter) OnPublish(time.Duration, error) {}
func (d *dropCounter) OnQueueDrop()                   { d.drops.Add(1) }

func TestClient_HandlerDropsWhenQueueFull(t *testing.T) {
	obs := &dropCounter{}
	c := New(Config{Host: "localhost", Port: 1883, Observer: obs})

	out := make(chan domain.Delivery, 1)
	h := c.handler(out)

	h(nil, fakeMessage{topic: "ais/raw", payload: []byte("one")})
	h(nil, fakeMessage{topic: "ais/raw", payload: []byte("two")})

	if got := obs.drops.Load(); got != 1 {
		t.Errorf("drops = %d, want 1", got)
	}

	d := <-out
	if d.Topic != "ais/raw" || string(d.Payload) != "one" {
		t.Errorf("delivery = %+v, want first message", d)
	}
	if d.ReceivedAt.IsZero() {
		t.Error("ReceivedAt not set")
	}
}

func TestClient_PublishNotConnected(t *testing.T) {
	c := New(Config{Host: "localhost", Port: 1883})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := c.Publish(ctx, domain.Outbound{Topic: "ais/decoded/1/1", Payload: []byte("{}")})
	if !errors.Is(err, domain.ErrPublish) {
		t.Errorf("Publish() error = %v, want ErrPublish", err)
	}
}

func TestClient_ConnectRefused(t *testing.T) {
	// Reserve a port and close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	c := New(Config{
		Host:           "127.0.0.1",
		Port:           port,
		ClientID:       "test",
		ConnectTimeout: 2 * time.Second,
	})
	defer c.Close()

	if err := c.Connect(context.Background()); !errors.Is(err, domain.ErrConnection) {
		t.Errorf("Connect() error = %v, want ErrConnection", err)
	}
}

func TestClient_CloseNotConnected(t *testing.T) {
	c := New(Config{Host: "localhost", Port: 1883})

	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	// Second close is a no-op.
	if err := c.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestBackoff(t *testing.T) {
	b := newBackoff(time.Millisecond, 4*time.Millisecond)
	ctx := context.Background()

	for _, want := range []time.Duration{2, 4, 4} {
		if !b.Wait(ctx) {
			t.Fatal("Wait() = false with live context")
		}
		if b.Current() != want*time.Millisecond {
			t.Errorf("Current() = %v, want %v", b.Current(), want*time.Millisecond)
		}
	}

	b.Reset()
	if b.Current() != time.Millisecond {
		t.Errorf("Current() after Reset = %v", b.Current())
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	slow := newBackoff(time.Hour, time.Hour)
	if slow.Wait(canceled) {
		t.Error("Wait() = true with canceled context")
	}
}
