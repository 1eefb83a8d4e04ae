package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	serr "github.com/next-trace/scg-service-state/contract/errors"
)

const (
	exchangeKind = "topic"

	minRedial = time.Second
	maxRedial = 30 * time.Second
)

// Config selects the broker and exchange for NewWithAMQPConn.
type Config struct {
	URL         string        `yaml:"url"`
	Exchange    string        `yaml:"exchange"`
	ConnTimeout time.Duration `yaml:"connTimeout"`

	Logger *slog.Logger `yaml:"-"`
}

func (c Config) exchange() string {
	if c.Exchange == "" {
		return DefaultExchange
	}

	return c.Exchange
}

// redial yields the wait before each connection attempt: doubling from
// minRedial up to maxRedial, with up to a quarter of jitter on top.
type redial struct{ base time.Duration }

func (r *redial) next() time.Duration {
	if r.base < minRedial {
		r.base = minRedial
	}

	d := r.base + rand.N(r.base/4+1) //nolint:gosec // jitter only
	r.base = min(r.base*2, maxRedial)

	return min(d, maxRedial)
}

func (r *redial) reset() { r.base = 0 }

// reconnector owns one AMQP connection and channel, redialing when the broker
// drops them. Publishers block until a channel is up.
type reconnector struct {
	cfg Config

	mu   sync.RWMutex
	conn *amqp.Connection
	ch   *amqp.Channel
	up   chan struct{} // closed while ch is usable
	done chan struct{}
	once sync.Once
}

func newReconnector(cfg Config) *reconnector {
	rc := &reconnector{cfg: cfg, up: make(chan struct{}), done: make(chan struct{})}
	go rc.loop()

	return rc
}

// Publish sends m as a persistent JSON message once a channel is available.
func (rc *reconnector) Publish(ctx context.Context, m PubMsg) error {
	ch, err := rc.channel(ctx)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, m.Exchange, m.RoutingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Headers:      toTable(m.Headers),
		ContentType:  "application/json",
		Body:         m.Body,
	})
}

func (rc *reconnector) channel(ctx context.Context) (*amqp.Channel, error) {
	rc.mu.RLock()
	ch, up := rc.ch, rc.up
	rc.mu.RUnlock()

	if ch != nil {
		return ch, nil
	}

	select {
	case <-up:
	case <-rc.done:
		return nil, fmt.Errorf("%w: rabbitmq publisher closed", serr.ErrPublishFailed)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	rc.mu.RLock()
	defer rc.mu.RUnlock()

	if rc.ch == nil {
		return nil, fmt.Errorf("%w: rabbitmq not connected", serr.ErrPublishFailed)
	}

	return rc.ch, nil
}

func (rc *reconnector) loop() {
	var wait redial

	for {
		conn, ch, err := rc.dial()
		if err != nil {
			d := wait.next()
			rc.warn("rabbitmq connect", slog.Any("err", err), slog.Duration("retryIn", d))

			if !rc.sleep(d) {
				return
			}

			continue
		}

		wait.reset()
		rc.attach(conn, ch)

		lost := conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-rc.done:
			rc.detach()
			return
		case amqpErr := <-lost:
			rc.warn("rabbitmq connection lost", slog.Any("err", amqpErr))
			rc.detach()
		}
	}
}

// dial opens a connection and channel and declares the event exchange.
func (rc *reconnector) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(rc.cfg.URL, amqp.Config{
		Locale:     "en_US",
		Properties: amqp.Table{"product": "scg-service-state"},
		Dial:       amqp.DefaultDial(rc.cfg.ConnTimeout),
	})
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	if err := ch.ExchangeDeclare(rc.cfg.exchange(), exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, nil, err
	}

	return conn, ch, nil
}

func (rc *reconnector) attach(conn *amqp.Connection, ch *amqp.Channel) {
	rc.mu.Lock()
	rc.conn, rc.ch = conn, ch
	close(rc.up)
	rc.mu.Unlock()
}

// detach closes the current connection; publishers wait on a fresh up channel.
func (rc *reconnector) detach() {
	rc.mu.Lock()
	conn, ch := rc.conn, rc.ch
	rc.conn, rc.ch = nil, nil
	rc.up = make(chan struct{})
	rc.mu.Unlock()

	if ch != nil {
		_ = ch.Close()
	}

	if conn != nil {
		_ = conn.Close()
	}
}

// sleep waits d and reports false when the reconnector was shut down.
func (rc *reconnector) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-rc.done:
		return false
	case <-t.C:
		return true
	}
}

func (rc *reconnector) shutdown() {
	rc.once.Do(func() {
		close(rc.done)
		rc.detach()
	})
}

func (rc *reconnector) warn(msg string, attrs ...any) {
	if rc.cfg.Logger != nil {
		rc.cfg.Logger.Warn(msg, attrs...)
	}
}

// NewWithAMQPConn dials RabbitMQ in the background, redialing on loss, and
// declares the service event exchange. cleanup closes the connection.
func NewWithAMQPConn(cfg Config) (*Adapter, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("%w: rabbitmq url required", serr.ErrPublishFailed)
	}

	rc := newReconnector(cfg)
	ad := New(rc)
	ad.Exchange = cfg.exchange()

	return ad, rc.shutdown, nil
}
