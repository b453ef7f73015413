package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/carbon-tracker/internal/model"
)

// DefaultQueue is the durable queue usage events are routed to.
const DefaultQueue = "carbon.events"

// DefaultRedialBackoff is how long Publish fails fast after a failed dial.
const DefaultRedialBackoff = 30 * time.Second

// ErrBrokerBackoff is returned while the publisher waits out a failed dial.
var ErrBrokerBackoff = errors.New("rabbitmq: broker unreachable, waiting before redial")

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(url string) (channel, io.Closer, error)

func dialAMQP(url string) (channel, io.Closer, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(3 * time.Second)})
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	return ch, conn, nil
}

// Publisher sends usage events to a durable queue on the default exchange.
// The connection is opened on first use and dropped after any failure so
// the next publish redials.  After a failed dial no redial is attempted
// for the backoff period; publishes in that window fail immediately.
type Publisher struct {
	url     string
	queue   string
	dial    dialFunc
	backoff time.Duration
	now     func() time.Time

	mu       sync.Mutex
	ch       channel
	conn     io.Closer
	nextDial time.Time
}

// NewPublisher returns a publisher for url.  An empty queue name means
// DefaultQueue.
func NewPublisher(url, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Publisher{url: url, queue: queue, dial: dialAMQP, backoff: DefaultRedialBackoff, now: time.Now}
}

// WithBackoff sets how long to wait after a failed dial before trying again.
func (p *Publisher) WithBackoff(d time.Duration) *Publisher {
	p.backoff = d
	return p
}

// Queue returns the target queue name.
func (p *Publisher) Queue() string { return p.queue }

// Publish marshals ev and publishes it as a persistent message.
func (p *Publisher) Publish(ctx context.Context, ev model.Event) error {
	body, err := json.Marshal(NewUsageEvent(ev))
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		if p.now().Before(p.nextDial) {
			return ErrBrokerBackoff
		}
		if err := p.connect(); err != nil {
			p.nextDial = p.now().Add(p.backoff)
			return err
		}
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.Timestamp.UTC(),
		Type:         ev.Kind,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}

// connect must be called with mu held.
func (p *Publisher) connect() error {
	ch, conn, err := p.dial(p.url)
	if err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		if conn != nil {
			_ = conn.Close()
		}
		return fmt.Errorf("rabbitmq: declare queue: %w", err)
	}
	p.ch, p.conn = ch, conn
	return nil
}

// reset must be called with mu held.
func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
