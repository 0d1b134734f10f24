package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const DefaultQueue = "task_audit_logs"

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event records one mutation of the /todo resource.
type Event struct {
	Action    Action    `json:"action"`
	TaskID    string    `json:"taskId"`
	Status    string    `json:"status,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *zap.Logger
}

// DialAMQP connects to url and declares a durable queue.
func DialAMQP(url, queue string, log *zap.Logger) (*AMQPPublisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("audit: dial: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("audit: open channel: %w", err)
	}
	q, err := channel.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("audit: declare queue: %w", err)
	}
	return &AMQPPublisher{conn: conn, channel: channel, queue: q.Name, log: log.Named("audit")}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("audit: encode: %w", err)
	}
	err = p.channel.PublishWithContext(ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.At,
		},
	)
	if err != nil {
		return fmt.Errorf("audit: publish: %w", err)
	}
	p.log.Debug("event published", zap.String("action", string(ev.Action)), zap.String("task_id", ev.TaskID))
	return nil
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var ErrClosed = errors.New("audit: publisher closed")

// Async publishes from a goroutine with a bounded timeout so request
// handlers never wait on the broker. Close waits for in-flight events.
type Async struct {
	next    Publisher
	timeout time.Duration
	log     *zap.Logger

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

func NewAsync(next Publisher, timeout time.Duration, log *zap.Logger) *Async {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Async{next: next, timeout: timeout, log: log.Named("audit")}
}

func (a *Async) Publish(_ context.Context, ev Event) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.inflight.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.next.Publish(ctx, ev); err != nil {
			a.log.Warn("publish audit event", zap.String("task_id", ev.TaskID), zap.Error(err))
		}
	}()
	return nil
}

func (a *Async) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.inflight.Wait()
	return a.next.Close()
}
