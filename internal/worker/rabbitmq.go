package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"
)

// RabbitConfig names the broker resources the worker uses.
type RabbitConfig struct {
	URL            string
	Queue          string // durable queue of AnalysisJob messages
	ResultExchange string // topic exchange receiving AnalysisOutcome messages
	Concurrency    int    // consumer goroutines, default 3
}

// Consumer connects the Processor to RabbitMQ.
type Consumer struct {
	config    RabbitConfig
	conn      *amqp.Connection
	publisher *RabbitPublisher
	logger    *slog.Logger
}

// DialRabbit connects to the broker and declares the queue and exchange.
func DialRabbit(cfg RabbitConfig, logger *slog.Logger) (*Consumer, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error dialling rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		cfg.Queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	if err := ch.ExchangeDeclare(
		cfg.ResultExchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.ResultExchange, err)
	}

	publisher, err := NewRabbitPublisher(conn, cfg.ResultExchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Consumer{config: cfg, conn: conn, publisher: publisher, logger: logger}, nil
}

// Publisher returns the publisher for the result exchange.
func (c *Consumer) Publisher() *RabbitPublisher {
	return c.publisher
}

// Close closes the publisher channel and the connection.
func (c *Consumer) Close() error {
	_ = c.publisher.Close()
	return c.conn.Close()
}

// Run consumes jobs with Concurrency goroutines until ctx is cancelled, a
// consumer stops or the broker closes the connection.
func (c *Consumer) Run(ctx context.Context, processor *Processor) error {
	closed := c.conn.NotifyClose(make(chan *amqp.Error, 1))

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, c.config.Concurrency)
	for i := range c.config.Concurrency {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := c.consume(workerCtx, id, processor); err != nil {
				errs <- err
				cancel()
			}
		}(i + 1)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case amqpErr := <-closed:
		if amqpErr != nil {
			runErr = fmt.Errorf("rabbitmq connection closed: %w", amqpErr)
		}
		cancel()
	case runErr = <-errs:
	}
	wg.Wait()
	return runErr
}

// consume runs one consumer on its own channel.
func (c *Consumer) consume(ctx context.Context, id int, processor *Processor) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("worker %d: error opening channel: %w", id, err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("worker %d: failed to set prefetch: %w", id, err)
	}

	msgs, err := ch.Consume(
		c.config.Queue,
		fmt.Sprintf("job-matcher-%d", id),
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("worker %d: error consuming queue: %w", id, err)
	}

	c.logger.Info("worker started", "worker", id, "queue", c.config.Queue)
	return deliver(ctx, id, msgs, processor)
}

// deliver hands each message to processor until ctx is cancelled. A delivery
// channel that closes first is an error: the consumer was cancelled or its
// queue deleted and no more jobs will arrive.
func deliver(ctx context.Context, id int, msgs <-chan amqp.Delivery, processor *Processor) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("worker %d: delivery channel closed", id)
			}
			// Handle settles the delivery and logs job failures itself.
			_ = processor.Handle(ctx, msg.Body, msg)
		}
	}
}

// RabbitPublisher publishes outcomes to a topic exchange. It serializes
// access to its channel and is safe for concurrent use.
type RabbitPublisher struct {
	exchange string

	mu sync.Mutex
	ch *amqp.Channel
}

// NewRabbitPublisher opens a dedicated channel for publishing to exchange.
func NewRabbitPublisher(conn *amqp.Connection, exchange string) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("error opening publish channel: %w", err)
	}
	return &RabbitPublisher{exchange: exchange, ch: ch}, nil
}

// Publish sends body as a persistent JSON message.
func (p *RabbitPublisher) Publish(_ context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.ch.Publish(
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Close closes the publish channel.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Close()
}
