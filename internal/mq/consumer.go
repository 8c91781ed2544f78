package mq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andrx/courier/internal/domain"
	"github.com/andrx/courier/internal/processor"
)

// OnMessage — callback движка диспетчеризации: тело сообщения плюс
// envelope → асинхронный handle обработки. Future не nil тогда и
// только тогда, когда err == nil.
type OnMessage func(message []byte, env *domain.Envelope) (*processor.Future, error)

// Consumer потребляет requests из очереди плагина и доводит каждую
// доставку до одной из трёх развязок: ack, republish с обновлённым
// envelope или discard в DLQ.
type Consumer struct {
	conn      *Connection
	publisher *Publisher
	logger    *slog.Logger

	plugin    string
	queue     string
	onMessage OnMessage
	prefetch  int

	// stopCh создаётся в конструкторе: Stop безопасен в любой момент,
	// в том числе до Start и повторно.
	stopCh   chan struct{}
	stopOnce sync.Once
}

// ConsumerConfig — конфигурация Consumer.
type ConsumerConfig struct {
	// Plugin — имя плагина (routing key для republish).
	Plugin string

	// OnMessage — обработчик сообщений.
	OnMessage OnMessage

	// Prefetch — сколько неподтверждённых доставок держать в полёте.
	// Вместе с размером пула движка ограничивает конкурентность.
	Prefetch int
}

// NewConsumer создаёт Consumer для очереди requests плагина.
func NewConsumer(conn *Connection, publisher *Publisher, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}

	return &Consumer{
		conn:      conn,
		publisher: publisher,
		logger:    logger,
		plugin:    cfg.Plugin,
		queue:     RequestQueue(cfg.Plugin),
		onMessage: cfg.OnMessage,
		prefetch:  prefetch,
		stopCh:    make(chan struct{}),
	}
}

// Start запускает цикл потребления. Блокируется до отмены контекста
// или вызова Stop.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-c.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		deliveries, err := c.setupConsume()
		if err != nil {
			c.logger.Error("failed to setup consume", "queue", c.queue, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.conn.ReconnectNotify():
				c.logger.Info("reconnected, restarting consumer", "queue", c.queue)
				continue
			}
		}

		c.logger.Info("consumer started", "queue", c.queue)

		if err := c.drain(ctx, deliveries); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("deliveries channel closed, waiting for reconnect", "queue", c.queue)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.conn.ReconnectNotify():
				continue
			}
		}
	}
}

// Stop останавливает consumer. Идемпотентен.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

// setupConsume настраивает prefetch и начинает потребление.
func (c *Consumer) setupConsume() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, fmt.Errorf("no channel available")
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		c.queue, // queue
		"",      // consumer tag (auto-generated)
		false,   // auto-ack (подтверждаем вручную)
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}

	return deliveries, nil
}

// drain обрабатывает доставки, пока канал открыт.
func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case raw, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("deliveries channel closed")
			}
			c.handleDelivery(ctx, raw)
		}
	}
}

// handleDelivery отдаёт сообщение движку и дожидается вердикта.
func (c *Consumer) handleDelivery(ctx context.Context, raw amqp.Delivery) {
	env := EnvelopeFromHeaders(raw.Headers)

	c.logger.Debug("received message",
		"queue", c.queue,
		"message_id", raw.MessageId,
		"retry_attempt", env.RetryAttempt,
	)

	fut, err := c.onMessage(raw.Body, env)
	if err == nil {
		err = fut.Wait(ctx)
	}

	c.settle(ctx, raw, env, err)
}

// settle переводит диспозицию движка в действие над доставкой.
func (c *Consumer) settle(ctx context.Context, raw amqp.Delivery, env *domain.Envelope, err error) {
	switch {
	case err == nil:
		raw.Ack(false)

	case domain.ShouldRepublish(err):
		// Движок сам доставку не повторяет — он только советует.
		// Публикуем копию с обновлённым envelope, потом подтверждаем
		// оригинал; при сбое публикации оригинал возвращается в очередь.
		if perr := c.publisher.Republish(ctx, c.plugin, raw.Body, env); perr != nil {
			c.logger.Error("failed to republish message, requeueing original", "error", perr)
			raw.Nack(false, true)
			return
		}
		raw.Ack(false)

	case domain.ShouldDiscard(err):
		c.logger.Warn("discarding message",
			"queue", c.queue,
			"message_id", raw.MessageId,
			"error", err,
		)
		raw.Nack(false, false) // уходит в DLQ

	case ctx.Err() != nil:
		// Shutdown: не трогаем доставку, брокер вернёт её в очередь
		// после закрытия канала.
		c.logger.Debug("shutdown during processing, leaving delivery unacked")

	default:
		c.logger.Error("unexpected processing error, requeueing",
			"queue", c.queue,
			"message_id", raw.MessageId,
			"error", err,
		)
		raw.Nack(false, true)
	}
}
