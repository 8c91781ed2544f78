package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andrx/courier/internal/domain"
)

// Publisher публикует requests в очередь плагина.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// PublishRequest публикует новый request в очередь плагина.
// Envelope-заголовки не выставляются: первая доставка идёт с дефолтами.
func (p *Publisher) PublishRequest(ctx context.Context, plugin string, req *domain.Request) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return p.publish(ctx, plugin, body, nil)
}

// Republish возвращает сообщение в очередь плагина с обновлённым
// envelope. Тело не трогается: транспорт владеет только заголовками.
func (p *Publisher) Republish(ctx context.Context, plugin string, body []byte, env *domain.Envelope) error {
	p.logger.Debug("republishing message",
		"plugin", plugin,
		"retry_attempt", env.RetryAttempt,
		"time_to_wait", env.TimeToWait,
	)
	return p.publish(ctx, plugin, body, HeadersFromEnvelope(env))
}

func (p *Publisher) publish(ctx context.Context, plugin string, body []byte, headers amqp.Table) error {
	ch := p.conn.Channel()
	if ch == nil {
		return fmt.Errorf("no channel available")
	}

	err := ch.PublishWithContext(ctx,
		ExchangeRequests, // exchange
		plugin,           // routing key
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			MessageId:    uuid.NewString(),
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Headers:      headers,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", ExchangeRequests, err)
	}
	return nil
}
