package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchanges.
const (
	// ExchangeRequests — обменник requests; routing key — имя плагина.
	ExchangeRequests = "courier.requests"

	// ExchangeDLQ — обменник отброшенных сообщений.
	ExchangeDLQ = "courier.dlq"
)

// QueueDLQ — очередь отброшенных сообщений (ручной разбор оператором).
const QueueDLQ = "dlq.requests"

const routingKeyDLQ = "requests"

// RequestQueue возвращает имя очереди requests для плагина.
func RequestQueue(plugin string) string {
	return "requests." + plugin
}

// SetupTopology создаёт обменники, очередь requests плагина и DLQ.
//
// Discard-диспозиция реализуется через dead-letter: nack без requeue
// уводит сообщение в dlq.requests, где его может разобрать оператор.
func SetupTopology(ctx context.Context, conn *Connection, plugin string) error {
	ch := conn.Channel()
	if ch == nil {
		return fmt.Errorf("no channel available")
	}

	for _, name := range []string{ExchangeRequests, ExchangeDLQ} {
		err := ch.ExchangeDeclare(
			name,     // name
			"direct", // type
			true,     // durable
			false,    // auto-deleted
			false,    // internal
			false,    // no-wait
			nil,      // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", name, err)
		}
	}

	queues := []struct {
		name string
		args amqp.Table
	}{
		{RequestQueue(plugin), amqp.Table{
			"x-dead-letter-exchange":    ExchangeDLQ,
			"x-dead-letter-routing-key": routingKeyDLQ,
		}},
		{QueueDLQ, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			q.name, // name
			true,   // durable
			false,  // delete when unused
			false,  // exclusive
			false,  // no-wait
			q.args, // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	bindings := []struct {
		queue      string
		routingKey string
		exchange   string
	}{
		{RequestQueue(plugin), plugin, ExchangeRequests},
		{QueueDLQ, routingKeyDLQ, ExchangeDLQ},
	}

	for _, b := range bindings {
		if err := ch.QueueBind(b.queue, b.routingKey, b.exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}
