package mq

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andrx/courier/internal/domain"
)

// Заголовки сообщения, в которых живёт envelope.
// time_to_wait хранится в миллисекундах.
const (
	headerRetryAttempt = "retry_attempt"
	headerTimeToWait   = "time_to_wait"
)

// EnvelopeFromHeaders читает envelope из заголовков доставки.
// Отсутствующие поля получают нулевые значения (первая доставка).
func EnvelopeFromHeaders(headers amqp.Table) *domain.Envelope {
	env := &domain.Envelope{}
	if headers == nil {
		return env
	}

	if v, ok := headers[headerRetryAttempt]; ok {
		env.RetryAttempt = int(toInt64(v))
	}
	if v, ok := headers[headerTimeToWait]; ok {
		env.TimeToWait = time.Duration(toInt64(v)) * time.Millisecond
	}
	return env
}

// HeadersFromEnvelope сериализует envelope в заголовки сообщения.
func HeadersFromEnvelope(env *domain.Envelope) amqp.Table {
	return amqp.Table{
		headerRetryAttempt: int32(env.RetryAttempt),
		headerTimeToWait:   env.TimeToWait.Milliseconds(),
	}
}

// toInt64 приводит числовое значение AMQP-таблицы к int64.
// Клиентские библиотеки кладут числа разными типами.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float32:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
