package mq

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andrx/courier/internal/domain"
)

func TestEnvelopeFromHeaders_Empty(t *testing.T) {
	env := EnvelopeFromHeaders(nil)
	if env.RetryAttempt != 0 || env.TimeToWait != 0 {
		t.Errorf("expected zero envelope, got %+v", env)
	}

	env = EnvelopeFromHeaders(amqp.Table{})
	if env.RetryAttempt != 0 || env.TimeToWait != 0 {
		t.Errorf("expected zero envelope, got %+v", env)
	}
}

func TestEnvelopeHeaders_RoundTrip(t *testing.T) {
	env := &domain.Envelope{RetryAttempt: 3, TimeToWait: 20 * time.Second}

	got := EnvelopeFromHeaders(HeadersFromEnvelope(env))
	if got.RetryAttempt != env.RetryAttempt {
		t.Errorf("retry_attempt: expected %d, got %d", env.RetryAttempt, got.RetryAttempt)
	}
	if got.TimeToWait != env.TimeToWait {
		t.Errorf("time_to_wait: expected %v, got %v", env.TimeToWait, got.TimeToWait)
	}
}

func TestEnvelopeFromHeaders_NumericVariants(t *testing.T) {
	// Разные клиенты пишут числовые заголовки разными AMQP-типами.
	tests := []struct {
		name    string
		headers amqp.Table
	}{
		{"int32", amqp.Table{"retry_attempt": int32(2), "time_to_wait": int32(10000)}},
		{"int64", amqp.Table{"retry_attempt": int64(2), "time_to_wait": int64(10000)}},
		{"float64", amqp.Table{"retry_attempt": float64(2), "time_to_wait": float64(10000)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := EnvelopeFromHeaders(tt.headers)
			if env.RetryAttempt != 2 {
				t.Errorf("expected retry_attempt 2, got %d", env.RetryAttempt)
			}
			if env.TimeToWait != 10*time.Second {
				t.Errorf("expected 10s, got %v", env.TimeToWait)
			}
		})
	}
}

func TestEnvelopeFromHeaders_IgnoresGarbage(t *testing.T) {
	env := EnvelopeFromHeaders(amqp.Table{
		"retry_attempt": "two",
		"time_to_wait":  true,
	})
	if env.RetryAttempt != 0 || env.TimeToWait != 0 {
		t.Errorf("non-numeric headers must be ignored, got %+v", env)
	}
}
