package domain

import "time"

// Envelope — метаданные доставки сообщения.
//
// Envelope живёт в заголовках сообщения и путешествует с ним через
// повторные доставки: транспорт владеет его жизненным циклом, updater
// только читает и — при неудачной попытке — переписывает два поля
// перед тем как вернуть сообщение в очередь.
type Envelope struct {
	// RetryAttempt — счётчик неудачных попыток репорта.
	// Увеличивается ровно на 1 за каждую неудачную нетерминальную попытку.
	RetryAttempt int

	// TimeToWait — рекомендованная пауза перед следующей попыткой.
	// Ноль означает «не задано» (первая доставка).
	TimeToWait time.Duration
}

// Wait возвращает паузу перед попыткой репорта:
// min(TimeToWait или starting, если не задано; max).
func (e *Envelope) Wait(starting, max time.Duration) time.Duration {
	wait := e.TimeToWait
	if wait <= 0 {
		wait = starting
	}
	if wait > max {
		wait = max
	}
	return wait
}

// Bump фиксирует неудачную попытку: увеличивает счётчик и удваивает
// рекомендованную паузу с потолком max. Незаданная пауза становится
// starting, так что последовательность пауз — starting, 2*starting, ...
func (e *Envelope) Bump(starting, max time.Duration) {
	e.RetryAttempt++

	wait := e.TimeToWait
	if wait <= 0 {
		wait = starting / 2
	}
	wait *= 2
	if wait > max {
		wait = max
	}
	e.TimeToWait = wait
}
