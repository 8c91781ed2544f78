package gateway

import "errors"

// Таксономия ошибок клиента.
//
// Updater различает ровно два рода ошибок: connectivity (сервер
// недоступен — всегда можно повторить) и client (сервер определённо
// отверг запрос — повторять бессмысленно). Всё остальное (5xx,
// битый ответ) — обычная ошибка, ретраится через backoff.
var (
	// ErrConnection — не удалось достучаться до gateway (сеть, DNS, timeout).
	ErrConnection = errors.New("gateway connection failed")

	// ErrClient — gateway ответил клиентской ошибкой (4xx),
	// например request уже находится в терминальном статусе.
	ErrClient = errors.New("gateway rejected request")
)
