// Package mq — транспорт requests поверх RabbitMQ.
//
// # Топология
//
//	courier.requests (direct)
//	└── requests.<plugin> [routing: <plugin>]
//	        Consumer: плагин
//	        DLQ: dlq.requests
//
//	courier.dlq (direct)
//	└── dlq.requests [routing: requests]
//	        Ручной разбор оператором
//
// # Семантика доставки
//
// Транспорт владеет подтверждениями и повторными доставками; движок
// диспетчеризации только советует через диспозиции:
//
//   - nil — обработано, ack;
//   - domain.ErrRepublishMessage — копия сообщения публикуется заново
//     с обновлёнными envelope-заголовками (retry_attempt, time_to_wait),
//     оригинал подтверждается;
//   - domain.ErrDiscardMessage — nack без requeue, сообщение уходит
//     в DLQ.
//
// Envelope путешествует в заголовках сообщения и мутируется только
// updater'ом; отсутствующие заголовки означают первую доставку.
package mq
