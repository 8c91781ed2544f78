// Package gateway — HTTP-клиент координирующего сервера.
//
// Gateway — центральный сервер, который владеет состоянием всех
// requests. Плагин не хранит ничего на диске: единственный способ
// зафиксировать исход работы — отрепортить его через этот клиент.
//
// Клиент различает два рода ошибок, на которых строится вся логика
// устойчивого репорта (см. пакет updater):
//
//   - ErrConnection — сервер недоступен (сеть, DNS, timeout).
//     Повторная попытка имеет смысл после восстановления связи.
//   - ErrClient — сервер определённо отверг запрос (4xx), например
//     request уже в терминальном статусе. Повтор бессмысленен.
//
// Ответы 5xx — обычные ошибки: сервер жив, но попытку стоит повторить
// с backoff.
package gateway
