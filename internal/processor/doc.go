// Package processor — движок диспетчеризации requests.
//
// # Обзор
//
// Processor превращает входящее сообщение транспорта в провалидированную,
// выполненную и отрепорченную работу:
//
//	transport → OnMessageReceived → (parse, validate) → задача в пуле
//	  → (IN_PROGRESS, report) → вызов команды → (SUCCESS|ERROR, report)
//
// # Диспетчеризация команд
//
// Имя команды request'а резолвится через Target — lookup capability
// поверх реестра (Registry), собранного на этапе конфигурации плагина.
// Отсутствующая команда — это ERROR с классификацией
// CommandNotFoundError, а не отброшенное сообщение.
//
// # Ошибки
//
// Внутри Process все ошибки handler'а (включая panic) гасятся и
// превращаются в репорт статуса — они никогда не выходят из
// worker-горутины. Ошибки уровня доставки (парсинг, валидация, сбой
// репорта) уходят транспорту ровно как одна из диспозиций:
// domain.ErrDiscardMessage или domain.ErrRepublishMessage.
//
// # Конкурентность
//
// Пул worker-горутин ограничен (MaxWorkers); отдача в пул —
// fire-and-forget с возвратом Future. Для одного request порядок его
// статусов строго соблюдается владеющей им worker-горутиной; порядок
// репортов между разными requests не гарантируется. Per-request отмены
// нет: попав в пул, request выполняется до конца.
package processor
