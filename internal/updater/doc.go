// Package updater — устойчивый репорт исходов requests на gateway.
//
// # Обзор
//
// Updater — контракт «зафиксировать финальное или промежуточное
// состояние request на координирующем сервере». Две реализации:
//
//   - NoopUpdater — принимает и отбрасывает (репорт отключён).
//   - GatewayUpdater — сетевая, переживающая недоступность сервера.
//
// # GatewayUpdater
//
// Гарантия доставки строится из трёх частей:
//
//   - Гейт доступности (Gate) — общий для всех worker-горутин флаг
//     down/up с broadcast-монитором. После connectivity-сбоя все новые
//     репорты блокируются на гейте, пока prober не восстановит связь.
//   - Ограниченный retry с экспоненциальным backoff — счётчик попыток
//     и рекомендованная пауза живут в envelope сообщения и путешествуют
//     с ним через повторные доставки.
//   - Фоновый prober — раз в probeInterval проверяет gateway
//     (GetVersion), пока тот помечен down, и будит ожидающих.
//
// Каждая неудачная попытка завершается ровно одной из двух диспозиций:
//
//   - domain.ErrRepublishMessage — транспорт должен доставить сообщение
//     ещё раз (connectivity-сбой — всегда; обычная ошибка — пока не
//     исчерпан лимит попыток, с инкрементом счётчика и удвоением паузы).
//   - domain.ErrDiscardMessage — повтор не поможет (сервер определённо
//     отверг обновление, либо не удался даже финальный give-up репорт).
//
// На финальной попытке вместо настоящего исхода отправляется
// фиксированный «give up» репорт (статус ERROR, класс
// GiveUpErrorClass), чтобы у сервера осталась финальная запись, даже
// если настоящий исход подтвердить не удалось.
//
// Завершение двухфазное. SignalShutdown будит всех ожидающих на гейте
// и прерывает backoff-паузы, не отменяя сетевых вызовов: застрявшие за
// недоступным сервером задачи получают шанс доставить финальные
// репорты. Shutdown — окончательная остановка после дренажа задач.
// Завершение процесса никогда не ждёт восстановления сервера.
package updater
