package updater

import "github.com/andrx/courier/internal/domain"

// Updater — контракт репорта исходов requests на координирующий сервер.
//
// UpdateRequest не имеет результата: его наблюдаемые эффекты — побочный
// эффект на сервере (или его отсутствие) и ошибка-диспозиция
// (domain.ErrDiscardMessage / domain.ErrRepublishMessage), на которую
// обязан отреагировать транспорт.
//
// Shutdown двухфазный. SignalShutdown объявляет завершение: будит все
// задачи, ожидающие восстановления сервера, и прерывает backoff-паузы,
// но репорты после сигнала ещё возможны — in-flight задачи обязаны
// успеть доставить финальные состояния. Shutdown — окончательная
// остановка; вызывается после дренажа всех задач.
type Updater interface {
	UpdateRequest(req *domain.Request, env *domain.Envelope) error
	SignalShutdown()
	Shutdown()
}

// NoopUpdater — реализация, которая осознанно ничего не репортит.
//
// Используется в конфигурациях, где репорт отключён или выполняется
// другим механизмом. Принимает и отбрасывает.
type NoopUpdater struct{}

// UpdateRequest ничего не делает.
func (NoopUpdater) UpdateRequest(*domain.Request, *domain.Envelope) error { return nil }

// SignalShutdown ничего не делает.
func (NoopUpdater) SignalShutdown() {}

// Shutdown ничего не делает.
func (NoopUpdater) Shutdown() {}
