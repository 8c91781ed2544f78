package domain

import "errors"

// Диспозиции неудачной обработки сообщения.
//
// Любая ошибка, которую ядро отдаёт транспорту, обёрнута ровно в один
// из этих sentinel'ов. Само ядро доставку не повторяет — оно только
// советует транспорту, что делать с сообщением.
var (
	// ErrDiscardMessage — сообщение нельзя обработать, повторная
	// доставка не поможет. Транспорт обязан его не редоставлять.
	ErrDiscardMessage = errors.New("discard message")

	// ErrRepublishMessage — обработка не удалась по временной причине,
	// транспорт должен вернуть сообщение в очередь (с обновлённым envelope).
	ErrRepublishMessage = errors.New("republish message")
)

// ShouldDiscard возвращает true, если ошибка требует отбросить сообщение.
func ShouldDiscard(err error) bool {
	return errors.Is(err, ErrDiscardMessage)
}

// ShouldRepublish возвращает true, если ошибка требует вернуть
// сообщение в очередь.
func ShouldRepublish(err error) bool {
	return errors.Is(err, ErrRepublishMessage)
}
