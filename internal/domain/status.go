package domain

// Status — статус выполнения request.
//
// Жизненный цикл:
//
//	CREATED → RECEIVED → IN_PROGRESS → SUCCESS
//	                                 ↘ ERROR
//	          (извне) → CANCELED | INVALID
type Status string

const (
	// StatusCreated — request создан на сервере.
	StatusCreated Status = "CREATED"

	// StatusReceived — request получен плагином, но ещё не выполняется.
	StatusReceived Status = "RECEIVED"

	// StatusInProgress — request выполняется worker-горутиной.
	StatusInProgress Status = "IN_PROGRESS"

	// StatusSuccess — request успешно завершён.
	StatusSuccess Status = "SUCCESS"

	// StatusError — request завершился с ошибкой.
	StatusError Status = "ERROR"

	// StatusCanceled — request отменён на стороне сервера.
	StatusCanceled Status = "CANCELED"

	// StatusInvalid — сервер признал request некорректным.
	StatusInvalid Status = "INVALID"
)

// IsCompleted возвращает true, если статус терминальный.
//
// Сообщение с терминальным статусом — это эхо состояния, а не новая
// работа: его нужно только отрепортить, не выполняя команду.
func (s Status) IsCompleted() bool {
	switch s {
	case StatusSuccess, StatusError, StatusCanceled, StatusInvalid:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление Status.
func (s Status) String() string {
	return string(s)
}
