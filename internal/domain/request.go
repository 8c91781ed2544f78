package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Request — единица работы, полученная плагином на выполнение.
//
// Request создаётся координирующим сервером (gateway) и доставляется
// плагину через очередь. Worker-горутина, обрабатывающая request,
// единолично владеет экземпляром — конкурентная мутация одного
// request из двух задач не допускается.
type Request struct {
	// ID — идентификатор request (присваивается сервером, непрозрачный).
	ID string `json:"id"`

	// Command — имя команды, которую нужно выполнить на target.
	Command string `json:"command"`

	// Parameters — параметры команды (имя → значение).
	Parameters map[string]any `json:"parameters,omitempty"`

	// Status — текущий статус request.
	Status Status `json:"status"`

	// Output — результат выполнения (текст или сериализованный JSON).
	Output string `json:"output,omitempty"`

	// ErrorClass — классификация ошибки (имя типа ошибки).
	ErrorClass string `json:"error_class,omitempty"`

	// IsEphemeral — ephemeral request никогда не репортится на сервер.
	IsEphemeral bool `json:"is_ephemeral,omitempty"`

	// IsJSON — формат output: true — JSON, false — plain text.
	// Влияет на то, как рендерится output при ошибке.
	IsJSON bool `json:"is_json,omitempty"`

	// CreatedAt — время создания request на сервере.
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// MarkInProgress переводит request в статус IN_PROGRESS.
func (r *Request) MarkInProgress() {
	r.Status = StatusInProgress
}

// MarkSuccess переводит request в статус SUCCESS с готовым output.
func (r *Request) MarkSuccess(output string) {
	r.Status = StatusSuccess
	r.Output = output
}

// MarkError переводит request в статус ERROR с ошибкой и её классификацией.
func (r *Request) MarkError(output, errorClass string) {
	r.Status = StatusError
	r.Output = output
	r.ErrorClass = errorClass
}

// String возвращает краткое представление для логов.
func (r *Request) String() string {
	return fmt.Sprintf("%s[%s]", r.Command, r.ID)
}

// ParseRequest парсит тело сообщения в Request.
//
// Стандартная реализация parser-коллаборатора: тело — JSON-документ
// с полями request. Ошибка парсинга означает, что сообщение
// невосстановимо и должно быть отброшено вызывающей стороной.
func ParseRequest(message []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(message, &req); err != nil {
		return nil, fmt.Errorf("unmarshal request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("request has no command")
	}
	return &req, nil
}
