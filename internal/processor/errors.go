package processor

import "fmt"

// ClassifiedError — ошибка, сама знающая свою классификацию.
// Классификация попадает в request.error_class при репорте.
type ClassifiedError interface {
	error
	ErrorClass() string
}

// CommandNotFoundError — у target нет команды с таким именем.
//
// Это не повод отбрасывать сообщение: request репортится как ERROR
// с выделенной классификацией.
type CommandNotFoundError struct {
	Command string
}

func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("could not find an implementation of command %q", e.Command)
}

// ErrorClass возвращает классификацию ошибки.
func (e *CommandNotFoundError) ErrorClass() string {
	return "CommandNotFoundError"
}

// PanicError — handler запаниковал во время выполнения команды.
// Паника гасится в invoke: она не должна убивать worker-горутину пула.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("command panicked: %v", e.Value)
}

// ErrorClass возвращает классификацию ошибки.
func (e *PanicError) ErrorClass() string {
	return "PanicError"
}
