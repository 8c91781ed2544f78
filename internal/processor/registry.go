package processor

import (
	"context"
	"sort"
)

// Command — вызываемая команда плагина.
//
// Контекст несёт текущий request (domain.CurrentRequest) на время
// вызова. Параметры приходят развёрнутыми из request.Parameters.
type Command func(ctx context.Context, params map[string]any) (any, error)

// Target — способность находить команду по имени.
//
// Диспетчеризация по имени — это lookup capability, а не рефлексия:
// target собирается из реестра на этапе конфигурации плагина.
type Target interface {
	Resolve(command string) (Command, bool)
}

// Registry — реестр команд по имени.
//
// Заполняется один раз при старте плагина и дальше только читается,
// поэтому не синхронизируется.
type Registry struct {
	commands map[string]Command
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

// Register регистрирует команду. Повторная регистрация имени
// заменяет предыдущую команду.
func (r *Registry) Register(name string, cmd Command) {
	r.commands[name] = cmd
}

// Resolve возвращает команду по имени.
func (r *Registry) Resolve(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands возвращает отсортированный список зарегистрированных имён.
func (r *Registry) Commands() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
