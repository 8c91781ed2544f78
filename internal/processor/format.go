package processor

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/andrx/courier/internal/domain"
)

// formatOutput приводит результат команды к строке:
// строки и байты — как есть, остальное — JSON, при невозможности
// сериализации — generic-представление.
func formatOutput(output any) string {
	switch v := output.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	}

	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Sprintf("%v", output)
	}
	return string(data)
}

// formatErrorOutput рендерит ошибку handler'а в output:
// структурно для JSON-requests, текстом — для остальных.
func formatErrorOutput(req *domain.Request, err error) string {
	if !req.IsJSON {
		return err.Error()
	}

	payload := map[string]string{
		"message": err.Error(),
		"name":    errorClass(err),
	}
	data, merr := json.Marshal(payload)
	if merr != nil {
		return err.Error()
	}
	return string(data)
}

// errorClass классифицирует ошибку именем её типа.
// Ошибки, реализующие ClassifiedError, классифицируют себя сами.
func errorClass(err error) string {
	var ce ClassifiedError
	if errors.As(err, &ce) {
		return ce.ErrorClass()
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "Error"
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
