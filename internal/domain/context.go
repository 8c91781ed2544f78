package domain

import "context"

type ctxKey string

const ctxCurrentRequest ctxKey = "current_request"

// WithCurrentRequest добавляет текущий request в контекст.
//
// Контекст действует только на время вызова команды: request становится
// неявным родителем для всех sub-requests, которые handler создаст во
// время этого вызова. Worker-горутины выполняются конкурентно, поэтому
// состояние живёт в контексте вызова, а не в общем глобале.
func WithCurrentRequest(ctx context.Context, req *Request) context.Context {
	return context.WithValue(ctx, ctxCurrentRequest, req)
}

// CurrentRequest извлекает текущий request из контекста.
// Возвращает nil, если handler вызван вне обработки request.
func CurrentRequest(ctx context.Context) *Request {
	if req, ok := ctx.Value(ctxCurrentRequest).(*Request); ok {
		return req
	}
	return nil
}
