package processor

import "context"

// Future — асинхронный handle задачи, отданной в пул.
//
// Транспорт дожидается Future, чтобы решить судьбу доставки:
// nil — ack, диспозиции domain.ErrDiscardMessage /
// domain.ErrRepublishMessage — соответствующее действие.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// complete фиксирует результат задачи. Вызывается ровно один раз.
func (f *Future) complete(err error) {
	f.err = err
	close(f.done)
}

// Wait блокируется до завершения задачи и возвращает её результат.
// Прерывается отменой контекста.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
