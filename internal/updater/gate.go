package updater

import "sync"

// Gate — broadcast-гейт доступности gateway.
//
// Единственное состояние, разделяемое между конкурентными задачами:
// флаг down плюс монитор (mutex + condition). Любое число репортящих
// задач может ждать на гейте; переводит его в down только задача,
// наблюдавшая connectivity-сбой, а обратно в up — только фоновый
// prober после успешной пробы. Оба перехода будят всех ожидающих.
//
// Методы MarkDown, MarkUp, Down и WaitUntilUp требуют удерживаемого
// Lock: гейт сознательно отдаёт блокировку наружу, потому что она же
// сериализует решение-и-попытку репорта (см. GatewayUpdater).
type Gate struct {
	mu     sync.Mutex
	cond   *sync.Cond
	down   bool
	closed bool
}

// NewGate создаёт гейт в состоянии «up».
func NewGate() *Gate {
	g := &Gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Lock захватывает блокировку гейта.
func (g *Gate) Lock() { g.mu.Lock() }

// Unlock отпускает блокировку гейта.
func (g *Gate) Unlock() { g.mu.Unlock() }

// Down сообщает, помечен ли gateway недоступным. Требует Lock.
func (g *Gate) Down() bool { return g.down }

// Closed сообщает, закрыт ли гейт (идёт shutdown). Требует Lock.
func (g *Gate) Closed() bool { return g.closed }

// MarkDown помечает gateway недоступным. Требует Lock.
func (g *Gate) MarkDown() {
	g.down = true
}

// MarkUp помечает gateway доступным и будит всех ожидающих. Требует Lock.
func (g *Gate) MarkUp() {
	g.down = false
	g.cond.Broadcast()
}

// WaitUntilUp блокирует вызывающего, пока gateway down и не начался
// shutdown. Требует Lock; на время ожидания блокировка отпускается.
func (g *Gate) WaitUntilUp() {
	for g.down && !g.closed {
		g.cond.Wait()
	}
}

// Close закрывает гейт: shutdown не должен ждать восстановления
// недоступного сервера, поэтому все ожидающие будятся немедленно.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.cond.Broadcast()
}
