package updater

import (
	"testing"
	"time"
)

func TestGate_StartsUp(t *testing.T) {
	g := NewGate()

	g.Lock()
	defer g.Unlock()

	if g.Down() {
		t.Error("new gate must start up")
	}

	// Пока гейт up, WaitUntilUp не блокирует.
	g.WaitUntilUp()
}

func TestGate_MarkUpWakesAllWaiters(t *testing.T) {
	g := NewGate()

	g.Lock()
	g.MarkDown()
	g.Unlock()

	const waiters = 3
	released := make(chan struct{}, waiters)

	for i := 0; i < waiters; i++ {
		go func() {
			g.Lock()
			g.WaitUntilUp()
			g.Unlock()
			released <- struct{}{}
		}()
	}

	// Ожидающие не должны проснуться, пока гейт down.
	select {
	case <-released:
		t.Fatal("waiter released while gate is down")
	case <-time.After(50 * time.Millisecond):
	}

	g.Lock()
	g.MarkUp()
	g.Unlock()

	for i := 0; i < waiters; i++ {
		select {
		case <-released:
		case <-time.After(time.Second):
			t.Fatal("waiter not released after MarkUp")
		}
	}
}

func TestGate_CloseWakesWaiters(t *testing.T) {
	g := NewGate()

	g.Lock()
	g.MarkDown()
	g.Unlock()

	released := make(chan struct{})
	go func() {
		g.Lock()
		g.WaitUntilUp()
		g.Unlock()
		close(released)
	}()

	// Даём горутине дойти до ожидания.
	time.Sleep(20 * time.Millisecond)

	g.Close()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("shutdown must not wait for a down server")
	}
}

func TestGate_NoBlockAfterClose(t *testing.T) {
	g := NewGate()

	g.Lock()
	g.MarkDown()
	g.Unlock()

	g.Close()

	done := make(chan struct{})
	go func() {
		g.Lock()
		g.WaitUntilUp()
		g.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitUntilUp must return immediately on a closed gate")
	}
}
