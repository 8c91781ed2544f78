package mq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestConsumer_StopBeforeStart(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewConsumer(&Connection{}, nil, logger, ConsumerConfig{Plugin: "demo"})

	// Stop до Start не должен паниковать; повторный Stop — тоже.
	c.Stop()
	c.Stop()

	done := make(chan error, 1)
	go func() {
		done <- c.Start(context.Background())
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start must return promptly after Stop")
	}
}

func TestConsumer_StopInterruptsStart(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewConsumer(&Connection{}, nil, logger, ConsumerConfig{Plugin: "demo"})

	done := make(chan error, 1)
	go func() {
		done <- c.Start(context.Background())
	}()

	// Даём циклу дойти до ожидания reconnect (канала нет — setup падает).
	time.Sleep(20 * time.Millisecond)
	c.Stop()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stop must interrupt a running Start")
	}
}
