// Courier Plugin — демонстрационный плагин.
//
// Плагин:
//   - Получает requests из RabbitMQ
//   - Выполняет команду на зарегистрированном target
//   - Репортит исход на gateway, переживая его недоступность
//
// Реальный плагин отличается только набором команд в registry.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andrx/courier/internal/config"
	"github.com/andrx/courier/internal/domain"
	"github.com/andrx/courier/internal/gateway"
	"github.com/andrx/courier/internal/mq"
	"github.com/andrx/courier/internal/processor"
	"github.com/andrx/courier/internal/resolver"
	"github.com/andrx/courier/internal/telemetry"
	"github.com/andrx/courier/internal/updater"
)

func main() {
	cfgPath := os.Getenv("COURIER_CONFIG")
	if cfgPath == "" {
		cfgPath = "courier.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// Инициализируем structured logging
	logger := telemetry.SetupLogger(cfg.Plugin.Name)
	logger.Info("starting courier plugin")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Gateway client + updater
	client := gateway.NewClient(cfg.Gateway.BaseURL, cfg.GatewayTimeout())

	var upd updater.Updater
	if cfg.Gateway.Disabled {
		logger.Warn("gateway reporting disabled, using noop updater")
		upd = updater.NoopUpdater{}
	} else {
		upd = updater.NewGatewayUpdater(updater.Config{
			Client:          client,
			MaxAttempts:     cfg.Updater.MaxAttempts,
			StartingBackoff: cfg.StartingBackoff(),
			MaxBackoff:      cfg.MaxBackoff(),
			ProbeInterval:   cfg.ProbeInterval(),
			Logger:          logger,
		})
	}

	// RabbitMQ
	mqConn, err := mq.NewConnection(cfg.AMQP.URL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()

	if err := mq.SetupTopology(ctx, mqConn, cfg.Plugin.Name); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	publisher := mq.NewPublisher(mqConn, logger)

	// Registry команд плагина
	registry := processor.NewRegistry()
	registerCommands(registry, publisher, cfg.Plugin.Name)
	logger.Info("commands registered", "commands", registry.Commands())

	// Движок диспетчеризации
	proc := processor.New(processor.Config{
		Target:     registry,
		Updater:    upd,
		Resolver:   resolver.NewBytesResolver(client),
		MaxWorkers: cfg.Processor.MaxWorkers,
		Logger:     logger,
	})

	consumer := mq.NewConsumer(mqConn, publisher, logger, mq.ConsumerConfig{
		Plugin:    cfg.Plugin.Name,
		OnMessage: proc.OnMessageReceived,
		Prefetch:  cfg.AMQP.Prefetch,
	})

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("consumer error", "error", err)
			cancel()
		}
	}()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !mqConn.IsConnected() {
			http.Error(w, "amqp disconnected", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8087"
	if v := os.Getenv("COURIER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Порядок остановки важен: сначала перестаём получать сообщения,
	// затем дожидаемся in-flight requests (Shutdown движка сам гасит
	// updater после дренажа пула).
	consumer.Stop()
	<-consumerDone
	proc.Shutdown()

	logger.Info("courier plugin stopped")
}

// registerCommands наполняет registry командами демо-плагина.
func registerCommands(registry *processor.Registry, publisher *mq.Publisher, plugin string) {
	registry.Register("echo", func(_ context.Context, params map[string]any) (any, error) {
		return params["message"], nil
	})

	// spawn создаёт sub-request и ставит его в собственную очередь
	// плагина. Родитель доступен через domain.CurrentRequest(ctx).
	registry.Register("spawn", func(ctx context.Context, params map[string]any) (any, error) {
		command, _ := params["command"].(string)
		if command == "" {
			return nil, fmt.Errorf("parameter command must be a non-empty string")
		}

		sub := &domain.Request{
			ID:      uuid.NewString(),
			Command: command,
			Status:  domain.StatusCreated,
		}
		if nested, ok := params["parameters"].(map[string]any); ok {
			sub.Parameters = nested
		}

		if err := publisher.PublishRequest(ctx, plugin, sub); err != nil {
			return nil, fmt.Errorf("publish sub-request: %w", err)
		}
		return sub.ID, nil
	})

	registry.Register("add", func(_ context.Context, params map[string]any) (any, error) {
		a, aok := toFloat(params["a"])
		b, bok := toFloat(params["b"])
		if !aok || !bok {
			return nil, fmt.Errorf("parameters a and b must be numbers")
		}
		return a + b, nil
	})

	registry.Register("sleep", func(_ context.Context, params map[string]any) (any, error) {
		seconds, _ := toFloat(params["seconds"])
		time.Sleep(time.Duration(seconds * float64(time.Second)))
		return "slept", nil
	})

	registry.Register("fail", func(_ context.Context, params map[string]any) (any, error) {
		msg, _ := params["message"].(string)
		if msg == "" {
			msg = "requested failure"
		}
		return nil, errors.New(msg)
	})
}

// toFloat приводит JSON-число к float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
