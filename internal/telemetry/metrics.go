package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики плагина. Экспортируются через /metrics (promhttp) в бинарнике.
var (
	// RequestsProcessed — обработанные requests по финальному статусу.
	RequestsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "courier_requests_processed_total",
		Help: "Requests processed, by final status.",
	}, []string{"status"})

	// RequestsInFlight — requests, выполняющиеся прямо сейчас.
	RequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "courier_requests_in_flight",
		Help: "Requests currently being processed by the worker pool.",
	})

	// UpdateRetries — неудачные попытки репорта, отправленные на повтор.
	UpdateRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courier_update_retries_total",
		Help: "Request update attempts that were sent back for redelivery.",
	})

	// UpdatesDiscarded — репорты, отброшенные без повторной доставки.
	UpdatesDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courier_updates_discarded_total",
		Help: "Request updates discarded without redelivery.",
	})

	// GatewayUp — 1, если gateway доступен, 0 — если помечен down.
	GatewayUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "courier_gateway_up",
		Help: "Whether the gateway is currently considered reachable.",
	})
)

func init() {
	// До первого сбоя gateway считается доступным.
	GatewayUp.Set(1)
}
