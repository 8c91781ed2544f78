package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/andrx/courier/internal/domain"
	"github.com/andrx/courier/internal/gateway"
	"github.com/andrx/courier/internal/telemetry"
)

// Default configuration values.
const (
	defaultStartingBackoff = 5 * time.Second
	defaultMaxBackoff      = 30 * time.Second
	defaultProbeInterval   = 5 * time.Second
)

// GiveUpErrorClass — sentinel-классификация финального «give up» репорта.
// По ней оператор отличает «исход мог потеряться» от «команда упала».
const GiveUpErrorClass = "CourierGivesUpError"

// giveUpOutput — фиксированное пояснение для финального репорта.
const giveUpOutput = "We tried to update the request, but it failed too " +
	"many times. Please check the plugin logs to figure out why the request " +
	"update failed. It is possible for this request to have succeeded, but " +
	"we cannot update the gateway with that information."

// Client — поверхность gateway-клиента, нужная updater'у.
type Client interface {
	UpdateRequest(ctx context.Context, id string, status domain.Status, output, errorClass string) error
	GetVersion(ctx context.Context) (string, error)
}

// GatewayUpdater — устойчивый Updater поверх gateway-клиента.
//
// Владеет политикой retry/backoff, гейтом доступности и фоновым
// prober'ом, который после connectivity-сбоя периодически проверяет
// gateway и будит ожидающие задачи, когда связь восстановлена.
type GatewayUpdater struct {
	client Client
	logger *slog.Logger

	gate *Gate

	maxAttempts     int
	startingBackoff time.Duration
	maxBackoff      time.Duration
	probeInterval   time.Duration

	// shutdown закрывается сигналом завершения: прерывает backoff-паузы
	// и вместе с закрытием гейта будит ожидающих. Отдельный от ctx,
	// потому что HTTP-вызовы после сигнала ещё должны проходить.
	shutdown   chan struct{}
	signalOnce sync.Once

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Config — конфигурация GatewayUpdater.
type Config struct {
	// Client — клиент gateway.
	Client Client

	// MaxAttempts — максимум неудачных попыток репорта, после которого
	// отправляется «give up» репорт. <= 0 — без ограничения.
	MaxAttempts int

	// StartingBackoff — стартовая пауза между попытками (default: 5s).
	StartingBackoff time.Duration

	// MaxBackoff — потолок паузы между попытками (default: 30s).
	MaxBackoff time.Duration

	// ProbeInterval — период проверки связи prober'ом (default: 5s).
	ProbeInterval time.Duration

	// Logger
	Logger *slog.Logger
}

// NewGatewayUpdater создаёт updater и запускает фоновый prober.
func NewGatewayUpdater(cfg Config) *GatewayUpdater {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	startingBackoff := cfg.StartingBackoff
	if startingBackoff <= 0 {
		startingBackoff = defaultStartingBackoff
	}

	maxBackoff := cfg.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = defaultMaxBackoff
	}

	probeInterval := cfg.ProbeInterval
	if probeInterval <= 0 {
		probeInterval = defaultProbeInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	u := &GatewayUpdater{
		client:          cfg.Client,
		logger:          logger,
		gate:            NewGate(),
		maxAttempts:     cfg.MaxAttempts,
		startingBackoff: startingBackoff,
		maxBackoff:      maxBackoff,
		probeInterval:   probeInterval,
		shutdown:        make(chan struct{}),
		ctx:             ctx,
		cancel:          cancel,
	}

	u.wg.Add(1)
	go u.probeLoop()

	return u
}

// UpdateRequest репортит состояние request на gateway.
//
// Ephemeral requests не репортятся. Если gateway помечен down, вызов
// блокируется на гейте до успешной пробы или shutdown. Блокировка
// гейта удерживается на всё время решения-и-попытки: попытки репорта
// сериализуются относительно переходов down/up.
//
// Любая неудача возвращается ровно как одна из двух диспозиций:
// domain.ErrRepublishMessage или domain.ErrDiscardMessage.
func (u *GatewayUpdater) UpdateRequest(req *domain.Request, env *domain.Envelope) error {
	if req.IsEphemeral {
		return nil
	}

	u.gate.Lock()
	defer u.gate.Unlock()

	if u.gate.Down() && !u.gate.Closed() {
		u.logger.Warn("gateway is unreachable, waiting for connection to be reestablished",
			"request_id", req.ID,
		)
		u.gate.WaitUntilUp()
	}

	var err error
	if u.finalAttempt(env) {
		// Последняя попытка: вместо настоящего статуса — заведомо
		// валидный «give up» репорт, чтобы у сервера осталась хоть
		// какая-то финальная запись.
		err = u.client.UpdateRequest(u.ctx, req.ID, domain.StatusError, giveUpOutput, GiveUpErrorClass)
	} else {
		u.waitBeforeRetry(env)
		err = u.client.UpdateRequest(u.ctx, req.ID, req.Status, req.Output, req.ErrorClass)
	}

	if err != nil {
		return u.handleFailure(req, env, err)
	}
	return nil
}

// SignalShutdown объявляет завершение: будит все задачи, ожидающие на
// гейте, и прерывает backoff-паузы. HTTP-вызовы не отменяются —
// in-flight репорты после сигнала ещё должны дойти до сервера.
func (u *GatewayUpdater) SignalShutdown() {
	u.signalOnce.Do(func() {
		u.logger.Debug("shutdown signalled, waking any waiting reporters")
		close(u.shutdown)
		u.gate.Close()
	})
}

// Shutdown окончательно останавливает updater: отменяет сетевые вызовы
// и гасит prober. Вызывающий обязан сначала дождаться in-flight задач.
func (u *GatewayUpdater) Shutdown() {
	u.SignalShutdown()
	u.closeOnce.Do(func() {
		u.cancel()
		u.wg.Wait()
	})
}

// finalAttempt: лимит попыток настроен и счётчик envelope его достиг.
func (u *GatewayUpdater) finalAttempt(env *domain.Envelope) bool {
	if u.maxAttempts <= 0 {
		return false
	}
	return env.RetryAttempt >= u.maxAttempts
}

// waitBeforeRetry выдерживает backoff-паузу перед повторной попыткой.
// Первая доставка (счётчик 0) идёт без паузы. Сон прерывается shutdown'ом.
func (u *GatewayUpdater) waitBeforeRetry(env *domain.Envelope) {
	if env.RetryAttempt <= 0 {
		return
	}

	wait := env.Wait(u.startingBackoff, u.maxBackoff)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-u.shutdown:
	}
}

// handleFailure классифицирует неудачную попытку и возвращает диспозицию.
func (u *GatewayUpdater) handleFailure(req *domain.Request, env *domain.Envelope, err error) error {
	switch {
	case errors.Is(err, gateway.ErrConnection):
		// Gateway недоступен — всегда повторяем доставку, даже если это
		// была «финальная» попытка: connectivity — не вина request'а и
		// не повод терять данные.
		u.gate.MarkDown()
		telemetry.GatewayUp.Set(0)
		telemetry.UpdateRetries.Inc()
		u.logger.Error("gateway unreachable while updating request",
			"request_id", req.ID,
			"error", err,
		)
		return fmt.Errorf("%w: request %s: gateway unreachable", domain.ErrRepublishMessage, req.ID)

	case errors.Is(err, gateway.ErrClient):
		// Определённый отказ: вероятнее всего request уже обновлён.
		// Повторная доставка либо no-op, либо бесконечный цикл.
		telemetry.UpdatesDiscarded.Inc()
		u.logger.Error("gateway rejected request update, discarding to avoid an infinite loop",
			"request_id", req.ID,
			"error", err,
		)
		return fmt.Errorf("%w: request %s: %s", domain.ErrDiscardMessage, req.ID, err)

	case u.finalAttempt(env):
		// Не смогли отрепортить даже заведомо валидный give-up.
		telemetry.UpdatesDiscarded.Inc()
		u.logger.Error("could not update request even with a known good status, giving up",
			"request_id", req.ID,
			"retry_attempt", env.RetryAttempt,
			"error", err,
		)
		return fmt.Errorf("%w: request %s: final attempt failed", domain.ErrDiscardMessage, req.ID)

	default:
		env.Bump(u.startingBackoff, u.maxBackoff)
		telemetry.UpdateRetries.Inc()
		u.logger.Error("failed to update request",
			"request_id", req.ID,
			"retry_attempt", env.RetryAttempt,
			"time_to_wait", env.TimeToWait,
			"error", err,
		)
		return fmt.Errorf("%w: request %s: attempt %d failed", domain.ErrRepublishMessage, req.ID, env.RetryAttempt)
	}
}

// probeLoop — фоновый цикл проверки связи с gateway.
func (u *GatewayUpdater) probeLoop() {
	defer u.wg.Done()

	ticker := time.NewTicker(u.probeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-u.ctx.Done():
			return
		case <-ticker.C:
			u.probe()
		}
	}
}

// probe выполняет одну проверку связи, если gateway помечен down.
//
// Неудачная проба — ожидаемое состояние, пока сервер восстанавливается:
// остаёмся down молча. Паника внутри пробы не должна убить prober.
func (u *GatewayUpdater) probe() {
	defer func() {
		if r := recover(); r != nil {
			u.logger.Error("panic in gateway probe loop", "panic", r)
		}
	}()

	u.gate.Lock()
	defer u.gate.Unlock()

	if !u.gate.Down() {
		return
	}

	ctx, cancel := context.WithTimeout(u.ctx, u.probeInterval)
	defer cancel()

	if _, err := u.client.GetVersion(ctx); err != nil {
		u.logger.Debug("gateway reconnection attempt failed", "error", err)
		return
	}

	u.logger.Info("gateway connection reestablished, waking any waiting reporters")
	telemetry.GatewayUp.Set(1)
	u.gate.MarkUp()
}
