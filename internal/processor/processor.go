package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/andrx/courier/internal/domain"
	"github.com/andrx/courier/internal/telemetry"
	"github.com/andrx/courier/internal/updater"
)

// Default configuration values.
const (
	defaultMaxWorkers = 5
	defaultQueueSize  = 64
)

// ParseFunc — parser-коллаборатор: тело сообщения → Request.
type ParseFunc func(message []byte) (*domain.Request, error)

// ValidationFunc — предикат валидации request.
//
// Ошибка предиката уходит транспорту как есть: предикат сам выбирает
// диспозицию (discard или republish), движок её не интерпретирует.
type ValidationFunc func(req *domain.Request) error

// ParameterResolver — разрешение byte-параметров перед вызовом команды.
type ParameterResolver interface {
	ResolveParameters(ctx context.Context, params map[string]any) (map[string]any, error)
}

// Processor — движок диспетчеризации requests.
//
// Processor отвечает за:
//   - Приём входящих сообщений (OnMessageReceived) от транспорта
//   - Парсинг и цепочку валидации
//   - Выполнение команды на target в ограниченном пуле worker-горутин
//   - Классификацию исходов и репорт через Updater
//
// Размер пула ограничивает конкурентные вызовы команд и защищает
// target от неограниченной конкурентной нагрузки.
type Processor struct {
	target      Target
	upd         updater.Updater
	validations []ValidationFunc
	parse       ParseFunc
	resolver    ParameterResolver
	logger      *slog.Logger

	tasks chan *poolTask
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// poolTask — единица работы пула.
type poolTask struct {
	fut *Future
	run func() error
}

// Config — конфигурация Processor.
type Config struct {
	// Target — объект, на котором вызываются команды.
	Target Target

	// Updater — репортер исходов.
	Updater updater.Updater

	// Validations — предикаты валидации, выполняются в порядке регистрации.
	Validations []ValidationFunc

	// Parse — parser-коллаборатор (default: domain.ParseRequest).
	Parse ParseFunc

	// Resolver — разрешение byte-параметров (опционально).
	Resolver ParameterResolver

	// MaxWorkers — размер пула worker-горутин (default: 5).
	MaxWorkers int

	// Logger
	Logger *slog.Logger
}

// New создаёт Processor и запускает пул worker-горутин.
func New(cfg Config) *Processor {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultMaxWorkers
	}

	parse := cfg.Parse
	if parse == nil {
		parse = domain.ParseRequest
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Processor{
		target:      cfg.Target,
		upd:         cfg.Updater,
		validations: cfg.Validations,
		parse:       parse,
		resolver:    cfg.Resolver,
		logger:      logger,
		tasks:       make(chan *poolTask, defaultQueueSize),
	}

	p.wg.Add(maxWorkers)
	for i := 0; i < maxWorkers; i++ {
		go p.worker()
	}

	return p
}

// OnMessageReceived — callback, который транспорт вызывает для каждого
// полученного сообщения.
//
// Парсит сообщение, прогоняет request через цепочку валидации и отдаёт
// в пул: request с терминальным статусом — как report-only задачу
// (эхо статуса выполнять не нужно), остальное — на полную обработку.
//
// Ошибка парсинга возвращается как domain.ErrDiscardMessage — такое
// сообщение редоставлять нельзя. Ошибки валидации уходят как есть.
func (p *Processor) OnMessageReceived(message []byte, env *domain.Envelope) (*Future, error) {
	req, err := p.parse(message)
	if err != nil {
		p.logger.Error("unable to parse message body", "error", err)
		return nil, fmt.Errorf("%w: %s", domain.ErrDiscardMessage, err)
	}

	for _, validate := range p.validations {
		if err := validate(req); err != nil {
			return nil, err
		}
	}

	if req.Status.IsCompleted() {
		telemetry.WithRequest(p.logger, req).Debug("request already completed, reporting only")
		return p.submit(func() error {
			return p.upd.UpdateRequest(req, env)
		})
	}

	return p.submit(func() error {
		return p.Process(req, env)
	})
}

// Process обрабатывает request. Выполняется внутри worker-горутины пула.
//
// Переводит request в IN_PROGRESS и репортит, вызывает команду,
// выставляет финальный статус / output / классификацию и репортит
// финальное состояние. Ошибки handler'а гасятся здесь и превращаются
// в статус ERROR — из worker-горутины они не выходят. Ошибки репорта,
// наоборот, возвращаются наверх как диспозиции доставки.
func (p *Processor) Process(req *domain.Request, env *domain.Envelope) error {
	logger := telemetry.WithRequest(p.logger, req)

	telemetry.RequestsInFlight.Inc()
	defer telemetry.RequestsInFlight.Dec()

	req.MarkInProgress()
	if err := p.upd.UpdateRequest(req, env); err != nil {
		return err
	}

	output, err := p.invoke(req)
	if err != nil {
		logger.Error("command raised an error", "error", err, "error_class", errorClass(err))
		req.MarkError(formatErrorOutput(req, err), errorClass(err))
	} else {
		req.MarkSuccess(formatOutput(output))
	}

	telemetry.RequestsProcessed.WithLabelValues(string(req.Status)).Inc()
	logger.Info("request processed", "status", req.Status)

	return p.upd.UpdateRequest(req, env)
}

// Shutdown останавливает Processor: перестаёт принимать новые задачи,
// дожидается всех in-flight и только потом гасит Updater. Порядок
// важен: updater обязан жить, пока последняя задача не отрепортится.
//
// Перед дренажом updater'у подаётся сигнал завершения — иначе worker,
// застрявший в ожидании недоступного сервера, никогда не вернётся и
// дренаж не закончится.
func (p *Processor) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.upd.SignalShutdown()

	p.logger.Info("draining worker pool")
	p.wg.Wait()

	p.upd.Shutdown()
	p.logger.Info("processor stopped")
}

// submit отдаёт задачу в пул и возвращает её Future.
func (p *Processor) submit(run func() error) (*Future, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		// Недоставленная работа не теряется: после рестарта плагина
		// транспорт доставит сообщение снова.
		return nil, fmt.Errorf("%w: processor is shut down", domain.ErrRepublishMessage)
	}

	t := &poolTask{fut: newFuture(), run: run}
	p.tasks <- t
	return t.fut, nil
}

// worker — одна горутина пула.
func (p *Processor) worker() {
	defer p.wg.Done()

	for t := range p.tasks {
		t.fut.complete(t.run())
	}
}

// invoke находит команду по имени и вызывает её с параметрами request.
//
// На время вызова request становится текущим в контексте — неявным
// родителем для sub-requests, создаваемых handler'ом. Контекст живёт
// только в рамках вызова.
func (p *Processor) invoke(req *domain.Request) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = &PanicError{Value: r}
		}
	}()

	cmd, ok := p.target.Resolve(req.Command)
	if !ok {
		return nil, &CommandNotFoundError{Command: req.Command}
	}

	params := req.Parameters
	if params == nil {
		params = map[string]any{}
	}

	ctx := domain.WithCurrentRequest(context.Background(), req)

	if p.resolver != nil {
		resolved, rerr := p.resolver.ResolveParameters(ctx, params)
		if rerr != nil {
			return nil, fmt.Errorf("resolve parameters: %w", rerr)
		}
		params = resolved
	}

	return cmd(ctx, params)
}
