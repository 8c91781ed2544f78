package mq

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const maxReconnectDelay = 30 * time.Second

// Connection — обёртка над AMQP-соединением с автоматическим reconnect.
//
// При разрыве соединение восстанавливается с экспоненциальной
// задержкой; потребители узнают о восстановлении через ReconnectNotify
// и перезапускают consume.
type Connection struct {
	url    string
	logger *slog.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool

	closedCh    chan struct{}
	reconnectCh chan struct{}
}

// NewConnection устанавливает соединение с RabbitMQ и запускает
// мониторинг разрывов.
func NewConnection(url string, logger *slog.Logger) (*Connection, error) {
	c := &Connection{
		url:         url,
		logger:      logger,
		closedCh:    make(chan struct{}),
		reconnectCh: make(chan struct{}, 1),
	}

	if err := c.dial(); err != nil {
		return nil, err
	}

	go c.watch()

	return c, nil
}

// dial устанавливает соединение и открывает канал.
func (c *Connection) dial() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = ch
	c.mu.Unlock()

	c.logger.Info("connected to RabbitMQ")
	return nil
}

// watch следит за соединением и восстанавливает его при разрыве.
func (c *Connection) watch() {
	for {
		c.mu.RLock()
		closed, conn := c.closed, c.conn
		c.mu.RUnlock()

		if closed {
			return
		}
		if conn == nil {
			time.Sleep(time.Second)
			continue
		}

		notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))

		select {
		case <-c.closedCh:
			return
		case amqpErr := <-notifyClose:
			if amqpErr != nil {
				c.logger.Warn("connection lost", "error", amqpErr)
			}
			c.redial()
		}
	}
}

// redial восстанавливает соединение с экспоненциальной задержкой.
func (c *Connection) redial() {
	delay := time.Second

	for {
		c.mu.RLock()
		closed := c.closed
		c.mu.RUnlock()
		if closed {
			return
		}

		c.logger.Info("reconnecting to RabbitMQ", "delay", delay)
		time.Sleep(delay)

		if err := c.dial(); err != nil {
			c.logger.Warn("reconnect failed", "error", err)
			delay = min(delay*2, maxReconnectDelay)
			continue
		}

		select {
		case c.reconnectCh <- struct{}{}:
		default:
		}
		return
	}
}

// Channel возвращает текущий AMQP-канал (nil, если соединения нет).
func (c *Connection) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// ReconnectNotify возвращает канал уведомлений о переподключении.
func (c *Connection) ReconnectNotify() <-chan struct{} {
	return c.reconnectCh
}

// IsConnected проверяет, живо ли соединение.
func (c *Connection) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && !c.conn.IsClosed()
}

// Close закрывает канал и соединение.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.closedCh)

	var firstErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close channel: %w", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close connection: %w", err)
		}
	}

	if firstErr == nil {
		c.logger.Info("connection closed")
	}
	return firstErr
}
