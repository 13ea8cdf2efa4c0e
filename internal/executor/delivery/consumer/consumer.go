package consumer

import (
	"context"
	"sync"
	"time"

	"golang-stock-signal/internal/executor/config"
	"golang-stock-signal/internal/executor/service"
	"golang-stock-signal/pkg/common"
	"golang-stock-signal/pkg/logger"
	"golang-stock-signal/pkg/utils"
)

// RedisConsumer manages the consumption of run requests from a Redis stream.
type RedisConsumer struct {
	cfg              *config.Config
	signalRunService service.SignalRunService
	logger           *logger.Logger
	stopChan         chan struct{}
	stopOnce         sync.Once
	wg               sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(cfg *config.Config, signalRunService service.SignalRunService, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		cfg:              cfg,
		signalRunService: signalRunService,
		logger:           log,
		stopChan:         make(chan struct{}),
	}
}

// Start begins the consumer's processing loops.
func (c *RedisConsumer) Start(ctx context.Context) {
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.signalRunService.ProcessTask, common.RedisStreamSignalRun, c.cfg.Executor.RedisStreamSignalRunTimeout)

	// handle retry
	c.RegisterTickerHandler(ctx, c.signalRunService.ProcessRetries, c.cfg.Executor.RedisStreamSignalRunRetryInterval, c.cfg.Executor.RedisStreamSignalRunTimeout, common.RedisStreamSignalRun+"-retry")
}

func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

func (c *RedisConsumer) RegisterTickerHandler(ctx context.Context, fn func(ctx context.Context), interval time.Duration, timeout time.Duration, name string) {
	c.logger.Info("Registering ticker handler",
		logger.Field("name", name),
		logger.Field("interval", interval),
		logger.Field("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			case <-ctx.Done():
				c.logger.Info("Ticker handler stopping due to context cancellation", logger.Field("name", name))
				return
			case <-c.stopChan:
				c.logger.Info("Ticker handler stopping", logger.Field("name", name))
				return
			}
		}
	})
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
