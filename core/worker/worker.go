package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"schedulr-api/core/config"
	"schedulr-api/core/logger"
)

// Client enqueues background tasks. A nil Client is a no-op so modules can
// run without the worker in tests.
type Client struct {
	inner *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		inner: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *Client) Enqueue(taskType string, payload []byte, opts ...asynq.Option) error {
	if c == nil || c.inner == nil {
		return nil
	}
	task := asynq.NewTask(taskType, payload)
	info, err := c.inner.Enqueue(task, opts...)
	if err != nil {
		logger.Error("Worker:Enqueue:Error", "type", taskType, "error", err)
		return err
	}
	logger.Info("Worker:Enqueue:Success", "type", taskType, "task_id", info.ID, "queue", info.Queue)
	return nil
}

// EnqueueAt schedules a task for a future instant (booking reminders).
func (c *Client) EnqueueAt(taskType string, payload []byte, at time.Time) error {
	return c.Enqueue(taskType, payload, asynq.ProcessAt(at))
}

func (c *Client) Close() error {
	if c == nil || c.inner == nil {
		return nil
	}
	return c.inner.Close()
}

// Handler registers task handlers by type.
type Handler struct {
	mux *asynq.ServeMux
}

func NewHandler() *Handler {
	return &Handler{mux: asynq.NewServeMux()}
}

func (h *Handler) HandleFunc(taskType string, fn func(ctx context.Context, payload []byte) error) {
	h.mux.HandleFunc(taskType, func(ctx context.Context, t *asynq.Task) error {
		return fn(ctx, t.Payload())
	})
}

// Run starts the asynq server; blocks until the context is cancelled.
func Run(ctx context.Context, cfg *config.Config, h *Handler) error {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
		},
	)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Worker:Run:Start", "concurrency", cfg.Worker.Concurrency)
		errCh <- srv.Run(h.mux)
	}()

	select {
	case <-ctx.Done():
		srv.Shutdown()
		return nil
	case err := <-errCh:
		return err
	}
}
