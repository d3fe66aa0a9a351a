package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/paincake00/radarcore/internal/entity"
)

// TaskTypePush тип задачи asynq для push-уведомления.
const TaskTypePush = "push:send"

// AsynqGateway ставит уведомление задачей asynq: повторы и отложенный запуск
// выполняет сервер asynq, а не push-клиент.
type AsynqGateway struct {
	Client   *asynq.Client
	Queue    string
	MaxRetry int
	now      func() time.Time
}

func NewAsynqGateway(client *asynq.Client, queue string, maxRetry int) *AsynqGateway {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &AsynqGateway{Client: client, Queue: queue, MaxRetry: maxRetry, now: time.Now}
}

// NewPushTask собирает задачу asynq; id задачи совпадает с id PushTask.
func NewPushTask(task entity.PushTask, queue string, maxRetry int) (*asynq.Task, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePush, data,
		asynq.TaskID(task.ID),
		asynq.Queue(queue),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(30*time.Second),
	), nil
}

// Send реализует usecase.DeliveryGateway.
func (g *AsynqGateway) Send(ctx context.Context, userID, deviceToken string, payload entity.PushPayload) error {
	t, err := NewPushTask(newPushTask(userID, deviceToken, payload, g.now()), g.Queue, g.MaxRetry)
	if err != nil {
		return fmt.Errorf("build push task: %w", err)
	}
	if _, err := g.Client.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("enqueue push task: %w", err)
	}
	return nil
}

// HandlePushTask обработчик asynq. Неразборчивая задача не повторяется.
func (w *Worker) HandlePushTask(ctx context.Context, t *asynq.Task) error {
	err := w.handle(ctx, t.Payload())
	if errors.Is(err, errInvalidTask) {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	return err
}

// NewAsynqServer сервер asynq, разбирающий очередь push-задач обработчиком воркера.
func NewAsynqServer(opt asynq.RedisClientOpt, queue string, concurrency int, w *Worker) (*asynq.Server, *asynq.ServeMux) {
	if queue == "" {
		queue = DefaultQueueName
	}
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypePush, w.HandlePushTask)
	return srv, mux
}
