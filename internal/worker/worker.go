package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paincake00/radarcore/internal/entity"
	"github.com/paincake00/radarcore/internal/infrastructure/push"
	"github.com/paincake00/radarcore/internal/logger"
	"github.com/paincake00/radarcore/internal/metrics"
	"github.com/paincake00/radarcore/internal/usecase"
)

const DefaultQueueName = "push_tasks"

// QueueGateway ставит уведомление в очередь; доставкой занимается Worker.
type QueueGateway struct {
	Queue     usecase.QueueRepository
	QueueName string
	now       func() time.Time
}

func NewQueueGateway(q usecase.QueueRepository, queueName string) *QueueGateway {
	if queueName == "" {
		queueName = DefaultQueueName
	}
	return &QueueGateway{Queue: q, QueueName: queueName, now: time.Now}
}

func newPushTask(userID, deviceToken string, payload entity.PushPayload, now time.Time) entity.PushTask {
	return entity.PushTask{
		ID:          uuid.NewString(),
		UserID:      userID,
		DeviceToken: deviceToken,
		Payload:     payload,
		CreatedAt:   now.UTC().Format(time.RFC3339),
	}
}

// Send реализует usecase.DeliveryGateway.
func (g *QueueGateway) Send(ctx context.Context, userID, deviceToken string, payload entity.PushPayload) error {
	task := newPushTask(userID, deviceToken, payload, g.now())
	if err := g.Queue.Enqueue(ctx, g.QueueName, task); err != nil {
		return fmt.Errorf("enqueue push task: %w", err)
	}
	return nil
}

// Pusher отправляет сообщение в push-шлюз.
type Pusher interface {
	Send(ctx context.Context, idempotencyKey string, msg push.Message) (string, error)
}

// Worker отвечает за фоновую обработку задач (отправку push-уведомлений).
type Worker struct {
	Queue      usecase.QueueRepository
	QueueName  string
	Pusher     Pusher
	Deliveries *usecase.Deduper // отметки user:{user}:notified:{event}
	Log        usecase.DeliveryLog
	Metrics    *metrics.Metrics

	wg sync.WaitGroup
}

// New создает новый экземпляр воркера.
func New(q usecase.QueueRepository, queueName string, p Pusher, deliveries *usecase.Deduper, l usecase.DeliveryLog, m *metrics.Metrics) *Worker {
	if queueName == "" {
		queueName = DefaultQueueName
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Worker{
		Queue:      q,
		QueueName:  queueName,
		Pusher:     p,
		Deliveries: deliveries,
		Log:        l,
		Metrics:    m,
	}
}

// Start запускает цикл обработки задач и возвращается после отмены ctx
// и завершения уже начатых задач.
func (w *Worker) Start(ctx context.Context) {
	logger.Infof("Starting push worker on queue %s...", w.QueueName)
	defer w.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			logger.Infof("Push worker stopped")
			return
		default:
			// Dequeue блокируется на BlockTimeout и возвращает пустую строку, если задач нет.
			data, err := w.Queue.Dequeue(ctx, w.QueueName)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Errorf("Worker dequeue error: %v", err)
				select {
				case <-ctx.Done():
				case <-time.After(time.Second): // пауза при ошибке
				}
				continue
			}
			if data == "" {
				continue
			}

			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				w.processTask(context.WithoutCancel(ctx), data)
			}()
		}
	}
}

// errInvalidTask задача не разбирается или неполная; повторять бессмысленно.
var errInvalidTask = errors.New("invalid push task")

// processTask обрабатывает одну задачу из списка Redis; повторы делает push-клиент.
func (w *Worker) processTask(ctx context.Context, data string) {
	if err := w.handle(ctx, []byte(data)); err != nil {
		logger.Errorf("Push task failed: %v", err)
	}
}

// handle проверка журнала доставок -> отправка -> отметка.
// Ошибка означает, что уведомление не доставлено.
func (w *Worker) handle(ctx context.Context, data []byte) error {
	var task entity.PushTask
	if err := json.Unmarshal(data, &task); err != nil {
		w.Metrics.PushAttempts.WithLabelValues("invalid").Inc()
		return fmt.Errorf("%w: %v", errInvalidTask, err)
	}
	eventID := task.Payload.EventID
	if task.DeviceToken == "" {
		w.Metrics.PushAttempts.WithLabelValues("invalid").Inc()
		return fmt.Errorf("%w: task %s has no device token", errInvalidTask, task.ID)
	}

	// Запись о доставке проверяется до отправки; при сбое хранилища отправляем.
	if sent, err := w.Deliveries.Has(ctx, task.UserID, eventID); err != nil {
		logger.Warnf("Failed to check delivery record for user %s, event %s: %v", task.UserID, eventID, err)
	} else if sent {
		w.Metrics.PushAttempts.WithLabelValues("skipped").Inc()
		logger.Infof("User %s already notified about event %s, skipping", task.UserID, eventID)
		return nil
	}

	messageID, err := w.Pusher.Send(ctx, task.ID, push.NewMessage(task.DeviceToken, task.Payload))
	if err != nil {
		w.Metrics.PushAttempts.WithLabelValues("failed").Inc()
		return fmt.Errorf("send push for task %s: %w", task.ID, err)
	}
	w.Metrics.PushAttempts.WithLabelValues("sent").Inc()
	logger.Infof("Push sent to user %s for event %s (message %s)", task.UserID, eventID, messageID)

	if err := w.Deliveries.MarkSent(ctx, task.UserID, eventID); err != nil {
		logger.Warnf("Failed to mark delivery for user %s, event %s: %v", task.UserID, eventID, err)
	}
	if w.Log == nil {
		return nil
	}
	d := &entity.Delivery{MessageID: messageID, UserID: task.UserID, EventID: eventID}
	if err := w.Log.RecordDelivery(ctx, d); err != nil {
		logger.Errorf("Failed to record delivery for task %s: %v", task.ID, err)
	}
	return nil
}
