package push

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/paincake00/radarcore/internal/entity"
)

const notificationTitle = "New Event Nearby"

// Notification видимая часть push-уведомления.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Data полезная нагрузка, которую приложение разбирает само.
type Data struct {
	EventID     string `json:"eventId"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	Description string `json:"description"`
	DeepLink    string `json:"deepLink"`
}

// Message тело запроса к push-шлюзу.
type Message struct {
	Token        string       `json:"token"`
	Notification Notification `json:"notification"`
	Data         Data         `json:"data"`
}

// NewMessage собирает сообщение из задачи очереди.
func NewMessage(token string, p entity.PushPayload) Message {
	return Message{
		Token: token,
		Notification: Notification{
			Title: notificationTitle,
			Body:  fmt.Sprintf("%s - %s", p.Title, p.Category),
		},
		Data: Data{
			EventID:     p.EventID,
			Title:       p.Title,
			Category:    p.Category,
			Latitude:    strconv.FormatFloat(p.Latitude, 'f', -1, 64),
			Longitude:   strconv.FormatFloat(p.Longitude, 'f', -1, 64),
			Description: p.Description,
			DeepLink:    p.DeepLink,
		},
	}
}

type sendResponse struct {
	MessageID string `json:"message_id"`
}

// Client HTTP-клиент push-шлюза с повторами на 5xx и сетевых ошибках.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, retries int, wait time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(5*time.Second).
		SetRetryCount(retries).
		SetRetryWaitTime(wait).
		SetRetryMaxWaitTime(4 * wait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	return &Client{http: c}
}

// Send отправляет сообщение; idempotencyKey защищает от дублей при повторах.
// Возвращает id сообщения, присвоенный шлюзом, либо idempotencyKey, если шлюз его не вернул.
func (c *Client) Send(ctx context.Context, idempotencyKey string, msg Message) (string, error) {
	var out sendResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", idempotencyKey).
		SetBody(msg).
		SetResult(&out).
		Post("/send")
	if err != nil {
		return "", fmt.Errorf("push request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("push gateway returned status: %d", resp.StatusCode())
	}
	if out.MessageID == "" {
		return idempotencyKey, nil
	}
	return out.MessageID, nil
}
