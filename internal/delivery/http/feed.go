package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/paincake00/radarcore/internal/logger"
)

const feedWriteTimeout = 5 * time.Second

// FeedHub рассылает изменения ленты событий подключенным WebSocket-клиентам.
type FeedHub struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex // сериализует запись: websocket.Conn не допускает параллельных писателей
	clients  map[*websocket.Conn]struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Len число подключенных клиентов.
func (f *FeedHub) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Broadcast отправляет сообщение всем клиентам; клиент, на которого не удалось записать, отключается.
func (f *FeedHub) Broadcast(msg interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			logger.Warnf("WebSocket write error, dropping client: %v", err)
			delete(f.clients, conn)
			conn.Close()
		}
	}
}

func (f *FeedHub) remove(conn *websocket.Conn) {
	f.mu.Lock()
	delete(f.clients, conn)
	n := len(f.clients)
	f.mu.Unlock()
	conn.Close()
	logger.Infof("WebSocket client disconnected, total: %d", n)
}

// serve держит соединение, пока клиент его не закроет. Входящие сообщения игнорируются.
func (f *FeedHub) serve(c *gin.Context, hello interface{}) {
	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("WebSocket upgrade error: %v", err)
		return
	}

	f.mu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
	err = conn.WriteJSON(hello)
	if err == nil {
		f.clients[conn] = struct{}{}
	}
	n := len(f.clients)
	f.mu.Unlock()
	if err != nil {
		conn.Close()
		return
	}
	logger.Infof("WebSocket client connected, total: %d", n)

	defer f.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// FeedMessage сообщение ленты.
type FeedMessage struct {
	Type   string      `json:"type"`
	Count  int         `json:"count"`
	Events interface{} `json:"events,omitempty"`
}

// eventFeed GET /api/v1/events/ws: при подключении отдает текущий срез, затем каждую новую публикацию.
func (h *Handler) eventFeed(c *gin.Context) {
	hello := FeedMessage{Type: "connected"}
	if snapshot, err := h.EventService.List(c.Request.Context()); err == nil {
		hello.Count = len(snapshot.Events)
		hello.Events = snapshot.Events
	} else {
		logger.Warnf("Failed to load events for feed client: %v", err)
	}
	h.Feed.serve(c, hello)
}
