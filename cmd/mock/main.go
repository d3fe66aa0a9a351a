package main

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paincake00/radarcore/internal/env"
	"github.com/paincake00/radarcore/internal/logger"
)

// Message сообщение, принятое мок-шлюзом.
type Message struct {
	ID             string          `json:"message_id"`
	IdempotencyKey string          `json:"idempotency_key"`
	Body           json.RawMessage `json:"body"`
	ReceivedAt     string          `json:"received_at"`
}

// Gateway мок push-шлюза: хранит сообщения в памяти и отвечает 503 на каждый failEvery-й запрос,
// чтобы можно было проверить повторы воркера.
type Gateway struct {
	mu        sync.Mutex
	messages  []Message
	byKey     map[string]string // Idempotency-Key -> message_id
	requests  int
	failEvery int
	delay     time.Duration
}

func NewGateway(failEvery int, delay time.Duration) *Gateway {
	return &Gateway{byKey: make(map[string]string), failEvery: failEvery, delay: delay}
}

func (g *Gateway) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/send", g.send)
	mux.HandleFunc("/messages", g.list)
	return mux
}

// send POST: принимаем push
func (g *Gateway) send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if !json.Valid(body) {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if g.delay > 0 {
		time.Sleep(g.delay)
	}

	key := r.Header.Get("Idempotency-Key")

	g.mu.Lock()
	g.requests++
	if g.failEvery > 0 && g.requests%g.failEvery == 0 {
		g.mu.Unlock()
		logger.Warnf("Simulating gateway failure for request %d", g.requests)
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	id, seen := g.byKey[key]
	if !seen {
		id = uuid.NewString()
		if key != "" {
			g.byKey[key] = id
		}
		g.messages = append(g.messages, Message{
			ID:             id,
			IdempotencyKey: key,
			Body:           json.RawMessage(body),
			ReceivedAt:     time.Now().Format(time.RFC3339),
		})
	}
	g.mu.Unlock()

	if seen {
		logger.Infof("Duplicate push %s (key %s)", id, key)
	} else {
		logger.Infof("Received push %s: %s", id, string(body))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message_id": id})
}

// list GET: отдаем список полученных сообщений
func (g *Gateway) list(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(g.messages); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func main() {
	logger.Init(env.GetString("LOG_LEVEL", "info"))
	port := env.GetString("PORT", "9090")
	g := NewGateway(env.GetInt("FAIL_EVERY", 0), env.GetDuration("RESPONSE_DELAY", 0))

	logger.Infof("Mock push gateway listening on :%s", port)
	if err := http.ListenAndServe(":"+port, g.Routes()); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
