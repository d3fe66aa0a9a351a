package memory

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Store TTL-хранилище в памяти процесса с вытеснением LRU.
// Все операции под одним мьютексом, поэтому SetJSONIfAbsent атомарен.
type Store struct {
	mu    sync.Mutex
	cap   int
	ll    *list.List               // свежие в начале
	items map[string]*list.Element // key -> element
	now   func() time.Time
}

type entry struct {
	key   string
	value []byte
	exp   time.Time // нулевое значение: без срока
}

func NewStore(maxKeys int) *Store {
	if maxKeys <= 0 {
		maxKeys = 100000
	}
	return &Store{cap: maxKeys, ll: list.New(), items: make(map[string]*list.Element), now: time.Now}
}

// WithClock подменяет часы (для тестов).
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// lookup возвращает живую запись; просроченную удаляет. Вызывать под s.mu.
func (s *Store) lookup(key string) (*list.Element, bool) {
	el, ok := s.items[key]
	if !ok {
		return nil, false
	}
	en := el.Value.(entry)
	if !en.exp.IsZero() && !s.now().Before(en.exp) {
		s.ll.Remove(el)
		delete(s.items, key)
		return nil, false
	}
	return el, true
}

// put вызывать под s.mu.
func (s *Store) put(key string, value []byte, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	if el, ok := s.items[key]; ok {
		el.Value = entry{key: key, value: value, exp: exp}
		s.ll.MoveToFront(el)
		return
	}
	s.items[key] = s.ll.PushFront(entry{key: key, value: value, exp: exp})
	for s.ll.Len() > s.cap {
		tail := s.ll.Back()
		s.ll.Remove(tail)
		delete(s.items, tail.Value.(entry).key)
	}
}

func (s *Store) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	s.mu.Lock()
	el, ok := s.lookup(key)
	var data []byte
	if ok {
		s.ll.MoveToFront(el)
		data = el.Value.(entry).value
	}
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, data, ttl)
	return nil
}

func (s *Store) SetJSONIfAbsent(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookup(key); ok {
		return false, nil
	}
	s.put(key, data, ttl)
	return true, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[key]; ok {
		s.ll.Remove(el)
		delete(s.items, key)
	}
	return nil
}

// Len число записей, включая еще не вычищенные просроченные.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ll.Len()
}
