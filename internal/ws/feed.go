// Package ws streams ledger transition events to websocket subscribers.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chargeledger/internal/ledger"
)

const defaultPingInterval = 30 * time.Second

// Feed broadcasts every committed transition to all connected subscribers.
// Slow or broken subscribers are dropped, never waited on.
type Feed struct {
	mu           sync.RWMutex
	subscribers  map[*subscriber]struct{}
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	logger       *zap.Logger
}

type subscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *subscriber) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *subscriber) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

// NewFeed builds the event feed.
func NewFeed(logger *zap.Logger) *Feed {
	return &Feed{
		subscribers: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		pingInterval: defaultPingInterval,
		logger:       logger,
	}
}

// Handler upgrades GET requests into feed subscriptions.
func (f *Feed) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := f.upgrader.Upgrade(w, r, nil)
		if err != nil {
			f.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		sub := &subscriber{conn: conn}
		f.add(sub)
		go f.readLoop(sub)
	}
}

// Notify broadcasts one transition event to every subscriber.
func (f *Feed) Notify(_ context.Context, ev ledger.Event) error {
	f.mu.RLock()
	subs := make([]*subscriber, 0, len(f.subscribers))
	for sub := range f.subscribers {
		subs = append(subs, sub)
	}
	f.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.writeJSON(ev); err != nil {
			f.drop(sub)
		}
	}
	return nil
}

// Start runs the keepalive ping loop until ctx is cancelled.
func (f *Feed) Start(ctx context.Context) {
	ticker := time.NewTicker(f.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			f.closeAll()
			return
		case <-ticker.C:
			f.mu.RLock()
			subs := make([]*subscriber, 0, len(f.subscribers))
			for sub := range f.subscribers {
				subs = append(subs, sub)
			}
			f.mu.RUnlock()
			for _, sub := range subs {
				if err := sub.ping(); err != nil {
					f.drop(sub)
				}
			}
		}
	}
}

// SubscriberCount reports connected subscribers.
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

func (f *Feed) add(sub *subscriber) {
	f.mu.Lock()
	f.subscribers[sub] = struct{}{}
	f.mu.Unlock()
}

func (f *Feed) drop(sub *subscriber) {
	f.mu.Lock()
	_, present := f.subscribers[sub]
	delete(f.subscribers, sub)
	f.mu.Unlock()
	if present {
		_ = sub.conn.Close()
	}
}

// readLoop drains inbound frames so pings/pongs are processed and closes
// are noticed. The feed is outbound only; payloads are discarded.
func (f *Feed) readLoop(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			f.drop(sub)
			return
		}
	}
}

func (f *Feed) closeAll() {
	f.mu.Lock()
	for sub := range f.subscribers {
		_ = sub.conn.Close()
		delete(f.subscribers, sub)
	}
	f.mu.Unlock()
}
