package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chargeledger/internal/ledger"
)

func dialFeed(t *testing.T, feed *Feed) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(feed.Handler())
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial feed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for feed.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return conn
}

func TestFeedBroadcastsEvents(t *testing.T) {
	feed := NewFeed(zap.NewNop())
	conn := dialFeed(t, feed)

	ev := ledger.Event{
		Kind:      ledger.EventSessionStarted,
		Holder:    "alice",
		Station:   1,
		SessionID: 7,
	}
	if err := feed.Notify(context.Background(), ev); err != nil {
		t.Fatalf("notify: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got ledger.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.Kind != ev.Kind || got.SessionID != ev.SessionID || got.Holder != ev.Holder {
		t.Fatalf("got %+v, want %+v", got, ev)
	}
}

func TestFeedDropsClosedSubscribers(t *testing.T) {
	feed := NewFeed(zap.NewNop())
	conn := dialFeed(t, feed)

	conn.Close()

	// Broadcasting to a dead connection evicts it rather than erroring.
	deadline := time.Now().Add(2 * time.Second)
	for feed.SubscriberCount() != 0 {
		if err := feed.Notify(context.Background(), ledger.Event{Kind: ledger.EventSessionEnded}); err != nil {
			t.Fatalf("notify: %v", err)
		}
		if time.Now().After(deadline) {
			t.Fatal("closed subscriber never dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
