package websocket

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func testClient() *Client {
	return &Client{send: make(chan []byte, 4), userID: 1}
}

func TestHubBroadcastCountReachesWatchers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	watcher := testClient()
	bystander := testClient()

	hub.subscribe(42, watcher)
	hub.subscribe(7, bystander)

	hub.BroadcastCount(42, 12)

	select {
	case data := <-watcher.send:
		var msg CountMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal count message: %v", err)
		}
		if msg.Type != "count" || msg.EventID != 42 || msg.Count != 12 {
			t.Fatalf("unexpected count message: %+v", msg)
		}
	default:
		t.Fatalf("watcher received no count message")
	}

	select {
	case <-bystander.send:
		t.Fatalf("client watching another event must not receive the broadcast")
	default:
	}
}

func TestHubBroadcastSkipsSlowClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	slow := &Client{send: make(chan []byte), userID: 1} // unbuffered, nobody reading
	hub.subscribe(42, slow)

	// Must not block
	hub.BroadcastCount(42, 3)
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := testClient()

	hub.subscribe(42, client)
	if hub.WatcherCount(42) != 1 {
		t.Fatalf("expected 1 watcher, got %d", hub.WatcherCount(42))
	}

	hub.unsubscribe(42, client)
	if hub.WatcherCount(42) != 0 {
		t.Fatalf("expected no watchers after unsubscribe, got %d", hub.WatcherCount(42))
	}

	hub.BroadcastCount(42, 1)
	select {
	case <-client.send:
		t.Fatalf("unsubscribed client must not receive broadcasts")
	default:
	}
}

func TestHubRemoveClientDropsAllWatchesAndClosesSend(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := testClient()

	hub.subscribe(1, client)
	hub.subscribe(2, client)

	hub.removeClient(client)

	if hub.WatcherCount(1) != 0 || hub.WatcherCount(2) != 0 {
		t.Fatalf("removed client still registered as watcher")
	}
	if _, open := <-client.send; open {
		t.Fatalf("send channel should be closed after removal")
	}

	// Removing twice must not panic on a closed channel
	hub.removeClient(client)
}
