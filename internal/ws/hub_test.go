package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/umami-pos/api/internal/auth"
	"github.com/umami-pos/api/internal/enum"
	"github.com/umami-pos/api/internal/order"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, topic string) *Client {
	return &Client{
		hub:   hub,
		topic: topic,
		send:  make(chan []byte, 256),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHubRegistration(t *testing.T) {
	hub := startHub(t)
	client := mockClient(hub, TopicOrders)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms[TopicOrders] == nil {
		t.Fatal("room not created")
	}
	if !hub.rooms[TopicOrders][client] {
		t.Fatal("client not registered in room")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := startHub(t)
	client := mockClient(hub, TopicOrders)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)
	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.rooms[TopicOrders] != nil {
		t.Fatal("room not cleaned up after last client unregistered")
	}
}

func TestBroadcastToSingleTopic(t *testing.T) {
	hub := startHub(t)

	ordersClient := mockClient(hub, TopicOrders)
	otherClient := mockClient(hub, "warehouse")
	hub.register <- ordersClient
	hub.register <- otherClient
	time.Sleep(10 * time.Millisecond)

	payload := json.RawMessage(`{"id":"test-123"}`)
	hub.Broadcast(TopicOrders, Event{Type: enum.EventOrderCreated, Payload: payload})

	select {
	case msg := <-ordersClient.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		if received.Type != enum.EventOrderCreated {
			t.Errorf("expected type %q, got %q", enum.EventOrderCreated, received.Type)
		}
		if string(received.Payload) != string(payload) {
			t.Errorf("expected payload %s, got %s", payload, received.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("orders client did not receive message")
	}

	select {
	case <-otherClient.send:
		t.Fatal("client on another topic received the message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifyBroadcastsOrder(t *testing.T) {
	hub := startHub(t)
	client := mockClient(hub, TopicOrders)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.Notify(context.Background(), enum.EventOrderDeleted, order.Order{ID: "o-1", Status: enum.OrderStatusPending})

	select {
	case msg := <-client.send:
		var received Event
		json.Unmarshal(msg, &received)
		if received.Type != enum.EventOrderDeleted {
			t.Errorf("type: got %s", received.Type)
		}
		var o order.Order
		if err := json.Unmarshal(received.Payload, &o); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if o.ID != "o-1" {
			t.Errorf("order id: got %s", o.ID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no message received")
	}
}

func TestSlowClientDropped(t *testing.T) {
	hub := startHub(t)
	client := &Client{hub: hub, topic: TopicOrders, send: make(chan []byte)}
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast(TopicOrders, Event{Type: "x", Payload: json.RawMessage(`{}`)})
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if hub.rooms[TopicOrders] != nil {
		t.Error("slow client not dropped")
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel not closed")
	}
}

func startServer(t *testing.T, hub *Hub, origins []string) string {
	t.Helper()
	srv := httptest.NewServer(NewHandler(hub, "secret", TopicOrders, origins))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		hub.mu.RLock()
		got := len(hub.rooms[TopicOrders])
		hub.mu.RUnlock()
		if got == n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("clients: got %d, want %d", got, n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func cashierToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken("secret", "user-1", enum.UserRoleCashier)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

func TestHandler_RequiresToken(t *testing.T) {
	url := startServer(t, startHub(t), nil)

	tests := []struct {
		name string
		url  string
	}{
		{"no token", url},
		{"bad token", url + "?token=garbage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(tt.url, nil)
			if err == nil {
				t.Fatal("expected dial to fail")
			}
			if resp == nil || resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("expected 401, got %v", resp)
			}
		})
	}
}

func TestHandler_ReceivesEventsOnePerFrame(t *testing.T) {
	hub := startHub(t)
	url := startServer(t, hub, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+cashierToken(t), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	hub.Broadcast(TopicOrders, Event{Type: enum.EventOrderCreated, Payload: json.RawMessage(`{"id":"a"}`)})
	hub.Broadcast(TopicOrders, Event{Type: enum.EventOrderDeleted, Payload: json.RawMessage(`{"id":"b"}`)})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	for _, want := range []string{enum.EventOrderCreated, enum.EventOrderDeleted} {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("decode %s: %v", msg, err)
		}
		if received.Type != want {
			t.Errorf("type: got %s, want %s", received.Type, want)
		}
	}
}

func TestHandler_AcceptsBearerHeader(t *testing.T) {
	hub := startHub(t)
	url := startServer(t, hub, nil)

	header := http.Header{"Authorization": []string{"Bearer " + cashierToken(t)}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)
}

func TestHandler_ChecksOrigin(t *testing.T) {
	hub := startHub(t)
	url := startServer(t, hub, []string{"http://localhost:5173"}) + "?token=" + cashierToken(t)

	allowed := http.Header{"Origin": []string{"http://localhost:5173"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, allowed)
	if err != nil {
		t.Fatalf("allowed origin: %v", err)
	}
	conn.Close()

	denied := http.Header{"Origin": []string{"http://evil.example"}}
	if _, resp, err := websocket.DefaultDialer.Dial(url, denied); err == nil {
		t.Fatal("expected foreign origin to be rejected")
	} else if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %v", resp)
	}
}
