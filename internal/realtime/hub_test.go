package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{}

// createConnectedClient performs a real websocket handshake and returns both
// ends: the external connection and the *Client the hub sees.
func createConnectedClient(t *testing.T, hub *Hub, topic string) (*websocket.Conn, *Client, func()) {
	t.Helper()

	var internalClient *Client
	var createdWg sync.WaitGroup
	createdWg.Add(1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade: %v", err)
			return
		}
		client := &Client{
			hub:   hub,
			conn:  conn,
			topic: topic,
			send:  make(chan []byte, 256),
		}
		internalClient = client
		createdWg.Done()
		go client.writePump()
		go client.readPump()
	}))

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	clientWs, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}

	createdWg.Wait()

	return clientWs, internalClient, func() {
		server.Close()
		clientWs.Close()
	}
}

func TestHub_TopicRouting(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	wsA, clientA, cleanupA := createConnectedClient(t, hub, "room:a:events")
	defer cleanupA()
	wsB, clientB, cleanupB := createConnectedClient(t, hub, "room:b:events")
	defer cleanupB()

	hub.register <- clientA
	hub.register <- clientB
	time.Sleep(50 * time.Millisecond)

	msg := []byte(`{"type":"room.pause"}`)
	hub.broadcast <- message{topic: "room:a:events", data: msg}

	_, received, err := wsA.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	if string(received) != string(msg) {
		t.Errorf("Expected %s, got %s", msg, received)
	}

	// The other room's subscriber must see nothing.
	_ = wsB.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := wsB.ReadMessage(); err == nil {
		t.Error("Expected no message for room b")
	}
}

func TestHub_BroadcastToMultipleSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	ws1, client1, cleanup1 := createConnectedClient(t, hub, "room:x:events")
	defer cleanup1()
	ws2, client2, cleanup2 := createConnectedClient(t, hub, "room:x:events")
	defer cleanup2()

	hub.register <- client1
	hub.register <- client2
	time.Sleep(50 * time.Millisecond)

	msg := []byte("broadcast_test")
	hub.broadcast <- message{topic: "room:x:events", data: msg}

	verifyReceive := func(ws *websocket.Conn, name string) {
		_, received, err := ws.ReadMessage()
		if err != nil {
			t.Errorf("%s: Failed to read: %v", name, err)
			return
		}
		if string(received) != string(msg) {
			t.Errorf("%s: Expected %s, got %s", name, msg, received)
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		verifyReceive(ws1, "Client1")
	}()
	go func() {
		defer wg.Done()
		verifyReceive(ws2, "Client2")
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Error("Timeout waiting for clients to receive message")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	_, client, cleanup := createConnectedClient(t, hub, "room:y:events")
	defer cleanup()

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(50 * time.Millisecond)

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("Expected client.send to be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timed out waiting for send channel close")
	}
}
