// Package realtime fans persisted-event broadcasts out to websocket
// subscribers. One hub serves every room and playlist channel; clients
// subscribe to exactly one topic.
package realtime

// message is one broadcast payload addressed to a topic.
type message struct {
	topic string
	data  []byte
}

// Hub owns the client set and routes messages by topic.
type Hub struct {
	// Registered clients grouped by topic.
	topics map[string]map[*Client]bool

	// Inbound messages from Redis to fan out.
	broadcast chan message

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		topics:     make(map[string]map[*Client]bool),
		broadcast:  make(chan message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			clients := h.topics[client.topic]
			if clients == nil {
				clients = make(map[*Client]bool)
				h.topics[client.topic] = clients
			}
			clients[client] = true

		case client := <-h.unregister:
			if clients, ok := h.topics[client.topic]; ok && clients[client] {
				h.drop(client)
			}

		case msg := <-h.broadcast:
			for client := range h.topics[msg.topic] {
				select {
				case client.send <- msg.data:
				default:
					// A subscriber that cannot keep up is dropped; it will
					// reconnect and reconcile instead of backing up the hub.
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	clients := h.topics[client.topic]
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.topics, client.topic)
	}
	close(client.send)
	_ = client.conn.Close()
}
