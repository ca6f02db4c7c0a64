package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/swayam25/Aero/internal/playlist"
	"github.com/swayam25/Aero/internal/room"
)

var upgrader = websocket.Upgrader{
	// Origin checks happen at the gateway; the service itself accepts all.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Server struct {
	hub *Hub
	rdb *redis.Client
	ctx context.Context
}

func NewServer(hub *Hub, rdb *redis.Client, ctx context.Context) *Server {
	return &Server{
		hub: hub,
		rdb: rdb,
		ctx: ctx,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)
	r.Post("/events", s.handleEvents)

	return r
}

// RunRedisSubscriber forwards every room and playlist event channel into the
// hub. The Redis channel name doubles as the hub topic.
func (s *Server) RunRedisSubscriber() {
	sub := s.rdb.PSubscribe(s.ctx, "room:*:events", "playlist:*:events")
	defer sub.Close()

	ch := sub.Channel()
	for msg := range ch {
		s.hub.broadcast <- message{topic: msg.Channel, data: []byte(msg.Payload)}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "realtime-service",
	})
}

// handleWS upgrades the connection and pins it to one topic: ?room={id} or
// ?playlist={id}.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	var topic string
	switch {
	case r.URL.Query().Get("room") != "":
		topic = room.EventTopic(r.URL.Query().Get("room"))
	case r.URL.Query().Get("playlist") != "":
		topic = playlist.EventTopic(r.URL.Query().Get("playlist"))
	default:
		http.Error(w, "missing room or playlist parameter", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime-service: ws upgrade: %v", err)
		return
	}

	client := &Client{
		hub:   s.hub,
		conn:  conn,
		topic: topic,
		send:  make(chan []byte, 256),
	}
	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// handleEvents injects an event into a room channel over HTTP. Used by
// services without a Redis client of their own and by operational tooling.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var body struct {
		RoomID  string          `json:"roomId"`
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RoomID == "" || body.Type == "" {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	data, err := json.Marshal(map[string]any{"type": body.Type, "payload": body.Payload})
	if err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	if err := s.rdb.Publish(r.Context(), room.EventTopic(body.RoomID), string(data)).Err(); err != nil {
		log.Printf("realtime-service: publish error: %v", err)
		http.Error(w, "redis error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
