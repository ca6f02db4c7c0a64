package room

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/swayam25/Aero/internal/song"
)

// SongSource resolves song ids submitted to add_to_queue. The metadata
// provider client satisfies it.
type SongSource interface {
	GetSong(ctx context.Context, id string) (song.Song, error)
}

type Server struct {
	store *Store
	pub   *Publisher
	songs SongSource
}

func NewServer(store *Store, pub *Publisher, songs SongSource) *Server {
	return &Server{
		store: store,
		pub:   pub,
		songs: songs,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Get("/rooms", s.handleListRooms)
	r.Post("/rooms", s.handleRootCommand)
	r.Delete("/rooms", s.handleDeleteRoom)

	r.Get("/rooms/{id}", s.handleGetRoom)
	r.Post("/rooms/{id}", s.handleRoomCommand)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "room-service",
	})
}

// memberFromHeaders builds the cached profile snapshot from the identity
// headers the auth middleware injects.
func memberFromHeaders(r *http.Request) Member {
	return Member{
		ID:       r.Header.Get("X-User-Id"),
		Username: r.Header.Get("X-User-Name"),
		Avatar:   r.Header.Get("X-User-Avatar"),
	}
}
