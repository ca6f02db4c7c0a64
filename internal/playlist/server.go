package playlist

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/swayam25/Aero/internal/song"
)

// DB is the slice of pgxpool.Pool the handlers need; mocked in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// SongSource resolves song ids added to a playlist.
type SongSource interface {
	GetSong(ctx context.Context, id string) (song.Song, error)
}

type Server struct {
	db    DB
	rdb   *redis.Client
	songs SongSource
}

func NewServer(db DB, rdb *redis.Client, songs SongSource) *Server {
	return &Server{
		db:    db,
		rdb:   rdb,
		songs: songs,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Get("/playlists", s.handleListPlaylists)
	r.Post("/playlists", s.handleCreatePlaylist)

	r.Get("/playlists/{id}", s.handleGetPlaylist)
	r.Patch("/playlists/{id}", s.handlePatchPlaylist)
	r.Delete("/playlists/{id}", s.handleDeletePlaylist)

	r.Post("/playlists/{id}/songs", s.handleAddSong)
	r.Patch("/playlists/{id}/songs", s.handleReorderSongs)
	r.Delete("/playlists/{id}/songs/{songId}", s.handleRemoveSong)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "playlist-service",
	})
}
