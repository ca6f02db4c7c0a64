package playlist

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/swayam25/Aero/internal/queue"
	"github.com/swayam25/Aero/internal/song"
)

// handleAddSong resolves a song id against the metadata provider and appends
// the enhanced record. Re-adding moves the song to the tail.
func (s *Server) handleAddSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := chi.URLParam(r, "id")

	var body struct {
		SongID string `json:"songId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SongID == "" {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	raw, err := s.songs.GetSong(ctx, body.SongID)
	if errors.Is(err, song.ErrNotFound) {
		writeError(w, http.StatusNotFound, "song not found")
		return
	}
	if err != nil {
		log.Printf("playlist-service: add song lookup: %v", err)
		writeError(w, http.StatusBadGateway, "song lookup failed")
		return
	}
	enhanced := song.Enhance(raw)

	s.mutateSongs(w, r, playlistID, func(q *queue.Queue) {
		q.Enqueue(enhanced)
	})
}

// handleRemoveSong drops a song from the playlist; absent ids are a no-op.
func (s *Server) handleRemoveSong(w http.ResponseWriter, r *http.Request) {
	songID := chi.URLParam(r, "songId")
	s.mutateSongs(w, r, chi.URLParam(r, "id"), func(q *queue.Queue) {
		q.Dequeue(songID)
	})
}

// handleReorderSongs rearranges the playlist to the submitted id order.
func (s *Server) handleReorderSongs(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VideoIDs []string `json:"videoIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.mutateSongs(w, r, chi.URLParam(r, "id"), func(q *queue.Queue) {
		q.Reorder(body.VideoIDs)
	})
}

// mutateSongs is the shared owner-gated read-modify-write over the songs
// column. The list is rebuilt through the queue model so playlist edits keep
// the same dedup semantics as the playback queue.
func (s *Server) mutateSongs(w http.ResponseWriter, r *http.Request, playlistID string, fn func(*queue.Queue)) {
	ctx := r.Context()
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		log.Printf("playlist-service: begin tx: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer tx.Rollback(ctx)

	var (
		ownerID  string
		songsRaw []byte
	)
	err = tx.QueryRow(ctx, `
		SELECT owner_id, songs FROM playlists WHERE id = $1 FOR UPDATE
	`, playlistID).Scan(&ownerID, &songsRaw)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if err != nil {
		log.Printf("playlist-service: mutate songs fetch: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if ownerID != userID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	songs := []song.EnhancedSong{}
	if len(songsRaw) > 0 {
		if err := json.Unmarshal(songsRaw, &songs); err != nil {
			log.Printf("playlist-service: decode songs: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
	}

	q := queue.New()
	q.Replace(songs)
	fn(q)
	updated := q.Songs()

	data, err := json.Marshal(updated)
	if err != nil {
		log.Printf("playlist-service: encode songs: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if _, err := tx.Exec(ctx, `UPDATE playlists SET songs = $2 WHERE id = $1`, playlistID, data); err != nil {
		log.Printf("playlist-service: mutate songs update: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		log.Printf("playlist-service: mutate songs commit: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, playlistID, "songs", map[string]any{"songs": updated})

	writeJSON(w, http.StatusOK, map[string]any{"songs": updated})
}
