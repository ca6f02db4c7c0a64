package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/swayam25/Aero/internal/song"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// EventTopic is the playlist-scoped broadcast channel name.
func EventTopic(playlistID string) string {
	return "playlist:" + playlistID + ":events"
}

// publishEvent notifies live subscribers about a playlist change.
// Best-effort: failures are logged and swallowed.
func (s *Server) publishEvent(ctx context.Context, playlistID, event string, payload map[string]any) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(map[string]any{
		"type":    "playlist." + event,
		"payload": payload,
	})
	if err != nil {
		log.Printf("playlist-service: marshal %s event: %v", event, err)
		return
	}
	if err := s.rdb.Publish(ctx, EventTopic(playlistID), string(data)).Err(); err != nil {
		log.Printf("playlist-service: publish %s event: %v", event, err)
	}
}

const playlistColumns = `id, owner_id, name, cover, songs, is_public, created_at`

func scanPlaylist(row pgx.Row) (Playlist, bool, error) {
	var (
		pl       Playlist
		songsRaw []byte
	)
	err := row.Scan(
		&pl.ID,
		&pl.OwnerID,
		&pl.Name,
		&pl.Cover,
		&songsRaw,
		&pl.IsPublic,
		&pl.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Playlist{}, false, nil
	}
	if err != nil {
		return Playlist{}, false, err
	}

	pl.Songs = []song.EnhancedSong{}
	if len(songsRaw) > 0 {
		if err := json.Unmarshal(songsRaw, &pl.Songs); err != nil {
			return Playlist{}, false, err
		}
	}
	return pl, true, nil
}

// getPlaylist fetches one row; found=false means no such playlist.
func (s *Server) getPlaylist(ctx context.Context, id string) (Playlist, bool, error) {
	return scanPlaylist(s.db.QueryRow(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		WHERE id = $1
	`, id))
}
