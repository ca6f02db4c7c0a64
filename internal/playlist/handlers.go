package playlist

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/swayam25/Aero/internal/song"
)

// handleListPlaylists returns public playlists plus everything the current
// user owns.
func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.Header.Get("X-User-Id")

	rows, err := s.db.Query(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		WHERE is_public = TRUE
		   OR ($1 <> '' AND owner_id = $1)
		ORDER BY created_at DESC
		LIMIT 200
	`, userID)
	if err != nil {
		log.Printf("playlist-service: list playlists: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	defer rows.Close()

	playlists := []Playlist{}
	for rows.Next() {
		pl, _, err := scanPlaylist(rows)
		if err != nil {
			log.Printf("playlist-service: list playlists scan: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		playlists = append(playlists, pl)
	}
	if err := rows.Err(); err != nil {
		log.Printf("playlist-service: list playlists rows: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, playlists)
}

// handleCreatePlaylist creates a new playlist owned by the current user.
func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := r.Header.Get("X-User-Id")
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var body struct {
		Name     string `json:"name"`
		Cover    string `json:"cover"`
		IsPublic *bool  `json:"isPublic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" || len(body.Name) > 100 {
		writeError(w, http.StatusBadRequest, "name must be between 1 and 100 characters")
		return
	}

	isPublic := false
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}

	pl := Playlist{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		Name:     body.Name,
		Cover:    strings.TrimSpace(body.Cover),
		Songs:    []song.EnhancedSong{},
		IsPublic: isPublic,
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO playlists (id, owner_id, name, cover, is_public)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, pl.ID, pl.OwnerID, pl.Name, pl.Cover, pl.IsPublic).Scan(&pl.CreatedAt)
	if err != nil {
		log.Printf("playlist-service: create playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, pl.ID, "created", map[string]any{"playlist": pl})

	writeJSON(w, http.StatusCreated, pl)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.Header.Get("X-User-Id")

	pl, found, err := s.getPlaylist(ctx, chi.URLParam(r, "id"))
	if err != nil {
		log.Printf("playlist-service: get playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	// Private playlists are only visible to the owner.
	if !pl.IsPublic && userID != pl.OwnerID {
		writeError(w, http.StatusForbidden, "playlist is private")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"playlist": pl,
		"canEdit":  userID != "" && userID == pl.OwnerID,
	})
}

// handlePatchPlaylist updates name, cover or visibility. Owner only.
func (s *Server) handlePatchPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var body struct {
		Name     *string `json:"name"`
		Cover    *string `json:"cover"`
		IsPublic *bool   `json:"isPublic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pl, found, err := s.getPlaylist(ctx, chi.URLParam(r, "id"))
	if err != nil {
		log.Printf("playlist-service: patch playlist fetch: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if pl.OwnerID != userID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" || len(name) > 100 {
			writeError(w, http.StatusBadRequest, "name must be between 1 and 100 characters")
			return
		}
		pl.Name = name
	}
	if body.Cover != nil {
		pl.Cover = strings.TrimSpace(*body.Cover)
	}
	if body.IsPublic != nil {
		pl.IsPublic = *body.IsPublic
	}

	_, err = s.db.Exec(ctx, `
		UPDATE playlists
		SET name = $2, cover = $3, is_public = $4
		WHERE id = $1
	`, pl.ID, pl.Name, pl.Cover, pl.IsPublic)
	if err != nil {
		log.Printf("playlist-service: patch playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, pl.ID, "updated", map[string]any{"playlist": pl})

	writeJSON(w, http.StatusOK, pl)
}

// handleDeletePlaylist deletes a playlist. Owner only.
func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	pl, found, err := s.getPlaylist(ctx, chi.URLParam(r, "id"))
	if err != nil {
		log.Printf("playlist-service: delete playlist fetch: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if pl.OwnerID != userID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, pl.ID); err != nil {
		log.Printf("playlist-service: delete playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	s.publishEvent(ctx, pl.ID, "deleted", map[string]any{"playlistId": pl.ID})

	w.WriteHeader(http.StatusNoContent)
}
