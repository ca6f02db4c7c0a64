package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/swayam25/Aero/internal/song"
)

type mediaHandlers struct {
	songs *song.Client
}

// handleSearch proxies free-text search to the metadata provider and returns
// enhanced songs ready for the player.
func (h *mediaHandlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.songs.SearchSongs(r.Context(), query, limit)
	if err != nil {
		log.Printf("aero: search: %v", err)
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}

	out := make([]song.EnhancedSong, 0, len(results))
	for _, s := range results {
		out = append(out, song.Enhance(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *mediaHandlers) handleLyrics(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	lines, err := h.songs.GetLyrics(r.Context(), id)
	if errors.Is(err, song.ErrNotFound) {
		writeError(w, http.StatusNotFound, "lyrics not found")
		return
	}
	if err != nil {
		log.Printf("aero: lyrics: %v", err)
		writeError(w, http.StatusBadGateway, "lyrics lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lyrics": lines})
}

// handleThumbnail redirects to the CDN image at the requested size. Keeping
// the CDN host out of client markup goes through here.
func (h *mediaHandlers) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}
	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		writeError(w, http.StatusBadRequest, "invalid url")
		return
	}

	width, _ := strconv.Atoi(r.URL.Query().Get("w"))
	height, _ := strconv.Atoi(r.URL.Query().Get("h"))
	dest := target.String()
	if width > 0 && height > 0 {
		dest += fmt.Sprintf("=w%d-h%d-l90-rj", width, height)
	}

	http.Redirect(w, r, dest, http.StatusFound)
}
