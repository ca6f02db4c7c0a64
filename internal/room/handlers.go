package room

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/swayam25/Aero/internal/song"
	"golang.org/x/crypto/bcrypt"
)

// command is the wire shape of every room mutation: a key naming the
// operation and an operation-specific value.
type command struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// normalizeRoomName truncates to 20 characters and trims whitespace.
func normalizeRoomName(name string) string {
	runes := []rune(name)
	if len(runes) > 20 {
		runes = runes[:20]
	}
	return strings.TrimSpace(string(runes))
}

func hashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// passwordMatches checks a submitted password against the stored hash. An
// empty stored hash means the room is passwordless and only the empty
// password matches it.
func passwordMatches(hash, password string) bool {
	if hash == "" {
		return password == ""
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.store.ListPublicRooms(r.Context())
	if err != nil {
		log.Printf("room-service: list rooms: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

// handleRootCommand serves room-collection commands: create_room,
// rename_room and host_disconnect.
func (s *Server) handleRootCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var cmd command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch cmd.Key {
	case "create_room":
		var value struct {
			Name     string `json:"name"`
			Password string `json:"password"`
			IsPublic *bool  `json:"isPublic"`
		}
		if err := json.Unmarshal(cmd.Value, &value); err != nil {
			writeError(w, http.StatusBadRequest, "invalid command value")
			return
		}

		name := normalizeRoomName(value.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "room name is required")
			return
		}

		hash, err := hashPassword(value.Password)
		if err != nil {
			log.Printf("room-service: hash password: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		isPublic := true
		if value.IsPublic != nil {
			isPublic = *value.IsPublic
		}

		created, err := s.store.CreateRoom(ctx, name, hash, memberFromHeaders(r), isPublic)
		if err != nil {
			log.Printf("room-service: create room: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "room": created})

	case "rename_room":
		var value struct {
			RoomID string `json:"roomId"`
			Name   string `json:"name"`
		}
		if err := json.Unmarshal(cmd.Value, &value); err != nil {
			writeError(w, http.StatusBadRequest, "invalid command value")
			return
		}

		existing, err := s.store.GetRoom(ctx, value.RoomID)
		if err != nil {
			writeRoomError(w, err)
			return
		}
		if existing.HostUserID != userID {
			writeError(w, http.StatusUnauthorized, "only the host can rename the room")
			return
		}

		name := normalizeRoomName(value.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "room name is required")
			return
		}
		if err := s.store.RenameRoom(ctx, value.RoomID, name); err != nil {
			writeRoomError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	case "host_disconnect":
		var value struct {
			RoomID string `json:"roomId"`
		}
		if err := json.Unmarshal(cmd.Value, &value); err != nil {
			writeError(w, http.StatusBadRequest, "invalid command value")
			return
		}

		existing, err := s.store.GetRoom(ctx, value.RoomID)
		if err != nil {
			writeRoomError(w, err)
			return
		}
		if existing.HostUserID != userID {
			writeError(w, http.StatusUnauthorized, "only the host can close the room")
			return
		}

		// Members are told first so they can tear playback down; the room
		// row disappears right after.
		s.pub.Publish(ctx, value.RoomID, "host_disconnect", nil)
		if err := s.store.DeleteRoom(ctx, value.RoomID); err != nil {
			log.Printf("room-service: host disconnect delete: %v", err)
			writeError(w, http.StatusInternalServerError, "database error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		writeError(w, http.StatusBadRequest, "unknown command")
	}
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	existing, err := s.store.GetRoom(ctx, body.ID)
	if err != nil {
		writeRoomError(w, err)
		return
	}
	if existing.HostUserID != userID {
		writeError(w, http.StatusUnauthorized, "only the host can delete the room")
		return
	}

	if err := s.store.DeleteRoom(ctx, body.ID); err != nil {
		log.Printf("room-service: delete room: %v", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleGetRoom is the reconciliation read: the persisted row, queue and
// now-playing included, that members replace their local state with.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	fetched, err := s.store.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": fetched})
}

// handleRoomCommand serves per-room commands. Every operation re-checks
// authorization server-side and fails closed: nothing is written once a
// check fails.
func (s *Server) handleRoomCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	roomID := chi.URLParam(r, "id")
	current, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		writeRoomError(w, err)
		return
	}

	var cmd command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	isHost := current.HostUserID == userID
	isMember := current.IsMember(userID)

	switch cmd.Key {
	case "join":
		var value struct {
			Password string `json:"password"`
		}
		if len(cmd.Value) > 0 {
			if err := json.Unmarshal(cmd.Value, &value); err != nil {
				writeError(w, http.StatusBadRequest, "invalid command value")
				return
			}
		}
		if isHost {
			writeError(w, http.StatusUnauthorized, "room hosts cannot be added as members")
			return
		}
		if !passwordMatches(current.PasswordHash, value.Password) {
			writeError(w, http.StatusUnauthorized, "incorrect room password")
			return
		}
		if err := s.store.AddMember(ctx, roomID, memberFromHeaders(r)); err != nil {
			writeRoomError(w, err)
			return
		}

	case "leave":
		if isHost {
			writeError(w, http.StatusUnauthorized, "room hosts cannot be removed")
			return
		}
		if err := s.store.RemoveMember(ctx, roomID, userID); err != nil {
			writeRoomError(w, err)
			return
		}

	case "play":
		var value struct {
			Song song.EnhancedSong `json:"song"`
		}
		if err := json.Unmarshal(cmd.Value, &value); err != nil || value.Song.ID == "" {
			writeError(w, http.StatusBadRequest, "invalid command value")
			return
		}
		if !isHost && !isMember {
			writeError(w, http.StatusUnauthorized, "not a room member")
			return
		}
		if err := s.store.SetNowPlaying(ctx, roomID, value.Song); err != nil {
			writeRoomError(w, err)
			return
		}

	case "add_to_queue":
		var value struct {
			SongID string `json:"songId"`
		}
		if err := json.Unmarshal(cmd.Value, &value); err != nil {
			writeError(w, http.StatusBadRequest, "invalid command value")
			return
		}
		if !isHost && !isMember {
			writeError(w, http.StatusUnauthorized, "not a room member")
			return
		}

		raw, err := s.songs.GetSong(ctx, value.SongID)
		if errors.Is(err, song.ErrNotFound) {
			writeError(w, http.StatusNotFound, "song not found")
			return
		}
		if err != nil {
			log.Printf("room-service: add to queue lookup: %v", err)
			writeError(w, http.StatusBadGateway, "song lookup failed")
			return
		}
		if err := s.store.AddSongToQueue(ctx, roomID, song.Enhance(raw)); err != nil {
			writeRoomError(w, err)
			return
		}

	case "remove_from_queue":
		var value struct {
			SongID string `json:"songId"`
		}
		if err := json.Unmarshal(cmd.Value, &value); err != nil {
			writeError(w, http.StatusBadRequest, "invalid command value")
			return
		}
		if !isHost && !isMember {
			writeError(w, http.StatusUnauthorized, "not a room member")
			return
		}
		if err := s.store.RemoveSongFromQueue(ctx, roomID, value.SongID); err != nil {
			writeRoomError(w, err)
			return
		}

	case "reorder_queue":
		var value struct {
			VideoIDs []string `json:"videoIds"`
		}
		if err := json.Unmarshal(cmd.Value, &value); err != nil {
			writeError(w, http.StatusBadRequest, "invalid command value")
			return
		}
		if !isHost {
			writeError(w, http.StatusUnauthorized, "only the host can reorder the queue")
			return
		}
		if err := s.store.ReorderQueue(ctx, roomID, value.VideoIDs); err != nil {
			writeRoomError(w, err)
			return
		}

	case "set_queue":
		var value struct {
			Queue []song.EnhancedSong `json:"queue"`
		}
		if err := json.Unmarshal(cmd.Value, &value); err != nil {
			writeError(w, http.StatusBadRequest, "invalid command value")
			return
		}
		if !isHost {
			writeError(w, http.StatusUnauthorized, "only the host can replace the queue")
			return
		}
		if err := s.store.SetQueue(ctx, roomID, value.Queue); err != nil {
			writeRoomError(w, err)
			return
		}

	case "toggle_visibility":
		if !isHost {
			writeError(w, http.StatusUnauthorized, "only the host can change visibility")
			return
		}
		isPublic, err := s.store.ToggleVisibility(ctx, roomID)
		if err != nil {
			writeRoomError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "isPublic": isPublic})
		return

	case "fetch":
		writeJSON(w, http.StatusOK, map[string]any{"room": current})
		return

	case "fetch_members":
		writeJSON(w, http.StatusOK, map[string]any{"members": current.Members})
		return

	default:
		writeError(w, http.StatusBadRequest, "unknown command")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
