package room

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/swayam25/Aero/internal/queue"
	"github.com/swayam25/Aero/internal/song"
)

// DB is the slice of pgxpool.Pool the store needs; mocked in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Store persists rooms. Queue, member set and now-playing live in jsonb
// columns mirroring the host's player state; mutations are read-modify-write
// under row locks, last write wins.
type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Migrate creates the rooms table.
func Migrate(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS rooms(
		id uuid PRIMARY KEY,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		host_user_id TEXT NOT NULL,
		host JSONB NOT NULL,
		members JSONB NOT NULL DEFAULT '[]',
		queue JSONB NOT NULL DEFAULT '[]',
		now_playing JSONB,
		is_public BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

const roomColumns = `id, name, password_hash, host_user_id, host, members, queue, now_playing, is_public, created_at`

func scanRoom(row pgx.Row) (Room, error) {
	var (
		r       Room
		hostRaw []byte
		memRaw  []byte
		qRaw    []byte
		npRaw   []byte
	)
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.PasswordHash,
		&r.HostUserID,
		&hostRaw,
		&memRaw,
		&qRaw,
		&npRaw,
		&r.IsPublic,
		&r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Room{}, ErrNotFound
	}
	if err != nil {
		return Room{}, err
	}

	if err := json.Unmarshal(hostRaw, &r.Host); err != nil {
		return Room{}, err
	}
	r.Members = []Member{}
	if len(memRaw) > 0 {
		if err := json.Unmarshal(memRaw, &r.Members); err != nil {
			return Room{}, err
		}
	}
	r.Queue = []song.EnhancedSong{}
	if len(qRaw) > 0 {
		if err := json.Unmarshal(qRaw, &r.Queue); err != nil {
			return Room{}, err
		}
	}
	if len(npRaw) > 0 {
		var np song.EnhancedSong
		if err := json.Unmarshal(npRaw, &np); err != nil {
			return Room{}, err
		}
		r.NowPlaying = &np
	}
	return r, nil
}

// CreateRoom persists a new room with the creator as host and an empty
// member set.
func (s *Store) CreateRoom(ctx context.Context, name, passwordHash string, host Member, isPublic bool) (Room, error) {
	hostData, err := json.Marshal(host)
	if err != nil {
		return Room{}, err
	}

	r := Room{
		ID:           uuid.NewString(),
		Name:         name,
		PasswordHash: passwordHash,
		HostUserID:   host.ID,
		Host:         host,
		Members:      []Member{},
		Queue:        []song.EnhancedSong{},
		IsPublic:     isPublic,
	}
	err = s.db.QueryRow(ctx, `
		INSERT INTO rooms (id, name, password_hash, host_user_id, host, is_public)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, r.ID, r.Name, r.PasswordHash, r.HostUserID, hostData, r.IsPublic).Scan(&r.CreatedAt)
	if err != nil {
		return Room{}, err
	}
	return r, nil
}

func (s *Store) GetRoom(ctx context.Context, id string) (Room, error) {
	return scanRoom(s.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
}

func (s *Store) RenameRoom(ctx context.Context, id, name string) error {
	tag, err := s.db.Exec(ctx, `UPDATE rooms SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	return err
}

func (s *Store) ListPublicRooms(ctx context.Context) ([]Room, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+roomColumns+`
		FROM rooms
		WHERE is_public = TRUE
		ORDER BY created_at DESC
		LIMIT 100
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := []Room{}
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// AddMember upserts a member row keyed by user id; the profile snapshot is
// overwritten on every join (last-write-wins).
func (s *Store) AddMember(ctx context.Context, roomID string, m Member) error {
	return s.mutateMembers(ctx, roomID, func(members []Member) []Member {
		out := make([]Member, 0, len(members)+1)
		for _, existing := range members {
			if existing.ID != m.ID {
				out = append(out, existing)
			}
		}
		return append(out, m)
	})
}

func (s *Store) RemoveMember(ctx context.Context, roomID, userID string) error {
	return s.mutateMembers(ctx, roomID, func(members []Member) []Member {
		out := make([]Member, 0, len(members))
		for _, existing := range members {
			if existing.ID != userID {
				out = append(out, existing)
			}
		}
		return out
	})
}

func (s *Store) mutateMembers(ctx context.Context, roomID string, fn func([]Member) []Member) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT members FROM rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	members := []Member{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &members); err != nil {
			return err
		}
	}

	data, err := json.Marshal(fn(members))
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE rooms SET members = $2 WHERE id = $1`, roomID, data); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SetNowPlaying writes the now-playing snapshot.
func (s *Store) SetNowPlaying(ctx context.Context, roomID string, np song.EnhancedSong) error {
	data, err := json.Marshal(np)
	if err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `UPDATE rooms SET now_playing = $2 WHERE id = $1`, roomID, data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddSongToQueue appends a song to the persisted queue with the same
// dedup-by-id semantics as the local queue model.
func (s *Store) AddSongToQueue(ctx context.Context, roomID string, enhanced song.EnhancedSong) error {
	return s.mutateQueue(ctx, roomID, func(q *queue.Queue) {
		q.Enqueue(enhanced)
	})
}

func (s *Store) RemoveSongFromQueue(ctx context.Context, roomID, songID string) error {
	return s.mutateQueue(ctx, roomID, func(q *queue.Queue) {
		q.Dequeue(songID)
	})
}

// ReorderQueue rearranges the persisted queue to the given id order.
func (s *Store) ReorderQueue(ctx context.Context, roomID string, ids []string) error {
	return s.mutateQueue(ctx, roomID, func(q *queue.Queue) {
		q.Reorder(ids)
	})
}

// SetQueue replaces the persisted queue wholesale.
func (s *Store) SetQueue(ctx context.Context, roomID string, songs []song.EnhancedSong) error {
	return s.mutateQueue(ctx, roomID, func(q *queue.Queue) {
		q.Replace(songs)
	})
}

func (s *Store) mutateQueue(ctx context.Context, roomID string, fn func(*queue.Queue)) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT queue FROM rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	songs := []song.EnhancedSong{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &songs); err != nil {
			return err
		}
	}

	q := queue.New()
	q.Replace(songs)
	fn(q)

	data, err := json.Marshal(q.Songs())
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE rooms SET queue = $2 WHERE id = $1`, roomID, data); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ToggleVisibility flips the public flag and returns the new value.
func (s *Store) ToggleVisibility(ctx context.Context, roomID string) (bool, error) {
	var isPublic bool
	err := s.db.QueryRow(ctx, `
		UPDATE rooms SET is_public = NOT is_public WHERE id = $1 RETURNING is_public
	`, roomID).Scan(&isPublic)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	return isPublic, err
}
