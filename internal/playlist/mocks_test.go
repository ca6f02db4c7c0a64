package playlist

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/swayam25/Aero/internal/song"
)

// MockDB implements DB interface for testing.
type MockDB struct {
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTxFunc  func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

func (m *MockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return nil, nil
}

func (m *MockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &MockRow{}
}

func (m *MockDB) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if m.BeginTxFunc != nil {
		return m.BeginTxFunc(ctx, txOptions)
	}
	return &MockTx{}, nil
}

// MockRow implements pgx.Row
type MockRow struct {
	ScanFunc func(dest ...any) error
}

func (m *MockRow) Scan(dest ...any) error {
	if m.ScanFunc != nil {
		return m.ScanFunc(dest...)
	}
	return nil
}

// MockTx implements pgx.Tx
type MockTx struct {
	pgx.Tx // Embed to satisfy interface; unchecked methods will panic if called

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
	ExecFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (m *MockTx) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTx) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

func (m *MockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &MockRow{}
}

// scanInto fills the full playlist column list in scanPlaylist's order.
func scanInto(pl Playlist) func(dest ...any) error {
	return func(dest ...any) error {
		songsRaw, err := json.Marshal(pl.Songs)
		if err != nil {
			return err
		}
		*dest[0].(*string) = pl.ID
		*dest[1].(*string) = pl.OwnerID
		*dest[2].(*string) = pl.Name
		*dest[3].(*string) = pl.Cover
		*dest[4].(*[]byte) = songsRaw
		*dest[5].(*bool) = pl.IsPublic
		*dest[6].(*time.Time) = pl.CreatedAt
		return nil
	}
}

// playlistDB serves a fixed playlist for every read and captures the songs
// JSON written back by the mutation transaction.
type playlistDB struct {
	MockDB

	playlist Playlist
	written  []song.EnhancedSong
	execSQL  []string
}

func newPlaylistDB(pl Playlist) *playlistDB {
	db := &playlistDB{playlist: pl}
	db.QueryRowFunc = func(ctx context.Context, sql string, args ...any) pgx.Row {
		if strings.Contains(sql, "RETURNING created_at") {
			return &MockRow{ScanFunc: func(dest ...any) error {
				*dest[0].(*time.Time) = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
				return nil
			}}
		}
		return &MockRow{ScanFunc: scanInto(db.playlist)}
	}
	db.ExecFunc = func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		db.execSQL = append(db.execSQL, sql)
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	db.BeginTxFunc = func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
		return &MockTx{
			QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
				return &MockRow{ScanFunc: func(dest ...any) error {
					raw, err := json.Marshal(db.playlist.Songs)
					if err != nil {
						return err
					}
					*dest[0].(*string) = db.playlist.OwnerID
					*dest[1].(*[]byte) = raw
					return nil
				}}
			},
			ExecFunc: func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
				db.execSQL = append(db.execSQL, sql)
				if len(args) == 2 {
					if raw, ok := args[1].([]byte); ok {
						if err := json.Unmarshal(raw, &db.written); err != nil {
							return pgconn.CommandTag{}, err
						}
					}
				}
				return pgconn.NewCommandTag("UPDATE 1"), nil
			},
		}, nil
	}
	return db
}

// noRowsDB simulates an empty table.
func noRowsDB() *MockDB {
	return &MockDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &MockRow{ScanFunc: func(dest ...any) error {
				return pgx.ErrNoRows
			}}
		},
		BeginTxFunc: func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
			return &MockTx{
				QueryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
					return &MockRow{ScanFunc: func(dest ...any) error {
						return pgx.ErrNoRows
					}}
				},
			}, nil
		},
	}
}
